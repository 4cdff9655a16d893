// internal/workers/conversation/generate-response/models.go
package generateresponse

// Input carries one user turn: who is talking and what they said.
type Input struct {
	WaID        string `json:"waID"`
	UserID      string `json:"userID"`
	MessageText string `json:"messageText"`
}

// Response kinds, one per reply shape the dispatcher can produce. Static
// intents reuse the intent name itself.
const (
	KindSearchResults    = "search_results"
	KindNoResults        = "no_results"
	KindNoPreviousSearch = "no_previous_search"
	KindEndOfResults     = "end_of_results"
)

// Output is the reply plus enough routing detail for logging and the
// send step.
type Output struct {
	ResponseText    string `json:"responseText"`
	ResponseKind    string `json:"responseKind"`
	SearchPerformed bool   `json:"searchPerformed"`
	// Page is the listing page fetched when a search ran.
	Page int `json:"page,omitempty"`
}
