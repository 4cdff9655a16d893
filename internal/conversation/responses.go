package conversation

// Canned reply texts. Keep the wording stable: users see these verbatim,
// and the e2e assertions match on them.
const (
	GreetingResponse = "Hello! 👋 Welcome to the SL Car Finder bot.\n\n" +
		"To search for cars, send a message starting with 'find' followed by the car name.\n" +
		"Example: find toyota aqua"

	UnknownResponse = "I'm not sure how to respond to that. Send 'hi' for help."

	NoSearchTermResponse = "Please provide what car you're looking for.\n" +
		"Example: find toyota aqua"

	NoPreviousSearchResponse = "You haven't performed a search yet. Please start with 'find' followed by the car name."

	EndOfResultsResponse = "You've reached the end of the search results. Try a new search with 'find'."

	NoResultsResponse = "No vehicles found matching your search criteria."
)

// StaticResponse returns the canned reply for intents that need no data
// access. Search and pagination intents return ok=false; those answers
// come from the store.
func StaticResponse(intent Intent) (string, bool) {
	switch intent {
	case IntentGreeting, IntentHelp:
		return GreetingResponse, true
	case IntentNoSearchTerm:
		return NoSearchTermResponse, true
	case IntentUnknown:
		return UnknownResponse, true
	default:
		return "", false
	}
}
