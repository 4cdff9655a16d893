// internal/workers/listings/parse-search-query/models.go
package parsesearchquery

type Input struct {
	SearchQuery string `json:"searchQuery"`
}

type Output struct {
	Filter         string      `json:"filter"`
	Conditions     []Condition `json:"conditions"`
	ResidualTerms  []string    `json:"residualTerms"`
	ConditionCount int         `json:"conditionCount"`
}

// Condition mirrors one structured predicate of the parsed query.
type Condition struct {
	Field      string      `json:"field"`
	Operator   string      `json:"operator"`
	Value      interface{} `json:"value"`
	Combinator string      `json:"combinator"`
}
