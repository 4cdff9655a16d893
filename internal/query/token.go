// Package query turns free-text car-search phrases into record-store
// filter strings: tokenize → extract conditions → build.
package query

// TokenType classifies a span of the scanned input.
type TokenType string

const (
	TokenFind             TokenType = "find"
	TokenCarBrand         TokenType = "car_brand"
	TokenPriceKeyword     TokenType = "price_keyword"
	TokenLocationKeyword  TokenType = "location_keyword"
	TokenYearKeyword      TokenType = "year_keyword"
	TokenConditionKeyword TokenType = "condition_keyword"
	TokenOperator         TokenType = "operator"
	TokenNumber           TokenType = "number"
	TokenAnd              TokenType = "and"
	TokenOr               TokenType = "or"
	TokenBetween          TokenType = "between"
	TokenHigher           TokenType = "higher"
	TokenLower            TokenType = "lower"
	TokenThan             TokenType = "than"
	TokenUnknown          TokenType = "unknown"
)

// Token is one classified span. Pos is the byte offset into the
// lower-cased, trimmed input; Value is the exact matched text. Tokens are
// immutable once produced and ordered over the input.
type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

// Fields and operators of the store's filter grammar.
const (
	FieldPricing = "pricing"
	FieldTitle   = "title"

	OpGTE   = ">="
	OpLTE   = "<="
	OpFuzzy = "~"
)

// CombinatorAnd joins conditions; every emitted condition must hold.
const CombinatorAnd = "&&"

// SearchCondition is one leaf predicate of a structured query. Value is
// an int64 for price bounds and a string for title matches.
type SearchCondition struct {
	Field      string
	Operator   string
	Value      interface{}
	Combinator string
}

// ParsedQuery is the extractor's result: structured conditions in source
// order plus the residual free-text terms no rule claimed. Residual terms
// surface as per-word fuzzy title matches so no user intent is dropped.
type ParsedQuery struct {
	Conditions []SearchCondition
	Residual   []string
}
