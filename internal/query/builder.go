package query

import (
	"fmt"
	"strings"
)

// Build renders a ParsedQuery as a record-store filter string. Conditions
// come out in extraction order, followed by one fuzzy title match per
// residual term, all joined with " && ". Numeric values render bare;
// string values are double-quoted with backslash and quote escaping.
// Build is deterministic: the same ParsedQuery always yields the same
// filter.
func Build(pq ParsedQuery) string {
	clauses := make([]string, 0, len(pq.Conditions)+len(pq.Residual))

	for _, c := range pq.Conditions {
		clauses = append(clauses, renderCondition(c))
	}
	for _, term := range pq.Residual {
		clauses = append(clauses, fmt.Sprintf("%s %s %s", FieldTitle, OpFuzzy, quote(term)))
	}

	return strings.Join(clauses, " "+CombinatorAnd+" ")
}

func renderCondition(c SearchCondition) string {
	switch v := c.Value.(type) {
	case int64:
		return fmt.Sprintf("%s %s %d", c.Field, c.Operator, v)
	case string:
		return fmt.Sprintf("%s %s %s", c.Field, c.Operator, quote(v))
	default:
		return fmt.Sprintf("%s %s %s", c.Field, c.Operator, quote(fmt.Sprintf("%v", v)))
	}
}

// quote wraps v in double quotes, escaping backslashes and embedded
// quotes so user text cannot break out of the filter literal.
func quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}

// Parse runs the full pipeline on raw text and returns the filter string.
// An empty or all-noise input yields an empty filter; callers decide
// whether that is an error.
func (t *Tokenizer) Parse(text string) string {
	return Build(t.ParseQuery(text))
}

// ParseQuery runs tokenize and extract, returning the structured form for
// callers that need the individual conditions rather than the rendered
// filter.
func (t *Tokenizer) ParseQuery(text string) ParsedQuery {
	return Extract(t.Tokenize(text))
}
