package queries

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrMissingIndex = errors.New("index name is required")
)

// Condition is one structured predicate from the search-query parser.
type Condition struct {
	Field    string
	Operator string
	Value    interface{}
}

// ListingSearch describes one page query against the listings index.
type ListingSearch struct {
	Index      string
	Conditions []Condition
	Residual   []string
	From       int
	Size       int
}

// BuildListingSearch renders the parsed conditions into a bool query:
// title disjunctions become OR'd match clauses, price bounds become range
// filters, residual words become AND'd matches. Results sort newest first.
func BuildListingSearch(ls ListingSearch) (*esapi.SearchRequest, error) {
	if ls.Index == "" {
		return nil, ErrMissingIndex
	}

	mustClauses := []interface{}{}
	filterClauses := []interface{}{}

	for _, c := range ls.Conditions {
		switch {
		case c.Field == "title" && c.Operator == "~":
			// "toyota|honda" carries brand alternatives; match with OR
			// so any of them qualifies.
			terms := strings.ReplaceAll(asString(c.Value), "|", " ")
			mustClauses = append(mustClauses, map[string]interface{}{
				"match": map[string]interface{}{
					"title": map[string]interface{}{
						"query":    terms,
						"operator": "or",
					},
				},
			})

		case c.Field == "pricing" && c.Operator == ">=":
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{
					"pricing": map[string]interface{}{"gte": asFloat(c.Value)},
				},
			})

		case c.Field == "pricing" && c.Operator == "<=":
			filterClauses = append(filterClauses, map[string]interface{}{
				"range": map[string]interface{}{
					"pricing": map[string]interface{}{"lte": asFloat(c.Value)},
				},
			})
		}
	}

	for _, word := range ls.Residual {
		mustClauses = append(mustClauses, map[string]interface{}{
			"match": map[string]interface{}{"title": word},
		})
	}

	// Price-only searches still need a query body
	if len(mustClauses) == 0 {
		mustClauses = append(mustClauses, map[string]interface{}{"match_all": map[string]interface{}{}})
	}

	boolQuery := map[string]interface{}{"must": mustClauses}
	if len(filterClauses) > 0 {
		boolQuery["filter"] = filterClauses
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"bool": boolQuery,
		},
		"sort": []map[string]interface{}{
			{"posted_date": "desc"},
		},
	}

	body, _ := json.Marshal(queryBody)

	req := esapi.SearchRequest{
		Index: []string{ls.Index},
		Body:  strings.NewReader(string(body)),
		From:  &ls.From,
		Size:  &ls.Size,
	}

	return &req, nil
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asFloat(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	}
	return 0
}
