// internal/workers/data-access/query-listings-elasticsearch/queries/search.go
package queries

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

type SearchResult struct {
	Items     []map[string]interface{}
	TotalHits int64
	Took      int64
}

// Execute runs one listing search and flattens the hit sources.
func Execute(ctx context.Context, esClient *elasticsearch.Client, ls ListingSearch) (*SearchResult, error) {
	req, err := BuildListingSearch(ls)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrMissingIndex, ls.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	hits, ok := r["hits"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("search response missing hits")
	}

	var total float64
	if t, ok := hits["total"].(map[string]interface{}); ok {
		total, _ = t["value"].(float64)
	}

	var items []map[string]interface{}
	if hitList, ok := hits["hits"].([]interface{}); ok {
		for _, hit := range hitList {
			h, ok := hit.(map[string]interface{})
			if !ok {
				continue
			}
			if source, ok := h["_source"].(map[string]interface{}); ok {
				items = append(items, source)
			}
		}
	}

	return &SearchResult{
		Items:     items,
		TotalHits: int64(total),
		Took:      time.Since(start).Milliseconds(),
	}, nil
}
