package queries

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, r io.Reader) map[string]interface{} {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	return body
}

func boolQuery(t *testing.T, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	query, ok := body["query"].(map[string]interface{})
	require.True(t, ok, "body has no query")
	bq, ok := query["bool"].(map[string]interface{})
	require.True(t, ok, "query is not a bool query")
	return bq
}

func TestBuildListingSearch_RequiresIndex(t *testing.T) {
	_, err := BuildListingSearch(ListingSearch{})
	assert.ErrorIs(t, err, ErrMissingIndex)
}

func TestBuildListingSearch_BrandDisjunction(t *testing.T) {
	req, err := BuildListingSearch(ListingSearch{
		Index: "vehicle_listings",
		Conditions: []Condition{
			{Field: "title", Operator: "~", Value: "toyota|honda"},
		},
		Size: 5,
	})
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	bq := boolQuery(t, body)

	must := bq["must"].([]interface{})
	require.Len(t, must, 1)

	match := must[0].(map[string]interface{})["match"].(map[string]interface{})
	title := match["title"].(map[string]interface{})
	assert.Equal(t, "toyota honda", title["query"])
	assert.Equal(t, "or", title["operator"])
}

func TestBuildListingSearch_PriceBoundsBecomeRangeFilters(t *testing.T) {
	req, err := BuildListingSearch(ListingSearch{
		Index: "vehicle_listings",
		Conditions: []Condition{
			{Field: "pricing", Operator: ">=", Value: int64(6000000)},
			{Field: "pricing", Operator: "<=", Value: float64(9000000)},
		},
	})
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	bq := boolQuery(t, body)

	// No text conditions, so the query body falls back to match_all.
	must := bq["must"].([]interface{})
	require.Len(t, must, 1)
	_, isMatchAll := must[0].(map[string]interface{})["match_all"]
	assert.True(t, isMatchAll)

	filters := bq["filter"].([]interface{})
	require.Len(t, filters, 2)

	lower := filters[0].(map[string]interface{})["range"].(map[string]interface{})["pricing"].(map[string]interface{})
	assert.Equal(t, float64(6000000), lower["gte"])

	upper := filters[1].(map[string]interface{})["range"].(map[string]interface{})["pricing"].(map[string]interface{})
	assert.Equal(t, float64(9000000), upper["lte"])
}

func TestBuildListingSearch_ResidualWordsAreConjunctive(t *testing.T) {
	req, err := BuildListingSearch(ListingSearch{
		Index:    "vehicle_listings",
		Residual: []string{"aqua", "2017"},
	})
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	bq := boolQuery(t, body)

	must := bq["must"].([]interface{})
	require.Len(t, must, 2)

	first := must[0].(map[string]interface{})["match"].(map[string]interface{})
	assert.Equal(t, "aqua", first["title"])
	second := must[1].(map[string]interface{})["match"].(map[string]interface{})
	assert.Equal(t, "2017", second["title"])
}

func TestBuildListingSearch_SortsNewestFirst(t *testing.T) {
	req, err := BuildListingSearch(ListingSearch{Index: "vehicle_listings"})
	require.NoError(t, err)

	body := decodeBody(t, req.Body)
	sort := body["sort"].([]interface{})
	require.Len(t, sort, 1)
	assert.Equal(t, "desc", sort[0].(map[string]interface{})["posted_date"])
}

func TestBuildListingSearch_Pagination(t *testing.T) {
	req, err := BuildListingSearch(ListingSearch{
		Index: "vehicle_listings",
		From:  10,
		Size:  5,
	})
	require.NoError(t, err)

	require.NotNil(t, req.From)
	require.NotNil(t, req.Size)
	assert.Equal(t, 10, *req.From)
	assert.Equal(t, 5, *req.Size)
	assert.Equal(t, []string{"vehicle_listings"}, req.Index)
}
