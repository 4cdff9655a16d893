// internal/workers/data-access/query-analytics/models.go
package queryanalytics

type Input struct {
	QueryType  string                 `json:"queryType"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	Pagination Pagination             `json:"pagination,omitempty"`
}

type Pagination struct {
	Limit int `json:"limit,omitempty"`
}

type Output struct {
	Data               interface{} `json:"data"`
	RowCount           int         `json:"rowCount"`
	QueryExecutionTime int64       `json:"queryExecutionTime"`
}
