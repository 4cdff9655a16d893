// internal/workers/data-access/query-listings-elasticsearch/models.go
package querylistingselasticsearch

import "carfind-workers/internal/models"

type Input struct {
	Conditions    []Condition `json:"conditions,omitempty"`
	ResidualTerms []string    `json:"residualTerms,omitempty"`
	Page          int         `json:"page,omitempty"`
	PerPage       int         `json:"perPage,omitempty"`
}

// Condition mirrors the parser worker's output shape.
type Condition struct {
	Field      string      `json:"field"`
	Operator   string      `json:"operator"`
	Value      interface{} `json:"value"`
	Combinator string      `json:"combinator"`
}

type Output struct {
	Items      []models.VehicleListing `json:"items"`
	TotalItems int                     `json:"totalItems"`
	TotalPages int                     `json:"totalPages"`
	Page       int                     `json:"page"`
	Took       int64                   `json:"took"`
}
