// internal/workers/data-access/query-listings/models.go
package querylistings

import "carfind-workers/internal/models"

type Input struct {
	Filter  string `json:"filter"`
	Sort    string `json:"sort,omitempty"`
	Page    int    `json:"page,omitempty"`
	PerPage int    `json:"perPage,omitempty"`
}

type Output struct {
	Items      []models.VehicleListing `json:"items"`
	TotalItems int                     `json:"totalItems"`
	TotalPages int                     `json:"totalPages"`
	Page       int                     `json:"page"`
}
