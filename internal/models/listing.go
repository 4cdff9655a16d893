package models

// VehicleListing is a row of the vehicle_listings collection.
type VehicleListing struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Pricing    int64  `json:"pricing"`
	Mileage    int64  `json:"mileage"`
	PostedDate string `json:"posted_date"`
	Link       string `json:"link"`
	Location   string `json:"location,omitempty"`
}

// SearchResultPage is one page of listing search results, shaped after the
// record store's list response.
type SearchResultPage struct {
	Items      []VehicleListing `json:"items"`
	TotalItems int              `json:"totalItems"`
	TotalPages int              `json:"totalPages"`
	Page       int              `json:"page"`
}

// HasMorePages reports whether a page indicator line belongs in the
// formatted output.
func (p SearchResultPage) HasMorePages() bool {
	return p.TotalPages > 1
}

// ListingFromRecord maps a record-store item onto a VehicleListing.
func ListingFromRecord(rec map[string]interface{}) VehicleListing {
	return VehicleListing{
		ID:         asString(rec["id"]),
		Title:      asString(rec["title"]),
		Pricing:    asInt64(rec["pricing"]),
		Mileage:    asInt64(rec["mileage"]),
		PostedDate: asString(rec["posted_date"]),
		Link:       asString(rec["link"]),
		Location:   asString(rec["location"]),
	}
}

// ListingsFromRecords maps a record-store item slice in order.
func ListingsFromRecords(recs []map[string]interface{}) []VehicleListing {
	items := make([]VehicleListing, 0, len(recs))
	for _, rec := range recs {
		items = append(items, ListingFromRecord(rec))
	}
	return items
}
