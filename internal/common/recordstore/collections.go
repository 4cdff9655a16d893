package recordstore

import (
	"context"
	"fmt"

	"carfind-workers/internal/models"
)

// FindUserByWaID looks up the whatsapp_users record for one WhatsApp id.
// Returns ErrNotFound when the user has never messaged before.
func (c *Client) FindUserByWaID(ctx context.Context, waID string) (*models.User, error) {
	filter := fmt.Sprintf("wa_id = %s", Quote(waID))
	rec, err := c.FirstMatch(ctx, CollectionUsers, filter)
	if err != nil {
		return nil, err
	}
	user := models.UserFromRecord(rec)
	return &user, nil
}

// CreateUser inserts a whatsapp_users record.
func (c *Client) CreateUser(ctx context.Context, fields map[string]interface{}) (*models.User, error) {
	rec, err := c.Create(ctx, CollectionUsers, fields)
	if err != nil {
		return nil, err
	}
	user := models.UserFromRecord(rec)
	return &user, nil
}

// GetUser fetches one whatsapp_users record by id.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	rec, err := c.Get(ctx, CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	user := models.UserFromRecord(rec)
	return &user, nil
}

// UpdateUser patches a whatsapp_users record by id.
func (c *Client) UpdateUser(ctx context.Context, id string, fields map[string]interface{}) (*models.User, error) {
	rec, err := c.Update(ctx, CollectionUsers, id, fields)
	if err != nil {
		return nil, err
	}
	user := models.UserFromRecord(rec)
	return &user, nil
}

// CreateMessageLog inserts a message_logs record and returns its id.
func (c *Client) CreateMessageLog(ctx context.Context, fields map[string]interface{}) (string, error) {
	rec, err := c.Create(ctx, CollectionMessageLogs, fields)
	if err != nil {
		return "", err
	}
	id, _ := rec["id"].(string)
	return id, nil
}

// SearchListings runs a filtered, sorted page query against the
// vehicle_listings collection.
func (c *Client) SearchListings(ctx context.Context, filter string, page, perPage int, sort string) (*models.SearchResultPage, error) {
	result, err := c.List(ctx, CollectionListings, ListOptions{
		Page:    page,
		PerPage: perPage,
		Filter:  filter,
		Sort:    sort,
	})
	if err != nil {
		return nil, err
	}

	return &models.SearchResultPage{
		Items:      models.ListingsFromRecords(result.Items),
		TotalItems: result.TotalItems,
		TotalPages: result.TotalPages,
		Page:       result.Page,
	}, nil
}

// GetListing fetches one vehicle_listings record by id.
func (c *Client) GetListing(ctx context.Context, id string) (*models.VehicleListing, error) {
	rec, err := c.Get(ctx, CollectionListings, id)
	if err != nil {
		return nil, err
	}
	listing := models.ListingFromRecord(rec)
	return &listing, nil
}
