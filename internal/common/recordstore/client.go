// Package recordstore is a thin PocketBase REST client. The store holds
// the bot's users, message logs, and the vehicle listings it searches.
package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"carfind-workers/internal/common/config"
	commonhttp "carfind-workers/internal/common/http"
)

// Collection names as they exist in the store.
const (
	CollectionUsers       = "whatsapp_users"
	CollectionMessageLogs = "message_logs"
	CollectionListings    = "vehicle_listings"

	// authCollection is the store-side account the bot signs in with.
	authCollection = "users"
)

// ErrNotFound is returned when a record or first-match lookup has no hit.
var ErrNotFound = errors.New("record not found")

// Client talks to one PocketBase instance. It is safe for concurrent use;
// the auth token is refreshed once and replayed on a 401 response.
type Client struct {
	baseURL    string
	identity   string
	password   string
	httpClient *commonhttp.Client

	mu    sync.RWMutex
	token string
}

// ListOptions narrows a List call. Zero values mean the store defaults
// (page 1, PocketBase's own perPage).
type ListOptions struct {
	Page    int
	PerPage int
	Filter  string
	Sort    string
}

// ResultPage is one page of records plus pagination totals, as the store
// returns them.
type ResultPage struct {
	Page       int                      `json:"page"`
	PerPage    int                      `json:"perPage"`
	TotalItems int                      `json:"totalItems"`
	TotalPages int                      `json:"totalPages"`
	Items      []map[string]interface{} `json:"items"`
}

type authResponse struct {
	Token  string                 `json:"token"`
	Record map[string]interface{} `json:"record"`
}

func NewClient(cfg config.RecordStoreConfig) *Client {
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		identity: cfg.Identity,
		password: cfg.Password,
		httpClient: commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

// Authenticate signs in with the configured identity and stores the
// token for subsequent requests.
func (c *Client) Authenticate(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/api/collections/%s/auth-with-password", c.baseURL, authCollection)

	payload, err := json.Marshal(map[string]string{
		"identity": c.identity,
		"password": c.password,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal auth payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute auth request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication failed (status %d): %s", resp.StatusCode, string(body))
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("failed to unmarshal auth response: %w", err)
	}
	if auth.Token == "" {
		return fmt.Errorf("authentication returned no token")
	}

	c.mu.Lock()
	c.token = auth.Token
	c.mu.Unlock()

	return nil
}

// List fetches one page of records from a collection.
func (c *Client) List(ctx context.Context, collection string, opts ListOptions) (*ResultPage, error) {
	query := url.Values{}
	if opts.Page > 0 {
		query.Set("page", strconv.Itoa(opts.Page))
	}
	if opts.PerPage > 0 {
		query.Set("perPage", strconv.Itoa(opts.PerPage))
	}
	if opts.Filter != "" {
		query.Set("filter", opts.Filter)
	}
	if opts.Sort != "" {
		query.Set("sort", opts.Sort)
	}

	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/collections/%s/records", collection), query, nil)
	if err != nil {
		return nil, err
	}

	var page ResultPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("failed to unmarshal list response: %w", err)
	}
	return &page, nil
}

// FirstMatch returns the first record matching filter, or ErrNotFound.
func (c *Client) FirstMatch(ctx context.Context, collection, filter string) (map[string]interface{}, error) {
	page, err := c.List(ctx, collection, ListOptions{Page: 1, PerPage: 1, Filter: filter})
	if err != nil {
		return nil, err
	}
	if len(page.Items) == 0 {
		return nil, fmt.Errorf("no %s record matches %s: %w", collection, filter, ErrNotFound)
	}
	return page.Items[0], nil
}

// Get fetches a single record by id.
func (c *Client) Get(ctx context.Context, collection, id string) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/collections/%s/records/%s", collection, id), nil, nil)
	if err != nil {
		return nil, err
	}

	var record map[string]interface{}
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return record, nil
}

// Create inserts a record and returns it as stored.
func (c *Client) Create(ctx context.Context, collection string, fields map[string]interface{}) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/collections/%s/records", collection), nil, fields)
	if err != nil {
		return nil, err
	}

	var record map[string]interface{}
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal created record: %w", err)
	}
	return record, nil
}

// Update patches a record by id and returns the stored result.
func (c *Client) Update(ctx context.Context, collection, id string, fields map[string]interface{}) (map[string]interface{}, error) {
	body, err := c.do(ctx, http.MethodPatch, fmt.Sprintf("/api/collections/%s/records/%s", collection, id), nil, fields)
	if err != nil {
		return nil, err
	}

	var record map[string]interface{}
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal updated record: %w", err)
	}
	return record, nil
}

// do executes one store request, re-authenticating and replaying once if
// the token has expired.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, payload interface{}) ([]byte, error) {
	var jsonData []byte
	if payload != nil {
		var err error
		jsonData, err = json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request payload: %w", err)
		}
	}

	body, status, err := c.send(ctx, method, path, query, jsonData)
	if err != nil {
		return nil, err
	}

	if status == http.StatusUnauthorized {
		if err := c.Authenticate(ctx); err != nil {
			return nil, fmt.Errorf("re-authentication failed: %w", err)
		}
		body, status, err = c.send(ctx, method, path, query, jsonData)
		if err != nil {
			return nil, err
		}
	}

	switch {
	case status == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case status < 200 || status > 299:
		return nil, fmt.Errorf("store request %s %s failed (status %d): %s", method, path, status, string(body))
	}

	return body, nil
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, jsonData []byte) ([]byte, int, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if jsonData != nil {
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if jsonData != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, resp.StatusCode, nil
}

// Quote renders v as a double-quoted filter literal, escaping backslashes
// and embedded quotes.
func Quote(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `"`, `\"`)
	return `"` + v + `"`
}
