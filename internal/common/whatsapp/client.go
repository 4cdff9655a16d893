// Package whatsapp sends text messages through the WhatsApp Cloud API.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"carfind-workers/internal/common/config"
	commonhttp "carfind-workers/internal/common/http"
)

var (
	citationPattern = regexp.MustCompile(`【[^】]*】`)
	boldPattern     = regexp.MustCompile(`\*\*(.+?)\*\*`)
)

// Client posts messages to one WhatsApp business phone number.
type Client struct {
	graphBaseURL  string
	version       string
	phoneNumberID string
	accessToken   string
	timezone      string
	httpClient    *commonhttp.Client
}

type textPayload struct {
	MessagingProduct string   `json:"messaging_product"`
	RecipientType    string   `json:"recipient_type"`
	To               string   `json:"to"`
	Type             string   `json:"type"`
	Text             textBody `json:"text"`
}

type textBody struct {
	PreviewURL bool   `json:"preview_url"`
	Body       string `json:"body"`
}

type sendResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

func NewClient(cfg config.WhatsAppConfig) *Client {
	return &Client{
		graphBaseURL:  strings.TrimRight(cfg.GraphBaseURL, "/"),
		version:       cfg.Version,
		phoneNumberID: cfg.PhoneNumberID,
		accessToken:   cfg.AccessToken,
		timezone:      cfg.Timezone,
		httpClient:    commonhttp.NewClient(config.GetDuration(cfg.Timeout)),
	}
}

// SendText delivers one text message and returns the provider message id
// when the API reports one.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	payload := textPayload{
		MessagingProduct: "whatsapp",
		RecipientType:    "individual",
		To:               to,
		Type:             "text",
		Text: textBody{
			PreviewURL: false,
			Body:       NormalizeBody(body),
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/messages", c.graphBaseURL, c.version, c.phoneNumberID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create message request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if c.timezone != "" {
		req.Header.Set("X-WhatsApp-Timezone", c.timezone)
	}

	resp, err := c.httpClient.DoWithContext(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read send response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("message send failed (status %d): %s", resp.StatusCode, string(respBody))
	}

	var sent sendResponse
	if err := json.Unmarshal(respBody, &sent); err != nil {
		return "", fmt.Errorf("failed to unmarshal send response: %w", err)
	}
	if len(sent.Messages) == 0 {
		return "", nil
	}
	return sent.Messages[0].ID, nil
}

// NormalizeBody strips citation markers and rewrites markdown bold to the
// single-asterisk form WhatsApp renders.
func NormalizeBody(body string) string {
	body = citationPattern.ReplaceAllString(body, "")
	body = boldPattern.ReplaceAllString(body, "*$1*")
	return strings.TrimSpace(body)
}
