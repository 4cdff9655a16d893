package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"carfind-workers/internal/common/config"
)

// ==========================
// Test Helpers
// ==========================

func newTestClient(baseURL string) *Client {
	return NewClient(config.WhatsAppConfig{
		GraphBaseURL:  baseURL,
		Version:       "v18.0",
		PhoneNumberID: "1055512345",
		AccessToken:   "token-abc",
		Timeout:       5000,
		Timezone:      "Asia/Colombo",
	})
}

// ==========================
// Send Tests
// ==========================

func TestSendText_Success(t *testing.T) {
	var gotPath, gotAuth, gotTimezone string
	var gotPayload map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotTimezone = r.Header.Get("X-WhatsApp-Timezone")
		_ = json.NewDecoder(r.Body).Decode(&gotPayload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"messages": []map[string]string{{"id": "wamid.HBgL"}},
		})
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	messageID, err := client.SendText(context.Background(), "94771234567", "Hello! 👋")

	assert.NoError(t, err)
	assert.Equal(t, "wamid.HBgL", messageID)
	assert.Equal(t, "/v18.0/1055512345/messages", gotPath)
	assert.Equal(t, "Bearer token-abc", gotAuth)
	assert.Equal(t, "Asia/Colombo", gotTimezone)

	assert.Equal(t, "whatsapp", gotPayload["messaging_product"])
	assert.Equal(t, "individual", gotPayload["recipient_type"])
	assert.Equal(t, "94771234567", gotPayload["to"])
	assert.Equal(t, "text", gotPayload["type"])

	text, ok := gotPayload["text"].(map[string]interface{})
	assert.True(t, ok)
	assert.Equal(t, false, text["preview_url"])
	assert.Equal(t, "Hello! 👋", text["body"])
}

func TestSendText_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid recipient"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.SendText(context.Background(), "bad", "hi")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Contains(t, err.Error(), "Invalid recipient")
}

func TestSendText_NoMessageID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	messageID, err := client.SendText(context.Background(), "94771234567", "hi")

	assert.NoError(t, err)
	assert.Empty(t, messageID)
}

// ==========================
// Body Normalization Tests
// ==========================

func TestNormalizeBody(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Found 3 vehicles",
			expected: "Found 3 vehicles",
		},
		{
			name:     "citation markers stripped",
			input:    "Toyota Aqua【4:2†listings】 is popular",
			expected: "Toyota Aqua is popular",
		},
		{
			name:     "double asterisk bold becomes single",
			input:    "**Toyota Aqua 2017**",
			expected: "*Toyota Aqua 2017*",
		},
		{
			name:     "multiple bold runs",
			input:    "**A** and **B**",
			expected: "*A* and *B*",
		},
		{
			name:     "existing single asterisks kept",
			input:    "🚗 *Toyota Aqua*",
			expected: "🚗 *Toyota Aqua*",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  hello \n",
			expected: "hello",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeBody(tt.input))
		})
	}
}
