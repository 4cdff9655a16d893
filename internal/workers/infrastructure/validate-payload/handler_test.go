// internal/workers/infrastructure/validate-payload/handler_test.go
package validatepayload

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Logger Implementation
// ==========================

// TestLogger implements the Logger interface for testing
type TestLogger struct {
	t      *testing.T
	fields map[string]interface{}
}

func NewTestLogger(t *testing.T) *TestLogger {
	return &TestLogger{
		t:      t,
		fields: make(map[string]interface{}),
	}
}

func (l *TestLogger) Info(msg string, fields map[string]interface{}) {
	l.t.Logf("INFO: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Warn(msg string, fields map[string]interface{}) {
	l.t.Logf("WARN: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) Error(msg string, fields map[string]interface{}) {
	l.t.Logf("ERROR: %s %v", msg, l.mergeFields(fields))
}

func (l *TestLogger) With(fields map[string]interface{}) Logger {
	newLogger := &TestLogger{
		t:      l.t,
		fields: make(map[string]interface{}),
	}
	for k, v := range l.fields {
		newLogger.fields[k] = v
	}
	for k, v := range fields {
		newLogger.fields[k] = v
	}
	return newLogger
}

func (l *TestLogger) mergeFields(fields map[string]interface{}) map[string]interface{} {
	allFields := make(map[string]interface{})
	for k, v := range l.fields {
		allFields[k] = v
	}
	for k, v := range fields {
		allFields[k] = v
	}
	return allFields
}

// ==========================
// Test Helpers
// ==========================

func createTestConfig() *Config {
	return &Config{Timeout: 5 * time.Second}
}

func validWebhook() map[string]interface{} {
	return map[string]interface{}{
		"object": "whatsapp_business_account",
		"entry": []interface{}{
			map[string]interface{}{
				"id": "102290129340398",
				"changes": []interface{}{
					map[string]interface{}{
						"field": "messages",
						"value": map[string]interface{}{
							"messaging_product": "whatsapp",
							"metadata": map[string]interface{}{
								"display_phone_number": "15550123456",
								"phone_number_id":      "1055512345",
							},
							"contacts": []interface{}{
								map[string]interface{}{
									"profile": map[string]interface{}{"name": "Nimal"},
									"wa_id":   "94771234567",
								},
							},
							"messages": []interface{}{
								map[string]interface{}{
									"from":      "94771234567",
									"id":        "wamid.HBgLOTQ3NzEyMzQ1Njc",
									"timestamp": "1724300000",
									"type":      "text",
									"text":      map[string]interface{}{"body": "find toyota aqua"},
								},
							},
						},
					},
				},
			},
		},
	}
}

func changeValue(payload map[string]interface{}) map[string]interface{} {
	entry := payload["entry"].([]interface{})[0].(map[string]interface{})
	change := entry["changes"].([]interface{})[0].(map[string]interface{})
	return change["value"].(map[string]interface{})
}

// ==========================
// Core Functionality Tests
// ==========================

func TestExecute_ValidTextMessage(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	output, err := handler.Execute(context.Background(), &Input{Payload: validWebhook()})

	require.NoError(t, err)
	assert.Equal(t, "94771234567", output.WaID)
	assert.Equal(t, "Nimal", output.ProfileName)
	assert.Equal(t, "wamid.HBgLOTQ3NzEyMzQ1Njc", output.MessageID)
	assert.Equal(t, "find toyota aqua", output.MessageText)
	assert.Equal(t, "1724300000", output.Timestamp)
}

func TestExecute_MediaMessageHasNoText(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	payload := validWebhook()
	value := changeValue(payload)
	value["messages"] = []interface{}{
		map[string]interface{}{
			"from":      "94771234567",
			"id":        "wamid.image",
			"timestamp": "1724300001",
			"type":      "image",
			"image":     map[string]interface{}{"id": "media-1", "mime_type": "image/jpeg"},
		},
	}

	output, err := handler.Execute(context.Background(), &Input{Payload: payload})

	require.NoError(t, err)
	assert.Equal(t, "wamid.image", output.MessageID)
	assert.Empty(t, output.MessageText)
}

func TestExecute_MissingContactsStillAccepted(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	payload := validWebhook()
	delete(changeValue(payload), "contacts")

	output, err := handler.Execute(context.Background(), &Input{Payload: payload})

	require.NoError(t, err)
	assert.Empty(t, output.ProfileName)
	assert.Equal(t, "94771234567", output.WaID)
}

// ==========================
// Rejection Tests
// ==========================

func TestExecute_StatusOnlyEventRejected(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	payload := validWebhook()
	value := changeValue(payload)
	delete(value, "messages")
	value["statuses"] = []interface{}{
		map[string]interface{}{
			"id":     "wamid.HBgLOTQ3NzEyMzQ1Njc",
			"status": "delivered",
		},
	}

	_, err := handler.Execute(context.Background(), &Input{Payload: payload})

	assert.ErrorIs(t, err, ErrInvalidWebhookPayload)
}

func TestExecute_EmptyEntryRejected(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	payload := validWebhook()
	payload["entry"] = []interface{}{}

	_, err := handler.Execute(context.Background(), &Input{Payload: payload})

	assert.ErrorIs(t, err, ErrInvalidWebhookPayload)
}

func TestExecute_MessageWithoutIDRejected(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	payload := validWebhook()
	changeValue(payload)["messages"] = []interface{}{
		map[string]interface{}{
			"from":      "94771234567",
			"timestamp": "1724300000",
			"type":      "text",
		},
	}

	_, err := handler.Execute(context.Background(), &Input{Payload: payload})

	assert.ErrorIs(t, err, ErrInvalidWebhookPayload)
}

func TestExecute_NilPayloadRejected(t *testing.T) {
	handler := NewHandler(createTestConfig(), NewTestLogger(t))

	_, err := handler.Execute(context.Background(), &Input{})

	assert.ErrorIs(t, err, ErrInvalidWebhookPayload)
}
