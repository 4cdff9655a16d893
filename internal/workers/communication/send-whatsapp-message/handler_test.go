package sendwhatsappmessage

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonerrors "carfind-workers/internal/common/errors"
	"carfind-workers/internal/common/logger"
)

// ==========================
// Stub Channel Implementation
// ==========================

type stubChannel struct {
	messageID string
	err       error

	lastTo   string
	lastBody string
}

func (c *stubChannel) SendText(ctx context.Context, to, body string) (string, error) {
	c.lastTo = to
	c.lastBody = body
	if c.err != nil {
		return "", c.err
	}
	return c.messageID, nil
}

// ==========================
// Mock Job Helper
// ==========================

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	activatedJob := &pb.ActivatedJob{
		Key:                      key,
		Type:                     TaskType,
		ProcessInstanceKey:       key * 10,
		BpmnProcessId:            "test-process",
		ProcessDefinitionVersion: 1,
		ProcessDefinitionKey:     1,
		ElementId:                "Activity_SendWhatsAppMessage",
		ElementInstanceKey:       1,
		CustomHeaders:            "{}",
		Worker:                   "test-worker",
		Retries:                  3,
		Deadline:                 0,
		Variables:                string(variablesJSON),
	}

	return entities.Job{ActivatedJob: activatedJob}
}

// ==========================
// Test Helpers
// ==========================

func createValidConfig() *Config {
	return &Config{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       30 * time.Second,
	}
}

func createTestHandler(t *testing.T, channel MessageChannel) *Handler {
	handler, err := NewHandler(HandlerOptions{
		CustomConfig: createValidConfig(),
		Logger:       logger.NewStructured("error", "json"),
		Channel:      channel,
	})
	require.NoError(t, err)
	return handler
}

// ==========================
// Handler Creation Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	tests := []struct {
		name    string
		opts    HandlerOptions
		wantErr bool
	}{
		{
			name: "valid configuration",
			opts: HandlerOptions{
				CustomConfig: createValidConfig(),
				Logger:       logger.NewStructured("error", "json"),
				Channel:      &stubChannel{},
			},
			wantErr: false,
		},
		{
			name: "missing channel",
			opts: HandlerOptions{
				CustomConfig: createValidConfig(),
				Logger:       logger.NewStructured("error", "json"),
			},
			wantErr: true,
		},
		{
			name: "invalid timeout",
			opts: HandlerOptions{
				CustomConfig: &Config{Enabled: true, MaxJobsActive: 5, Timeout: 0},
				Channel:      &stubChannel{},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, err := NewHandler(tt.opts)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, handler)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, handler)
			}
		})
	}
}

// ==========================
// Input Parsing Tests
// ==========================

func TestHandler_ParseInput(t *testing.T) {
	handler := createTestHandler(t, &stubChannel{})

	tests := []struct {
		name      string
		variables map[string]interface{}
		wantErr   bool
		errCode   string
	}{
		{
			name: "valid input",
			variables: map[string]interface{}{
				"to":   "94771234567",
				"body": "Found 3 vehicles matching your search.",
			},
			wantErr: false,
		},
		{
			name: "missing body",
			variables: map[string]interface{}{
				"to": "94771234567",
			},
			wantErr: true,
			errCode: "VALIDATION_FAILED",
		},
		{
			name: "recipient is not a phone number",
			variables: map[string]interface{}{
				"to":   "not-a-number",
				"body": "hello",
			},
			wantErr: true,
			errCode: "VALIDATION_FAILED",
		},
		{
			name: "extra field rejected",
			variables: map[string]interface{}{
				"to":      "94771234567",
				"body":    "hello",
				"subject": "unused",
			},
			wantErr: true,
			errCode: "VALIDATION_FAILED",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input, err := handler.parseInput(createMockJob(1, tt.variables))
			if tt.wantErr {
				require.Error(t, err)
				stdErr, ok := err.(*commonerrors.StandardError)
				require.True(t, ok)
				assert.Equal(t, tt.errCode, string(stdErr.Code))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.variables["to"], input.To)
				assert.Equal(t, tt.variables["body"], input.Body)
			}
		})
	}
}

// ==========================
// Service Tests
// ==========================

func TestService_Execute_Success(t *testing.T) {
	channel := &stubChannel{messageID: "wamid.HBgL123"}
	handler := createTestHandler(t, channel)

	output, err := handler.Execute(context.Background(), &Input{
		To:   "94771234567",
		Body: "Here are your **results**:",
	})

	require.NoError(t, err)
	assert.True(t, output.Delivered)
	assert.Equal(t, "wamid.HBgL123", output.MessageID)
	assert.False(t, output.SentAt.IsZero())

	assert.Equal(t, "94771234567", channel.lastTo)
	assert.Equal(t, "Here are your *results*:", channel.lastBody)
}

func TestService_Execute_ChannelFailure(t *testing.T) {
	channel := &stubChannel{err: errors.New("status 500")}
	handler := createTestHandler(t, channel)

	_, err := handler.Execute(context.Background(), &Input{
		To:   "94771234567",
		Body: "hello",
	})

	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, commonerrors.ErrCodeMessageSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}

func TestService_Execute_EmptyAfterNormalization(t *testing.T) {
	channel := &stubChannel{messageID: "wamid.unused"}
	handler := createTestHandler(t, channel)

	_, err := handler.Execute(context.Background(), &Input{
		To:   "94771234567",
		Body: "  【source】  ",
	})

	require.Error(t, err)
	stdErr, ok := err.(*commonerrors.StandardError)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_FAILED", string(stdErr.Code))
	assert.False(t, stdErr.Retryable)
	assert.Empty(t, channel.lastTo, "nothing should be sent")
}

// ==========================
// Schema Tests
// ==========================

func TestGetInputSchema(t *testing.T) {
	schema := GetInputSchema()

	assert.Equal(t, "object", schema.Type)
	assert.ElementsMatch(t, []string{"to", "body"}, schema.Required)
	assert.Contains(t, schema.Properties, "to")
	assert.Contains(t, schema.Properties, "body")
	assert.False(t, schema.AdditionalProperties)
}

// ==========================
// Error Conversion Tests
// ==========================

func TestHandler_ConvertToStandardError(t *testing.T) {
	plain := errors.New("connection refused")
	stdErr := convertToStandardError(plain)

	assert.Equal(t, commonerrors.ErrCodeMessageSendFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Equal(t, "connection refused", stdErr.Details)

	original := commonerrors.NewMessageSendFailedError(plain)
	assert.Same(t, original, convertToStandardError(original))
}

// ==========================
// Config Tests
// ==========================

func TestConfig_Validate(t *testing.T) {
	cfg := createValidConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())

	cfg = createValidConfig()
	cfg.MaxJobsActive = 0
	assert.Error(t, cfg.Validate())
}
