// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Query parsing / classification
	ErrCodeMalformedPrice   ErrorCode = "MALFORMED_PRICE"
	ErrCodeEmptySearchQuery ErrorCode = "EMPTY_SEARCH_QUERY"

	// Webhook intake
	ErrCodeInvalidWebhookPayload ErrorCode = "INVALID_WEBHOOK_PAYLOAD"
	ErrCodeDuplicateMessage      ErrorCode = "DUPLICATE_MESSAGE"
	ErrCodeDedupeCheckFailed     ErrorCode = "DEDUPE_CHECK_FAILED"

	// Pagination / conversation state
	ErrCodeNoPreviousSearch ErrorCode = "NO_PREVIOUS_SEARCH"
	ErrCodeEndOfResults     ErrorCode = "END_OF_RESULTS"
	ErrCodeUserLockTimeout  ErrorCode = "USER_LOCK_TIMEOUT"

	// Record store (PocketBase)
	ErrCodeStoreUnavailable   ErrorCode = "RECORD_STORE_UNAVAILABLE"
	ErrCodeStoreAuthFailed    ErrorCode = "RECORD_STORE_AUTH_FAILED"
	ErrCodeRecordNotFound     ErrorCode = "RECORD_NOT_FOUND"
	ErrCodeListingQueryFailed ErrorCode = "LISTING_QUERY_FAILED"

	// Messaging channel
	ErrCodeMessageSendFailed ErrorCode = "MESSAGE_SEND_FAILED"
	ErrCodeAlertSendFailed   ErrorCode = "ALERT_SEND_FAILED"

	// Analytics database
	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeQueryTimeout             ErrorCode = "QUERY_TIMEOUT"
	ErrCodeUnknownQueryType         ErrorCode = "UNKNOWN_QUERY_TYPE"

	// Listings search index
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeSearchQueryFailed             ErrorCode = "SEARCH_QUERY_FAILED"
	ErrCodeSearchTimeout                 ErrorCode = "SEARCH_TIMEOUT"
	ErrCodeIndexNotFound                 ErrorCode = "INDEX_NOT_FOUND"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}

	if e.ErrorVariables != nil {
		for k, v := range e.ErrorVariables {
			vars[k] = v
		}
	}

	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewMalformedPriceError creates a non-retryable price parsing error.
func NewMalformedPriceError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMalformedPrice,
		Message:   "Price literal could not be normalized",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEmptySearchQueryError creates a non-retryable empty search error.
func NewEmptySearchQueryError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptySearchQuery,
		Message:   "Search request carries no search term",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidWebhookPayloadError creates a non-retryable payload validation error.
func NewInvalidWebhookPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidWebhookPayload,
		Message:   "Webhook payload is not a processable WhatsApp message",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDuplicateMessageError creates a non-retryable duplicate delivery error.
func NewDuplicateMessageError(messageID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeDuplicateMessage,
		Message:   "Message was already processed",
		Details:   fmt.Sprintf("messageId: %s", messageID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDedupeCheckFailedError creates a retryable dedupe backend error.
func NewDedupeCheckFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDedupeCheckFailed,
		Message:   "Duplicate-delivery check failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewNoPreviousSearchError creates a non-retryable pagination error.
func NewNoPreviousSearchError(waID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeNoPreviousSearch,
		Message:   "User has no stored search to page through",
		Details:   fmt.Sprintf("waId: %s", waID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEndOfResultsError creates a non-retryable exhausted pagination error.
func NewEndOfResultsError(page int) *StandardError {
	return &StandardError{
		Code:      ErrCodeEndOfResults,
		Message:   "Requested page is past the end of the results",
		Details:   fmt.Sprintf("page: %d", page),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewUserLockTimeoutError creates a retryable per-user serialization error.
func NewUserLockTimeoutError(waID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUserLockTimeout,
		Message:   "Timed out waiting for the user's turn lock",
		Details:   fmt.Sprintf("waId: %s", waID),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable record store error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Record store request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreAuthFailedError creates a non-retryable record store auth error.
func NewStoreAuthFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreAuthFailed,
		Message:   "Record store authentication failed",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewRecordNotFoundError creates a non-retryable missing record error.
func NewRecordNotFoundError(collection, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeRecordNotFound,
		Message:   fmt.Sprintf("Record not found in %s", collection),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewListingQueryFailedError creates a retryable listing search error.
func NewListingQueryFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeListingQueryFailed,
		Message:   "Listing search against the record store failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageSendFailedError creates a retryable WhatsApp delivery error.
func NewMessageSendFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageSendFailed,
		Message:   "WhatsApp message delivery failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewAlertSendFailedError creates a retryable ops alert error.
func NewAlertSendFailedError(channel string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeAlertSendFailed,
		Message:   "Operations alert delivery failed",
		Details:   fmt.Sprintf("channel: %s, error: %s", channel, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryExecutionFailedError creates a retryable query execution error.
func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryExecutionFailed,
		Message:   "Database query execution error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewQueryTimeoutError creates a retryable query timeout error.
func NewQueryTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeQueryTimeout,
		Message:   "Database query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewUnknownQueryTypeError creates a non-retryable unsupported query type error.
func NewUnknownQueryTypeError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeUnknownQueryType,
		Message:   "Unsupported analytics query type",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchQueryFailedError creates a retryable search query error.
func NewSearchQueryFailedError(queryType string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchQueryFailed,
		Message:   "Elasticsearch query error",
		Details:   fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchTimeoutError creates a retryable search timeout error.
func NewSearchTimeoutError(queryType string) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchTimeout,
		Message:   "Elasticsearch query timeout",
		Details:   fmt.Sprintf("queryType: %s", queryType),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewIndexNotFoundError creates a non-retryable index not found error.
func NewIndexNotFoundError(indexName string) *StandardError {
	return &StandardError{
		Code:      ErrCodeIndexNotFound,
		Message:   "Elasticsearch index not found",
		Details:   fmt.Sprintf("indexName: %s", indexName),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// Generic constructors

func NewBusinessRuleError(message, details string) *StandardError {
	return &StandardError{
		Code:      "BUSINESS_RULE_VIOLATION",
		Message:   message,
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "EXTERNAL_SERVICE_ERROR",
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      "TIMEOUT_ERROR",
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

func NewResourceNotFoundError(service, details string) *StandardError {
	return &StandardError{
		Code:      "RESOURCE_NOT_FOUND",
		Message:   fmt.Sprintf("Resource not found in %s", service),
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewAuthenticationError(details string) *StandardError {
	return &StandardError{
		Code:      "AUTHENTICATION_ERROR",
		Message:   "Authentication failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to BPMN error codes. The
// process models throw and catch the same literals, so the mapping is
// identity; it exists so a future rename on either side stays a
// one-line change.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeMalformedPrice:                "MALFORMED_PRICE",
	ErrCodeEmptySearchQuery:              "EMPTY_SEARCH_QUERY",
	ErrCodeInvalidWebhookPayload:         "INVALID_WEBHOOK_PAYLOAD",
	ErrCodeDuplicateMessage:              "DUPLICATE_MESSAGE",
	ErrCodeDedupeCheckFailed:             "DEDUPE_CHECK_FAILED",
	ErrCodeNoPreviousSearch:              "NO_PREVIOUS_SEARCH",
	ErrCodeEndOfResults:                  "END_OF_RESULTS",
	ErrCodeUserLockTimeout:               "USER_LOCK_TIMEOUT",
	ErrCodeStoreUnavailable:              "RECORD_STORE_UNAVAILABLE",
	ErrCodeStoreAuthFailed:               "RECORD_STORE_AUTH_FAILED",
	ErrCodeRecordNotFound:                "RECORD_NOT_FOUND",
	ErrCodeListingQueryFailed:            "LISTING_QUERY_FAILED",
	ErrCodeMessageSendFailed:             "MESSAGE_SEND_FAILED",
	ErrCodeAlertSendFailed:               "ALERT_SEND_FAILED",
	ErrCodeDatabaseConnectionFailed:      "DATABASE_CONNECTION_FAILED",
	ErrCodeQueryExecutionFailed:          "QUERY_EXECUTION_FAILED",
	ErrCodeQueryTimeout:                  "QUERY_TIMEOUT",
	ErrCodeUnknownQueryType:              "UNKNOWN_QUERY_TYPE",
	ErrCodeElasticsearchConnectionFailed: "ELASTICSEARCH_CONNECTION_FAILED",
	ErrCodeSearchQueryFailed:             "SEARCH_QUERY_FAILED",
	ErrCodeSearchTimeout:                 "SEARCH_TIMEOUT",
	ErrCodeIndexNotFound:                 "INDEX_NOT_FOUND",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeStoreUnavailable,
		ErrCodeListingQueryFailed,
		ErrCodeMessageSendFailed,
		ErrCodeAlertSendFailed,
		ErrCodeDedupeCheckFailed,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeSearchQueryFailed:
		return 3 // Retryable technical errors

	case ErrCodeQueryTimeout,
		ErrCodeSearchTimeout,
		ErrCodeUserLockTimeout:
		return 2 // Partial retry for timeouts

	default:
		return 0 // Business errors: no retry
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code) // Fallback
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "PRICE") || strings.Contains(codeStr, "EMPTY_SEARCH"):
		return "PARSING"
	case strings.Contains(codeStr, "WEBHOOK") || strings.Contains(codeStr, "DUPLICATE") || strings.Contains(codeStr, "DEDUPE"):
		return "INTAKE"
	case strings.Contains(codeStr, "STORE") || strings.Contains(codeStr, "RECORD") || strings.Contains(codeStr, "LISTING"):
		return "RECORD_STORE"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY"):
		return "DATABASE"
	case strings.Contains(codeStr, "ELASTICSEARCH") || strings.Contains(codeStr, "INDEX") || strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "MESSAGE") || strings.Contains(codeStr, "ALERT"):
		return "MESSAGING"
	case strings.Contains(codeStr, "PREVIOUS") || strings.Contains(codeStr, "END_OF") || strings.Contains(codeStr, "LOCK"):
		return "CONVERSATION"
	default:
		return "OTHER"
	}
}
