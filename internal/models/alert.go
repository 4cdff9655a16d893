package models

// Ops alert severities. Critical alerts additionally page via SMS.
const (
	AlertSeverityInfo     = "info"
	AlertSeverityWarning  = "warning"
	AlertSeverityCritical = "critical"
)

// OpsAlert describes an operator notification about a failing component.
type OpsAlert struct {
	ID        string                 `json:"id"`
	AlertType string                 `json:"alertType"`
	Severity  string                 `json:"severity"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	SentAt    string                 `json:"sentAt"`
}
