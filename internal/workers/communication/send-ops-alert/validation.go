package sendopsalert

import (
	"carfind-workers/internal/common/validation"
	"carfind-workers/internal/models"
)

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"alertType", "severity", "component", "message"},
		Properties: map[string]validation.Property{
			"alertType": {
				Type:        "string",
				Description: "Alert category (worker_failure, store_unavailable, ...)",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(100),
			},
			"severity": {
				Type:        "string",
				Description: "Alert severity",
				Enum: []string{
					models.AlertSeverityInfo,
					models.AlertSeverityWarning,
					models.AlertSeverityCritical,
				},
			},
			"component": {
				Type:        "string",
				Description: "Component the alert is about",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
			"message": {
				Type:        "string",
				Description: "Human-readable alert text",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(2000),
			},
			"metadata": {
				Type:        "object",
				Description: "Additional key/value context rendered into the body",
			},
		},
		AdditionalProperties: false,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"alertID": {
				Type:        "string",
				Description: "Provider id of the alert email",
			},
			"status": {
				Type:        "string",
				Description: "Delivery status",
				Enum:        []string{StatusSent, StatusPartial},
			},
			"sentAt": {
				Type:        "string",
				Description: "Dispatch timestamp (RFC3339)",
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
