package sendwhatsappmessage

import "carfind-workers/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"to", "body"},
		Properties: map[string]validation.Property{
			"to": {
				Type:        "string",
				Description: "Recipient WhatsApp id (digits, country code first)",
				Pattern:     strPtr(`^[0-9]{7,15}$`),
			},
			"body": {
				Type:        "string",
				Description: "Message text",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(4096),
			},
		},
		AdditionalProperties: false,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"delivered": {
				Type:        "boolean",
				Description: "Whether the Cloud API accepted the message",
			},
			"messageID": {
				Type:        "string",
				Description: "Provider message id (wamid)",
			},
			"sentAt": {
				Type:        "string",
				Description: "Delivery timestamp (RFC3339)",
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}

func strPtr(s string) *string {
	return &s
}
