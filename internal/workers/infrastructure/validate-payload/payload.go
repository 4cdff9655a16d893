// internal/workers/infrastructure/validate-payload/payload.go
package validatepayload

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// webhookSchema describes the minimum shape of a WhatsApp Cloud API
// webhook that carries a user message. Status-only deliveries (value has
// statuses but no messages) fail the messages requirement on purpose.
var webhookSchema = map[string]interface{}{
	"type":     "object",
	"required": []interface{}{"object", "entry"},
	"properties": map[string]interface{}{
		"object": map[string]interface{}{
			"type": "string",
		},
		"entry": map[string]interface{}{
			"type":     "array",
			"minItems": 1,
			"items": map[string]interface{}{
				"type":     "object",
				"required": []interface{}{"changes"},
				"properties": map[string]interface{}{
					"changes": map[string]interface{}{
						"type":     "array",
						"minItems": 1,
						"items": map[string]interface{}{
							"type":     "object",
							"required": []interface{}{"value"},
							"properties": map[string]interface{}{
								"value": map[string]interface{}{
									"type":     "object",
									"required": []interface{}{"messages"},
									"properties": map[string]interface{}{
										"messages": map[string]interface{}{
											"type":     "array",
											"minItems": 1,
											"items": map[string]interface{}{
												"type":     "object",
												"required": []interface{}{"id", "from", "type"},
											},
										},
										"contacts": map[string]interface{}{
											"type": "array",
										},
									},
								},
							},
						},
					},
				},
			},
		},
	},
}

func validateWebhook(payload map[string]interface{}) error {
	schemaLoader := gojsonschema.NewGoLoader(webhookSchema)
	documentLoader := gojsonschema.NewGoLoader(payload)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("webhook validation failed: %v", errs)
	}

	return nil
}

// extractEnvelope pulls the first message out of an already-validated
// payload. Text content is optional: media messages come through with an
// empty messageText and classify as unknown downstream.
func extractEnvelope(payload map[string]interface{}) *Output {
	value := firstChangeValue(payload)

	messages, _ := value["messages"].([]interface{})
	message, _ := messages[0].(map[string]interface{})

	out := &Output{
		WaID:      stringField(message, "from"),
		MessageID: stringField(message, "id"),
		Timestamp: stringField(message, "timestamp"),
	}

	if text, ok := message["text"].(map[string]interface{}); ok {
		out.MessageText = stringField(text, "body")
	}

	if contacts, ok := value["contacts"].([]interface{}); ok && len(contacts) > 0 {
		if contact, ok := contacts[0].(map[string]interface{}); ok {
			if profile, ok := contact["profile"].(map[string]interface{}); ok {
				out.ProfileName = stringField(profile, "name")
			}
		}
	}

	return out
}

func firstChangeValue(payload map[string]interface{}) map[string]interface{} {
	entries, _ := payload["entry"].([]interface{})
	entry, _ := entries[0].(map[string]interface{})
	changes, _ := entry["changes"].([]interface{})
	change, _ := changes[0].(map[string]interface{})
	value, _ := change["value"].(map[string]interface{})
	return value
}

func stringField(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
