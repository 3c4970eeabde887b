package llm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var nullableString = map[string]any{"type": []any{"string", "null"}}
var nullableBool = map[string]any{"type": []any{"boolean", "null"}}
var stringArray = map[string]any{"type": "array", "items": map[string]any{"type": "string"}}

// ExtractionSchema is the contract for extraction replies
var ExtractionSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"summary":               map[string]any{"type": "string"},
		"vesselName":            nullableString,
		"imo":                   nullableString,
		"eventDateText":         nullableString,
		"locationText":          nullableString,
		"counterpartyText":      nullableString,
		"incidentType":          nullableString,
		"allegedCause":          nullableString,
		"pilotInvolved":         nullableBool,
		"pollutionReported":     nullableBool,
		"injuriesReported":      nullableBool,
		"incidentKeywords":      stringArray,
		"immediateActionsTaken": stringArray,
		"missingInfoToRequest":  stringArray,
		"confidence":            map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"warnings":              stringArray,
	},
	"required": []any{"summary", "incidentKeywords"},
}

// ClassificationSchema is the contract for classification replies
var ClassificationSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"businessRole": map[string]any{"type": []any{"string", "null"}},
		"covers": map[string]any{
			"type":     "array",
			"minItems": 1,
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":       map[string]any{"type": "string"},
					"confidence": map[string]any{"type": "number"},
					"reasoning":  map[string]any{"type": "string"},
				},
				"required": []any{"type", "confidence"},
			},
		},
	},
	"required": []any{"covers"},
}

// ValidateJSONAgainstSchema validates data against a JSON schema given as a map
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema resource: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("reply is not valid JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// StripCodeFence removes a surrounding ``` or ```json fence and any prose
// outside the outermost JSON object.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start >= 0 && end > start {
		s = s[start : end+1]
	}
	return strings.TrimSpace(s)
}
