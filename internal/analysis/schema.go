package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ResumeAnalysis is the structured verdict the model must return for one
// resume: the candidate name, the skills in model output order, and
// whether the candidate matches the job description.
type ResumeAnalysis struct {
	Name    string   `json:"name"`
	Skills  []string `json:"skills"`
	IsMatch bool     `json:"is_match"`
}

// SchemaError indicates that a model response did not fit the declared
// output schema. It is distinct from transport errors so callers can tell
// a bad answer from a failed request.
type SchemaError struct {
	Reason string
	Raw    string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("response does not match the output schema: %s", e.Reason)
}

// schemaField describes one required field of the output contract.
type schemaField struct {
	Name        string
	Type        string
	Description string
}

// outputSchema is the declared shape of the model response. Order matters
// only for the rendered instructions.
var outputSchema = []schemaField{
	{Name: "name", Type: "string", Description: "The full name of the candidate"},
	{Name: "skills", Type: "array of strings", Description: "A list of skills extracted from the resume"},
	{Name: "is_match", Type: "boolean", Description: "Whether the candidate is a good match for the job (true/false)"},
}

// formatInstructions renders the output contract as machine-generated
// prompt text: a JSON schema with every field required, plus per-field
// descriptions.
func formatInstructions(fields []schemaField) string {
	properties := make(map[string]any, len(fields))
	required := make([]string, 0, len(fields))

	for _, field := range fields {
		prop := map[string]any{"description": field.Description}
		switch field.Type {
		case "array of strings":
			prop["type"] = "array"
			prop["items"] = map[string]any{"type": "string"}
		default:
			prop["type"] = field.Type
		}
		properties[field.Name] = prop
		required = append(required, field.Name)
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}

	// Marshalling a literal map cannot fail here.
	rendered, _ := json.MarshalIndent(schema, "", "  ")

	var b strings.Builder
	b.WriteString("The output must be a single JSON object that conforms to the JSON schema below.\n")
	b.WriteString("Do not add fields, commentary, or markdown outside the JSON object.\n\n")
	b.WriteString("Output schema:\n")
	b.Write(rendered)

	return b.String()
}

// parseResponse validates the raw model output against the schema and
// returns the typed analysis. Markdown code fences around the JSON are
// tolerated; anything else that deviates from the schema is a *SchemaError.
func parseResponse(raw string) (*ResumeAnalysis, error) {
	cleaned := extractJSON(raw)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &fields); err != nil {
		return nil, &SchemaError{Reason: fmt.Sprintf("malformed JSON: %v", err), Raw: raw}
	}

	result := &ResumeAnalysis{}

	nameRaw, ok := fields["name"]
	if !ok {
		return nil, &SchemaError{Reason: "missing required field \"name\"", Raw: raw}
	}
	if err := json.Unmarshal(nameRaw, &result.Name); err != nil {
		return nil, &SchemaError{Reason: "field \"name\" is not a string", Raw: raw}
	}

	skillsRaw, ok := fields["skills"]
	if !ok {
		return nil, &SchemaError{Reason: "missing required field \"skills\"", Raw: raw}
	}
	if err := json.Unmarshal(skillsRaw, &result.Skills); err != nil {
		return nil, &SchemaError{Reason: "field \"skills\" is not an array of strings", Raw: raw}
	}

	matchRaw, ok := fields["is_match"]
	if !ok {
		return nil, &SchemaError{Reason: "missing required field \"is_match\"", Raw: raw}
	}
	if err := json.Unmarshal(matchRaw, &result.IsMatch); err != nil {
		return nil, &SchemaError{Reason: "field \"is_match\" is not a boolean", Raw: raw}
	}

	return result, nil
}

// extractJSON strips markdown code fences that models wrap JSON payloads in.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}
