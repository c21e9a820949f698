package validation

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks documents against a compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Compile parses schemaJSON once so it can be reused across calls.
func Compile(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// MustCompile is Compile for schemas embedded in the binary.
func MustCompile(schemaJSON string) *Validator {
	v, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return v
}

// ValidateJSON validates a raw JSON document.
func (v *Validator) ValidateJSON(doc []byte) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewBytesLoader(doc))
}

// ValidateInput validates already-decoded job variables.
func (v *Validator) ValidateInput(input map[string]interface{}) (*ValidationResult, error) {
	return v.validate(gojsonschema.NewGoLoader(input))
}

func (v *Validator) validate(doc gojsonschema.JSONLoader) (*ValidationResult, error) {
	result, err := v.schema.Validate(doc)
	if err != nil {
		return nil, fmt.Errorf("validation error: %w", err)
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, desc := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   desc.Field(),
			Message: desc.Description(),
			Code:    desc.Type(),
		})
	}
	return out, nil
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, 0, len(vr.Errors))
	for _, e := range vr.Errors {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, e := range vr.Errors {
		if e.Field == field {
			return true
		}
	}
	return false
}
