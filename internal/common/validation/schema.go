// Package validation checks job variables against JSON Schema documents
// before they are decoded into worker input structs.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	schema *gojsonschema.Schema
}

// Compile parses a JSON Schema document.
func Compile(schemaJSON string) (*Schema, error) {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Schema{schema: s}, nil
}

// MustCompile is Compile for package-level schemas.
func MustCompile(schemaJSON string) *Schema {
	s, err := Compile(schemaJSON)
	if err != nil {
		panic(err)
	}
	return s
}

// ValidateInput checks a decoded variables map.
func (s *Schema) ValidateInput(input map[string]interface{}) *ValidationResult {
	if input == nil {
		input = map[string]interface{}{}
	}
	return s.validate(gojsonschema.NewGoLoader(input))
}

// ValidateJSON checks a raw JSON document.
func (s *Schema) ValidateJSON(document string) *ValidationResult {
	return s.validate(gojsonschema.NewStringLoader(document))
}

func (s *Schema) validate(doc gojsonschema.JSONLoader) *ValidationResult {
	result, err := s.schema.Validate(doc)
	if err != nil {
		return &ValidationResult{Errors: []ValidationError{{
			Field:   "(root)",
			Message: err.Error(),
			Code:    "MALFORMED_DOCUMENT",
		}}}
	}

	out := &ValidationResult{Valid: result.Valid()}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, ValidationError{
			Field:   fieldPath(re),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	return out
}

// fieldPath names the offending property, including the missing one for
// "required" failures.
func fieldPath(re gojsonschema.ResultError) string {
	field := re.Field()
	if re.Type() != "required" {
		return field
	}
	prop, ok := re.Details()["property"].(string)
	if !ok {
		return field
	}
	if field == "(root)" {
		return prop
	}
	return field + "." + prop
}

// GetErrorMessages renders "field: message" lines.
func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	return len(vr.GetErrorsForField(field)) > 0
}

// GetErrorsForField returns errors on field or anything nested below it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}
