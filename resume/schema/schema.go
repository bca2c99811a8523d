package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Type is a JSON schema primitive type.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
	TypeObject  Type = "object"
)

// Schema is the subset of JSON schema shared by payload validation and the
// structured-output settings sent to model providers.
type Schema struct {
	Type        Type
	Description string
	// Properties are emitted in slice order.
	Properties []Property
	Items      *Schema
	Required   []string
	Nullable   bool
	Minimum    *float64
	Maximum    *float64
}

// Property is a named object member.
type Property struct {
	Name   string
	Schema *Schema
}

// FieldError describes a single validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every failure found in a payload.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "schema validation failed"
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Float returns a pointer to v for Minimum/Maximum.
func Float(v float64) *float64 { return &v }

// String, Array and Object are shorthands used to build schemas.
func String(description string) *Schema {
	return &Schema{Type: TypeString, Description: description}
}

func Array(items *Schema, description string) *Schema {
	return &Schema{Type: TypeArray, Items: items, Description: description}
}

func Object(description string, props ...Property) *Schema {
	return &Schema{Type: TypeObject, Description: description, Properties: props}
}

// Prop builds a Property.
func Prop(name string, s *Schema) Property {
	return Property{Name: name, Schema: s}
}

// PropertyNames returns property names in declaration order.
func (s *Schema) PropertyNames() []string {
	names := make([]string, 0, len(s.Properties))
	for _, p := range s.Properties {
		names = append(names, p.Name)
	}
	return names
}

// RequireAll marks every property of s (recursively) as required.
func (s *Schema) RequireAll() *Schema {
	if s == nil {
		return s
	}
	if s.Type == TypeObject {
		s.Required = s.PropertyNames()
		for _, p := range s.Properties {
			p.Schema.RequireAll()
		}
	}
	if s.Items != nil {
		s.Items.RequireAll()
	}
	return s
}

// Lenient returns a deep copy of s with every required list dropped.
func (s *Schema) Lenient() *Schema {
	if s == nil {
		return nil
	}
	out := *s
	out.Required = nil
	out.Items = s.Items.Lenient()
	if s.Properties != nil {
		out.Properties = make([]Property, len(s.Properties))
		for i, p := range s.Properties {
			out.Properties[i] = Property{Name: p.Name, Schema: p.Schema.Lenient()}
		}
	}
	return &out
}

// JSONSchema renders s as a draft-07 JSON schema document.
func (s *Schema) JSONSchema() map[string]any {
	out := s.jsonSchema()
	out["$schema"] = "http://json-schema.org/draft-07/schema#"
	return out
}

func (s *Schema) jsonSchema() map[string]any {
	out := map[string]any{}
	if s.Nullable {
		out["type"] = []any{string(s.Type), "null"}
	} else {
		out["type"] = string(s.Type)
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	if s.Items != nil {
		out["items"] = s.Items.jsonSchema()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for _, p := range s.Properties {
			props[p.Name] = p.Schema.jsonSchema()
		}
		out["properties"] = props
	}
	if len(s.Required) > 0 {
		required := make([]any, 0, len(s.Required))
		for _, r := range s.Required {
			required = append(required, r)
		}
		out["required"] = required
	}
	return out
}

// MarshalIndent returns the JSON schema as indented JSON, used when a provider
// only accepts the schema as prompt text.
func (s *Schema) MarshalIndent() (string, error) {
	raw, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// Validate checks raw JSON against s. Syntax errors and schema violations are
// both reported as *ValidationError.
func (s *Schema) Validate(raw []byte) error {
	if s == nil {
		return errors.New("schema is nil")
	}
	if !json.Valid(raw) {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: "invalid JSON"}}}
	}
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(s.JSONSchema()))
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	result, err := compiled.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return &ValidationError{Errors: []FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	if result.Valid() {
		return nil
	}
	fieldErrors := make([]FieldError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		fieldErrors = append(fieldErrors, FieldError{Field: re.Field(), Message: re.Description()})
	}
	sort.SliceStable(fieldErrors, func(i, j int) bool {
		return fieldErrors[i].Field < fieldErrors[j].Field
	})
	return &ValidationError{Errors: fieldErrors}
}
