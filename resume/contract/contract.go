package contract

import (
	"encoding/json"
	"errors"
	"strings"

	"resume-enhancer/resume/model"
	"resume-enhancer/resume/schema"
)

// Mode selects how absent fields are treated while decoding.
type Mode int

const (
	// Lenient normalizes absent fields to empty defaults.
	Lenient Mode = iota
	// Strict reports absent required fields as malformed input.
	Strict
)

// ErrMalformedInput matches every MalformedInputError.
var ErrMalformedInput = errors.New("malformed resume document")

// MalformedInputError is returned when a payload does not have the
// ResumeDocument shape.
type MalformedInputError struct {
	Fields []schema.FieldError
}

func (e *MalformedInputError) Error() string {
	if len(e.Fields) == 0 {
		return ErrMalformedInput.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrMalformedInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

// ResumeSchema describes the ResumeDocument wire shape with every field
// required. String fields accept null, which decodes to "".
func ResumeSchema() *schema.Schema {
	text := func(description string) *schema.Schema {
		return &schema.Schema{Type: schema.TypeString, Description: description, Nullable: true}
	}
	list := func(description string) *schema.Schema {
		return &schema.Schema{Type: schema.TypeArray, Items: schema.String(""), Description: description, Nullable: true}
	}

	experience := schema.Object("One job, most recent first.",
		schema.Prop("title", text("Job title.")),
		schema.Prop("company", text("Employer name.")),
		schema.Prop("location", text("City or remote.")),
		schema.Prop("duration", text("Date range, e.g. 2020 - 2023.")),
		schema.Prop("responsibilities", list("Achievement-oriented bullet points.")),
	)
	education := schema.Object("One degree.",
		schema.Prop("degree", text("Degree and field.")),
		schema.Prop("institution", text("School name.")),
		schema.Prop("graduation_year", text("Year of graduation.")),
	)

	root := schema.Object("Enhanced resume tailored to the job description.",
		schema.Prop("name", text("Candidate full name.")),
		schema.Prop("contact_info", text("Single line of contact details.")),
		schema.Prop("summary", text("Professional summary paragraph.")),
		schema.Prop("skills", list("Skills ordered by relevance.")),
		schema.Prop("experience", &schema.Schema{Type: schema.TypeArray, Items: experience, Nullable: true}),
		schema.Prop("education", &schema.Schema{Type: schema.TypeArray, Items: education, Nullable: true}),
		schema.Prop("selected_projects", list("Short project descriptions.")),
	)
	return root.RequireAll()
}

// Decode validates raw oracle JSON and maps it into a ResumeDocument.
// Structurally wrong types (a scalar where a list or object is expected, or
// the reverse) are always malformed. Absent fields are malformed only in
// Strict mode. In Lenient mode absent fields become empty defaults and numbers
// or booleans in string fields become their text form.
func Decode(raw []byte, mode Mode) (model.ResumeDocument, error) {
	cleaned := []byte(CleanJSON(string(raw)))

	s := ResumeSchema()
	if mode == Lenient {
		s = s.Lenient()
		cleaned = s.CoerceScalars(cleaned)
	}
	if err := s.Validate(cleaned); err != nil {
		var ve *schema.ValidationError
		if errors.As(err, &ve) {
			return model.ResumeDocument{}, &MalformedInputError{Fields: ve.Errors}
		}
		return model.ResumeDocument{}, err
	}

	var doc model.ResumeDocument
	if err := json.Unmarshal(cleaned, &doc); err != nil {
		return model.ResumeDocument{}, &MalformedInputError{Fields: []schema.FieldError{{Field: "(root)", Message: err.Error()}}}
	}
	return doc.Normalize(), nil
}

// CleanJSON strips markdown code fences and surrounding prose that models
// sometimes wrap around a JSON object.
func CleanJSON(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```JSON")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return trimmed
	}
	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start >= 0 && end > start {
		return trimmed[start : end+1]
	}
	return trimmed
}
