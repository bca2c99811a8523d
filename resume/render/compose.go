package render

import (
	"html"

	"resume-enhancer/resume/model"
)

// ExperienceTitleLine composes the display line of an experience entry.
func ExperienceTitleLine(exp model.ExperienceEntry) string {
	return exp.Title + " – " + exp.Company + " | " + exp.Location + " (" + exp.Duration + ")"
}

// EducationLine composes the display line of an education entry.
func EducationLine(edu model.EducationEntry) string {
	return edu.Degree + " – " + edu.Institution + " (" + edu.GraduationYear + ")"
}

// escapeText is the only path untrusted text takes into HTML output.
func escapeText(text string) string {
	return html.EscapeString(text)
}

// composeEscaped builds a composite line from raw subfields and escapes the
// result exactly once.
func composeEscaped[T any](compose func(T) string, value T) string {
	return escapeText(compose(value))
}
