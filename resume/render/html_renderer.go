package render

import (
	"strings"

	"resume-enhancer/resume/model"
)

// RenderHTML renders a ResumeDocument into an HTML fragment for inline preview.
// The header block is always emitted; every other section is omitted when empty.
func RenderHTML(doc model.ResumeDocument) string {
	var w htmlWriter

	w.line("<h1 style='" + htmlNameStyle + "'>" + escapeText(doc.Name) + "</h1>")
	w.line("<p style='" + htmlContactStyle + "'>" + escapeText(doc.ContactInfo) + "</p>")
	w.line("<hr style='" + htmlRuleStyle + "'>")

	for _, section := range model.SectionOrder {
		if !doc.HasSection(section) {
			continue
		}
		w.line("<h3 style='" + htmlHeadingStyle + "'>" + section + "</h3>")
		switch section {
		case model.SectionSummary:
			w.line("<p style='" + htmlSummaryStyle + "'>" + escapeText(doc.Summary) + "</p>")
		case model.SectionSkills:
			w.list(doc.Skills)
		case model.SectionExperience:
			for _, exp := range doc.Experience {
				w.line("<p style='" + htmlEntryStyle + "'><b>" + composeEscaped(ExperienceTitleLine, exp) + "</b></p>")
				if len(exp.Responsibilities) > 0 {
					w.list(exp.Responsibilities)
				}
			}
		case model.SectionEducation:
			for _, edu := range doc.Education {
				w.line("<p style='" + htmlEntryStyle + "'>" + composeEscaped(EducationLine, edu) + "</p>")
			}
		case model.SectionProjects:
			w.list(doc.SelectedProjects)
		}
	}

	return w.String()
}

type htmlWriter struct {
	parts []string
}

func (w *htmlWriter) line(fragment string) {
	w.parts = append(w.parts, fragment)
}

func (w *htmlWriter) list(items []string) {
	w.line("<ul style='" + htmlListStyle + "'>")
	for _, item := range items {
		w.line("<li>" + escapeText(item) + "</li>")
	}
	w.line("</ul>")
}

func (w *htmlWriter) String() string {
	return strings.Join(w.parts, "\n")
}
