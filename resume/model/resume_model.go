package model

import "strings"

// ResumeDocument is the canonical structured resume consumed by both renderers.
// Values are treated as immutable once built; renderers only read them.
type ResumeDocument struct {
	Name             string            `json:"name"`
	ContactInfo      string            `json:"contact_info"`
	Summary          string            `json:"summary"`
	Skills           []string          `json:"skills"`
	Experience       []ExperienceEntry `json:"experience"`
	Education        []EducationEntry  `json:"education"`
	SelectedProjects []string          `json:"selected_projects"`
}

// ExperienceEntry represents a work history entry.
type ExperienceEntry struct {
	Title            string   `json:"title"`
	Company          string   `json:"company"`
	Location         string   `json:"location"`
	Duration         string   `json:"duration"`
	Responsibilities []string `json:"responsibilities"`
}

// EducationEntry represents an education entry.
type EducationEntry struct {
	Degree         string `json:"degree"`
	Institution    string `json:"institution"`
	GraduationYear string `json:"graduation_year"`
}

// Section names in emission order.
const (
	SectionSummary    = "Summary"
	SectionSkills     = "Skills"
	SectionExperience = "Experience"
	SectionEducation  = "Education"
	SectionProjects   = "Selected Projects"
)

// SectionOrder is the fixed order sections are emitted in after the header.
var SectionOrder = []string{
	SectionSummary,
	SectionSkills,
	SectionExperience,
	SectionEducation,
	SectionProjects,
}

// HasSummary reports a non-empty summary; whitespace-only counts as empty.
func (d ResumeDocument) HasSummary() bool { return strings.TrimSpace(d.Summary) != "" }

// HasSkills reports whether at least one skill is listed.
func (d ResumeDocument) HasSkills() bool { return len(d.Skills) > 0 }

// HasExperience reports whether at least one experience entry is present.
func (d ResumeDocument) HasExperience() bool { return len(d.Experience) > 0 }

// HasEducation reports whether at least one education entry is present.
func (d ResumeDocument) HasEducation() bool { return len(d.Education) > 0 }

// HasProjects reports whether at least one selected project is listed.
func (d ResumeDocument) HasProjects() bool { return len(d.SelectedProjects) > 0 }

// HasSection reports whether the named section has content to emit.
func (d ResumeDocument) HasSection(name string) bool {
	switch name {
	case SectionSummary:
		return d.HasSummary()
	case SectionSkills:
		return d.HasSkills()
	case SectionExperience:
		return d.HasExperience()
	case SectionEducation:
		return d.HasEducation()
	case SectionProjects:
		return d.HasProjects()
	default:
		return false
	}
}

// Clone returns a deep copy so callers can hand the document to concurrent
// consumers without sharing slices.
func (d ResumeDocument) Clone() ResumeDocument {
	out := d
	out.Skills = cloneStrings(d.Skills)
	out.SelectedProjects = cloneStrings(d.SelectedProjects)
	if d.Experience != nil {
		out.Experience = make([]ExperienceEntry, len(d.Experience))
		for i, exp := range d.Experience {
			exp.Responsibilities = cloneStrings(exp.Responsibilities)
			out.Experience[i] = exp
		}
	}
	if d.Education != nil {
		out.Education = append([]EducationEntry(nil), d.Education...)
	}
	return out
}

// Normalize replaces nil collections with empty ones so JSON output always
// carries arrays instead of null.
func (d ResumeDocument) Normalize() ResumeDocument {
	out := d.Clone()
	if out.Skills == nil {
		out.Skills = []string{}
	}
	if out.SelectedProjects == nil {
		out.SelectedProjects = []string{}
	}
	if out.Experience == nil {
		out.Experience = []ExperienceEntry{}
	}
	if out.Education == nil {
		out.Education = []EducationEntry{}
	}
	for i := range out.Experience {
		if out.Experience[i].Responsibilities == nil {
			out.Experience[i].Responsibilities = []string{}
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
