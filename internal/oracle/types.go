package oracle

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// NotAvailable is shown in place of scores that could not be computed.
const NotAvailable = "N/A"

// ScoreBreakdown is the ATS match score of a resume against a job description.
type ScoreBreakdown struct {
	OverallMatch    float64      `json:"overall_match" validate:"gte=0,lte=100"`
	SkillsMatch     float64      `json:"skills_match" validate:"gte=0,lte=100"`
	ExperienceMatch float64      `json:"experience_match" validate:"gte=0,lte=100"`
	EducationMatch  float64      `json:"education_match" validate:"gte=0,lte=100"`
	Explanations    Explanations `json:"explanations"`
	// Available is false when scoring failed and the scores are placeholders.
	Available bool   `json:"available"`
	Source    string `json:"source,omitempty"`
}

// Explanations holds the reasoning behind each score.
type Explanations struct {
	Overall    string `json:"overall"`
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
}

// UnmarshalJSON also accepts a single string, which becomes Overall.
func (e *Explanations) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*e = Explanations{Overall: text}
		return nil
	}
	type plain Explanations
	var out plain
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*e = Explanations(out)
	return nil
}

// Unavailable is the fallback breakdown used when scoring fails.
func Unavailable(reason string) ScoreBreakdown {
	return ScoreBreakdown{Explanations: Explanations{Overall: reason}}
}

// MarshalJSON renders placeholder scores as "N/A" when the breakdown is
// unavailable.
func (s ScoreBreakdown) MarshalJSON() ([]byte, error) {
	type plain ScoreBreakdown
	if s.Available {
		return json.Marshal(plain(s))
	}
	return json.Marshal(struct {
		OverallMatch    string       `json:"overall_match"`
		SkillsMatch     string       `json:"skills_match"`
		ExperienceMatch string       `json:"experience_match"`
		EducationMatch  string       `json:"education_match"`
		Explanations    Explanations `json:"explanations"`
		Available       bool         `json:"available"`
		Source          string       `json:"source,omitempty"`
	}{NotAvailable, NotAvailable, NotAvailable, NotAvailable, s.Explanations, false, s.Source})
}

// Validate checks score ranges.
func (s ScoreBreakdown) Validate() error {
	return validate.Struct(s)
}

// Suggestions are structured improvement hints for a resume.
type Suggestions struct {
	MissingSkills         []string `json:"missing_skills"`
	EmphasizeSkills       []string `json:"emphasize_skills"`
	SectionReorganization []string `json:"section_reorganization"`
	OtherRecommendations  []string `json:"other_recommendations"`
}

// EmptySuggestions is the fallback used when the suggestion oracle fails.
func EmptySuggestions() Suggestions {
	return Suggestions{}.Normalize()
}

// Normalize replaces nil lists with empty ones.
func (s Suggestions) Normalize() Suggestions {
	if s.MissingSkills == nil {
		s.MissingSkills = []string{}
	}
	if s.EmphasizeSkills == nil {
		s.EmphasizeSkills = []string{}
	}
	if s.SectionReorganization == nil {
		s.SectionReorganization = []string{}
	}
	if s.OtherRecommendations == nil {
		s.OtherRecommendations = []string{}
	}
	return s
}

// ScoreInput is what a Scorer compares. FileName and FileData carry the
// original upload for scorers that work on files.
type ScoreInput struct {
	ResumeText     string
	JobDescription string
	FileName       string
	FileData       []byte
}

// SuggestInput is what a Suggester reviews.
type SuggestInput struct {
	ResumeText     string
	JobDescription string
	Score          ScoreBreakdown
}

// RewriteInput is what a Rewriter turns into an enhanced document.
type RewriteInput struct {
	ResumeText     string
	JobDescription string
	Score          ScoreBreakdown
	Suggestions    Suggestions
}
