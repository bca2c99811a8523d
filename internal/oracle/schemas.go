package oracle

import "resume-enhancer/resume/schema"

// ScoreSchema is the response schema of the scoring prompt.
func ScoreSchema() *schema.Schema {
	score := func(description string) *schema.Schema {
		return &schema.Schema{Type: schema.TypeNumber, Description: description, Minimum: schema.Float(0), Maximum: schema.Float(100)}
	}
	return schema.Object("ATS match score.",
		schema.Prop("overall_match", score("Overall match from 0 to 100.")),
		schema.Prop("skills_match", score("Skills match from 0 to 100.")),
		schema.Prop("experience_match", score("Experience match from 0 to 100.")),
		schema.Prop("education_match", score("Education match from 0 to 100.")),
		schema.Prop("explanations", schema.Object("Reasoning per score.",
			schema.Prop("overall", schema.String("")),
			schema.Prop("skills", schema.String("")),
			schema.Prop("experience", schema.String("")),
			schema.Prop("education", schema.String("")),
		)),
	).RequireAll()
}

// SuggestionsSchema is the response schema of the suggestion prompt.
func SuggestionsSchema() *schema.Schema {
	list := func(description string) *schema.Schema {
		return schema.Array(schema.String(""), description)
	}
	return schema.Object("Resume improvement suggestions.",
		schema.Prop("missing_skills", list("Skills the job needs that the resume lacks.")),
		schema.Prop("emphasize_skills", list("Existing skills to highlight.")),
		schema.Prop("section_reorganization", list("Structural changes.")),
		schema.Prop("other_recommendations", list("Other improvements.")),
	).RequireAll()
}
