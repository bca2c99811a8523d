package llm

import (
	_ "embed"
	"strings"
)

var (
	//go:embed prompts/score_v1.txt
	promptScoreV1 string
	//go:embed prompts/suggest_v1.txt
	promptSuggestV1 string
	//go:embed prompts/rewrite_v1.txt
	promptRewriteV1 string
)

// Prompt names.
const (
	PromptScore   = "score"
	PromptSuggest = "suggest"
	PromptRewrite = "rewrite"
)

// SystemPromptJSON is sent with every oracle request.
const SystemPromptJSON = "You are a resume analysis engine. Respond with JSON only. No markdown. Never omit keys. Output must match the schema exactly."

// SystemPromptRepair is added when a previous answer failed validation.
const SystemPromptRepair = "Your previous answer did not match the schema. Fix the JSON: use the exact keys, the declared types and keep numbers within their ranges."

// PromptTemplate returns the template text and whether the name was recognized.
func PromptTemplate(name string) (string, bool) {
	switch name {
	case PromptScore:
		return promptScoreV1, true
	case PromptSuggest:
		return promptSuggestV1, true
	case PromptRewrite:
		return promptRewriteV1, true
	default:
		return "", false
	}
}

// RenderPrompt fills {{KEY}} placeholders of the named template.
func RenderPrompt(name string, values map[string]string) (string, bool) {
	template, ok := PromptTemplate(name)
	if !ok {
		return "", false
	}
	pairs := make([]string, 0, len(values)*2)
	for key, value := range values {
		if strings.TrimSpace(value) == "" {
			value = "N/A"
		}
		pairs = append(pairs, "{{"+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template), true
}
