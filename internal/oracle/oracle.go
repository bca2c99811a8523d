package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"resume-enhancer/internal/llm"
	"resume-enhancer/internal/shared/telemetry"
	"resume-enhancer/resume/contract"
	"resume-enhancer/resume/model"
)

// Scorer rates a resume against a job description.
type Scorer interface {
	Score(ctx context.Context, in ScoreInput) (ScoreBreakdown, error)
}

// Suggester proposes resume improvements.
type Suggester interface {
	Suggest(ctx context.Context, in SuggestInput) (Suggestions, error)
}

// Rewriter produces an enhanced resume document.
type Rewriter interface {
	Rewrite(ctx context.Context, in RewriteInput) (model.ResumeDocument, error)
}

// ErrEmptyDocument is returned when a rewrite carries no resume content.
var ErrEmptyDocument = errors.New("rewrite returned an empty resume")

// LLM implements Scorer, Suggester and Rewriter on top of a JSON completer.
// Every answer is validated; an invalid answer is retried once with a repair
// instruction.
type LLM struct {
	completer llm.Completer
	mode      contract.Mode
}

// NewLLM builds the oracles. mode controls how strictly rewrite answers are
// decoded.
func NewLLM(completer llm.Completer, mode contract.Mode) *LLM {
	return &LLM{completer: completer, mode: mode}
}

func (o *LLM) Score(ctx context.Context, in ScoreInput) (ScoreBreakdown, error) {
	prompt, err := renderPrompt(llm.PromptScore, map[string]string{
		"RESUME_TEXT":     in.ResumeText,
		"JOB_DESCRIPTION": in.JobDescription,
	})
	if err != nil {
		return ScoreBreakdown{}, err
	}

	req := llm.Request{Name: llm.PromptScore, Prompt: prompt, Schema: ScoreSchema()}
	var out ScoreBreakdown
	err = o.completeValidated(ctx, req, func(raw json.RawMessage) error {
		if err := req.Schema.Validate(raw); err != nil {
			return err
		}
		var parsed ScoreBreakdown
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return fmt.Errorf("unmarshal score: %w", err)
		}
		if err := parsed.Validate(); err != nil {
			return err
		}
		parsed.Available = true
		parsed.Source = "llm"
		out = parsed
		return nil
	})
	return out, err
}

func (o *LLM) Suggest(ctx context.Context, in SuggestInput) (Suggestions, error) {
	prompt, err := renderPrompt(llm.PromptSuggest, map[string]string{
		"RESUME_TEXT":     in.ResumeText,
		"JOB_DESCRIPTION": in.JobDescription,
		"ATS_RESULT":      mustJSON(in.Score),
	})
	if err != nil {
		return Suggestions{}, err
	}

	req := llm.Request{Name: llm.PromptSuggest, Prompt: prompt, Schema: SuggestionsSchema()}
	var out Suggestions
	err = o.completeValidated(ctx, req, func(raw json.RawMessage) error {
		if err := req.Schema.Validate(raw); err != nil {
			return err
		}
		var parsed Suggestions
		if err := json.Unmarshal(raw, &parsed); err != nil {
			return fmt.Errorf("unmarshal suggestions: %w", err)
		}
		out = parsed.Normalize()
		return nil
	})
	return out, err
}

func (o *LLM) Rewrite(ctx context.Context, in RewriteInput) (model.ResumeDocument, error) {
	prompt, err := renderPrompt(llm.PromptRewrite, map[string]string{
		"RESUME_TEXT":     in.ResumeText,
		"JOB_DESCRIPTION": in.JobDescription,
		"ATS_RESULT":      mustJSON(in.Score),
		"SUGGESTIONS":     mustJSON(in.Suggestions),
	})
	if err != nil {
		return model.ResumeDocument{}, err
	}

	req := llm.Request{Name: llm.PromptRewrite, Prompt: prompt, Schema: contract.ResumeSchema()}
	var out model.ResumeDocument
	err = o.completeValidated(ctx, req, func(raw json.RawMessage) error {
		doc, err := contract.Decode(raw, o.mode)
		if err != nil {
			return err
		}
		if isEmptyDocument(doc) {
			return ErrEmptyDocument
		}
		out = doc
		return nil
	})
	return out, err
}

// completeValidated runs req, then accept. When accept rejects the answer the
// request is repeated once with a repair instruction.
func (o *LLM) completeValidated(ctx context.Context, req llm.Request, accept func(json.RawMessage) error) error {
	var hash string
	raw, err := o.completer.CompleteJSON(llm.WithPromptHashSink(ctx, &hash), req)
	if err != nil {
		return err
	}
	if err := accept(raw); err == nil {
		return nil
	} else {
		logRejected(req.Name, 1, hash, err)
	}

	hash = ""
	retryCtx := llm.WithPromptHashSink(llm.WithExtraSystemMessage(ctx, llm.SystemPromptRepair), &hash)
	raw, err = o.completer.CompleteJSON(retryCtx, req)
	if err != nil {
		return err
	}
	if err := accept(raw); err != nil {
		logRejected(req.Name, 2, hash, err)
		return err
	}
	return nil
}

func logRejected(prompt string, attempt int, hash string, err error) {
	fields := map[string]any{"prompt": prompt, "attempt": attempt, "error": err}
	if hash != "" {
		fields["prompt_hash"] = hash
	}
	telemetry.Warn("oracle.validation_failed", fields)
}

func renderPrompt(name string, values map[string]string) (string, error) {
	prompt, ok := llm.RenderPrompt(name, values)
	if !ok {
		return "", fmt.Errorf("unknown prompt %q", name)
	}
	return prompt, nil
}

func mustJSON(v any) string {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "null"
	}
	return string(raw)
}

func isEmptyDocument(doc model.ResumeDocument) bool {
	if strings.TrimSpace(doc.Name) != "" || strings.TrimSpace(doc.ContactInfo) != "" {
		return false
	}
	for _, section := range model.SectionOrder {
		if doc.HasSection(section) {
			return false
		}
	}
	return true
}

var (
	_ Scorer    = (*LLM)(nil)
	_ Suggester = (*LLM)(nil)
	_ Rewriter  = (*LLM)(nil)
)
