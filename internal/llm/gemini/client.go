package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"resume-enhancer/internal/llm"
	"resume-enhancer/internal/shared/telemetry"
	"resume-enhancer/internal/shared/util"
	"resume-enhancer/resume/contract"
	"resume-enhancer/resume/schema"
)

// DefaultModel is used when LLM_MODEL is empty.
const DefaultModel = "gemini-2.5-flash"

// generator is the part of *genai.Models the client uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Client implements llm.Completer using the Gemini API with schema-constrained
// JSON output.
type Client struct {
	models generator
	model  string
}

// NewClient constructs a Gemini client for the Gemini Developer API.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{models: client.Models, model: model}, nil
}

// CompleteJSON asks the model for a JSON document matching req.Schema.
func (c *Client) CompleteJSON(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	system := req.System
	if strings.TrimSpace(system) == "" {
		system = llm.SystemPromptJSON
	}
	if extra, ok := llm.ExtraSystemMessageFromContext(ctx); ok && strings.TrimSpace(extra) != "" {
		system = extra + "\n\n" + system
	}
	if sink, ok := llm.PromptHashSinkFromContext(ctx); ok && sink != nil {
		*sink = util.SHA256Hex([]byte(system + "\n\n" + req.Prompt))
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType:  "application/json",
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: system}}},
		Temperature:       genai.Ptr[float32](0),
	}
	if req.Schema != nil {
		config.ResponseSchema = ToGenaiSchema(req.Schema)
	}

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.Prompt), config)
	if err != nil {
		return nil, classifyError(err)
	}
	if resp == nil {
		return nil, fmt.Errorf("gemini %s: %w", req.Name, llm.ErrEmptyResponse)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, fmt.Errorf("gemini prompt blocked (%s): %w", resp.PromptFeedback.BlockReason, llm.ErrBlocked)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason == genai.FinishReasonSafety {
			return nil, fmt.Errorf("gemini candidate stopped (%s): %w", resp.Candidates[0].FinishReason, llm.ErrBlocked)
		}
		return nil, fmt.Errorf("gemini %s: %w", req.Name, llm.ErrEmptyResponse)
	}
	logUsage(c.model, req.Name, resp.UsageMetadata)

	text := strings.TrimSpace(contract.CleanJSON(resp.Text()))
	if text == "" {
		return nil, fmt.Errorf("gemini %s: %w", req.Name, llm.ErrEmptyResponse)
	}
	if !json.Valid([]byte(text)) {
		return nil, fmt.Errorf("gemini %s: %w", req.Name, llm.ErrInvalidJSON)
	}
	return json.RawMessage(text), nil
}

// classifyError maps quota exhaustion to llm.ErrRateLimited.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && isQuotaError(apiErr.Code, apiErr.Status) {
		return fmt.Errorf("gemini: %s: %w", apiErr.Message, llm.ErrRateLimited)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil && isQuotaError(apiErrPtr.Code, apiErrPtr.Status) {
		return fmt.Errorf("gemini: %s: %w", apiErrPtr.Message, llm.ErrRateLimited)
	}
	if llm.IsRateLimited(err) {
		return fmt.Errorf("gemini: %v: %w", err, llm.ErrRateLimited)
	}
	return fmt.Errorf("gemini generate content: %w", err)
}

func isQuotaError(code int, status string) bool {
	return code == http.StatusTooManyRequests || strings.EqualFold(status, "RESOURCE_EXHAUSTED")
}

// ToGenaiSchema converts a schema description into the Gemini response schema.
func ToGenaiSchema(s *schema.Schema) *genai.Schema {
	if s == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        genaiType(s.Type),
		Description: s.Description,
		Minimum:     s.Minimum,
		Maximum:     s.Maximum,
	}
	if s.Nullable {
		out.Nullable = genai.Ptr(true)
	}
	if s.Items != nil {
		out.Items = ToGenaiSchema(s.Items)
	}
	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for _, p := range s.Properties {
			out.Properties[p.Name] = ToGenaiSchema(p.Schema)
		}
		out.PropertyOrdering = s.PropertyNames()
	}
	if len(s.Required) > 0 {
		out.Required = append([]string(nil), s.Required...)
	}
	return out
}

func genaiType(t schema.Type) genai.Type {
	switch t {
	case schema.TypeString:
		return genai.TypeString
	case schema.TypeNumber:
		return genai.TypeNumber
	case schema.TypeInteger:
		return genai.TypeInteger
	case schema.TypeBoolean:
		return genai.TypeBoolean
	case schema.TypeArray:
		return genai.TypeArray
	default:
		return genai.TypeObject
	}
}

func logUsage(model, prompt string, usage *genai.GenerateContentResponseUsageMetadata) {
	fields := map[string]any{"provider": "gemini", "model": model, "prompt": prompt}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokenCount
		fields["completion_tokens"] = usage.CandidatesTokenCount
		fields["total_tokens"] = usage.TotalTokenCount
	}
	telemetry.Info("llm.response", fields)
}

var _ llm.Completer = (*Client)(nil)
