package openai

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"resume-enhancer/internal/llm"
	"resume-enhancer/internal/shared/telemetry"
	"resume-enhancer/resume/contract"
)

var apiURL = "https://api.openai.com/v1/chat/completions"

// Client implements llm.Completer using OpenAI Chat Completions.
type Client struct {
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a new OpenAI client. OPENAI_TIMEOUT_SECONDS overrides
// the default 120s request timeout.
func NewClient(apiKey, model string) (*Client, error) {
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is required")
	}
	timeout := 120 * time.Second
	if raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS")); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			timeout = time.Duration(parsed) * time.Second
		}
	}
	return &Client{
		apiKey: apiKey,
		model:  model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    *float32       `json:"temperature,omitempty"`
	ResponseFormat responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponseUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *chatResponseUsage `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// CompleteJSON sends the request and returns the JSON content of the first
// choice. Models that reject temperature 0 are retried once without it.
func (c *Client) CompleteJSON(ctx context.Context, req llm.Request) (json.RawMessage, error) {
	messages, err := BuildMessages(req)
	if err != nil {
		return nil, err
	}
	if extra, ok := llm.ExtraSystemMessageFromContext(ctx); ok && strings.TrimSpace(extra) != "" {
		messages = prependSystemMessage(messages, extra)
	}
	if sink, ok := llm.PromptHashSinkFromContext(ctx); ok && sink != nil {
		*sink = hashPromptString(promptStringFromMessages(messages))
	}

	withTemp := !noTemperatureModel(c.model)
	raw, usage, err := c.completeOnce(ctx, messages, withTemp)
	if err != nil && withTemp && isTemperatureUnsupported(err) {
		raw, usage, err = c.completeOnce(ctx, messages, false)
	}
	if err != nil {
		return nil, err
	}
	logUsage(c.model, req.Name, usage)

	if !json.Valid(raw) {
		return nil, fmt.Errorf("openai %s: %w", req.Name, llm.ErrInvalidJSON)
	}
	return raw, nil
}

func (c *Client) completeOnce(ctx context.Context, messages []Message, withTemp bool) (json.RawMessage, *chatResponseUsage, error) {
	reqMessages := make([]chatMessage, 0, len(messages))
	for _, m := range messages {
		reqMessages = append(reqMessages, chatMessage{Role: m.Role, Content: m.Content})
	}
	reqBody := chatRequest{
		Model:    c.model,
		Messages: reqMessages,
		ResponseFormat: responseFormat{
			Type: "json_object",
		},
	}
	if withTemp {
		temp := float32(0)
		reqBody.Temperature = &temp
	}
	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, nil, err
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, nil, fmt.Errorf("openai request timeout: %w", err)
		}
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, nil, fmt.Errorf("openai http status %d: %w", resp.StatusCode, llm.ErrRateLimited)
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		if resp.StatusCode >= 400 {
			return nil, nil, fmt.Errorf("openai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil, nil, fmt.Errorf("openai response parse: %w", err)
	}
	if parsed.Error != nil {
		if parsed.Error.Code == "rate_limit_exceeded" {
			return nil, nil, fmt.Errorf("openai error: %s: %w", parsed.Error.Message, llm.ErrRateLimited)
		}
		return nil, nil, fmt.Errorf("openai error: %s (%s)", parsed.Error.Message, parsed.Error.Type)
	}
	if resp.StatusCode >= 400 {
		return nil, nil, fmt.Errorf("openai http status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if len(parsed.Choices) == 0 {
		return nil, nil, fmt.Errorf("openai response missing choices: %w", llm.ErrEmptyResponse)
	}
	if parsed.Choices[0].FinishReason == "content_filter" {
		return nil, nil, fmt.Errorf("openai content filter: %w", llm.ErrBlocked)
	}

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return nil, nil, fmt.Errorf("openai response empty content: %w", llm.ErrEmptyResponse)
	}
	return json.RawMessage(contract.CleanJSON(content)), parsed.Usage, nil
}

func logUsage(model, prompt string, usage *chatResponseUsage) {
	fields := map[string]any{"provider": "openai", "model": model, "prompt": prompt}
	if usage != nil {
		fields["prompt_tokens"] = usage.PromptTokens
		fields["completion_tokens"] = usage.CompletionTokens
		fields["total_tokens"] = usage.TotalTokens
	}
	telemetry.Info("llm.response", fields)
}

// noTemperatureModel reports models that only accept the default temperature,
// either gpt-5 variants or names listed in LLM_NO_TEMP0_MODELS.
func noTemperatureModel(model string) bool {
	if isGPT5(model) {
		return true
	}
	name := strings.ToLower(strings.TrimSpace(model))
	for _, entry := range strings.Split(os.Getenv("LLM_NO_TEMP0_MODELS"), ",") {
		if strings.ToLower(strings.TrimSpace(entry)) == name && name != "" {
			return true
		}
	}
	return false
}

func isTemperatureUnsupported(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "temperature") && (strings.Contains(msg, "unsupported") || strings.Contains(msg, "does not support"))
}

func isGPT5(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

func promptStringFromMessages(messages []Message) string {
	if len(messages) == 0 {
		return ""
	}
	var b strings.Builder
	for i, m := range messages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(m.Role)
		b.WriteString(": ")
		b.WriteString(m.Content)
	}
	return b.String()
}

func hashPromptString(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

var _ llm.Completer = (*Client)(nil)
