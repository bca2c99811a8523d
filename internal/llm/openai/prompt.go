package openai

import (
	"fmt"
	"strings"

	"resume-enhancer/internal/llm"
)

// Message represents an OpenAI chat message.
type Message struct {
	Role    string
	Content string
}

// BuildMessages creates the chat messages for a JSON completion. Chat
// completions in json_object mode do not take a schema, so it travels in a
// developer message.
func BuildMessages(req llm.Request) ([]Message, error) {
	system := req.System
	if strings.TrimSpace(system) == "" {
		system = llm.SystemPromptJSON
	}
	messages := []Message{{Role: "system", Content: system}}
	if req.Schema != nil {
		schemaText, err := req.Schema.MarshalIndent()
		if err != nil {
			return nil, fmt.Errorf("marshal %s schema: %w", req.Name, err)
		}
		messages = append(messages, Message{
			Role:    "developer",
			Content: "Return a single JSON object that validates against this JSON schema:\n" + schemaText,
		})
	}
	messages = append(messages, Message{Role: "user", Content: req.Prompt})
	return messages, nil
}

func prependSystemMessage(messages []Message, content string) []Message {
	if strings.TrimSpace(content) == "" {
		return messages
	}
	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: "system", Content: content})
	out = append(out, messages...)
	return out
}
