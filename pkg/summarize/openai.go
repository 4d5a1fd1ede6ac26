package summarize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = openai.GPT4o
	defaultMaxTokens = 1024
)

// GPTConfig configures the GPT-backed summarizer.
type GPTConfig struct {
	APIKey    string
	Model     string
	MaxTokens int
}

// GPTService implements Service using the OpenAI chat completion API.
type GPTService struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewGPTService creates a summarizer backed by the OpenAI API.
func NewGPTService(config GPTConfig) (*GPTService, error) {
	apiKey := strings.TrimSpace(config.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("summarize: API key is required")
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	return &GPTService{
		client:    openai.NewClient(apiKey),
		model:     model,
		maxTokens: maxTokens,
	}, nil
}

// Summarize sends the text to the model and parses the structured reply.
func (s *GPTService) Summarize(ctx context.Context, text string, contentType ContentType) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyContent
	}
	if contentType == "" {
		contentType = ContentTypeAuto
	}
	if !contentType.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidContentType, contentType)
	}
	if contentType == ContentTypeAuto {
		contentType = DetectContentType(text)
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(contentType),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		MaxTokens: s.maxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("summarize: completion returned no choices")
	}

	result, err := parseResult(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	result.ContentType = contentType
	return result, nil
}

// parseResult decodes the model's JSON reply into a Result. Models sometimes
// wrap the object in a code fence even when asked not to, so fences are
// stripped before decoding.
func parseResult(content string) (*Result, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result Result
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return nil, fmt.Errorf("summarize: malformed completion payload: %w", err)
	}
	if result.Summary == "" {
		return nil, fmt.Errorf("summarize: completion payload missing summary")
	}
	return &result, nil
}

const basePrompt = `You summarize working documents into structured JSON. Respond with a single JSON object containing:
"summary" (2-3 sentence overview), "keyPoints" (array of the most important points),
"actionItems" (array of concrete tasks), "deadlines" (array of {"task","person","dueDate","priority"} for dated obligations),
"pendingDecisions" (array of open questions awaiting a decision).
Omit empty arrays. Use the same language as the input text. Do not include any text outside the JSON object.`

func systemPrompt(contentType ContentType) string {
	switch contentType {
	case ContentTypeMeeting:
		return basePrompt + `
The input is a meeting transcript or meeting notes. Attribute action items and deadlines to the named participants where possible, and capture decisions that were agreed during the meeting.`
	case ContentTypeEmail:
		return basePrompt + `
The input is an email or email thread. Identify what the sender is asking for, and additionally include "responseTemplate": a short, polite draft reply covering the open points.`
	case ContentTypeProject:
		return basePrompt + `
The input is a project status update. Focus on progress, blockers, owners, and upcoming milestones.`
	default:
		return basePrompt
	}
}
