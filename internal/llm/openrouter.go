package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenRouterBaseURL is the OpenAI-compatible endpoint OpenRouter exposes.
// The trailing slash matters: relative resolution drops the last path
// segment otherwise.
const OpenRouterBaseURL = "https://openrouter.ai/api/v1/"

// OpenRouterClient talks to OpenRouter through the OpenAI SDK.
type OpenRouterClient struct {
	client openai.Client
	model  string
}

// NewOpenRouterClient creates a client bound to an API key and model id.
func NewOpenRouterClient(apiKey, model string) *OpenRouterClient {
	return NewOpenRouterClientWithBaseURL(apiKey, model, OpenRouterBaseURL)
}

// NewOpenRouterClientWithBaseURL creates a client against a custom endpoint
// (tests point this at a local server).
func NewOpenRouterClientWithBaseURL(apiKey, model, baseURL string) *OpenRouterClient {
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &OpenRouterClient{
		client: client,
		model:  model,
	}
}

// Name returns the provider name.
func (c *OpenRouterClient) Name() string { return "openrouter" }

// Model returns the configured model identifier.
func (c *OpenRouterClient) Model() string { return c.model }

// Complete sends a non-streaming chat completion request.
func (c *OpenRouterClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	start := time.Now()

	model := c.model
	if req.Model != "" {
		model = req.Model
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if req.System != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(model),
		Messages: messages,
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("openrouter completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, &ProviderError{
			Provider: "openrouter",
			Message:  "response contained no choices",
		}
	}

	return &CompletionResponse{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			InputTokens:  int(resp.Usage.PromptTokens),
			OutputTokens: int(resp.Usage.CompletionTokens),
		},
		Duration: time.Since(start),
	}, nil
}
