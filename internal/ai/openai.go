package ai

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider talks to the OpenAI Chat Completions API through the
// go-openai client.
type OpenAIProvider struct {
	model     string
	apiKeyEnv string
	maxTokens int
	baseURL   string
}

// OpenAIOption adjusts client construction, mainly for tests.
type OpenAIOption func(*OpenAIProvider)

// WithOpenAIBaseURL points the client at an alternate endpoint.
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(p *OpenAIProvider) { p.baseURL = url }
}

// NewOpenAIProvider builds a provider for OpenAI models. The API key
// is resolved from the environment at call time so a missing key
// surfaces as an AuthError on the first completion.
func NewOpenAIProvider(opts Options, extra ...OpenAIOption) *OpenAIProvider {
	p := &OpenAIProvider{
		model:     opts.Model,
		apiKeyEnv: opts.APIKeyEnv,
		maxTokens: opts.MaxTokens,
	}
	if p.model == "" {
		p.model = DefaultModels["openai"]
	}
	for _, o := range extra {
		o(p)
	}
	return p
}

func (p *OpenAIProvider) Name() string  { return "openai" }
func (p *OpenAIProvider) Model() string { return p.model }

// Complete sends one chat completion call and maps failures onto the
// provider error taxonomy.
func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	apiKey, err := apiKeyFromEnv("openai", p.apiKeyEnv)
	if err != nil {
		return nil, err
	}

	cfg := openai.DefaultConfig(apiKey)
	if p.baseURL != "" {
		cfg.BaseURL = p.baseURL
	}
	client := openai.NewClientWithConfig(cfg)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	callCtx, cancel := context.WithTimeout(ctx, callTimeout(req))
	defer cancel()

	resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:               p.model,
		Messages:            messages,
		MaxCompletionTokens: clampTokens(req.MaxTokens, p.maxTokens),
	})
	if err != nil {
		return nil, mapOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &ProviderError{Provider: "openai", Err: errors.New("response contained no choices")}
	}

	return &Response{
		Content:      resp.Choices[0].Message.Content,
		Model:        p.model,
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		CostEstimate: EstimateCost(p.model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Provider:     "openai",
	}, nil
}

// mapOpenAIError converts go-openai errors onto the taxonomy.
func mapOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case 401, 403:
			return &AuthError{Provider: "openai", Err: err}
		case 429:
			return &RateLimitError{Provider: "openai", Err: err}
		case 400:
			if code, ok := apiErr.Code.(string); ok && strings.Contains(code, "context_length") {
				return &TokenLimitError{Provider: "openai", Err: err}
			}
			return &ProviderError{Provider: "openai", Err: err}
		}
	}
	return &ProviderError{Provider: "openai", Err: err}
}
