package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const (
	anthropicAPIURL     = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion = "2023-06-01"
)

// AnthropicProvider talks to the Anthropic Messages API over plain HTTP.
type AnthropicProvider struct {
	model     string
	apiKeyEnv string
	maxTokens int
	apiURL    string
	client    *http.Client
}

// AnthropicOption adjusts client construction, mainly for tests.
type AnthropicOption func(*AnthropicProvider)

// WithAnthropicBaseURL points the client at an alternate endpoint.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(p *AnthropicProvider) { p.apiURL = url }
}

// WithAnthropicHTTPClient swaps the underlying HTTP client.
func WithAnthropicHTTPClient(c *http.Client) AnthropicOption {
	return func(p *AnthropicProvider) { p.client = c }
}

// NewAnthropicProvider builds a provider for Claude models. The API key
// is resolved from the environment at call time, not construction time,
// so a missing key surfaces as an AuthError on the first completion.
func NewAnthropicProvider(opts Options, extra ...AnthropicOption) *AnthropicProvider {
	p := &AnthropicProvider{
		model:     opts.Model,
		apiKeyEnv: opts.APIKeyEnv,
		maxTokens: opts.MaxTokens,
		apiURL:    anthropicAPIURL,
		client:    &http.Client{},
	}
	if p.model == "" {
		p.model = DefaultModels["anthropic"]
	}
	for _, o := range extra {
		o(p)
	}
	return p
}

func (p *AnthropicProvider) Name() string  { return "anthropic" }
func (p *AnthropicProvider) Model() string { return p.model }

// Complete sends one Messages API call and maps failures onto the
// provider error taxonomy.
func (p *AnthropicProvider) Complete(ctx context.Context, req Request) (*Response, error) {
	apiKey, err := apiKeyFromEnv("anthropic", p.apiKeyEnv)
	if err != nil {
		return nil, err
	}

	body := anthropicRequest{
		Model:     p.model,
		MaxTokens: clampTokens(req.MaxTokens, p.maxTokens),
		Messages:  []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}
	if req.System != "" {
		body.System = req.System
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: fmt.Errorf("marshal request: %w", err)}
	}

	callCtx, cancel := context.WithTimeout(ctx, callTimeout(req))
	defer cancel()

	httpReq, err := http.NewRequestWithContext(callCtx, http.MethodPost, p.apiURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-API-Key", apiKey)
	httpReq.Header.Set("Anthropic-Version", anthropicAPIVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: fmt.Errorf("read response: %w", err)}
	}

	if err := anthropicStatusError(resp.StatusCode, respBody); err != nil {
		return nil, err
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &ProviderError{Provider: "anthropic", Err: fmt.Errorf("parse response: %w", err)}
	}

	var content strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	return &Response{
		Content:      content.String(),
		Model:        p.model,
		InputTokens:  result.Usage.InputTokens,
		OutputTokens: result.Usage.OutputTokens,
		CostEstimate: EstimateCost(p.model, result.Usage.InputTokens, result.Usage.OutputTokens),
		Provider:     "anthropic",
	}, nil
}

// anthropicStatusError maps non-200 statuses onto the error taxonomy.
func anthropicStatusError(status int, body []byte) error {
	if status == http.StatusOK {
		return nil
	}
	apiErr := fmt.Errorf("API returned %d: %s", status, compactBody(body))
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: "anthropic", Err: apiErr}
	case http.StatusTooManyRequests:
		return &RateLimitError{Provider: "anthropic", Err: apiErr}
	case http.StatusBadRequest:
		if bytes.Contains(body, []byte("prompt is too long")) ||
			bytes.Contains(body, []byte("max_tokens")) {
			return &TokenLimitError{Provider: "anthropic", Err: apiErr}
		}
		return &ProviderError{Provider: "anthropic", Err: apiErr}
	default:
		return &ProviderError{Provider: "anthropic", Err: apiErr}
	}
}

func compactBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 500 {
		s = s[:500] + "…"
	}
	return s
}

// IsTimeout reports whether err stems from an expired call deadline.
func IsTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded)
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContentBlock `json:"content"`
	Usage   anthropicUsage          `json:"usage"`
}

type anthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
