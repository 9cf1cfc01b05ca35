package ai

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

func newOpenAITestProvider(t *testing.T, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	t.Setenv("OPENAI_TEST_KEY", "sk-test")
	return NewOpenAIProvider(
		Options{Provider: "openai", APIKeyEnv: "OPENAI_TEST_KEY"},
		WithOpenAIBaseURL(srv.URL),
	)
}

func TestOpenAIComplete(t *testing.T) {
	p := newOpenAITestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("unexpected Authorization header %q", r.Header.Get("Authorization"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [
				{"index": 0, "message": {"role": "assistant", "content": "hello"}, "finish_reason": "stop"}
			],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	})

	resp, err := p.Complete(context.Background(), Request{Prompt: "hi", System: "be brief"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello" {
		t.Errorf("unexpected content %q", resp.Content)
	}
	if resp.InputTokens != 10 || resp.OutputTokens != 5 {
		t.Errorf("unexpected usage: %d in, %d out", resp.InputTokens, resp.OutputTokens)
	}
	if resp.Provider != "openai" {
		t.Errorf("unexpected provider %q", resp.Provider)
	}
	if resp.Model != "gpt-4o" {
		t.Errorf("unexpected model %q", resp.Model)
	}
}

func TestOpenAIComplete_NoChoices(t *testing.T) {
	p := newOpenAITestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"chatcmpl-2","object":"chat.completion","choices":[],"usage":{}}`))
	})

	_, err := p.Complete(context.Background(), Request{Prompt: "hi"})
	var provErr *ProviderError
	if !errors.As(err, &provErr) {
		t.Fatalf("expected ProviderError, got %T: %v", err, err)
	}
}

func TestOpenAIComplete_Unauthorized(t *testing.T) {
	p := newOpenAITestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Incorrect API key provided","type":"invalid_request_error","code":"invalid_api_key"}}`))
	})

	_, err := p.Complete(context.Background(), Request{Prompt: "hi"})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
}

func TestOpenAIComplete_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_ABSENT_KEY", "")
	p := NewOpenAIProvider(Options{Provider: "openai", APIKeyEnv: "OPENAI_ABSENT_KEY"})

	_, err := p.Complete(context.Background(), Request{Prompt: "hi"})
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
}

func TestMapOpenAIError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		err   error
		match func(error) bool
		want  string
	}{
		{
			name:  "unauthorized",
			err:   &openai.APIError{HTTPStatusCode: 401},
			match: func(err error) bool { var e *AuthError; return errors.As(err, &e) },
			want:  "AuthError",
		},
		{
			name:  "forbidden",
			err:   &openai.APIError{HTTPStatusCode: 403},
			match: func(err error) bool { var e *AuthError; return errors.As(err, &e) },
			want:  "AuthError",
		},
		{
			name:  "rate limited",
			err:   &openai.APIError{HTTPStatusCode: 429},
			match: func(err error) bool { var e *RateLimitError; return errors.As(err, &e) },
			want:  "RateLimitError",
		},
		{
			name:  "context length",
			err:   &openai.APIError{HTTPStatusCode: 400, Code: "context_length_exceeded"},
			match: func(err error) bool { var e *TokenLimitError; return errors.As(err, &e) },
			want:  "TokenLimitError",
		},
		{
			name:  "other bad request",
			err:   &openai.APIError{HTTPStatusCode: 400},
			match: func(err error) bool { var e *ProviderError; return errors.As(err, &e) },
			want:  "ProviderError",
		},
		{
			name:  "network failure",
			err:   errors.New("dial tcp: connection refused"),
			match: func(err error) bool { var e *ProviderError; return errors.As(err, &e) },
			want:  "ProviderError",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			mapped := mapOpenAIError(tt.err)
			if !tt.match(mapped) {
				t.Errorf("expected %s, got %T: %v", tt.want, mapped, mapped)
			}
		})
	}
}
