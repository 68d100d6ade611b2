package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// AggregatorBackend talks to an OpenAI-compatible chat completions endpoint
// that fronts many vendor models.
type AggregatorBackend struct {
	APIKey      string
	Temperature float64
	MaxTokens   int

	cfg  openai.ClientConfig
	doer *http.Client
}

// NewAggregatorBackend targets <baseURL>/chat/completions.
func NewAggregatorBackend(baseURL, apiKey string, timeout time.Duration, temperature float64, maxTokens int) *AggregatorBackend {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	return &AggregatorBackend{
		APIKey:      apiKey,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		cfg:         cfg,
		doer:        &http.Client{Timeout: timeout},
	}
}

var _ Backend = (*AggregatorBackend)(nil)

func (b *AggregatorBackend) Name() string { return BackendAggregator }

func (b *AggregatorBackend) Ready() bool { return b.APIKey != "" }

// statusRecorder remembers the HTTP status of the last response.
type statusRecorder struct {
	base *http.Client
	code int
}

func (r *statusRecorder) Do(req *http.Request) (*http.Response, error) {
	resp, err := r.base.Do(req)
	if resp != nil {
		r.code = resp.StatusCode
	}
	return resp, err
}

// Complete posts the full message list and returns the first choice.
func (b *AggregatorBackend) Complete(ctx context.Context, model string, msgs []Message) (string, error) {
	if !b.Ready() {
		return "", ErrNotConfigured
	}
	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    make([]openai.ChatCompletionMessage, 0, len(msgs)),
		Temperature: float32(b.Temperature),
		MaxTokens:   b.MaxTokens,
	}
	for _, m := range msgs {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	rec := &statusRecorder{base: b.doer}
	cfg := b.cfg
	cfg.HTTPClient = rec
	resp, err := openai.NewClientWithConfig(cfg).CreateChatCompletion(ctx, req)
	if err != nil {
		return "", statusError(err, rec.code)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// statusError converts HTTP-level failures into StatusError. code is the
// observed response status, zero when no response arrived. Transport and
// decoding errors of 2xx responses pass through unchanged.
func statusError(err error, code int) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{Code: apiErr.HTTPStatusCode, Body: truncate(apiErr.Message, 512)}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{Code: reqErr.HTTPStatusCode, Body: truncate(reqErr.Error(), 512)}
	}
	if code != 0 && (code < 200 || code > 299) {
		return &StatusError{Code: code, Body: truncate(err.Error(), 512)}
	}
	return err
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
