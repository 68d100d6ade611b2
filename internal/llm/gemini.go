package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// geminiCall is everything one chat completion needs.
type geminiCall struct {
	Model   string
	System  *genai.Content
	History []*genai.Content
	Prompt  []genai.Part
	Config  genai.GenerationConfig
}

// GeminiBackend serves Gemini models through the google generative-ai-go
// client. The client is dialed on first use.
type GeminiBackend struct {
	APIKey      string
	Temperature float32
	MaxTokens   int32

	mu     sync.Mutex
	client *genai.Client

	// send is replaced in tests.
	send func(ctx context.Context, call geminiCall) (*genai.GenerateContentResponse, error)
}

// NewGeminiBackend returns a backend that is Ready only when apiKey is set.
func NewGeminiBackend(apiKey string, temperature float64, maxTokens int) *GeminiBackend {
	b := &GeminiBackend{
		APIKey:      apiKey,
		Temperature: float32(temperature),
		MaxTokens:   int32(maxTokens),
	}
	b.send = b.sendChat
	return b
}

var _ Backend = (*GeminiBackend)(nil)

func (b *GeminiBackend) Name() string { return BackendGemini }

func (b *GeminiBackend) Ready() bool { return b.APIKey != "" }

// Close releases the underlying client, if one was dialed.
func (b *GeminiBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client == nil {
		return nil
	}
	err := b.client.Close()
	b.client = nil
	return err
}

func (b *GeminiBackend) dial(ctx context.Context) (*genai.Client, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.client != nil {
		return b.client, nil
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(b.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	b.client = c
	return c, nil
}

func (b *GeminiBackend) sendChat(ctx context.Context, call geminiCall) (*genai.GenerateContentResponse, error) {
	c, err := b.dial(ctx)
	if err != nil {
		return nil, err
	}
	model := c.GenerativeModel(call.Model)
	model.SystemInstruction = call.System
	model.GenerationConfig = call.Config
	cs := model.StartChat()
	cs.History = call.History
	return cs.SendMessage(ctx, call.Prompt...)
}

// Complete maps the system message to SystemInstruction, prior turns to the
// chat history and sends the final user turn.
func (b *GeminiBackend) Complete(ctx context.Context, model string, msgs []Message) (string, error) {
	if !b.Ready() {
		return "", ErrNotConfigured
	}
	call, err := b.buildCall(model, msgs)
	if err != nil {
		return "", err
	}
	resp, err := b.send(ctx, call)
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return "", &StatusError{Code: gerr.Code, Body: gerr.Message}
	}
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}
	return responseText(resp), nil
}

func (b *GeminiBackend) buildCall(model string, msgs []Message) (geminiCall, error) {
	temp, maxTokens := b.Temperature, b.MaxTokens
	call := geminiCall{
		Model:  model,
		Config: genai.GenerationConfig{Temperature: &temp, MaxOutputTokens: &maxTokens},
	}

	var sys []string
	var turns []*genai.Content
	for _, m := range msgs {
		switch m.Role {
		case "system":
			sys = append(sys, m.Content)
		case "assistant":
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return geminiCall{}, fmt.Errorf("gemini: last message must come from the user")
	}
	if len(sys) > 0 {
		call.System = &genai.Content{Parts: []genai.Part{genai.Text(strings.Join(sys, "\n\n"))}}
	}
	last := turns[len(turns)-1]
	call.History = turns[:len(turns)-1]
	call.Prompt = last.Parts
	return call, nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String()
}
