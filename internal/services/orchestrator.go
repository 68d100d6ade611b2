// Package services – Orchestrator
//
// The Orchestrator is the request pipeline shared by both front doors. It
// resolves the user's language and model, assembles a bounded context from
// stored history, persists the user turn before calling the model and the
// assistant turn after, and turns every outcome (success, refusal, gateway
// failure) into a Result. Store and network failures never surface as errors
// from ProcessQuery.
package services

import (
	"context"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"github.com/tbourn/go-assistant-backend/internal/domain"
	"github.com/tbourn/go-assistant-backend/internal/llm"
	"github.com/tbourn/go-assistant-backend/internal/observability"
	"github.com/tbourn/go-assistant-backend/internal/prompts"
	"github.com/tbourn/go-assistant-backend/internal/storage"
	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

// HistoryLimit bounds history reads exposed to front doors.
const HistoryLimit = 100

// Gateway is the model-invocation contract the pipeline needs.
type Gateway interface {
	Ready(model string) bool
	Invoke(ctx context.Context, model string, msgs []llm.Message, raw bool) llm.Completion
}

// ProgressSink receives the interim status shown while the model works.
type ProgressSink func(text string)

// Query is one pipeline request.
type Query struct {
	UserID         int64
	Prompt         string
	ConversationID *int64
	Progress       ProgressSink
	// SystemPrompt replaces the built-in instruction and disables refusal
	// detection.
	SystemPrompt string
	// Raw skips transport escaping.
	Raw bool
	// Model overrides the session's choice for this request only.
	Model string
}

// Result is the outcome of ProcessQuery.
type Result struct {
	Text    string `json:"text"`
	Success bool   `json:"success"`
	Hint    string `json:"hint,omitempty"`
	Model   string `json:"model,omitempty"`
	// Plain is Text before transport escaping.
	Plain string `json:"-"`
}

// Orchestrator combines history, profiles, sessions and the gateway.
type Orchestrator struct {
	Store    storage.HistoryStore
	Profiles ProfileService
	Gateway  Gateway
	Sessions *SessionTable

	// MaxHistory caps prior turns replayed into the model context.
	MaxHistory int
	// DefaultModel applies until a user selects a model.
	DefaultModel string
	// TitleMaxLen caps conversation titles by rune length.
	TitleMaxLen int
	// MaxPromptRunes caps API prompts; zero disables the check.
	MaxPromptRunes int
}

// NewOrchestrator wires the pipeline with defaults for title handling.
func NewOrchestrator(h storage.HistoryStore, p ProfileService, g Gateway, maxHistory int, defaultModel string) *Orchestrator {
	if defaultModel == "" {
		defaultModel = llm.DefaultModel
	}
	return &Orchestrator{
		Store:          h,
		Profiles:       p,
		Gateway:        g,
		Sessions:       NewSessionTable(),
		MaxHistory:     maxHistory,
		DefaultModel:   defaultModel,
		TitleMaxLen:    60,
		MaxPromptRunes: 8000,
	}
}

func (o *Orchestrator) resolveModel(q Query) string {
	if q.Model != "" {
		return q.Model
	}
	if m := o.Sessions.Get(q.UserID).Model; m != "" {
		return m
	}
	return o.DefaultModel
}

// buildMessages is system, replayable prior turns, then the prompt.
func (o *Orchestrator) buildMessages(ctx context.Context, userID int64, system, prompt string, conv *int64) []llm.Message {
	prior := o.Store.LoadHistory(ctx, userID, o.MaxHistory, conv)
	msgs := make([]llm.Message, 0, len(prior)+2)
	msgs = append(msgs, llm.Message{Role: domain.RoleSystem, Content: system})
	for _, t := range prior {
		if t.Role != domain.RoleUser && t.Role != domain.RoleAssistant {
			continue
		}
		msgs = append(msgs, llm.Message{Role: t.Role, Content: t.Content})
	}
	return append(msgs, llm.Message{Role: domain.RoleUser, Content: prompt})
}

func failureText(lang string, c llm.Completion) string {
	switch c.Kind {
	case llm.KindConfig:
		return prompts.Text(lang, prompts.ConfigError)
	case llm.KindUpstream:
		return prompts.Textf(lang, prompts.UpstreamError, c.Status)
	default:
		return prompts.Textf(lang, prompts.NetworkError, c.Cause)
	}
}

// ProcessQuery runs the full pipeline. Every outcome is a Result.
func (o *Orchestrator) ProcessQuery(ctx context.Context, q Query) Result {
	model := o.resolveModel(q)
	ctx, span := observability.StartSpan(ctx, "services/Orchestrator", "ProcessQuery", q.UserID,
		attribute.String("llm.model", model),
		attribute.Bool("raw", q.Raw),
	)
	defer span.End()
	start := time.Now()

	lang := o.Profiles.Language(ctx, q.UserID)
	override := strings.TrimSpace(q.SystemPrompt) != ""
	system := prompts.SystemMessage(lang)
	if override {
		system = q.SystemPrompt
	}

	if !o.Gateway.Ready(model) {
		return Result{Text: prompts.Text(lang, prompts.ConfigError), Model: model}
	}

	msgs := o.buildMessages(ctx, q.UserID, system, q.Prompt, q.ConversationID)
	o.Store.SaveMessage(ctx, q.UserID, domain.RoleUser, q.Prompt, q.ConversationID)

	if q.Progress != nil {
		q.Progress(prompts.Text(lang, prompts.Thinking))
	}
	c := o.Gateway.Invoke(ctx, model, msgs, q.Raw)

	res := Result{Model: model}
	switch {
	case !c.OK:
		res.Text = failureText(lang, c)
		res.Plain = res.Text
		o.Store.SaveMessage(ctx, q.UserID, domain.RoleAssistant, res.Text, q.ConversationID)
	case !override && prompts.IsRefusal(lang, c.Plain):
		res.Text = prompts.Refusal(lang)
		res.Plain = res.Text
		o.Store.SaveMessage(ctx, q.UserID, domain.RoleAssistant, res.Text, q.ConversationID)
	default:
		if c.Empty {
			c.Plain = prompts.Text(lang, prompts.EmptyAnswer)
			c.Text = c.Plain
			if c.Hint != "" {
				c.Text = llm.EscapeMarkdownV2(c.Plain)
			}
		}
		res.Text, res.Plain, res.Success, res.Hint = c.Text, c.Plain, true, c.Hint
		o.Store.SaveMessage(ctx, q.UserID, domain.RoleAssistant, c.Plain, q.ConversationID)
	}

	span.SetAttributes(attribute.Bool("success", res.Success), attribute.String("llm.kind", string(c.Kind)))
	sysutil.Logger(ctx).Info().
		Int64("user_id", q.UserID).
		Str("model", model).
		Str("lang", lang).
		Int("context_messages", len(msgs)).
		Bool("success", res.Success).
		Dur("took", time.Since(start)).
		Msg("query processed")
	return res
}

// SelectModel stores the user's model and clears the default-partition
// history so context from one model never reaches another.
func (o *Orchestrator) SelectModel(ctx context.Context, userID int64, modelID string) error {
	if _, ok := llm.Lookup(modelID); !ok {
		return ErrUnknownModel
	}
	o.Store.ClearHistory(ctx, userID, nil)
	o.Sessions.SetModel(userID, modelID)
	return nil
}

// CurrentModel returns the user's model id and display label.
func (o *Orchestrator) CurrentModel(userID int64) (string, string) {
	id := o.resolveModel(Query{UserID: userID})
	return id, llm.Label(id)
}

// Models lists the selectable models.
func (o *Orchestrator) Models() []llm.Model { return llm.Models() }

// Conversations lists the user's conversations, main entry first.
func (o *Orchestrator) Conversations(ctx context.Context, userID int64) []storage.ConversationInfo {
	return o.Store.ListConversations(ctx, userID)
}

// CreateConversation normalizes the title and creates a named conversation.
func (o *Orchestrator) CreateConversation(ctx context.Context, userID int64, title string) (int64, error) {
	title = normalizeTitle(title)
	if title == "" {
		title = storage.DefaultConversation
	}
	return o.Store.CreateConversation(ctx, userID, o.clip(title))
}

// DeleteConversation removes a conversation and its messages.
func (o *Orchestrator) DeleteConversation(ctx context.Context, userID, id int64) error {
	if !o.Store.DeleteConversation(ctx, userID, id) {
		return ErrConversationNotFound
	}
	return nil
}

// RenameConversation retitles a conversation. Blank titles fall back to
// the default title.
func (o *Orchestrator) RenameConversation(ctx context.Context, userID, id int64, title string) error {
	title = normalizeTitle(title)
	if title == "" {
		title = storage.DefaultConversation
	}
	if !o.Store.RenameConversation(ctx, userID, id, o.clip(title)) {
		return ErrConversationNotFound
	}
	return nil
}

// History returns up to HistoryLimit turns of one partition, oldest first.
func (o *Orchestrator) History(ctx context.Context, userID int64, conv *int64) []storage.Turn {
	return o.Store.LoadHistory(ctx, userID, HistoryLimit, conv)
}

// ClearHistory empties one partition.
func (o *Orchestrator) ClearHistory(ctx context.Context, userID int64, conv *int64) {
	o.Store.ClearHistory(ctx, userID, conv)
}

// SubmitPrompt is the API entry point: raw text, optional per-request model.
func (o *Orchestrator) SubmitPrompt(ctx context.Context, userID int64, prompt, modelID string, conv *int64) (Result, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return Result{}, ErrEmptyPrompt
	}
	if o.MaxPromptRunes > 0 && utf8.RuneCountInString(prompt) > o.MaxPromptRunes {
		return Result{}, ErrTooLong
	}
	if modelID != "" {
		if _, ok := llm.Lookup(modelID); !ok {
			return Result{}, ErrUnknownModel
		}
	}
	if conv != nil && !o.ownsConversation(ctx, userID, *conv) {
		return Result{}, ErrConversationNotFound
	}
	return o.ProcessQuery(ctx, Query{
		UserID:         userID,
		Prompt:         prompt,
		ConversationID: conv,
		Raw:            true,
		Model:          modelID,
	}), nil
}

// ownsConversation reports whether id is one of the user's named
// conversations.
func (o *Orchestrator) ownsConversation(ctx context.Context, userID, id int64) bool {
	for _, c := range o.Store.ListConversations(ctx, userID) {
		if c.ID != nil && *c.ID == id {
			return true
		}
	}
	return false
}

// clip truncates a title to TitleMaxLen runes.
func (o *Orchestrator) clip(title string) string {
	if o.TitleMaxLen > 0 && utf8.RuneCountInString(title) > o.TitleMaxLen {
		return string([]rune(title)[:o.TitleMaxLen])
	}
	return title
}

// normalizeTitle trims whitespace and collapses runs of it to one space.
func normalizeTitle(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

var whitespaceRE = regexp.MustCompile(`\s+`)
