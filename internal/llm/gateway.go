package llm

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

// Completion is the post-processed outcome of one model call.
type Completion struct {
	// Text is what a transport should send: escaped unless raw was requested.
	Text string
	// Plain is the cleaned, unescaped completion.
	Plain string
	OK    bool
	// Hint is the transport parse mode, set only for escaped successes.
	Hint   string
	Kind   Kind
	Status int
	// Cause is the error text of a failed call.
	Cause string
	// Empty marks a success with nothing left after cleanup. Text and Plain
	// are empty; the caller substitutes a localized placeholder.
	Empty bool
}

// Gateway routes a model id to its backend and applies post-processing.
// It never retries.
type Gateway struct {
	backends map[string]Backend
}

// NewGateway registers backends by Name. Nil backends are skipped.
func NewGateway(backends ...Backend) *Gateway {
	g := &Gateway{backends: make(map[string]Backend, len(backends))}
	for _, b := range backends {
		if b != nil {
			g.backends[b.Name()] = b
		}
	}
	return g
}

// backendFor resolves model through the catalog. Ids outside the catalog go
// to the aggregator, which accepts arbitrary vendor ids.
func (g *Gateway) backendFor(model string) Backend {
	name := BackendAggregator
	if m, ok := Lookup(model); ok {
		name = m.Backend
	}
	return g.backends[name]
}

// Ready reports whether the backend serving model is configured.
func (g *Gateway) Ready(model string) bool {
	b := g.backendFor(model)
	return b != nil && b.Ready()
}

// Invoke runs one synchronous completion for model.
func (g *Gateway) Invoke(ctx context.Context, model string, msgs []Message, raw bool) Completion {
	b := g.backendFor(model)
	if b == nil || !b.Ready() {
		name := BackendAggregator
		if b != nil {
			name = b.Name()
		}
		llmRequests.WithLabelValues(name, outcome(KindConfig)).Inc()
		return Completion{Kind: KindConfig, Cause: ErrNotConfigured.Error()}
	}

	ctx, span := otel.Tracer("llm/Gateway").Start(ctx, "Invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.backend", b.Name()),
		attribute.String("llm.model", model),
		attribute.Int("llm.messages", len(msgs)),
	)

	start := time.Now()
	text, err := b.Complete(ctx, model, msgs)
	llmLatency.WithLabelValues(b.Name()).Observe(time.Since(start).Seconds())

	kind, status := Classify(err)
	llmRequests.WithLabelValues(b.Name(), outcome(kind)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		sysutil.Logger(ctx).Error().
			Err(err).
			Str("backend", b.Name()).
			Str("model", model).
			Str("kind", string(kind)).
			Int("status", status).
			Msg("model call failed")
		return Completion{Kind: kind, Status: status, Cause: err.Error()}
	}

	plain := StripReasoning(text)
	c := Completion{Text: plain, Plain: plain, OK: true, Empty: plain == ""}
	if !raw {
		c.Text, c.Hint = EscapeMarkdownV2(plain), HintMarkdownV2
	}
	return c
}
