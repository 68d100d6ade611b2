package storage

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/repo"
)

// DurableHistory routes history operations to the relational store.
type DurableHistory struct {
	DB *gorm.DB
}

var _ HistoryStore = (*DurableHistory)(nil)

// NewDurableHistory wraps db without probing it.
func NewDurableHistory(db *gorm.DB) *DurableHistory { return &DurableHistory{DB: db} }

// Backend implements HistoryStore.
func (s *DurableHistory) Backend() string { return BackendDurable }

func (s *DurableHistory) span(ctx context.Context, name string, userID int64) (context.Context, trace.Span) {
	return otel.Tracer("storage/DurableHistory").Start(ctx, name,
		trace.WithAttributes(attribute.Int64("user.id", userID)))
}

// SaveMessage appends a row and, for named conversations, bumps updated_at.
func (s *DurableHistory) SaveMessage(ctx context.Context, userID int64, role, content string, convID *int64) {
	ctx, span := s.span(ctx, "SaveMessage", userID)
	defer span.End()

	if _, err := repo.CreateMessage(ctx, s.DB, userID, role, content, convID); err != nil {
		Absorb(ctx, "save_message", PolicyFailSilentWrite, err)
		return
	}
	if convID != nil {
		Absorb(ctx, "touch_conversation", PolicyFailSilentWrite,
			repo.TouchConversation(ctx, s.DB, userID, *convID))
	}
}

// LoadHistory returns the newest rows of the partition, oldest first.
func (s *DurableHistory) LoadHistory(ctx context.Context, userID int64, limit int, convID *int64) []Turn {
	ctx, span := s.span(ctx, "LoadHistory", userID)
	defer span.End()

	rows, err := repo.ListRecentMessages(ctx, s.DB, userID, convID, limit)
	if err != nil {
		Absorb(ctx, "load_history", PolicyFailOpenRead, err)
		return []Turn{}
	}
	out := make([]Turn, 0, len(rows))
	for _, r := range rows {
		out = append(out, Turn{Role: r.Role, Content: r.Content})
	}
	return out
}

// ClearHistory deletes the partition's rows; conversation metadata stays.
func (s *DurableHistory) ClearHistory(ctx context.Context, userID int64, convID *int64) {
	ctx, span := s.span(ctx, "ClearHistory", userID)
	defer span.End()

	_, err := repo.DeleteMessages(ctx, s.DB, userID, convID)
	Absorb(ctx, "clear_history", PolicyFailSilentWrite, err)
}

// ListConversations returns the main entry followed by named conversations.
func (s *DurableHistory) ListConversations(ctx context.Context, userID int64) []ConversationInfo {
	out := []ConversationInfo{MainConversation()}
	rows, err := repo.ListConversations(ctx, s.DB, userID)
	if err != nil {
		Absorb(ctx, "list_conversations", PolicyFailOpenRead, err)
		return out
	}
	for i := range rows {
		r := rows[i]
		out = append(out, ConversationInfo{
			ID:        &r.ID,
			Title:     r.Title,
			CreatedAt: &r.CreatedAt,
			UpdatedAt: &r.UpdatedAt,
		})
	}
	return out
}

// CreateConversation inserts a named conversation and returns its id.
func (s *DurableHistory) CreateConversation(ctx context.Context, userID int64, title string) (int64, error) {
	c, err := repo.CreateConversation(ctx, s.DB, userID, titleOrDefault(title))
	if err != nil {
		Absorb(ctx, "create_conversation", PolicyFailSilentWrite, err)
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return c.ID, nil
}

// DeleteConversation removes the conversation and its messages.
func (s *DurableHistory) DeleteConversation(ctx context.Context, userID, id int64) bool {
	err := repo.DeleteConversation(ctx, s.DB, userID, id)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		Absorb(ctx, "delete_conversation", PolicyFailSilentWrite, err)
	}
	return err == nil
}

// RenameConversation changes a title owned by userID.
func (s *DurableHistory) RenameConversation(ctx context.Context, userID, id int64, title string) bool {
	err := repo.RenameConversation(ctx, s.DB, userID, id, titleOrDefault(title))
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		Absorb(ctx, "rename_conversation", PolicyFailSilentWrite, err)
	}
	return err == nil
}
