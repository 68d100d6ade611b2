package storage

import (
	"context"
	"time"
)

// FallbackPartitionCap bounds each in-memory (user, conversation) partition.
const FallbackPartitionCap = 100

// Conversation titles used when the caller supplies none.
const (
	MainConversationTitle = "Main chat"
	DefaultConversation   = "New chat"
)

// Turn is one history row as replayed to a model: role and content only.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationInfo is one entry of a conversation listing. The synthetic
// main entry has a nil ID and IsMain set.
type ConversationInfo struct {
	ID        *int64     `json:"id"`
	Title     string     `json:"title"`
	IsMain    bool       `json:"is_main"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// MainConversation returns the synthetic entry for the default partition.
func MainConversation() ConversationInfo {
	return ConversationInfo{ID: nil, Title: MainConversationTitle, IsMain: true}
}

// HistoryStore is the uniform history and conversation API. A nil
// conversation id addresses the default partition.
//
// SaveMessage and ClearHistory never report failure. LoadHistory returns an
// empty slice instead of an error. ListConversations always starts with the
// main entry.
type HistoryStore interface {
	SaveMessage(ctx context.Context, userID int64, role, content string, convID *int64)
	LoadHistory(ctx context.Context, userID int64, limit int, convID *int64) []Turn
	ClearHistory(ctx context.Context, userID int64, convID *int64)

	ListConversations(ctx context.Context, userID int64) []ConversationInfo
	CreateConversation(ctx context.Context, userID int64, title string) (int64, error)
	DeleteConversation(ctx context.Context, userID, id int64) bool
	RenameConversation(ctx context.Context, userID, id int64, title string) bool

	// Backend reports BackendDurable or BackendMemory.
	Backend() string
}

func titleOrDefault(title string) string {
	if title == "" {
		return DefaultConversation
	}
	return title
}
