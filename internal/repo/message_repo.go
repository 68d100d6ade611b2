// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for history rows
// (the chat_history table).
//
// A history partition is the pair (user_id, conversation_id). A nil
// conversation id selects the default partition, which is stored as NULL and
// must be matched with IS NULL rather than "= ?".
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/domain"
)

// partition scopes a query to exactly one (user, conversation) bucket.
func partition(userID int64, convID *int64) func(*gorm.DB) *gorm.DB {
	return func(q *gorm.DB) *gorm.DB {
		q = q.Where("user_id = ?", userID)
		if convID == nil {
			return q.Where("conversation_id IS NULL")
		}
		return q.Where("conversation_id = ?", *convID)
	}
}

// CreateMessage appends one history row.
func CreateMessage(ctx context.Context, db *gorm.DB, userID int64, role, content string, convID *int64) (*domain.Message, error) {
	m := &domain.Message{
		UserID:         userID,
		ConversationID: convID,
		Role:           role,
		Content:        content,
		CreatedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

// ListRecentMessages returns at most limit newest rows of the partition,
// oldest first. The id column is the ordering key, so rows written within the
// same clock tick keep their insertion order.
func ListRecentMessages(ctx context.Context, db *gorm.DB, userID int64, convID *int64, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return []domain.Message{}, nil
	}
	var out []domain.Message
	err := db.WithContext(ctx).
		Scopes(partition(userID, convID)).
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// DeleteMessages removes every row of the partition and reports how many
// were deleted.
func DeleteMessages(ctx context.Context, db *gorm.DB, userID int64, convID *int64) (int64, error) {
	res := db.WithContext(ctx).
		Scopes(partition(userID, convID)).
		Delete(&domain.Message{})
	return res.RowsAffected, res.Error
}
