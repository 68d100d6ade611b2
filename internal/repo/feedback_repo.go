// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Feedback
// model. Feedback rows are append-only and carry no uniqueness constraint, so
// the same message may be rated repeatedly.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/domain"
)

// CreateFeedback inserts one feedback row.
func CreateFeedback(ctx context.Context, db *gorm.DB, userID, messageID int64, positive bool) error {
	fb := &domain.Feedback{
		UserID:     userID,
		MessageID:  messageID,
		IsPositive: positive,
		CreatedAt:  time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(fb).Error
}
