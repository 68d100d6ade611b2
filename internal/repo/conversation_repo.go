// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Conversation model.
//
// All functions are context-aware and accept a *gorm.DB handle, so they can
// run inside a transaction. They follow the thin repository approach: CRUD
// and query composition only.
//
// Error semantics:
//   - When a conversation is not found (or is owned by another user),
//     functions return ErrNotFound (gorm.ErrRecordNotFound).
//   - Other DB errors are propagated unchanged.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreateConversation inserts a named conversation owned by userID.
func CreateConversation(ctx context.Context, db *gorm.DB, userID int64, title string) (*domain.Conversation, error) {
	now := time.Now().UTC()
	c := &domain.Conversation{
		UserID:    userID,
		Title:     title,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// ListConversations returns the user's named conversations, most recently
// active first.
func ListConversations(ctx context.Context, db *gorm.DB, userID int64) ([]domain.Conversation, error) {
	var out []domain.Conversation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("updated_at DESC, id DESC").
		Find(&out).Error
	return out, err
}

// GetConversation fetches one conversation by id and owner.
func GetConversation(ctx context.Context, db *gorm.DB, userID, id int64) (*domain.Conversation, error) {
	var c domain.Conversation
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// RenameConversation updates the title, enforcing ownership.
func RenameConversation(ctx context.Context, db *gorm.DB, userID, id int64, title string) error {
	res := db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{"title": title, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// TouchConversation advances updated_at. A missing row is not an error.
func TouchConversation(ctx context.Context, db *gorm.DB, userID, id int64) error {
	return db.WithContext(ctx).
		Model(&domain.Conversation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("updated_at", time.Now().UTC()).Error
}

// DeleteConversation removes a conversation and its history rows in one
// transaction. Messages go first so no orphaned partition survives a
// partial failure.
func DeleteConversation(ctx context.Context, db *gorm.DB, userID, id int64) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND conversation_id = ?", userID, id).
			Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Conversation{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
