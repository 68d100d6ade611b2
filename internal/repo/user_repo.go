// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-assistant-backend/internal/domain"
)

// CreateUserIfAbsent inserts the user with profile defaults. An existing row
// is left untouched, so the first-seen username wins. It reports whether a
// row was inserted.
func CreateUserIfAbsent(ctx context.Context, db *gorm.DB, userID int64, username string) (bool, error) {
	u := &domain.User{
		UserID:    userID,
		Username:  username,
		Language:  domain.DefaultLanguage,
		Tokens:    domain.DefaultTokens,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(u)
	return res.RowsAffected > 0, res.Error
}

// GetUser fetches a user by id or returns ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, userID int64) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateLanguage sets the language of an existing user. Unknown users yield
// ErrNotFound.
func UpdateLanguage(ctx context.Context, db *gorm.DB, userID int64, lang string) error {
	res := db.WithContext(ctx).
		Model(&domain.User{}).
		Where("user_id = ?", userID).
		Update("language", lang)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return matched(ctx, db, &domain.User{}, "user_id = ?", userID)
	}
	return nil
}
