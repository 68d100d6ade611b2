// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for support tickets.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/domain"
)

// CreateTicket inserts an open ticket.
func CreateTicket(ctx context.Context, db *gorm.DB, userID int64, username, message string) (*domain.Ticket, error) {
	t := &domain.Ticket{
		UserID:    userID,
		Username:  username,
		Message:   message,
		Status:    domain.TicketOpen,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// GetTicket fetches a ticket by id or returns ErrNotFound.
func GetTicket(ctx context.Context, db *gorm.DB, id int64) (*domain.Ticket, error) {
	var t domain.Ticket
	if err := db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdateTicketStatus sets the status of a ticket. Missing tickets yield
// ErrNotFound.
func UpdateTicketStatus(ctx context.Context, db *gorm.DB, id int64, status string) error {
	res := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return matched(ctx, db, &domain.Ticket{}, "id = ?", id)
	}
	return nil
}

// ListTickets returns up to limit tickets, newest first.
func ListTickets(ctx context.Context, db *gorm.DB, limit int) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
