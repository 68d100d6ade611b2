package storage

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/repo"
	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

// PingTimeout bounds the one-time startup ping.
const PingTimeout = 3 * time.Second

// Reachable reports whether db answers a ping within PingTimeout.
func Reachable(ctx context.Context, db *gorm.DB) bool {
	ctx, cancel := context.WithTimeout(ctx, PingTimeout)
	defer cancel()
	err := repo.Ping(ctx, db)
	if err != nil {
		sysutil.Logger(ctx).Warn().Err(err).Msg("durable store unreachable, using in-memory fallback")
	}
	return err == nil
}

// NewHistoryStore pings db once and returns the durable adapter when it is
// reachable, the in-memory fallback otherwise. The choice is final.
func NewHistoryStore(ctx context.Context, db *gorm.DB) HistoryStore {
	if Reachable(ctx, db) {
		return NewDurableHistory(db)
	}
	return NewMemoryHistory()
}

// NewTicketStore applies the same one-time selection to tickets.
func NewTicketStore(ctx context.Context, db *gorm.DB) TicketStore {
	if Reachable(ctx, db) {
		return &DurableTickets{DB: db}
	}
	return NewMemoryTickets()
}
