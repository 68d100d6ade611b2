package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/domain"
	"github.com/tbourn/go-assistant-backend/internal/repo"
)

// DefaultTicketListLimit applies when ListTickets gets a non-positive limit.
const DefaultTicketListLimit = 50

// ErrTicketNotFound is returned for unknown ticket ids.
var ErrTicketNotFound = errors.New("storage: ticket not found")

// TicketStore persists support tickets.
type TicketStore interface {
	CreateTicket(ctx context.Context, userID int64, username, message string) (int64, error)
	GetTicket(ctx context.Context, id int64) (domain.Ticket, error)
	// UpdateStatus sets status; an empty status closes the ticket.
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListTickets(ctx context.Context, limit int) []domain.Ticket
	Backend() string
}

func statusOrClosed(s string) string {
	if s == "" {
		return domain.TicketClosed
	}
	return s
}

func listLimit(n int) int {
	if n <= 0 {
		return DefaultTicketListLimit
	}
	return n
}

// DurableTickets stores tickets in the tickets table.
type DurableTickets struct {
	DB *gorm.DB
}

var _ TicketStore = (*DurableTickets)(nil)

// Backend implements TicketStore.
func (s *DurableTickets) Backend() string { return BackendDurable }

// CreateTicket inserts an open ticket.
func (s *DurableTickets) CreateTicket(ctx context.Context, userID int64, username, message string) (int64, error) {
	t, err := repo.CreateTicket(ctx, s.DB, userID, username, message)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return t.ID, nil
}

// GetTicket loads a ticket by id.
func (s *DurableTickets) GetTicket(ctx context.Context, id int64) (domain.Ticket, error) {
	t, err := repo.GetTicket(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return domain.Ticket{}, ErrTicketNotFound
	}
	if err != nil {
		return domain.Ticket{}, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return *t, nil
}

// UpdateStatus changes a ticket's status.
func (s *DurableTickets) UpdateStatus(ctx context.Context, id int64, status string) error {
	err := repo.UpdateTicketStatus(ctx, s.DB, id, statusOrClosed(status))
	if errors.Is(err, repo.ErrNotFound) {
		return ErrTicketNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// ListTickets returns the newest tickets; failures yield an empty list.
func (s *DurableTickets) ListTickets(ctx context.Context, limit int) []domain.Ticket {
	out, err := repo.ListTickets(ctx, s.DB, listLimit(limit))
	if err != nil {
		Absorb(ctx, "list_tickets", PolicyFailOpenRead, err)
		return []domain.Ticket{}
	}
	return out
}

// MemoryTickets numbers tickets sequentially from 1.
type MemoryTickets struct {
	mu      sync.Mutex
	tickets map[int64]domain.Ticket
	nextID  int64
}

var _ TicketStore = (*MemoryTickets)(nil)

// NewMemoryTickets returns an empty fallback ticket store.
func NewMemoryTickets() *MemoryTickets {
	return &MemoryTickets{tickets: make(map[int64]domain.Ticket)}
}

// Backend implements TicketStore.
func (m *MemoryTickets) Backend() string { return BackendMemory }

// CreateTicket stores an open ticket under the next id.
func (m *MemoryTickets) CreateTicket(_ context.Context, userID int64, username, message string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.tickets[m.nextID] = domain.Ticket{
		ID:        m.nextID,
		UserID:    userID,
		Username:  username,
		Message:   message,
		Status:    domain.TicketOpen,
		CreatedAt: time.Now().UTC(),
	}
	return m.nextID, nil
}

// GetTicket returns a copy of the ticket.
func (m *MemoryTickets) GetTicket(_ context.Context, id int64) (domain.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return domain.Ticket{}, ErrTicketNotFound
	}
	return t, nil
}

// UpdateStatus changes a ticket's status.
func (m *MemoryTickets) UpdateStatus(_ context.Context, id int64, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tickets[id]
	if !ok {
		return ErrTicketNotFound
	}
	t.Status = statusOrClosed(status)
	m.tickets[id] = t
	return nil
}

// ListTickets returns up to limit tickets, newest first.
func (m *MemoryTickets) ListTickets(_ context.Context, limit int) []domain.Ticket {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Ticket, 0, len(m.tickets))
	for _, t := range m.tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if n := listLimit(limit); len(out) > n {
		out = out[:n]
	}
	return out
}
