package services

import (
	"context"
	"errors"
	"strings"

	"github.com/tbourn/go-assistant-backend/internal/domain"
	"github.com/tbourn/go-assistant-backend/internal/observability"
	"github.com/tbourn/go-assistant-backend/internal/storage"
	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

// Escalator delivers support traffic between users and administrators.
type Escalator interface {
	// NotifyTicket tells administrators about a new ticket.
	NotifyTicket(ctx context.Context, t domain.Ticket) error
	// DeliverReply sends an administrator's answer to the ticket owner.
	DeliverReply(ctx context.Context, t domain.Ticket, text string) error
}

// SupportService turns support messages into tickets and routes replies.
type SupportService struct {
	Tickets storage.TicketStore
	// Escalator may be nil when no admin channel is configured.
	Escalator Escalator
}

// NewSupportService constructs a SupportService.
func NewSupportService(t storage.TicketStore, e Escalator) *SupportService {
	return &SupportService{Tickets: t, Escalator: e}
}

// Submit creates an open ticket and notifies administrators. A notification
// failure is logged and does not fail the ticket. When the store fails the
// administrators are still notified, with ticket id 0.
func (s *SupportService) Submit(ctx context.Context, userID int64, username, text string) (int64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0, ErrEmptyTicket
	}
	ctx, span := observability.StartSpan(ctx, "services/SupportService", "Submit", userID)
	defer span.End()

	id, storeErr := s.Tickets.CreateTicket(ctx, userID, username, text)
	if storeErr != nil {
		span.RecordError(storeErr)
		sysutil.Logger(ctx).Error().Err(storeErr).Int64("user_id", userID).Msg("ticket not stored")
	}

	t := domain.Ticket{ID: id, UserID: userID, Username: username, Message: text, Status: domain.TicketOpen}
	if s.Escalator != nil {
		if err := s.Escalator.NotifyTicket(ctx, t); err != nil {
			sysutil.Logger(ctx).Warn().Err(err).Int64("ticket_id", id).Msg("admin notification failed")
		}
	}
	return id, storeErr
}

// Reply sends text to the ticket owner and closes the ticket.
func (s *SupportService) Reply(ctx context.Context, ticketID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyTicket
	}
	t, err := s.get(ctx, ticketID)
	if err != nil {
		return err
	}
	if s.Escalator != nil {
		if err := s.Escalator.DeliverReply(ctx, t, text); err != nil {
			return err
		}
	}
	return s.Close(ctx, ticketID)
}

// List returns up to limit tickets, newest first.
func (s *SupportService) List(ctx context.Context, limit int) []domain.Ticket {
	return s.Tickets.ListTickets(ctx, limit)
}

// Close marks the ticket closed.
func (s *SupportService) Close(ctx context.Context, ticketID int64) error {
	err := s.Tickets.UpdateStatus(ctx, ticketID, domain.TicketClosed)
	if errors.Is(err, storage.ErrTicketNotFound) {
		return ErrTicketNotFound
	}
	return err
}

func (s *SupportService) get(ctx context.Context, id int64) (domain.Ticket, error) {
	t, err := s.Tickets.GetTicket(ctx, id)
	if errors.Is(err, storage.ErrTicketNotFound) {
		return domain.Ticket{}, ErrTicketNotFound
	}
	return t, err
}
