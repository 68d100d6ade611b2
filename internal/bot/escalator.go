package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tbourn/go-assistant-backend/internal/config"
	"github.com/tbourn/go-assistant-backend/internal/domain"
	"github.com/tbourn/go-assistant-backend/internal/prompts"
	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

const (
	// noticeMaxRunes caps the ticket text quoted in the admin notice.
	noticeMaxRunes = 800

	replyTicketPrefix = "reply_ticket_"
)

// ErrNoAdminChat is returned when neither an admin group nor an admin user
// is configured.
var ErrNoAdminChat = errors.New("no admin chat configured")

// Languages resolves a user's interface language.
type Languages interface {
	Language(ctx context.Context, userID int64) string
}

// Escalator delivers tickets to administrators over Telegram and sends their
// answers back to users. It implements services.Escalator.
type Escalator struct {
	tg        Messenger
	languages Languages
	admin     config.AdminConfig
}

// NewEscalator builds an escalator. Tickets go to the admin group, or to the
// admin user when no group is set.
func NewEscalator(tg Messenger, languages Languages, admin config.AdminConfig) *Escalator {
	return &Escalator{tg: tg, languages: languages, admin: admin}
}

func (e *Escalator) adminChat() int64 {
	if e.admin.GroupID != 0 {
		return e.admin.GroupID
	}
	return e.admin.UserID
}

// NotifyTicket posts the ticket with a reply button. If Telegram rejects the
// keyboard the notice is resent as plain text.
func (e *Escalator) NotifyTicket(ctx context.Context, t domain.Ticket) error {
	chat := e.adminChat()
	if chat == 0 {
		return ErrNoAdminChat
	}
	who := t.Username
	if who == "" {
		who = strconv.FormatInt(t.UserID, 10)
	}
	text := prompts.Textf(prompts.Default, prompts.TicketNotice, t.ID, who, truncate(t.Message, noticeMaxRunes))
	kb := [][]Button{{{
		Text:         prompts.Text(prompts.Default, prompts.ReplyButton),
		CallbackData: fmt.Sprintf("%s%d", replyTicketPrefix, t.ID),
	}}}

	msgID, err := e.tg.SendMessage(ctx, chat, text, SendOptions{Keyboard: kb})
	if err == nil {
		sysutil.Logger(ctx).Info().Int64("ticket_id", t.ID).Int64("message_id", msgID).Msg("admins notified")
		return nil
	}
	sysutil.Logger(ctx).Warn().Err(err).Int64("ticket_id", t.ID).Msg("ticket notice with keyboard failed")
	if _, err := e.tg.SendMessage(ctx, chat, text, SendOptions{}); err != nil {
		return fmt.Errorf("notify admins: %w", err)
	}
	return nil
}

// DeliverReply sends the administrator's answer in the user's language.
func (e *Escalator) DeliverReply(ctx context.Context, t domain.Ticket, text string) error {
	lang := e.languages.Language(ctx, t.UserID)
	if _, err := e.tg.SendMessage(ctx, t.UserID, prompts.Textf(lang, prompts.SupportReply, t.ID, text), SendOptions{}); err != nil {
		return fmt.Errorf("deliver reply: %w", err)
	}
	return nil
}

// isAdmin reports whether userID, or the chat a request came from, may
// answer tickets.
func isAdmin(admin config.AdminConfig, userID, chatID int64) bool {
	return (admin.UserID != 0 && userID == admin.UserID) ||
		(admin.GroupID != 0 && chatID == admin.GroupID)
}
