package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-assistant-backend/internal/config"
	"github.com/tbourn/go-assistant-backend/internal/faq"
	"github.com/tbourn/go-assistant-backend/internal/llm"
	"github.com/tbourn/go-assistant-backend/internal/prompts"
	"github.com/tbourn/go-assistant-backend/internal/services"
	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

const (
	defaultRetryDelay = 5 * time.Second

	cbStopChat = "stop_chat"
	cbFeedback = "fb:"
)

// Assistant is the part of the orchestrator the bot drives.
type Assistant interface {
	ProcessQuery(ctx context.Context, q services.Query) services.Result
	SelectModel(ctx context.Context, userID int64, modelID string) error
	CurrentModel(userID int64) (string, string)
	Models() []llm.Model
	ClearHistory(ctx context.Context, userID int64, conv *int64)
}

// Support opens tickets and answers them.
type Support interface {
	Submit(ctx context.Context, userID int64, username, text string) (int64, error)
	Reply(ctx context.Context, ticketID int64, text string) error
}

// FAQ answers common questions without a model call.
type FAQ interface {
	Entries(lang string) []faq.Entry
	Search(lang, query string, k int) []faq.Match
}

// Deps are the services the bot dispatches to.
type Deps struct {
	Messenger Messenger
	Assistant Assistant
	Sessions  *services.SessionTable
	Profiles  services.ProfileService
	// Support may be nil; ticket creation then reports a failure.
	Support Support
	// FAQ may be nil; /faq then only reports that nothing matched.
	FAQ   FAQ
	Admin config.AdminConfig
}

// Bot is the long-poll dispatcher. Updates are handled one at a time in
// arrival order.
type Bot struct {
	tg          Messenger
	assistant   Assistant
	sessions    *services.SessionTable
	profiles    services.ProfileService
	support     Support
	faq         FAQ
	admin       config.AdminConfig
	pollTimeout time.Duration
	retryDelay  time.Duration

	offset int64

	mu sync.Mutex
	// pendingReply maps an admin to the ticket their next message answers.
	pendingReply map[int64]int64
}

// New builds a Bot. pollTimeout is the getUpdates long-poll duration.
func New(d Deps, pollTimeout time.Duration) *Bot {
	return &Bot{
		tg:           d.Messenger,
		assistant:    d.Assistant,
		sessions:     d.Sessions,
		profiles:     d.Profiles,
		support:      d.Support,
		faq:          d.FAQ,
		admin:        d.Admin,
		pollTimeout:  pollTimeout,
		retryDelay:   defaultRetryDelay,
		pendingReply: make(map[int64]int64),
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried
// after a pause; they never stop the loop.
func (b *Bot) Run(ctx context.Context) error {
	log.Info().Dur("poll_timeout", b.pollTimeout).Msg("bot polling started")
	for {
		if ctx.Err() != nil {
			log.Info().Msg("bot polling stopped")
			return nil
		}
		updates, err := b.tg.GetUpdates(ctx, b.offset, b.pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			log.Warn().Err(err).Dur("retry_in", b.retryDelay).Msg("getUpdates failed")
			select {
			case <-ctx.Done():
			case <-time.After(b.retryDelay):
			}
			continue
		}
		for _, u := range updates {
			if u.UpdateID >= b.offset {
				b.offset = u.UpdateID + 1
			}
			b.Handle(ctx, u)
		}
	}
}

// Handle dispatches one update. A panic in a handler is logged and the
// update is dropped.
func (b *Bot) Handle(ctx context.Context, u Update) {
	l := log.With().Int64("update_id", u.UpdateID).Logger()
	switch {
	case u.Message != nil:
		l = l.With().Int64("user_id", u.Message.Chat.ID).Logger()
	case u.CallbackQuery != nil:
		l = l.With().Int64("user_id", u.CallbackQuery.From.ID).Logger()
	}
	ctx = l.WithContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error().Interface("panic", rec).Msg("update handler panicked")
		}
	}()

	switch {
	case u.CallbackQuery != nil:
		b.handleCallback(ctx, u.CallbackQuery)
	case u.Message != nil:
		b.handleMessage(ctx, u.Message)
	}
}

//
// Messages
//

func displayName(m *Message) string {
	if m.Chat.Username != "" {
		return m.Chat.Username
	}
	if m.From != nil {
		return sysutil.FirstNonEmpty(m.From.Username, m.From.FirstName, "User")
	}
	return "User"
}

func (b *Bot) handleMessage(ctx context.Context, m *Message) {
	text := strings.TrimSpace(m.Text)
	if text == "" {
		return
	}
	userID := m.Chat.ID
	senderID := userID
	if m.From != nil {
		senderID = m.From.ID
	}

	if strings.HasPrefix(text, "/") {
		cmd, args := splitCommand(text)
		b.handleCommand(ctx, m, cmd, args)
		return
	}
	if ticketID, ok := b.takePendingReply(senderID); ok {
		b.replyToTicket(ctx, senderID, ticketID, text)
		return
	}

	switch b.sessions.Get(userID).Mode {
	case services.ModeAwaitingSupport:
		b.openTicket(ctx, userID, displayName(m), text)
	case services.ModeInChat:
		b.ask(ctx, userID, text)
	default:
		b.say(ctx, userID, prompts.NotInChat)
	}
}

// splitCommand turns "/model@my_bot groq/compound" into ("model", "groq/compound").
func splitCommand(text string) (string, string) {
	head, args, _ := strings.Cut(text, " ")
	head = strings.TrimPrefix(head, "/")
	head, _, _ = strings.Cut(head, "@")
	return strings.ToLower(head), strings.TrimSpace(args)
}

func (b *Bot) handleCommand(ctx context.Context, m *Message, cmd, args string) {
	userID := m.Chat.ID
	switch cmd {
	case "start":
		b.profiles.Register(ctx, userID, displayName(m))
		b.sessions.Back(userID)
		b.say(ctx, userID, prompts.Welcome)
	case "chat":
		b.sessions.Back(userID)
		_ = b.sessions.StartChat(userID)
		b.send(ctx, userID, b.text(ctx, userID, prompts.ChatStarted), SendOptions{Keyboard: b.stopKeyboard(ctx, userID)})
	case "stop":
		b.stopChat(ctx, userID)
	case "clear":
		b.assistant.ClearHistory(ctx, userID, nil)
		b.say(ctx, userID, prompts.HistoryCleared)
	case "models":
		b.send(ctx, userID, b.modelList(ctx, userID), SendOptions{})
	case "model":
		b.selectModel(ctx, userID, args)
	case "lang":
		b.setLanguage(ctx, userID, args)
	case "support":
		b.sessions.Back(userID)
		_ = b.sessions.ContactSupport(userID)
		b.say(ctx, userID, prompts.TicketPrompt)
	case "back":
		b.sessions.Back(userID)
		b.say(ctx, userID, prompts.Back)
	case "balance":
		lang := b.profiles.Language(ctx, userID)
		b.send(ctx, userID, prompts.Textf(lang, prompts.Balance, b.profiles.Balance(ctx, userID)), SendOptions{})
	case "faq":
		b.answerFAQ(ctx, userID, args)
	case "reply":
		b.replyCommand(ctx, m, args)
	default:
		b.say(ctx, userID, prompts.Welcome)
	}
}

// answerFAQ lists every entry, or the best match for question.
func (b *Bot) answerFAQ(ctx context.Context, userID int64, question string) {
	if b.faq == nil {
		b.say(ctx, userID, prompts.FAQNoMatch)
		return
	}
	lang := b.profiles.Language(ctx, userID)
	var sb strings.Builder
	if question == "" {
		sb.WriteString(prompts.Text(lang, prompts.FAQTitle))
		for _, e := range b.faq.Entries(lang) {
			fmt.Fprintf(&sb, "\n\n%s\n%s", e.Question, e.Answer)
		}
		b.send(ctx, userID, sb.String(), SendOptions{})
		return
	}
	hits := b.faq.Search(lang, question, 1)
	if len(hits) == 0 {
		b.say(ctx, userID, prompts.FAQNoMatch)
		return
	}
	fmt.Fprintf(&sb, "%s\n%s", hits[0].Question, hits[0].Answer)
	b.send(ctx, userID, sb.String(), SendOptions{})
}

func (b *Bot) stopChat(ctx context.Context, userID int64) {
	b.sessions.Back(userID)
	b.say(ctx, userID, prompts.ChatStopped)
}

func (b *Bot) modelList(ctx context.Context, userID int64) string {
	current, _ := b.assistant.CurrentModel(userID)
	var sb strings.Builder
	sb.WriteString(b.text(ctx, userID, prompts.ModelsHeader))
	for _, m := range b.assistant.Models() {
		sb.WriteString("\n")
		if m.ID == current {
			sb.WriteString("✅ ")
		}
		fmt.Fprintf(&sb, "%s (%s)", m.Label, m.ID)
	}
	return sb.String()
}

func (b *Bot) selectModel(ctx context.Context, userID int64, modelID string) {
	if err := b.assistant.SelectModel(ctx, userID, modelID); err != nil {
		b.say(ctx, userID, prompts.UnknownModel)
		return
	}
	_, label := b.assistant.CurrentModel(userID)
	lang := b.profiles.Language(ctx, userID)
	b.send(ctx, userID, prompts.Textf(lang, prompts.ModelChanged, label), SendOptions{})
}

func (b *Bot) setLanguage(ctx context.Context, userID int64, code string) {
	lang, err := b.profiles.SetLanguage(ctx, userID, code)
	if err != nil {
		cur := b.profiles.Language(ctx, userID)
		supported := strings.Join(prompts.Languages(), ", ")
		b.send(ctx, userID, prompts.Textf(cur, prompts.UnsupportedLanguage, supported), SendOptions{})
		return
	}
	b.send(ctx, userID, prompts.Text(lang, prompts.LanguageChanged), SendOptions{})
}

// ask runs one conversation turn. The interim status message is edited into
// the answer; if it was never sent, or the edit fails, the answer is sent as
// a new message.
func (b *Bot) ask(ctx context.Context, userID int64, prompt string) {
	var statusID int64
	res := b.assistant.ProcessQuery(ctx, services.Query{
		UserID: userID,
		Prompt: prompt,
		Progress: func(text string) {
			if id, err := b.tg.SendMessage(ctx, userID, text, SendOptions{}); err == nil {
				statusID = id
			}
		},
	})

	opts := SendOptions{ParseMode: res.Hint, Keyboard: b.stopKeyboard(ctx, userID)}
	if res.Success {
		opts.Keyboard = append([][]Button{feedbackRow(statusID)}, opts.Keyboard...)
	}
	text := res.Text
	if statusID != 0 {
		err := b.tg.EditMessageText(ctx, userID, statusID, text, opts)
		if IsParseError(err) {
			text, opts.ParseMode = plainAnswer(res), ""
			err = b.tg.EditMessageText(ctx, userID, statusID, text, opts)
		}
		if err == nil {
			return
		}
		sysutil.Logger(ctx).Warn().Err(err).Int64("message_id", statusID).Msg("edit into answer failed")
	}
	if _, err := b.tg.SendMessage(ctx, userID, text, opts); err != nil {
		if !IsParseError(err) || opts.ParseMode == "" {
			sysutil.Logger(ctx).Warn().Err(err).Int64("chat_id", userID).Msg("send failed")
			return
		}
		opts.ParseMode = ""
		b.send(ctx, userID, plainAnswer(res), opts)
	}
}

// plainAnswer is the unformatted answer used after Telegram rejects markup.
func plainAnswer(res services.Result) string {
	if res.Plain != "" {
		return res.Plain
	}
	return res.Text
}

func feedbackRow(messageID int64) []Button {
	id := strconv.FormatInt(messageID, 10)
	return []Button{
		{Text: "👍", CallbackData: cbFeedback + id + ":1"},
		{Text: "👎", CallbackData: cbFeedback + id + ":0"},
	}
}

func (b *Bot) stopKeyboard(ctx context.Context, userID int64) [][]Button {
	return [][]Button{{{Text: b.text(ctx, userID, prompts.StopChatButton), CallbackData: cbStopChat}}}
}

//
// Support
//

// openTicket consumes the armed support mode. Exactly one message becomes a
// ticket, even when storing it fails.
func (b *Bot) openTicket(ctx context.Context, userID int64, username, text string) {
	_ = b.sessions.ConsumeSupportMessage(userID)
	if b.support == nil {
		b.say(ctx, userID, prompts.TicketFailed)
		return
	}
	id, err := b.support.Submit(ctx, userID, username, text)
	if err != nil || id == 0 {
		b.say(ctx, userID, prompts.TicketFailed)
		return
	}
	lang := b.profiles.Language(ctx, userID)
	b.send(ctx, userID, prompts.Textf(lang, prompts.TicketCreated, id), SendOptions{})
}

// replyCommand handles "/reply <ticket> <text>" from an administrator.
func (b *Bot) replyCommand(ctx context.Context, m *Message, args string) {
	senderID := m.Chat.ID
	if m.From != nil {
		senderID = m.From.ID
	}
	if !isAdmin(b.admin, senderID, m.Chat.ID) {
		b.say(ctx, m.Chat.ID, prompts.NotAdmin)
		return
	}
	idStr, text, _ := strings.Cut(args, " ")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 || strings.TrimSpace(text) == "" {
		b.say(ctx, m.Chat.ID, prompts.ReplyUsage)
		return
	}
	b.replyToTicket(ctx, m.Chat.ID, id, text)
}

func (b *Bot) replyToTicket(ctx context.Context, adminChat, ticketID int64, text string) {
	lang := b.profiles.Language(ctx, adminChat)
	if b.support == nil {
		b.send(ctx, adminChat, prompts.Textf(lang, prompts.ReplyFailed, ticketID), SendOptions{})
		return
	}
	if err := b.support.Reply(ctx, ticketID, text); err != nil {
		sysutil.Logger(ctx).Warn().Err(err).Int64("ticket_id", ticketID).Msg("ticket reply failed")
		b.send(ctx, adminChat, prompts.Textf(lang, prompts.ReplyFailed, ticketID), SendOptions{})
		return
	}
	b.send(ctx, adminChat, prompts.Textf(lang, prompts.ReplySent, ticketID), SendOptions{})
}

func (b *Bot) takePendingReply(adminID int64) (int64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	id, ok := b.pendingReply[adminID]
	if ok {
		delete(b.pendingReply, adminID)
	}
	return id, ok
}

//
// Callbacks
//

func (b *Bot) handleCallback(ctx context.Context, cb *CallbackQuery) {
	userID, chatID := cb.From.ID, cb.From.ID
	if cb.Message != nil {
		userID, chatID = cb.Message.Chat.ID, cb.Message.Chat.ID
	}
	data := strings.TrimSpace(cb.Data)

	var toast string
	switch {
	case data == cbStopChat:
		b.stopChat(ctx, userID)
	case strings.HasPrefix(data, cbFeedback):
		b.feedback(ctx, userID, cb, strings.TrimPrefix(data, cbFeedback))
	case strings.HasPrefix(data, replyTicketPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, replyTicketPrefix), 10, 64)
		if err != nil {
			break
		}
		if !isAdmin(b.admin, cb.From.ID, chatID) {
			toast = b.text(ctx, cb.From.ID, prompts.NotAdmin)
			break
		}
		b.mu.Lock()
		b.pendingReply[cb.From.ID] = id
		b.mu.Unlock()
		lang := b.profiles.Language(ctx, cb.From.ID)
		b.send(ctx, cb.From.ID, prompts.Textf(lang, prompts.ReplyPrompt, id), SendOptions{})
	default:
		sysutil.Logger(ctx).Debug().Str("data", data).Msg("unknown callback")
	}

	if err := b.tg.AnswerCallback(ctx, cb.ID, toast); err != nil {
		sysutil.Logger(ctx).Debug().Err(err).Msg("answerCallbackQuery failed")
	}
}

// feedback parses "<messageID>:<1|0>". A zero message id falls back to the
// message the button is attached to.
func (b *Bot) feedback(ctx context.Context, userID int64, cb *CallbackQuery, payload string) {
	idStr, vote, ok := strings.Cut(payload, ":")
	if !ok || (vote != "1" && vote != "0") {
		return
	}
	msgID, _ := strconv.ParseInt(idStr, 10, 64)
	if msgID == 0 && cb.Message != nil {
		msgID = cb.Message.MessageID
	}
	positive := vote == "1"
	b.profiles.RecordFeedback(ctx, userID, msgID, positive)

	key := prompts.FeedbackNegative
	if positive {
		key = prompts.FeedbackPositive
	}
	b.send(ctx, userID, b.text(ctx, userID, key), SendOptions{Keyboard: b.stopKeyboard(ctx, userID)})
}

//
// Output
//

func (b *Bot) text(ctx context.Context, userID int64, key prompts.Key) string {
	return prompts.Text(b.profiles.Language(ctx, userID), key)
}

func (b *Bot) say(ctx context.Context, userID int64, key prompts.Key) {
	b.send(ctx, userID, b.text(ctx, userID, key), SendOptions{})
}

// send logs delivery failures; a lost message never fails the handler.
func (b *Bot) send(ctx context.Context, chatID int64, text string, opts SendOptions) {
	if _, err := b.tg.SendMessage(ctx, chatID, text, opts); err != nil && !errors.Is(err, context.Canceled) {
		sysutil.Logger(ctx).Warn().Err(err).Int64("chat_id", chatID).Msg("sendMessage failed")
	}
}
