// Package bot is the Telegram front door: a Bot API client over
// telegram-bot-api, the long-poll dispatcher that maps commands, callbacks and text onto the
// assistant services, and the escalator that carries support tickets to
// administrators.
package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/tbourn/go-assistant-backend/internal/sysutil"
)

// MaxMessageRunes is Telegram's text limit for one message.
const MaxMessageRunes = 4096

// User is the sender of a message or callback.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
}

// Chat is the conversation a message belongs to.
type Chat struct {
	ID       int64  `json:"id"`
	Type     string `json:"type,omitempty"`
	Username string `json:"username,omitempty"`
}

// Message is the subset of a Telegram message the bot reads.
type Message struct {
	MessageID int64  `json:"message_id"`
	From      *User  `json:"from,omitempty"`
	Chat      Chat   `json:"chat"`
	Date      int64  `json:"date"`
	Text      string `json:"text,omitempty"`
}

// CallbackQuery is an inline button press.
type CallbackQuery struct {
	ID      string   `json:"id"`
	From    User     `json:"from"`
	Message *Message `json:"message,omitempty"`
	Data    string   `json:"data"`
}

// Update is one getUpdates entry. Exactly one of Message and CallbackQuery
// is set for the update kinds the bot subscribes to.
type Update struct {
	UpdateID      int64          `json:"update_id"`
	Message       *Message       `json:"message,omitempty"`
	CallbackQuery *CallbackQuery `json:"callback_query,omitempty"`
}

// Button is an inline keyboard button.
type Button struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data"`
}

// SendOptions are optional message parameters.
type SendOptions struct {
	// ParseMode is passed through, e.g. "MarkdownV2". Empty sends plain text.
	ParseMode string
	Keyboard  [][]Button
}

// Messenger is the part of the Bot API the dispatcher and escalator use.
type Messenger interface {
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error)
	SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (int64, error)
	EditMessageText(ctx context.Context, chatID, messageID int64, text string, opts SendOptions) error
	AnswerCallback(ctx context.Context, callbackID, text string) error
}

// APIError is a response with ok=false.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram %s: %d %s", e.Method, e.Code, e.Description)
}

// NotModified reports whether Telegram rejected an edit because the text
// and markup are unchanged.
func (e *APIError) NotModified() bool {
	return strings.Contains(strings.ToLower(e.Description), "message is not modified")
}

// ParseError reports whether Telegram rejected the text's entity markup.
func (e *APIError) ParseError() bool {
	return strings.Contains(strings.ToLower(e.Description), "can't parse entities")
}

// IsParseError reports whether err is an APIError for malformed markup.
func IsParseError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.ParseError()
}

// Client adapts telegram-bot-api to Messenger. Every request carries the
// caller's context, and outgoing messages are throttled by a token bucket so
// bursts stay under Telegram's flood limits.
type Client struct {
	api        tgbotapi.BotAPI
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client for apiBase (e.g. "https://api.telegram.org")
// and token without calling getMe. requestTimeout must exceed the long-poll
// timeout. sendRPS <= 0 disables throttling.
func NewClient(apiBase, token string, requestTimeout time.Duration, sendRPS float64) *Client {
	lim := rate.NewLimiter(rate.Inf, 0)
	if sendRPS > 0 {
		lim = rate.NewLimiter(rate.Limit(sendRPS), 1)
	}
	c := &Client{
		api:        tgbotapi.BotAPI{Token: token, Buffer: 100},
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    lim,
	}
	c.api.SetAPIEndpoint(strings.TrimRight(apiBase, "/") + "/bot%s/%s")
	return c
}

// ctxDoer binds one request context to the library's HTTP calls.
type ctxDoer struct {
	ctx  context.Context
	base *http.Client
}

func (d ctxDoer) Do(req *http.Request) (*http.Response, error) {
	return d.base.Do(req.WithContext(d.ctx))
}

// bound returns a copy of the API whose requests are cancelled with ctx.
func (c *Client) bound(ctx context.Context) *tgbotapi.BotAPI {
	api := c.api
	api.Client = ctxDoer{ctx: ctx, base: c.httpClient}
	return &api
}

// wrap turns library errors into APIError and logs rejected calls.
func wrap(ctx context.Context, method string, start time.Time, err error) error {
	if err == nil {
		return nil
	}
	var tgErr *tgbotapi.Error
	if !errors.As(err, &tgErr) {
		return fmt.Errorf("telegram %s request failed: %w", method, err)
	}
	apiErr := &APIError{Method: method, Code: tgErr.Code, Description: tgErr.Message}
	sysutil.Logger(ctx).Debug().
		Str("call_id", uuid.NewString()).
		Str("method", method).
		Int("code", apiErr.Code).
		Dur("took", time.Since(start)).
		Msg("telegram call rejected")
	return apiErr
}

func inlineKeyboard(rows [][]Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btns = append(btns, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.CallbackData))
		}
		out = append(out, btns)
	}
	m := tgbotapi.NewInlineKeyboardMarkup(out...)
	return &m
}

func fromUser(u *tgbotapi.User) *User {
	if u == nil {
		return nil
	}
	return &User{ID: u.ID, Username: u.UserName, FirstName: u.FirstName}
}

func fromMessage(m *tgbotapi.Message) *Message {
	if m == nil {
		return nil
	}
	out := &Message{MessageID: int64(m.MessageID), From: fromUser(m.From), Date: int64(m.Date), Text: m.Text}
	if m.Chat != nil {
		out.Chat = Chat{ID: m.Chat.ID, Type: m.Chat.Type, Username: m.Chat.UserName}
	}
	return out
}

func fromUpdate(u tgbotapi.Update) Update {
	out := Update{UpdateID: int64(u.UpdateID), Message: fromMessage(u.Message)}
	if cb := u.CallbackQuery; cb != nil {
		out.CallbackQuery = &CallbackQuery{ID: cb.ID, Message: fromMessage(cb.Message), Data: cb.Data}
		if from := fromUser(cb.From); from != nil {
			out.CallbackQuery.From = *from
		}
	}
	return out
}

// GetUpdates long-polls for updates at or after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]Update, error) {
	cfg := tgbotapi.NewUpdate(int(offset))
	cfg.Timeout = int(timeout / time.Second)
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	start := time.Now()
	raw, err := c.bound(ctx).GetUpdates(cfg)
	if err != nil {
		return nil, wrap(ctx, "getUpdates", start, err)
	}
	updates := make([]Update, 0, len(raw))
	for _, u := range raw {
		updates = append(updates, fromUpdate(u))
	}
	return updates, nil
}

// SendMessage sends text to chatID and returns the new message id.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, opts SendOptions) (int64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(chatID, fitText(text, opts.ParseMode))
	msg.ParseMode = opts.ParseMode
	if kb := inlineKeyboard(opts.Keyboard); kb != nil {
		msg.ReplyMarkup = *kb
	}
	start := time.Now()
	sent, err := c.bound(ctx).Send(msg)
	if err != nil {
		return 0, wrap(ctx, "sendMessage", start, err)
	}
	return int64(sent.MessageID), nil
}

// EditMessageText replaces the text and keyboard of a sent message. An
// unchanged edit is not an error.
func (c *Client) EditMessageText(ctx context.Context, chatID, messageID int64, text string, opts SendOptions) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(chatID, int(messageID), fitText(text, opts.ParseMode))
	edit.ParseMode = opts.ParseMode
	edit.ReplyMarkup = inlineKeyboard(opts.Keyboard)

	start := time.Now()
	_, err := c.bound(ctx).Request(edit)
	err = wrap(ctx, "editMessageText", start, err)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.NotModified() {
		return nil
	}
	return err
}

// AnswerCallback acknowledges a button press, optionally with a toast.
func (c *Client) AnswerCallback(ctx context.Context, callbackID, text string) error {
	callbackID = strings.TrimSpace(callbackID)
	if callbackID == "" {
		return nil
	}
	start := time.Now()
	_, err := c.bound(ctx).Request(tgbotapi.NewCallback(callbackID, text))
	return wrap(ctx, "answerCallbackQuery", start, err)
}

// fitText cuts text to MaxMessageRunes. For MarkdownV2 the cut never leaves
// a dangling escape backslash.
func fitText(text, parseMode string) string {
	out := truncate(text, MaxMessageRunes)
	if parseMode != tgbotapi.ModeMarkdownV2 || len(out) == len(text) {
		return out
	}
	trailing := len(out) - len(strings.TrimRight(out, `\`))
	if trailing%2 == 1 {
		out = out[:len(out)-1]
	}
	return out
}

func truncate(s string, maxChars int) string {
	runes := []rune(s)
	if len(runes) <= maxChars {
		return s
	}
	return string(runes[:maxChars])
}
