// Package domain defines the persistence models for users, conversations,
// history rows, support tickets and feedback. These types are mapped with
// GORM onto the five tables of the durable store.
package domain

import (
	"time"
)

// Message roles stored in chat_history.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Ticket statuses. Status is stored as free text so new values need no migration.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Profile defaults applied on first contact.
const (
	DefaultLanguage = "ru"
	DefaultTokens   = 100
)

// User is a chat participant identified by the transport's numeric id.
//
// Fields:
//   - UserID: opaque numeric id issued by the chat transport (not autoincrement).
//   - Username: display name captured on first contact.
//   - Language: preferred language code, "ru" unless changed.
//   - Tokens: balance, reserved for metering.
type User struct {
	UserID    int64     `json:"user_id"  gorm:"primaryKey;autoIncrement:false"`
	Username  string    `json:"username" gorm:"type:varchar(255)"`
	Language  string    `json:"language" gorm:"type:varchar(8);not null;default:'ru'"`
	Tokens    int       `json:"tokens"   gorm:"not null;default:100"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Conversation is a named chat owned by a user. The implicit default
// conversation has no row; its messages carry a NULL conversation id.
type Conversation struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id"    gorm:"not null;index:idx_user_conversations"`
	Title     string    `json:"title"      gorm:"type:varchar(255);not null;default:'New chat'"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Conversation.
func (Conversation) TableName() string { return "conversations" }

// Message is one append-only history row. ID is the ordering key; rows are
// never updated after insert.
type Message struct {
	ID             int64     `json:"id"              gorm:"primaryKey;autoIncrement"`
	UserID         int64     `json:"user_id"         gorm:"not null;index:idx_history_partition,priority:1"`
	ConversationID *int64    `json:"conversation_id" gorm:"index:idx_history_partition,priority:2"`
	Role           string    `json:"role"            gorm:"type:varchar(16);not null;check:role IN ('system','user','assistant')"`
	Content        string    `json:"content"         gorm:"type:text;not null"`
	CreatedAt      time.Time `json:"created_at"`
}

// TableName returns the database table name for Message.
func (Message) TableName() string { return "chat_history" }

// Ticket is a support escalation raised by a user and handled by an admin.
type Ticket struct {
	ID        int64     `json:"id"         gorm:"primaryKey;autoIncrement"`
	UserID    int64     `json:"user_id"    gorm:"not null;index"`
	Username  string    `json:"username"   gorm:"type:varchar(255)"`
	Message   string    `json:"message"    gorm:"type:text;not null"`
	Status    string    `json:"status"     gorm:"type:varchar(32);not null;default:'open';index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

// TableName returns the database table name for Ticket.
func (Ticket) TableName() string { return "tickets" }

// Feedback is a thumbs up/down on a message. Repeats are allowed.
type Feedback struct {
	ID         int64     `json:"id"          gorm:"primaryKey;autoIncrement"`
	UserID     int64     `json:"user_id"     gorm:"not null;index"`
	MessageID  int64     `json:"message_id"  gorm:"not null;index"`
	IsPositive bool      `json:"is_positive" gorm:"not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName returns the database table name for Feedback.
func (Feedback) TableName() string { return "feedback" }

// All lists every model for migrations.
func All() []any {
	return []any{&User{}, &Conversation{}, &Message{}, &Ticket{}, &Feedback{}}
}
