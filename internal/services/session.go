package services

import "sync"

// Mode is a user's dialog mode.
type Mode string

const (
	ModeIdle            Mode = "idle"
	ModeAwaitingSupport Mode = "awaiting_support_message"
	ModeInChat          Mode = "in_chat"
)

// Session is the transient per-user state. It is never persisted.
type Session struct {
	Mode Mode
	// Model is the user's chosen model id; empty means the default.
	Model string
}

// SessionTable maps user ids to sessions. The zero value is not usable;
// construct with NewSessionTable.
type SessionTable struct {
	mu   sync.Mutex
	byID map[int64]Session
}

// NewSessionTable returns an empty table. Every user starts idle.
func NewSessionTable() *SessionTable {
	return &SessionTable{byID: make(map[int64]Session)}
}

// Get returns the user's session, idle if unseen.
func (t *SessionTable) Get(userID int64) Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.get(userID)
}

func (t *SessionTable) get(userID int64) Session {
	s, ok := t.byID[userID]
	if !ok || s.Mode == "" {
		s.Mode = ModeIdle
	}
	return s
}

// transition moves userID to `to` when the current mode is one of from.
func (t *SessionTable) transition(userID int64, to Mode, from ...Mode) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.get(userID)
	for _, f := range from {
		if s.Mode == f {
			s.Mode = to
			t.byID[userID] = s
			return nil
		}
	}
	return ErrInvalidTransition
}

// StartChat enters in_chat from idle. Re-entering is a no-op.
func (t *SessionTable) StartChat(userID int64) error {
	return t.transition(userID, ModeInChat, ModeIdle, ModeInChat)
}

// StopChat leaves in_chat.
func (t *SessionTable) StopChat(userID int64) error {
	return t.transition(userID, ModeIdle, ModeInChat)
}

// Back returns to idle from any mode.
func (t *SessionTable) Back(userID int64) {
	_ = t.transition(userID, ModeIdle, ModeIdle, ModeInChat, ModeAwaitingSupport)
}

// ContactSupport arms the next message to become a ticket.
func (t *SessionTable) ContactSupport(userID int64) error {
	return t.transition(userID, ModeAwaitingSupport, ModeIdle)
}

// ConsumeSupportMessage disarms support mode; exactly one message does so.
func (t *SessionTable) ConsumeSupportMessage(userID int64) error {
	return t.transition(userID, ModeIdle, ModeAwaitingSupport)
}

// SetModel records the user's model choice without touching the mode.
func (t *SessionTable) SetModel(userID int64, model string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := t.get(userID)
	s.Model = model
	t.byID[userID] = s
}
