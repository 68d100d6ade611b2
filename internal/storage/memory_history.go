package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

type partitionKey struct {
	user int64
	conv int64
	main bool
}

func keyOf(userID int64, convID *int64) partitionKey {
	if convID == nil {
		return partitionKey{user: userID, main: true}
	}
	return partitionKey{user: userID, conv: *convID}
}

type memConversation struct {
	id      int64
	user    int64
	title   string
	created time.Time
	updated time.Time
}

// MemoryHistory is the volatile fallback. Each partition keeps at most Cap
// rows, dropping the oldest first. All methods are safe for concurrent use.
type MemoryHistory struct {
	Cap int

	mu     sync.Mutex
	rows   map[partitionKey][]Turn
	convs  map[int64]*memConversation
	nextID int64
	now    func() time.Time
}

var _ HistoryStore = (*MemoryHistory)(nil)

// NewMemoryHistory returns an empty fallback store capped at
// FallbackPartitionCap rows per partition.
func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{
		Cap:   FallbackPartitionCap,
		rows:  make(map[partitionKey][]Turn),
		convs: make(map[int64]*memConversation),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Backend implements HistoryStore.
func (m *MemoryHistory) Backend() string { return BackendMemory }

// SaveMessage appends a turn, evicting the oldest beyond the cap.
func (m *MemoryHistory) SaveMessage(_ context.Context, userID int64, role, content string, convID *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := keyOf(userID, convID)
	rows := append(m.rows[k], Turn{Role: role, Content: content})
	if m.Cap > 0 && len(rows) > m.Cap {
		rows = append([]Turn(nil), rows[len(rows)-m.Cap:]...)
	}
	m.rows[k] = rows

	if convID != nil {
		if c, ok := m.convs[*convID]; ok && c.user == userID {
			c.updated = m.now()
		}
	}
}

// LoadHistory returns a copy of the newest limit turns, oldest first.
func (m *MemoryHistory) LoadHistory(_ context.Context, userID int64, limit int, convID *int64) []Turn {
	if limit <= 0 {
		return []Turn{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	rows := m.rows[keyOf(userID, convID)]
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return append([]Turn{}, rows...)
}

// ClearHistory drops the partition.
func (m *MemoryHistory) ClearHistory(_ context.Context, userID int64, convID *int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rows, keyOf(userID, convID))
}

// ListConversations returns the main entry followed by the user's
// conversations, most recently active first.
func (m *MemoryHistory) ListConversations(_ context.Context, userID int64) []ConversationInfo {
	m.mu.Lock()
	defer m.mu.Unlock()

	var mine []*memConversation
	for _, c := range m.convs {
		if c.user == userID {
			mine = append(mine, c)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		if !mine[i].updated.Equal(mine[j].updated) {
			return mine[i].updated.After(mine[j].updated)
		}
		return mine[i].id > mine[j].id
	})

	out := []ConversationInfo{MainConversation()}
	for _, c := range mine {
		id, created, updated := c.id, c.created, c.updated
		out = append(out, ConversationInfo{ID: &id, Title: c.title, CreatedAt: &created, UpdatedAt: &updated})
	}
	return out
}

// CreateConversation allocates the next sequential id.
func (m *MemoryHistory) CreateConversation(_ context.Context, userID int64, title string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := m.now()
	m.convs[m.nextID] = &memConversation{
		id:      m.nextID,
		user:    userID,
		title:   titleOrDefault(title),
		created: now,
		updated: now,
	}
	return m.nextID, nil
}

// DeleteConversation removes the conversation and its partition.
func (m *MemoryHistory) DeleteConversation(_ context.Context, userID, id int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.convs[id]
	if !ok || c.user != userID {
		return false
	}
	delete(m.rows, partitionKey{user: userID, conv: id})
	delete(m.convs, id)
	return true
}

// RenameConversation changes the title of a conversation owned by userID.
func (m *MemoryHistory) RenameConversation(_ context.Context, userID, id int64, title string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.convs[id]
	if !ok || c.user != userID {
		return false
	}
	c.title = titleOrDefault(title)
	c.updated = m.now()
	return true
}
