package services

import (
	"context"
	"errors"
	"sync"

	"gorm.io/gorm"

	"github.com/tbourn/go-assistant-backend/internal/domain"
	"github.com/tbourn/go-assistant-backend/internal/observability"
	"github.com/tbourn/go-assistant-backend/internal/prompts"
	"github.com/tbourn/go-assistant-backend/internal/repo"
	"github.com/tbourn/go-assistant-backend/internal/storage"
)

// ProfileService manages per-user identity, language and balance.
type ProfileService interface {
	// Register creates the profile on first contact. Repeat calls keep the
	// first-seen name.
	Register(ctx context.Context, userID int64, name string)
	// Language returns the user's language code, prompts.Default if unknown.
	Language(ctx context.Context, userID int64) string
	// SetLanguage validates code against the supported languages and stores
	// the matched code.
	SetLanguage(ctx context.Context, userID int64, code string) (string, error)
	Balance(ctx context.Context, userID int64) int
	RecordFeedback(ctx context.Context, userID, messageID int64, positive bool) bool
	Backend() string
}

// NewProfileService pings db once, independently of the history store.
func NewProfileService(ctx context.Context, db *gorm.DB) ProfileService {
	if storage.Reachable(ctx, db) {
		return &DurableProfiles{DB: db}
	}
	return NewMemoryProfiles()
}

func matchLanguage(code string) (string, error) {
	lang, ok := prompts.Match(code)
	if !ok {
		return "", ErrUnsupportedLanguage
	}
	return lang, nil
}

// DurableProfiles stores profiles in the users and feedback tables.
type DurableProfiles struct {
	DB *gorm.DB
}

var _ ProfileService = (*DurableProfiles)(nil)

func (p *DurableProfiles) Backend() string { return storage.BackendDurable }

// Register inserts the user unless it already exists.
func (p *DurableProfiles) Register(ctx context.Context, userID int64, name string) {
	ctx, span := observability.StartSpan(ctx, "services/Profiles", "Register", userID)
	defer span.End()
	_, err := repo.CreateUserIfAbsent(ctx, p.DB, userID, name)
	storage.Absorb(ctx, "register_user", storage.PolicyFailSilentWrite, err)
}

// Language reads the stored language.
func (p *DurableProfiles) Language(ctx context.Context, userID int64) string {
	u, err := repo.GetUser(ctx, p.DB, userID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return prompts.Default
	case err != nil:
		storage.Absorb(ctx, "get_language", storage.PolicyFailOpenRead, err)
		return prompts.Default
	}
	return prompts.Resolve(u.Language)
}

// SetLanguage stores the language, creating the profile when missing.
func (p *DurableProfiles) SetLanguage(ctx context.Context, userID int64, code string) (string, error) {
	lang, err := matchLanguage(code)
	if err != nil {
		return "", err
	}
	err = repo.UpdateLanguage(ctx, p.DB, userID, lang)
	if errors.Is(err, repo.ErrNotFound) {
		if _, err = repo.CreateUserIfAbsent(ctx, p.DB, userID, ""); err == nil {
			err = repo.UpdateLanguage(ctx, p.DB, userID, lang)
		}
	}
	storage.Absorb(ctx, "set_language", storage.PolicyFailSilentWrite, err)
	return lang, nil
}

// Balance returns stored tokens. Unknown users and failed reads report
// domain.DefaultTokens, the balance a new profile starts with.
func (p *DurableProfiles) Balance(ctx context.Context, userID int64) int {
	u, err := repo.GetUser(ctx, p.DB, userID)
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			storage.Absorb(ctx, "get_balance", storage.PolicyFailOpenRead, err)
		}
		return domain.DefaultTokens
	}
	return u.Tokens
}

// RecordFeedback appends one feedback row.
func (p *DurableProfiles) RecordFeedback(ctx context.Context, userID, messageID int64, positive bool) bool {
	err := repo.CreateFeedback(ctx, p.DB, userID, messageID, positive)
	storage.Absorb(ctx, "record_feedback", storage.PolicyFailSilentWrite, err)
	return err == nil
}

// MemoryProfiles keeps only language preferences. Balance and feedback
// return safe defaults.
type MemoryProfiles struct {
	mu    sync.Mutex
	langs map[int64]string
}

var _ ProfileService = (*MemoryProfiles)(nil)

// NewMemoryProfiles returns an empty fallback profile store.
func NewMemoryProfiles() *MemoryProfiles {
	return &MemoryProfiles{langs: make(map[int64]string)}
}

func (m *MemoryProfiles) Backend() string { return storage.BackendMemory }

func (m *MemoryProfiles) Register(_ context.Context, userID int64, _ string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.langs[userID]; !ok {
		m.langs[userID] = domain.DefaultLanguage
	}
}

func (m *MemoryProfiles) Language(_ context.Context, userID int64) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.langs[userID]; ok {
		return l
	}
	return prompts.Default
}

func (m *MemoryProfiles) SetLanguage(_ context.Context, userID int64, code string) (string, error) {
	lang, err := matchLanguage(code)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	m.langs[userID] = lang
	m.mu.Unlock()
	return lang, nil
}

func (m *MemoryProfiles) Balance(context.Context, int64) int { return domain.DefaultTokens }

func (m *MemoryProfiles) RecordFeedback(context.Context, int64, int64, bool) bool { return false }
