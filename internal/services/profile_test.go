package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-assistant-backend/internal/domain"
	"github.com/tbourn/go-assistant-backend/internal/repo"
	"github.com/tbourn/go-assistant-backend/internal/storage"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func closedSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := newSvcDB(t)
	sqlDB, _ := db.DB()
	_ = sqlDB.Close()
	return db
}

// ---------- durable ----------

func TestDurableProfiles_RegisterIsIdempotent(t *testing.T) {
	db := newSvcDB(t)
	p := &DurableProfiles{DB: db}
	ctx := context.Background()

	p.Register(ctx, 10, "first")
	p.Register(ctx, 10, "second")

	var n int64
	db.Model(&domain.User{}).Where("user_id = ?", 10).Count(&n)
	if n != 1 {
		t.Fatalf("rows = %d, want 1", n)
	}
	u, err := repo.GetUser(ctx, db, 10)
	if err != nil || u.Username != "first" {
		t.Fatalf("first-seen name must be kept: %+v, %v", u, err)
	}
	if got := p.Balance(ctx, 10); got != domain.DefaultTokens {
		t.Fatalf("balance = %d", got)
	}
	if got := p.Balance(ctx, 99); got != NewMemoryProfiles().Balance(ctx, 99) {
		t.Fatalf("unknown user balance = %d, want the fallback default", got)
	}
}

func TestDurableProfiles_Language(t *testing.T) {
	p := &DurableProfiles{DB: newSvcDB(t)}
	ctx := context.Background()

	if got := p.Language(ctx, 5); got != "ru" {
		t.Fatalf("unknown user language = %q", got)
	}
	if _, err := p.SetLanguage(ctx, 5, "de"); !errors.Is(err, ErrUnsupportedLanguage) {
		t.Fatalf("want ErrUnsupportedLanguage, got %v", err)
	}
	lang, err := p.SetLanguage(ctx, 5, "en-GB")
	if err != nil || lang != "en" {
		t.Fatalf("SetLanguage = %q, %v", lang, err)
	}
	if got := p.Language(ctx, 5); got != "en" {
		t.Fatalf("language not stored for unregistered user: %q", got)
	}
}

func TestDurableProfiles_FeedbackAllowsRepeats(t *testing.T) {
	db := newSvcDB(t)
	p := &DurableProfiles{DB: db}
	ctx := context.Background()
	if !p.RecordFeedback(ctx, 1, 77, true) || !p.RecordFeedback(ctx, 1, 77, false) {
		t.Fatalf("feedback should be recorded")
	}
	var n int64
	db.Model(&domain.Feedback{}).Where("message_id = ?", 77).Count(&n)
	if n != 2 {
		t.Fatalf("feedback rows = %d, want 2", n)
	}
}

func TestDurableProfiles_OutageDegrades(t *testing.T) {
	p := &DurableProfiles{DB: closedSvcDB(t)}
	ctx := context.Background()
	p.Register(ctx, 1, "x")
	if got := p.Language(ctx, 1); got != "ru" {
		t.Fatalf("language = %q", got)
	}
	if p.RecordFeedback(ctx, 1, 1, true) {
		t.Fatalf("feedback must report failure")
	}
	if got := p.Balance(ctx, 1); got != domain.DefaultTokens {
		t.Fatalf("balance = %d", got)
	}
}

// ---------- memory ----------

func TestMemoryProfiles(t *testing.T) {
	p := NewMemoryProfiles()
	ctx := context.Background()

	p.Register(ctx, 1, "a")
	if _, err := p.SetLanguage(ctx, 1, "EN"); err != nil {
		t.Fatalf("SetLanguage: %v", err)
	}
	p.Register(ctx, 1, "b")
	if got := p.Language(ctx, 1); got != "en" {
		t.Fatalf("re-registering must not reset language, got %q", got)
	}
	if p.Balance(ctx, 1) != domain.DefaultTokens || p.RecordFeedback(ctx, 1, 1, true) {
		t.Fatalf("fallback balance/feedback defaults wrong")
	}
}

func TestNewProfileService_Selection(t *testing.T) {
	ctx := context.Background()
	if p := NewProfileService(ctx, nil); p.Backend() != storage.BackendMemory {
		t.Fatalf("nil db should select memory")
	}
	if p := NewProfileService(ctx, newSvcDB(t)); p.Backend() != storage.BackendDurable {
		t.Fatalf("reachable db should select durable")
	}
}
