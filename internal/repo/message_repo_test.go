package repo

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-assistant-backend/internal/domain"
)

// newRepoDB opens a file-backed SQLite DB under t.TempDir and migrates the
// given models. With no models the schema is left empty so error paths can
// be exercised.
func newRepoDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), fmt.Sprintf("repo_%d.db", time.Now().UnixNano()))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func ptr(v int64) *int64 { return &v }

// countMessages counts the rows of one history partition.
func countMessages(t *testing.T, db *gorm.DB, userID int64, convID *int64) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&domain.Message{}).Scopes(partition(userID, convID)).Count(&n).Error; err != nil {
		t.Fatalf("count messages: %v", err)
	}
	return n
}

func TestCreateMessage_Inserts(t *testing.T) {
	db := newRepoDB(t, &domain.Message{})
	ctx := context.Background()

	m, err := CreateMessage(ctx, db, 1, domain.RoleUser, "hello", nil)
	if err != nil {
		t.Fatalf("CreateMessage: %v", err)
	}
	if m.ID == 0 || m.UserID != 1 || m.ConversationID != nil || m.Content != "hello" {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.CreatedAt.IsZero() || time.Since(m.CreatedAt) > time.Minute {
		t.Fatalf("CreatedAt not set sensibly: %v", m.CreatedAt)
	}
}

func TestCreateMessage_Error_NoTable(t *testing.T) {
	db := newRepoDB(t)
	if m, err := CreateMessage(context.Background(), db, 1, domain.RoleUser, "x", nil); err == nil || m != nil {
		t.Fatalf("expected error without table, got m=%v err=%v", m, err)
	}
}

func TestListRecentMessages_OrderAndBound(t *testing.T) {
	db := newRepoDB(t, &domain.Message{})
	ctx := context.Background()

	for i := 0; i < 150; i++ {
		if _, err := CreateMessage(ctx, db, 1, domain.RoleUser, fmt.Sprintf("m%03d", i), nil); err != nil {
			t.Fatalf("seed %d: %v", i, err)
		}
	}

	got, err := ListRecentMessages(ctx, db, 1, nil, 100)
	if err != nil {
		t.Fatalf("ListRecentMessages: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("len = %d, want 100", len(got))
	}
	if got[0].Content != "m050" || got[99].Content != "m149" {
		t.Fatalf("window wrong: first=%q last=%q", got[0].Content, got[99].Content)
	}
	for i := 1; i < len(got); i++ {
		if got[i-1].ID >= got[i].ID {
			t.Fatalf("not ascending at %d: %d >= %d", i, got[i-1].ID, got[i].ID)
		}
	}
}

func TestListRecentMessages_NonPositiveLimit(t *testing.T) {
	db := newRepoDB(t, &domain.Message{})
	if _, err := CreateMessage(context.Background(), db, 1, domain.RoleUser, "x", nil); err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := ListRecentMessages(context.Background(), db, 1, nil, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("limit 0 should yield empty list, got %v err=%v", got, err)
	}
}

func TestListRecentMessages_PartitionIsolation(t *testing.T) {
	db := newRepoDB(t, &domain.Message{})
	ctx := context.Background()

	seed := []struct {
		user int64
		conv *int64
		text string
	}{
		{1, nil, "default-1"},
		{1, ptr(10), "conv10-1"},
		{1, ptr(11), "conv11-1"},
		{2, nil, "other-user"},
		{1, nil, "default-2"},
		{1, ptr(10), "conv10-2"},
	}
	for _, s := range seed {
		if _, err := CreateMessage(ctx, db, s.user, domain.RoleUser, s.text, s.conv); err != nil {
			t.Fatalf("seed %q: %v", s.text, err)
		}
	}

	check := func(user int64, conv *int64, want ...string) {
		t.Helper()
		got, err := ListRecentMessages(ctx, db, user, conv, 50)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("user=%d conv=%v got %d rows, want %d", user, conv, len(got), len(want))
		}
		for i := range want {
			if got[i].Content != want[i] {
				t.Fatalf("row %d = %q, want %q", i, got[i].Content, want[i])
			}
		}
	}
	check(1, nil, "default-1", "default-2")
	check(1, ptr(10), "conv10-1", "conv10-2")
	check(1, ptr(11), "conv11-1")
	check(2, nil, "other-user")
	check(2, ptr(10))
}

func TestDeleteMessages_OnlyPartition(t *testing.T) {
	db := newRepoDB(t, &domain.Message{})
	ctx := context.Background()
	_, _ = CreateMessage(ctx, db, 1, domain.RoleUser, "a", nil)
	_, _ = CreateMessage(ctx, db, 1, domain.RoleUser, "b", ptr(5))
	_, _ = CreateMessage(ctx, db, 1, domain.RoleAssistant, "c", nil)

	n, err := DeleteMessages(ctx, db, 1, nil)
	if err != nil || n != 2 {
		t.Fatalf("DeleteMessages = %d, %v; want 2, nil", n, err)
	}
	if c := countMessages(t, db, 1, nil); c != 0 {
		t.Fatalf("default partition should be empty, count=%d", c)
	}
	if c := countMessages(t, db, 1, ptr(5)); c != 1 {
		t.Fatalf("conversation partition should survive, count=%d", c)
	}
}
