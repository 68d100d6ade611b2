package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-assistant-backend/internal/domain"
)

func TestCreateFeedback_Error_NoTable(t *testing.T) {
	db := newRepoDB(t /* no migrations */)
	if err := CreateFeedback(context.Background(), db, 1, 10, true); err == nil {
		t.Fatalf("expected error when feedback table is missing")
	}
}

func TestCreateFeedback_InsertsRow(t *testing.T) {
	db := newRepoDB(t, &domain.Feedback{})
	ctx := context.Background()
	start := time.Now().UTC()

	if err := CreateFeedback(ctx, db, 1, 10, false); err != nil {
		t.Fatalf("CreateFeedback: %v", err)
	}

	var got domain.Feedback
	if err := db.Where("message_id = ? AND user_id = ?", 10, 1).First(&got).Error; err != nil {
		t.Fatalf("load feedback: %v", err)
	}
	if got.ID == 0 || got.IsPositive {
		t.Fatalf("unexpected feedback row: %+v", got)
	}
	if got.CreatedAt.IsZero() || !got.CreatedAt.After(start.Add(-time.Minute)) {
		t.Fatalf("CreatedAt not set reasonably: %v", got.CreatedAt)
	}
}

func TestCreateFeedback_RepeatVotesAppend(t *testing.T) {
	db := newRepoDB(t, &domain.Feedback{})
	ctx := context.Background()

	for _, v := range []bool{true, false, true} {
		if err := CreateFeedback(ctx, db, 1, 42, v); err != nil {
			t.Fatalf("CreateFeedback: %v", err)
		}
	}
	count := func(messageID int64) int64 {
		var n int64
		if err := db.Model(&domain.Feedback{}).Where("message_id = ?", messageID).Count(&n).Error; err != nil {
			t.Fatalf("count feedback: %v", err)
		}
		return n
	}
	if n := count(42); n != 3 {
		t.Fatalf("feedback rows = %d, want 3", n)
	}
	if n := count(43); n != 0 {
		t.Fatalf("other message count = %d", n)
	}
}
