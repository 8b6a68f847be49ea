package memory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
)

func TestWebSessionStore_RoundTrip(t *testing.T) {
	store := NewWebSessionStore()
	ctx := context.Background()

	session := domain.NewWebSession("sid", time.Now())
	session.SetSuccess("ok")
	if err := store.Save(ctx, session, time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := store.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Flash.Success != "ok" {
		t.Fatalf("expected success flash, got %q", loaded.Flash.Success)
	}

	loaded.SetSuccess("changed")
	again, err := store.Load(ctx, "sid")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if again.Flash.Success != "ok" {
		t.Fatalf("mutating a loaded copy must not change the stored session")
	}
}

func TestWebSessionStore_Expiry(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewWebSessionStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Save(ctx, domain.NewWebSession("sid", now), time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Load(ctx, "sid"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected expired session to be missing, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted")
	}
}

func TestWebSessionStore_Delete(t *testing.T) {
	store := NewWebSessionStore()
	ctx := context.Background()

	_ = store.Save(ctx, domain.NewWebSession("sid", time.Now()), time.Minute)
	if err := store.Delete(ctx, "sid"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := store.Load(ctx, "sid"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestWebSessionStore_SaveSweepsExpiredEntries(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewWebSessionStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		sess := domain.NewWebSession(fmt.Sprintf("anon-%d", i), now)
		if err := store.Save(ctx, sess, time.Minute); err != nil {
			t.Fatalf("Save returned error: %v", err)
		}
	}
	if store.Len() != 1000 {
		t.Fatalf("expected 1000 live sessions, got %d", store.Len())
	}

	now = now.Add(48 * time.Hour)
	if err := store.Save(ctx, domain.NewWebSession("fresh", now), time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if got := store.Len(); got != 1 {
		t.Fatalf("expected expired sessions to be reclaimed, %d entries remain", got)
	}
	if _, err := store.Load(ctx, "fresh"); err != nil {
		t.Fatalf("fresh session must survive the sweep: %v", err)
	}
}

func TestWebSessionStore_SweepKeepsLiveEntries(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	store := NewWebSessionStore().WithClock(func() time.Time { return now })
	ctx := context.Background()

	if err := store.Save(ctx, domain.NewWebSession("short", now), time.Minute); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if err := store.Save(ctx, domain.NewWebSession("long", now), time.Hour); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if err := store.Save(ctx, domain.NewWebSession("other", now), time.Hour); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	if got := store.Len(); got != 2 {
		t.Fatalf("expected only the expired entry to be dropped, got %d entries", got)
	}
	if _, err := store.Load(ctx, "long"); err != nil {
		t.Fatalf("unexpired session must remain: %v", err)
	}
}
