package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/chinobetoska/nenemi-a-html/internal/core/domain"
	"github.com/chinobetoska/nenemi-a-html/internal/repository"
	"github.com/chinobetoska/nenemi-a-html/internal/repository/memory"
)

func newTestSessionManager(t *testing.T) (*SessionManager, *memory.WebSessionStore) {
	t.Helper()
	store := memory.NewWebSessionStore()
	mgr := NewSessionManager(store, time.Hour, zaptest.NewLogger(t)).WithIDGenerator(sequentialIDs())
	return mgr, store
}

func TestSessionManagerStartIgnoresUnknownClientID(t *testing.T) {
	mgr, store := newTestSessionManager(t)
	ctx := context.Background()

	sess, err := mgr.Start(ctx, "attacker-chosen")
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if sess.ID == "attacker-chosen" {
		t.Fatal("client supplied id must not be adopted")
	}
	if sess.ID != "sid-1" {
		t.Fatalf("expected generated id sid-1, got %q", sess.ID)
	}

	if err := mgr.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if store.Len() != 0 {
		t.Fatalf("untouched anonymous session should not be stored, found %d", store.Len())
	}
}

func TestSessionManagerStartLoadsExisting(t *testing.T) {
	mgr, _ := newTestSessionManager(t)
	ctx := context.Background()

	sess, _ := mgr.Start(ctx, "")
	sess.SetError("hola")
	if err := mgr.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	loaded, err := mgr.Start(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if loaded.ID != sess.ID {
		t.Fatalf("expected id %q, got %q", sess.ID, loaded.ID)
	}
	if flash := loaded.TakeFlash(); flash.Error != "hola" {
		t.Fatalf("expected flash to survive the round trip, got %+v", flash)
	}
}

func TestSessionManagerRegenerateDropsOldKey(t *testing.T) {
	mgr, store := newTestSessionManager(t)
	ctx := context.Background()

	sess, _ := mgr.Start(ctx, "")
	sess.ReturnTo = "/html/inicio.html"
	sess.MarkDirty()
	if err := mgr.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	oldID := sess.ID

	if err := mgr.Regenerate(ctx, sess); err != nil {
		t.Fatalf("Regenerate returned error: %v", err)
	}
	if sess.ID == oldID {
		t.Fatal("expected a new session id")
	}
	if sess.ReturnTo != "/html/inicio.html" {
		t.Fatal("regeneration must keep session contents")
	}
	if _, err := store.Load(ctx, oldID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected old id to be gone, got %v", err)
	}

	if err := mgr.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if _, err := store.Load(ctx, sess.ID); err != nil {
		t.Fatalf("expected new id to be stored: %v", err)
	}
}

func TestSessionManagerDestroy(t *testing.T) {
	mgr, store := newTestSessionManager(t)
	ctx := context.Background()

	sess, _ := mgr.Start(ctx, "")
	sess.Authenticate(domain.User{ID: "user-1", Email: "maria@correo.mx"}, time.Now())
	if err := mgr.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	oldID := sess.ID

	if err := mgr.Destroy(ctx, sess); err != nil {
		t.Fatalf("Destroy returned error: %v", err)
	}
	if sess.LoggedIn || sess.UserID != "" {
		t.Fatalf("expected anonymous session after destroy, got %+v", sess)
	}
	if sess.ID == oldID {
		t.Fatal("expected a new id after destroy")
	}
	if sess.Dirty() {
		t.Fatal("destroyed session should not be persisted")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store, found %d", store.Len())
	}
}

func TestSessionManagerSaveRefreshesAuthenticatedSessions(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store := memory.NewWebSessionStore().WithClock(func() time.Time { return now })
	mgr := NewSessionManager(store, time.Hour, zaptest.NewLogger(t)).WithIDGenerator(sequentialIDs())
	ctx := context.Background()

	sess, _ := mgr.Start(ctx, "")
	sess.Authenticate(domain.User{ID: "user-1"}, now)
	if err := mgr.Save(ctx, sess); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	now = now.Add(50 * time.Minute)
	loaded, err := mgr.Start(ctx, sess.ID)
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	if err := mgr.Save(ctx, loaded); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}

	now = now.Add(50 * time.Minute)
	if _, err := store.Load(ctx, sess.ID); err != nil {
		t.Fatalf("expected sliding expiry to keep the session alive: %v", err)
	}
}
