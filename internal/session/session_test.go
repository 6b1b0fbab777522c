package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

type stubFetcher struct {
	user  *domain.User
	err   error
	calls int
}

func (s *stubFetcher) Me(_ context.Context) (*domain.User, error) {
	s.calls++
	return s.user, s.err
}

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func clientUser() *domain.User {
	return &domain.User{ID: 7, Email: "a@b.c", Role: domain.RoleClient}
}

func TestBootstrapEmptyStorage(t *testing.T) {
	m := NewManager(storage.NewMemory(), &stubFetcher{}, testLogger())
	if !m.State().Loading {
		t.Fatal("state should start loading")
	}

	m.Bootstrap(context.Background())

	s := m.State()
	if s.Loading || s.Authenticated() {
		t.Fatalf("expected settled unauthenticated state, got %+v", s)
	}
}

func TestBootstrapRestoresTokenAndProfile(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	store.Set(ctx, tokenKey, "tok-1")
	raw, _ := json.Marshal(clientUser())
	store.Set(ctx, userKey, string(raw))

	fetcher := &stubFetcher{}
	m := NewManager(store, fetcher, testLogger())
	m.Bootstrap(ctx)

	s := m.State()
	if !s.Authenticated() || s.Token != "tok-1" || s.User.ID != 7 {
		t.Fatalf("unexpected state: %+v", s)
	}
	if fetcher.calls != 0 {
		t.Fatal("cached profile should not trigger a fetch")
	}
}

func TestBootstrapFetchesMissingProfile(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	store.Set(ctx, tokenKey, "tok-1")

	fetcher := &stubFetcher{user: clientUser()}
	m := NewManager(store, fetcher, testLogger())
	m.Bootstrap(ctx)

	if !m.State().Authenticated() {
		t.Fatalf("expected authenticated state, got %+v", m.State())
	}
	if fetcher.calls != 1 {
		t.Fatalf("profile fetch calls = %d, want 1", fetcher.calls)
	}
	if _, ok, _ := store.Get(ctx, userKey); !ok {
		t.Fatal("fetched profile should be persisted")
	}
}

func TestBootstrapDiscardsTokenOnFetchFailure(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	store.Set(ctx, tokenKey, "tok-1")

	m := NewManager(store, &stubFetcher{err: errors.New("boom")}, testLogger())
	m.Bootstrap(ctx)

	s := m.State()
	if s.Loading || s.Authenticated() || s.Token != "" {
		t.Fatalf("token should be discarded, got %+v", s)
	}
	if _, ok, _ := store.Get(ctx, tokenKey); ok {
		t.Fatal("invalid token should be purged from storage")
	}
}

func TestBootstrapCorruptProfileRefetches(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	store.Set(ctx, tokenKey, "tok-1")
	store.Set(ctx, userKey, "{broken")

	fetcher := &stubFetcher{user: clientUser()}
	m := NewManager(store, fetcher, testLogger())
	m.Bootstrap(ctx)

	if !m.State().Authenticated() {
		t.Fatalf("expected authenticated state, got %+v", m.State())
	}
	if fetcher.calls != 1 {
		t.Fatal("corrupt profile blob should fall back to a fetch")
	}
}

func TestSignInPersistsTokenAndProfile(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, &stubFetcher{user: clientUser()}, testLogger())
	m.Bootstrap(ctx)

	if err := m.SignIn(ctx, "tok-2", nil); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	if !m.State().Authenticated() {
		t.Fatalf("expected authenticated state, got %+v", m.State())
	}
	if v, ok, _ := store.Get(ctx, tokenKey); !ok || v != "tok-2" {
		t.Fatalf("token not persisted: %q %v", v, ok)
	}
	if _, ok, _ := store.Get(ctx, userKey); !ok {
		t.Fatal("profile not persisted")
	}
}

func TestSignInFetchFailureRollsBack(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, &stubFetcher{err: errors.New("boom")}, testLogger())
	m.Bootstrap(ctx)

	if err := m.SignIn(ctx, "tok-2", nil); err == nil {
		t.Fatal("expected sign-in failure")
	}
	if m.State().Authenticated() || m.Token() != "" {
		t.Fatalf("partial auth state leaked: %+v", m.State())
	}
	if _, ok, _ := store.Get(ctx, tokenKey); ok {
		t.Fatal("token should be rolled back")
	}
}

func TestSignOutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemory()
	m := NewManager(store, &stubFetcher{user: clientUser()}, testLogger())
	m.Bootstrap(ctx)
	if err := m.SignIn(ctx, "tok-3", clientUser()); err != nil {
		t.Fatal(err)
	}

	m.SignOut(ctx)
	m.SignOut(ctx)

	s := m.State()
	if s.Authenticated() || s.Token != "" || s.User != nil {
		t.Fatalf("sign out left state behind: %+v", s)
	}
	if _, ok, _ := store.Get(ctx, tokenKey); ok {
		t.Fatal("token still in storage")
	}
	if _, ok, _ := store.Get(ctx, userKey); ok {
		t.Fatal("profile still in storage")
	}
}
