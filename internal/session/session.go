package session

import (
	"context"
	"encoding/json"
	"log"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

// Storage keys for the persisted credential and profile mirror.
const (
	tokenKey = "userToken"
	userKey  = "userData"
)

// State is the single source of truth for device authentication. Loading is
// true only during bootstrap; afterwards Token and User are either both set
// or both empty.
type State struct {
	Loading bool
	Token   string
	User    *domain.User
}

// Authenticated reports whether the device holds a credential and profile.
func (s State) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// Role returns the authenticated role, defaulting to client.
func (s State) Role() domain.Role {
	if s.User == nil {
		return domain.RoleClient
	}
	return s.User.Role
}

// ProfileFetcher resolves the profile behind a credential. Implemented by the
// auth service; faked in tests.
type ProfileFetcher interface {
	Me(ctx context.Context) (*domain.User, error)
}

// Manager owns session state transitions and the persisted token/profile
// mirror. All methods run on the single event-processing goroutine of the
// host.
type Manager struct {
	store   storage.Store
	fetcher ProfileFetcher
	logger  *log.Logger
	state   State
}

// NewManager starts in the bootstrapping state. Bootstrap must run before
// any redirect decision.
func NewManager(store storage.Store, fetcher ProfileFetcher, logger *log.Logger) *Manager {
	return &Manager{
		store:   store,
		fetcher: fetcher,
		logger:  logger,
		state:   State{Loading: true},
	}
}

// State returns a copy of the current session state.
func (m *Manager) State() State {
	return m.state
}

// Token exposes the current credential for the gateway's bearer header.
func (m *Manager) Token() string {
	return m.state.Token
}

// Bootstrap restores the persisted credential and profile. A token with no
// cached profile triggers a profile fetch; if that fails the token is treated
// as invalid and discarded. Runs exactly once per process, before rendering.
func (m *Manager) Bootstrap(ctx context.Context) {
	defer func() { m.state.Loading = false }()

	token, ok, err := m.store.Get(ctx, tokenKey)
	if err != nil || !ok || token == "" {
		return
	}

	var user *domain.User
	if raw, ok, err := m.store.Get(ctx, userKey); err == nil && ok {
		var u domain.User
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			m.logger.Printf("profile blob: %v: %v", domain.ErrCorrupt, err)
		} else {
			user = &u
		}
	}

	m.state.Token = token
	if user == nil {
		fetched, err := m.fetcher.Me(ctx)
		if err != nil {
			m.logger.Printf("bootstrap profile fetch failed, discarding token: %v", err)
			m.state.Token = ""
			_ = m.store.Delete(ctx, tokenKey)
			return
		}
		user = fetched
		m.persistUser(ctx, user)
	}
	m.state.User = user
}

// SignIn persists the credential, resolves the profile if not supplied, and
// moves the session to authenticated.
func (m *Manager) SignIn(ctx context.Context, token string, profile *domain.User) error {
	if err := m.store.Set(ctx, tokenKey, token); err != nil {
		return err
	}
	m.state.Token = token

	if profile == nil {
		fetched, err := m.fetcher.Me(ctx)
		if err != nil {
			m.state.Token = ""
			_ = m.store.Delete(ctx, tokenKey)
			return err
		}
		profile = fetched
	}
	m.persistUser(ctx, profile)
	m.state.User = profile
	return nil
}

// SignOut clears the credential and profile unconditionally. The local state
// clear is authoritative; no network call is made and nothing can fail it.
// Safe to call repeatedly.
func (m *Manager) SignOut(ctx context.Context) {
	if err := m.store.Delete(ctx, tokenKey); err != nil {
		m.logger.Printf("delete token: %v", err)
	}
	if err := m.store.Delete(ctx, userKey); err != nil {
		m.logger.Printf("delete profile: %v", err)
	}
	m.state.Token = ""
	m.state.User = nil
}

func (m *Manager) persistUser(ctx context.Context, user *domain.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		m.logger.Printf("encode profile: %v", err)
		return
	}
	if err := m.store.Set(ctx, userKey, string(raw)); err != nil {
		m.logger.Printf("write profile: %v", err)
	}
}
