package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/estante-app/estante/core"
)

// Manager is the single in-memory source of truth for the current
// identity. All mutation goes through its methods, and the credential
// store is kept consistent with the in-memory record within each
// mutation, before control returns to the caller.
type Manager struct {
	store core.CredentialStore
	api   core.AuthAPI
	log   zerolog.Logger

	mu      sync.Mutex
	current core.Identity
	epoch   uint64 // bumped on every mutation; guards stale in-flight responses
	subs    map[int]func(core.Identity)
	nextSub int
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger attaches a logger. Without it the manager stays silent.
func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

func NewManager(store core.CredentialStore, api core.AuthAPI, opts ...Option) *Manager {
	m := &Manager{
		store: store,
		api:   api,
		log:   zerolog.Nop(),
		subs:  make(map[int]func(core.Identity)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Initialize hydrates the in-memory record from the credential store.
// Call it once at process start, before anything reads the identity.
func (m *Manager) Initialize() error {
	id, err := m.store.Load()
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	m.mu.Lock()
	m.current = id
	subs, snapshot := m.snapshotLocked()
	m.mu.Unlock()

	notify(subs, snapshot)
	return nil
}

// Identity returns a copy of the current record. Mutating the returned
// value has no effect on session state.
func (m *Manager) Identity() core.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current.Clone()
}

// Subscribe registers a callback invoked after every mutation with a
// copy of the new identity. The returned function removes the
// subscription.
func (m *Manager) Subscribe(fn func(core.Identity)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.subs, id)
		m.mu.Unlock()
	}
}

// Login installs a freshly issued credential set as the current
// session. Token and userID must be non-empty; anything else is a
// caller bug, reported as ErrInvalidCredentialPayload before any state
// changes.
func (m *Manager) Login(token string, role core.Role, displayName, avatarURL string, userID int64) error {
	if token == "" || userID == 0 {
		return core.ErrInvalidCredentialPayload
	}

	next := core.Identity{
		Token:       token,
		Role:        &role,
		DisplayName: displayName,
		AvatarURL:   avatarURL,
		UserID:      &userID,
	}

	m.mu.Lock()
	if err := m.store.Save(next); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist credentials: %w", err)
	}
	m.current = next
	m.epoch++
	subs, snapshot := m.snapshotLocked()
	m.mu.Unlock()

	m.log.Info().Int64("user_id", userID).Stringer("role", role).Msg("session started")
	notify(subs, snapshot)
	return nil
}

// Logout resets the session to the unauthenticated baseline and clears
// the credential store. Idempotent: calling it on a logged-out session
// is a no-op and never fails.
func (m *Manager) Logout() {
	m.mu.Lock()
	wasAuthenticated := m.current.Authenticated()
	m.current = core.Identity{}
	m.epoch++
	err := m.store.Clear()
	subs, snapshot := m.snapshotLocked()
	m.mu.Unlock()

	if err != nil {
		m.log.Error().Err(err).Msg("clear credentials failed")
	}
	if wasAuthenticated {
		m.log.Info().Msg("session ended")
	}
	notify(subs, snapshot)
}

// UpdateProfile pushes a display-field edit to the backend and, once
// the server confirms it, merges the confirmed values into the current
// identity. Token, Role and UserID are never touched.
//
// If the session changes while the request is in flight (a logout, or a
// different login), the response is dropped with ErrStaleUpdate instead
// of being applied to the new session.
func (m *Manager) UpdateProfile(ctx context.Context, update core.ProfileUpdate) error {
	m.mu.Lock()
	if !m.current.Authenticated() {
		m.mu.Unlock()
		return core.ErrNotAuthenticated
	}
	token := m.current.Token
	userID := *m.current.UserID
	epoch := m.epoch
	m.mu.Unlock()

	profile, err := m.api.UpdateProfile(ctx, token, userID, update)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}

	m.mu.Lock()
	if m.epoch != epoch {
		m.mu.Unlock()
		m.log.Debug().Int64("user_id", userID).Msg("dropping stale profile response")
		return core.ErrStaleUpdate
	}

	next := m.current.Clone()
	if update.DisplayName != nil {
		next.DisplayName = profile.DisplayName
	}
	if update.AvatarURL != nil {
		next.AvatarURL = profile.AvatarURL
	}
	if err := m.store.Save(next); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist credentials: %w", err)
	}
	m.current = next
	m.epoch++
	subs, snapshot := m.snapshotLocked()
	m.mu.Unlock()

	notify(subs, snapshot)
	return nil
}

// SignIn authenticates against the backend and installs the returned
// credentials as the current session.
func (m *Manager) SignIn(ctx context.Context, email, password string) (core.Identity, error) {
	creds, err := m.api.Login(ctx, email, password)
	if err != nil {
		return core.Identity{}, err
	}
	if err := m.install(creds); err != nil {
		return core.Identity{}, err
	}
	return m.Identity(), nil
}

// SignUp registers a new account and installs the returned credentials
// as the current session.
func (m *Manager) SignUp(ctx context.Context, input core.RegisterInput) (core.Identity, error) {
	creds, err := m.api.Register(ctx, input)
	if err != nil {
		return core.Identity{}, err
	}
	if err := m.install(creds); err != nil {
		return core.Identity{}, err
	}
	return m.Identity(), nil
}

func (m *Manager) install(creds *core.Credentials) error {
	return m.Login(creds.Token, creds.User.Role, creds.User.DisplayName, creds.User.AvatarURL, creds.User.ID)
}

// snapshotLocked copies the subscriber list and current identity.
// Callers must hold mu; the copies let notify run outside the lock.
func (m *Manager) snapshotLocked() ([]func(core.Identity), core.Identity) {
	subs := make([]func(core.Identity), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	return subs, m.current.Clone()
}

func notify(subs []func(core.Identity), id core.Identity) {
	for _, fn := range subs {
		fn(id.Clone())
	}
}
