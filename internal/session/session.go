// Package session implements the client's authentication state container.
//
// A single [Manager] owns the bearer token and the cached user profile for
// the life of the process. All mutation happens through the operations below;
// the UI layer only reads snapshots and never holds its own session state.
//
// Invariant: the session is authenticated exactly when both the token and the
// resolved user are present. A token without a user is a transient state
// inside Login/Initialize only; any failure to resolve the user rolls the
// whole session back to anonymous.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/dmchugh/medlib/internal/models"
	"github.com/dmchugh/medlib/internal/services"
	"github.com/dmchugh/medlib/internal/shared"
)

// TokenSink receives the active bearer token so shared HTTP plumbing can
// attach it to requests. Implemented by [services.Client].
type TokenSink interface {
	SetToken(token string)
}

// Manager is the session state container.
type Manager struct {
	gateway services.AuthGateway
	sink    TokenSink
	store   shared.TokenStore
	logger  *log.Logger

	mu        sync.Mutex
	token     string
	user      *models.UserProfile
	isLoading bool
}

// Snapshot is a point-in-time copy of the session state.
type Snapshot struct {
	Token     string
	User      *models.UserProfile
	IsLoading bool
}

// IsAuthenticated reports whether both token and user are present.
func (s Snapshot) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// NewManager creates a session manager. The store may be nil for callers
// that do not want durable sessions (tests); sink may be nil likewise.
func NewManager(gateway services.AuthGateway, sink TokenSink, store shared.TokenStore, logger *log.Logger) *Manager {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Manager{
		gateway: gateway,
		sink:    sink,
		store:   store,
		logger:  logger,
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{Token: m.token, IsLoading: m.isLoading}
	if m.user != nil {
		u := *m.user
		snap.User = &u
	}
	return snap
}

// IsAuthenticated reports whether both token and user are present.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token != "" && m.user != nil
}

// IsAdmin reports whether the authenticated user has superuser rights.
func (m *Manager) IsAdmin() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.user != nil && m.user.IsSuperuser
}

// IsLoading reports whether a session-mutating operation is in flight.
//
// This is a cooperative guard: callers are expected to disable the triggering
// action while true, it is not enforced here.
func (m *Manager) IsLoading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.isLoading
}

func (m *Manager) setLoading(v bool) {
	m.mu.Lock()
	m.isLoading = v
	m.mu.Unlock()
}

// Login exchanges credentials for a token, persists it, then resolves the
// user behind it. On any failure no partial token is retained.
func (m *Manager) Login(ctx context.Context, username, password string) (Snapshot, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	resp, err := m.gateway.Login(ctx, username, password)
	if err != nil {
		return m.Snapshot(), err
	}

	m.installToken(resp.AccessToken)

	if _, err := m.FetchUser(ctx); err != nil {
		// FetchUser already rolled the session back.
		return m.Snapshot(), err
	}

	m.logger.Info("logged in", "username", username)
	return m.Snapshot(), nil
}

// installToken places the token in memory, on the shared HTTP client, and in
// durable storage. Storage failures are logged, not fatal: the in-memory
// session stays usable for this process.
func (m *Manager) installToken(token string) {
	m.mu.Lock()
	m.token = token
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.SetToken(token)
	}
	if m.store != nil {
		if err := m.store.Save(token); err != nil {
			m.logger.Warn("failed to persist session token", "error", err)
		}
	}
}

// Register creates a new account. It is a pure pass-through: the new account
// is not logged in and no session state changes.
func (m *Manager) Register(ctx context.Context, data models.RegisterData) (*models.UserProfile, error) {
	m.setLoading(true)
	defer m.setLoading(false)

	return m.gateway.Register(ctx, data)
}

// FetchUser resolves the profile behind the current token. A no-op without a
// token. On any failure the session is logged out before the error is
// returned, so a stale or revoked token can never linger in state.
func (m *Manager) FetchUser(ctx context.Context) (*models.UserProfile, error) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()
	if token == "" {
		return nil, nil
	}

	user, err := m.gateway.CurrentUser(ctx)
	if err != nil {
		m.Logout()
		return nil, fmt.Errorf("failed to resolve session user: %w", err)
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()
	return user, nil
}

// Initialize rehydrates a session from durable storage at process start.
// A missing token is a no-op; an expired or invalid one clears the session
// and is logged, never fatal.
func (m *Manager) Initialize(ctx context.Context) {
	if m.store == nil {
		return
	}

	token, err := m.store.Load()
	if err != nil {
		m.logger.Warn("failed to read stored session token", "error", err)
		return
	}
	if token == "" {
		return
	}

	m.installToken(token)

	if _, err := m.FetchUser(ctx); err != nil {
		m.logger.Warn("stored session is no longer valid", "error", err)
	}
}

// UpdateProfile applies a partial profile update and shallow-merges the
// server's response into the cached user. Server-returned fields win; fields
// not echoed back are preserved. A no-op when unauthenticated.
func (m *Manager) UpdateProfile(ctx context.Context, patch models.UserPatch) (*models.UserProfile, error) {
	m.mu.Lock()
	current := m.user
	m.mu.Unlock()
	if current == nil {
		return nil, nil
	}

	echo, err := m.gateway.UpdateProfile(ctx, patch)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		// Logged out while the call was in flight; nothing to merge into.
		return nil, nil
	}
	merged := echo.Apply(*m.user)
	m.user = &merged
	u := merged
	return &u, nil
}

// Preferences fetches the current user's display preferences and caches them
// on the user record. A no-op when unauthenticated.
func (m *Manager) Preferences(ctx context.Context) (*models.UserPreferences, error) {
	if !m.IsAuthenticated() {
		return nil, nil
	}

	prefs, err := m.gateway.Preferences(ctx)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	if m.user != nil {
		m.user.Preferences = prefs
	}
	m.mu.Unlock()
	return prefs, nil
}

// UpdatePreferences applies a partial preferences update with the same merge
// precedence as UpdateProfile. A no-op when unauthenticated.
func (m *Manager) UpdatePreferences(ctx context.Context, patch models.PreferencesPatch) (*models.UserPreferences, error) {
	if !m.IsAuthenticated() {
		return nil, nil
	}

	echo, err := m.gateway.UpdatePreferences(ctx, patch)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil, nil
	}
	var base models.UserPreferences
	if m.user.Preferences != nil {
		base = *m.user.Preferences
	}
	merged := echo.Apply(base)
	m.user.Preferences = &merged
	p := merged
	return &p, nil
}

// ColorPalettes lists the palettes offered by the server. Pass-through; no
// session state changes.
func (m *Manager) ColorPalettes(ctx context.Context) ([]models.ColorPalette, error) {
	return m.gateway.ColorPalettes(ctx)
}

// Logout clears the token, the user, and durable storage. It always
// succeeds and is idempotent.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.SetToken("")
	}
	if m.store != nil {
		if err := m.store.Clear(); err != nil {
			m.logger.Warn("failed to clear stored session token", "error", err)
		}
	}
}
