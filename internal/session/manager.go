// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"os/user"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/gateway"
)

// =============================================================================
// SESSION MANAGER
// =============================================================================

// Config holds configuration for the session manager.
type Config struct {
	// Profile identifies the visitor for first-visit tracking. Defaults to
	// the OS user name.
	Profile string

	// AutoOpenDelay is how long after start a first-time visitor is greeted.
	AutoOpenDelay time.Duration

	// Welcome disables the first-visit greeting when false.
	Welcome bool

	// OnSignOut runs after the identity is dropped. The app clears gateway
	// credentials here.
	OnSignOut func()
}

// DefaultConfig returns the default session configuration.
func DefaultConfig() Config {
	return Config{
		AutoOpenDelay: 2 * time.Second,
		Welcome:       true,
	}
}

// Manager tracks who is chatting and whether they have been greeted.
type Manager struct {
	store VisitStore
	log   zerolog.Logger

	mu        sync.Mutex
	sessionID string
	startTime time.Time
	profile   string
	identity  gateway.Identity
	delay     time.Duration
	welcome   bool
	greeted   bool
	onSignOut func()
}

// NewManager creates a session manager over store.
func NewManager(cfg Config, store VisitStore, log zerolog.Logger) *Manager {
	if store == nil {
		store = NewMemoryStore()
	}
	profile := strings.TrimSpace(cfg.Profile)
	if profile == "" {
		profile = defaultProfile()
	}
	return &Manager{
		store:     store,
		log:       log,
		sessionID: uuid.NewString(),
		startTime: time.Now(),
		profile:   profile,
		delay:     cfg.AutoOpenDelay,
		welcome:   cfg.Welcome,
		onSignOut: cfg.OnSignOut,
	}
}

func defaultProfile() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "default"
}

// =============================================================================
// SESSION STATE
// =============================================================================

// SessionID returns the current session ID.
func (m *Manager) SessionID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessionID
}

// StartTime returns when the session started.
func (m *Manager) StartTime() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.startTime
}

// Duration returns how long the session has been active.
func (m *Manager) Duration() time.Duration {
	return time.Since(m.StartTime())
}

// Profile returns the visitor profile used for first-visit tracking.
func (m *Manager) Profile() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

// Identity returns the signed-in user, if any.
func (m *Manager) Identity() gateway.Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// SetIdentity records the signed-in user.
func (m *Manager) SetIdentity(id gateway.Identity) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.identity = id
}

// SessionContext is passed to conversation.Options.SessionContext. It
// never calls back into the conversation manager.
func (m *Manager) SessionContext() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	ctx := map[string]any{"session_id": m.sessionID}
	for k, v := range m.identity.SessionContext() {
		ctx[k] = v
	}
	return ctx
}

// =============================================================================
// FIRST VISIT
// =============================================================================

// Greet opens the panel and seeds the welcome message if this profile has
// never been greeted. The visit marker is written at the moment of the
// greeting. Reports whether a greeting happened.
func (m *Manager) Greet(ctx context.Context, conv *conversation.Manager) (bool, error) {
	m.mu.Lock()
	if !m.welcome || m.greeted {
		m.mu.Unlock()
		return false, nil
	}
	profile := m.profile
	name := m.identity.DisplayName()
	m.mu.Unlock()

	first, err := m.store.MarkVisited(ctx, profile)
	if err != nil {
		m.log.Warn().Err(err).Str("profile", profile).Msg("visit store unavailable, skipping greeting")
		return false, err
	}
	if !first {
		m.log.Debug().Str("profile", profile).Msg("returning visitor")
		return false, nil
	}

	m.mu.Lock()
	m.greeted = true
	m.mu.Unlock()

	conv.SetOpen(true)
	seeded := conv.SeedWelcome(conversation.DefaultWelcome(name))
	m.log.Info().Str("profile", profile).Bool("seeded", seeded).Msg("first visit greeted")
	return true, nil
}

// SignOut forgets the identity, runs the OnSignOut hook and resets the
// conversation. A fresh session ID is issued.
func (m *Manager) SignOut(conv *conversation.Manager) {
	m.mu.Lock()
	m.identity = gateway.Identity{}
	m.sessionID = uuid.NewString()
	m.startTime = time.Now()
	hook := m.onSignOut
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	conv.Reset()
	m.log.Info().Msg("signed out")
}

// Forget clears this profile's visit marker.
func (m *Manager) Forget(ctx context.Context) error {
	m.mu.Lock()
	m.greeted = false
	profile := m.profile
	m.mu.Unlock()
	return m.store.Forget(ctx, profile)
}

// Close releases the visit store.
func (m *Manager) Close() error {
	return m.store.Close()
}

// =============================================================================
// BUBBLE TEA INTEGRATION
// =============================================================================

// AutoOpenMsg is delivered once the first-visit delay has elapsed.
type AutoOpenMsg struct {
	Time time.Time
}

// GreetedMsg reports the outcome of Greet.
type GreetedMsg struct {
	Greeted bool
	Err     error
}

// AutoOpenCmd waits for the configured delay before asking the host to greet.
// Returns nil when greetings are disabled.
func (m *Manager) AutoOpenCmd() tea.Cmd {
	m.mu.Lock()
	welcome, delay := m.welcome, m.delay
	m.mu.Unlock()

	if !welcome {
		return nil
	}
	if delay <= 0 {
		return func() tea.Msg { return AutoOpenMsg{Time: time.Now()} }
	}
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return AutoOpenMsg{Time: t}
	})
}

// GreetCmd runs Greet off the update loop.
func (m *Manager) GreetCmd(conv *conversation.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		greeted, err := m.Greet(ctx, conv)
		return GreetedMsg{Greeted: greeted, Err: err}
	}
}

// =============================================================================
// SESSION STATUS
// =============================================================================

// Status represents the current session status.
type Status struct {
	SessionID string
	Profile   string
	User      string
	StartTime time.Time
	Duration  time.Duration
}

// GetStatus returns the current session status.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		SessionID: m.sessionID,
		Profile:   m.profile,
		User:      m.identity.DisplayName(),
		StartTime: m.startTime,
		Duration:  time.Since(m.startTime),
	}
}
