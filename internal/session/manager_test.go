// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/gateway"
	"github.com/jeranaias/shopassist/internal/model"
)

func newConv(t *testing.T, sess *Manager) *conversation.Manager {
	t.Helper()
	conv := conversation.NewManager(conversation.Options{
		Gateway:        gateway.NewOffline(),
		Logger:         zerolog.Nop(),
		SessionContext: sess.SessionContext,
	})
	t.Cleanup(conv.Close)
	return conv
}

type brokenStore struct{ MemoryStore }

func (*brokenStore) MarkVisited(context.Context, string) (bool, error) {
	return false, errors.New("store down")
}

func TestNewManager(t *testing.T) {
	m := NewManager(Config{Profile: "  shopper  "}, nil, zerolog.Nop())

	_, err := uuid.Parse(m.SessionID())
	assert.NoError(t, err, "session ID is a uuid")
	assert.Equal(t, "shopper", m.Profile())
	assert.False(t, m.StartTime().IsZero())
	assert.True(t, m.Identity().Anonymous())
}

func TestNewManager_DefaultProfile(t *testing.T) {
	m := NewManager(Config{}, nil, zerolog.Nop())
	assert.NotEmpty(t, m.Profile())
}

func TestSessionContext(t *testing.T) {
	m := NewManager(DefaultConfig(), nil, zerolog.Nop())

	ctx := m.SessionContext()
	assert.Equal(t, map[string]any{"session_id": m.SessionID()}, ctx)

	m.SetIdentity(gateway.Identity{UserID: "42", Name: "Ada", Email: "ada@example.com"})
	ctx = m.SessionContext()
	assert.Equal(t, "42", ctx["user_id"])
	assert.Equal(t, "Ada", ctx["user_name"])
	assert.Equal(t, "ada@example.com", ctx["user_email"])
	assert.Equal(t, m.SessionID(), ctx["session_id"])
}

func TestGreet_FirstVisit(t *testing.T) {
	m := NewManager(Config{Profile: "p", Welcome: true}, NewMemoryStore(), zerolog.Nop())
	m.SetIdentity(gateway.Identity{UserID: "7", Name: "Ada"})
	conv := newConv(t, m)

	greeted, err := m.Greet(context.Background(), conv)
	require.NoError(t, err)
	assert.True(t, greeted)

	st := conv.Snapshot()
	assert.True(t, st.Open)
	assert.Zero(t, st.UnreadCount)
	require.Len(t, st.Messages, 1)
	msg := st.Messages[0]
	assert.Equal(t, model.RoleAgent, msg.Role)
	assert.True(t, strings.HasPrefix(msg.Text, "Hi Ada! Welcome to our store!"))
	assert.True(t, msg.Read)
	assert.Len(t, msg.SuggestedActions, 4)
	require.NotNil(t, st.ActivePersona)
	assert.Equal(t, model.PersonaSales, st.ActivePersona.Type)

	greeted, err = m.Greet(context.Background(), conv)
	require.NoError(t, err)
	assert.False(t, greeted, "only once per session")
}

func TestGreet_ReturningVisitor(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.MarkVisited(context.Background(), "p")
	require.NoError(t, err)

	m := NewManager(Config{Profile: "p", Welcome: true}, store, zerolog.Nop())
	conv := newConv(t, m)

	greeted, err := m.Greet(context.Background(), conv)
	require.NoError(t, err)
	assert.False(t, greeted)
	assert.True(t, conv.Snapshot().IsEmpty())
	assert.False(t, conv.Snapshot().Open)
}

func TestGreet_Disabled(t *testing.T) {
	store := NewMemoryStore()
	m := NewManager(Config{Profile: "p", Welcome: false}, store, zerolog.Nop())
	conv := newConv(t, m)

	greeted, err := m.Greet(context.Background(), conv)
	require.NoError(t, err)
	assert.False(t, greeted)

	first, _ := store.MarkVisited(context.Background(), "p")
	assert.True(t, first, "disabled greeting leaves the marker unset")
	assert.Nil(t, m.AutoOpenCmd())
}

func TestGreet_StoreError(t *testing.T) {
	m := NewManager(Config{Profile: "p", Welcome: true}, &brokenStore{}, zerolog.Nop())
	conv := newConv(t, m)

	greeted, err := m.Greet(context.Background(), conv)
	assert.Error(t, err)
	assert.False(t, greeted)
	assert.True(t, conv.Snapshot().IsEmpty())
}

func TestGreet_NonEmptyConversation(t *testing.T) {
	m := NewManager(Config{Profile: "p", Welcome: true}, NewMemoryStore(), zerolog.Nop())
	conv := newConv(t, m)
	_, err := conv.SendMessage(context.Background(), "hello", nil)
	require.NoError(t, err)
	before := len(conv.Snapshot().Messages)

	greeted, err := m.Greet(context.Background(), conv)
	require.NoError(t, err)
	assert.True(t, greeted, "the panel still opens")
	assert.Len(t, conv.Snapshot().Messages, before, "no welcome over an existing history")
	assert.True(t, conv.Snapshot().Open)
}

func TestForget(t *testing.T) {
	m := NewManager(Config{Profile: "p", Welcome: true}, NewMemoryStore(), zerolog.Nop())
	conv := newConv(t, m)

	greeted, _ := m.Greet(context.Background(), conv)
	require.True(t, greeted)

	require.NoError(t, m.Forget(context.Background()))
	conv.Clear()
	greeted, err := m.Greet(context.Background(), conv)
	require.NoError(t, err)
	assert.True(t, greeted)
}

func TestSignOut(t *testing.T) {
	m := NewManager(Config{Profile: "p", Welcome: true}, NewMemoryStore(), zerolog.Nop())
	m.SetIdentity(gateway.Identity{UserID: "7"})
	conv := newConv(t, m)
	conv.SetOpen(true)
	_, err := conv.SendMessage(context.Background(), "hello", nil)
	require.NoError(t, err)
	oldID := m.SessionID()

	m.SignOut(conv)

	st := conv.Snapshot()
	assert.True(t, st.IsEmpty())
	assert.False(t, st.Open)
	assert.Nil(t, st.ActivePersona)
	assert.True(t, m.Identity().Anonymous())
	assert.NotEqual(t, oldID, m.SessionID())
}

func TestSignOut_RunsHook(t *testing.T) {
	calls := 0
	m := NewManager(Config{Profile: "p", OnSignOut: func() { calls++ }}, NewMemoryStore(), zerolog.Nop())
	conv := newConv(t, m)

	m.SignOut(conv)
	m.SignOut(conv)
	assert.Equal(t, 2, calls)
}

func TestAutoOpenCmd(t *testing.T) {
	m := NewManager(Config{Profile: "p", Welcome: true}, nil, zerolog.Nop())
	cmd := m.AutoOpenCmd()
	require.NotNil(t, cmd)
	_, ok := cmd().(AutoOpenMsg)
	assert.True(t, ok, "zero delay fires immediately")

	m = NewManager(Config{Profile: "p", Welcome: true, AutoOpenDelay: 10 * time.Millisecond}, nil, zerolog.Nop())
	start := time.Now()
	msg := m.AutoOpenCmd()()
	assert.IsType(t, AutoOpenMsg{}, msg)
	assert.GreaterOrEqual(t, time.Since(start), 5*time.Millisecond)
}

func TestGreetCmd(t *testing.T) {
	m := NewManager(Config{Profile: "p", Welcome: true}, nil, zerolog.Nop())
	conv := newConv(t, m)

	msg := m.GreetCmd(conv)()
	greeted, ok := msg.(GreetedMsg)
	require.True(t, ok)
	assert.True(t, greeted.Greeted)
	assert.NoError(t, greeted.Err)
}

func TestGetStatus(t *testing.T) {
	m := NewManager(Config{Profile: "p"}, nil, zerolog.Nop())
	m.SetIdentity(gateway.Identity{UserID: "1", Email: "x@example.com"})

	st := m.GetStatus()
	assert.Equal(t, m.SessionID(), st.SessionID)
	assert.Equal(t, "p", st.Profile)
	assert.Equal(t, "x@example.com", st.User)
	assert.GreaterOrEqual(t, st.Duration, time.Duration(0))
}
