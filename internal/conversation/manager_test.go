// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopassist/internal/gateway"
	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSendMessage_AppendsUserThenAgent(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)

	reply, err := m.SendMessage(context.Background(), "Any deals on headphones?", map[string]any{"page": "home"})
	require.NoError(t, err)
	require.NotNil(t, reply)

	st := m.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, model.RoleUser, st.Messages[0].Role)
	assert.Equal(t, "Any deals on headphones?", st.Messages[0].Text)
	assert.Equal(t, model.RoleAgent, st.Messages[1].Role)
	assert.Equal(t, "We have three models on sale.", st.Messages[1].Text)
	assert.Equal(t, "Sales Assistant", st.Messages[1].AgentName)
	assert.Equal(t, model.PersonaSales, st.Messages[1].AgentPersona)
	assert.Equal(t, []model.SuggestedAction{{Label: "View Deals", ActionID: "view_deals"}}, st.Messages[1].SuggestedActions)
	assert.True(t, st.Messages[1].Read, "reply read while open")
	assert.Less(t, st.Messages[0].ID, st.Messages[1].ID)

	assert.False(t, st.Sending)
	assert.False(t, st.Typing)
	assert.Equal(t, 0, st.UnreadCount)
	require.NotNil(t, st.ActivePersona)
	assert.Equal(t, model.PersonaSales, st.ActivePersona.Type)
	assert.Equal(t, reply.ID, st.Messages[1].ID)

	assert.Equal(t, "home", g.lastChat.Context["page"])
}

func TestSendMessage_BlankInputIgnored(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	events := m.Subscribe(context.Background())

	for _, text := range []string{"", "   ", "\n\t"} {
		msg, err := m.SendMessage(context.Background(), text, nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
		assert.Nil(t, msg)
	}

	assert.True(t, m.Snapshot().IsEmpty())
	assert.Zero(t, g.chatCalls.Load())
	noNotification(t, events)
}

func TestSendMessage_ConcurrentSendRejected(t *testing.T) {
	g := newScripted()
	g.holdCalls()
	m := newTestManager(t, g, true)

	done := make(chan error, 1)
	go func() {
		_, err := m.SendMessage(context.Background(), "first", nil)
		done <- err
	}()
	<-g.entered

	st := m.Snapshot()
	require.Len(t, st.Messages, 1, "user message committed before the gateway answers")
	assert.True(t, st.Sending)
	assert.True(t, st.Typing)

	_, err := m.SendMessage(context.Background(), "second", nil)
	assert.ErrorIs(t, err, ErrSendInFlight)
	_, err = m.AskAboutProduct(context.Background(), "42", "")
	assert.ErrorIs(t, err, ErrSendInFlight)
	_, err = m.CheckOrderStatus(context.Background(), "1001")
	assert.ErrorIs(t, err, ErrSendInFlight)
	assert.Len(t, m.Snapshot().Messages, 1)

	close(g.hold)
	require.NoError(t, <-done)

	st = m.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "first", st.Messages[0].Text)
	assert.False(t, st.Sending)
	assert.Equal(t, int32(1), g.chatCalls.Load())
}

func TestSendMessage_GatewayFailureBecomesErrorMessage(t *testing.T) {
	g := newScripted()
	g.chatErr = gateway.ErrTimeout
	m := newTestManager(t, g, true)
	events := m.Subscribe(context.Background())

	msg, err := m.SendMessage(context.Background(), "hello", nil)
	require.NoError(t, err, "gateway failures are absorbed")
	require.NotNil(t, msg)
	assert.Equal(t, model.RoleError, msg.Role)
	assert.Equal(t, DefaultFallbackText, msg.Text)

	st := m.Snapshot()
	require.Len(t, st.Messages, 2)
	assert.Equal(t, model.RoleUser, st.Messages[0].Role)
	assert.Equal(t, model.RoleError, st.Messages[1].Role)
	assert.False(t, st.Sending)
	assert.False(t, st.Typing)
	assert.Nil(t, st.ActivePersona)

	n := nextNotification(t, events)
	assert.Equal(t, NotifyError, n.Kind)
	assert.Equal(t, "Failed to send message. Please try again.", n.Text)
	noNotification(t, events)

	// Still usable after a failure.
	g.mu.Lock()
	g.chatErr = nil
	g.mu.Unlock()
	msg, err = m.SendMessage(context.Background(), "again", nil)
	require.NoError(t, err)
	assert.Equal(t, model.RoleAgent, msg.Role)
}

func TestSendMessage_ClosedIncrementsUnread(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, false)
	events := m.Subscribe(context.Background())

	_, err := m.SendMessage(context.Background(), "one", nil)
	require.NoError(t, err)
	n := nextNotification(t, events)
	assert.Equal(t, NotifyNewMessage, n.Kind)
	assert.Equal(t, "Sales Assistant sent you a message", n.Text)

	_, err = m.SendMessage(context.Background(), "two", nil)
	require.NoError(t, err)

	st := m.Snapshot()
	assert.Equal(t, 2, st.UnreadCount)
	assert.False(t, st.Messages[1].Read)
	assert.False(t, st.Messages[3].Read)

	m.SetOpen(true)
	st = m.Snapshot()
	assert.Equal(t, 0, st.UnreadCount)
	for _, msg := range st.Messages {
		assert.True(t, msg.Read, "message %d unread after opening", msg.ID)
	}
}

func TestSendMessage_SessionContext(t *testing.T) {
	g := newScripted()
	m := NewManager(Options{
		Gateway:        g,
		Logger:         zerolog.Nop(),
		SessionContext: func() map[string]any { return map[string]any{"user_id": "u-9"} },
	})
	defer m.Close()

	_, err := m.SendMessage(context.Background(), "hi", nil)
	require.NoError(t, err)
	assert.Equal(t, "u-9", g.lastChat.Session["user_id"])
	assert.Equal(t, 1, g.lastChat.Session["conversation_length"])

	_, err = m.SendMessage(context.Background(), "hi again", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, g.lastChat.Session["conversation_length"])
}

func TestSendMessage_UnknownReplyPersonaStillTracked(t *testing.T) {
	g := newScripted()
	g.reply = &gateway.Reply{Text: "Hello", AgentName: "Gift Concierge", PersonaType: "gifts"}
	m := newTestManager(t, g, true)

	_, err := m.SendMessage(context.Background(), "gift ideas?", nil)
	require.NoError(t, err)

	st := m.Snapshot()
	require.NotNil(t, st.ActivePersona)
	assert.Equal(t, model.Persona{Type: "gifts", DisplayName: "Gift Concierge"}, *st.ActivePersona)
}

func TestHandleSuggestedAction(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)

	_, err := m.HandleSuggestedAction(context.Background(), "view_cart")
	require.NoError(t, err)
	assert.Equal(t, "I want to see my shopping cart", g.lastChat.Message)
	assert.Equal(t, "view_cart", g.lastChat.Context["suggested_action"])

	_, err = m.HandleSuggestedAction(context.Background(), "gift_wrap")
	require.NoError(t, err)
	assert.Equal(t, "gift_wrap", g.lastChat.Message)

	_, err = m.HandleSuggestedAction(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// =============================================================================
// PRODUCT AND ORDER TESTS
// =============================================================================

func TestAskAboutProduct_DefaultQuestionAndOpens(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, false)

	msg, err := m.AskAboutProduct(context.Background(), " 42 ", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleAgent, msg.Role)
	assert.Equal(t, [2]string{"42", DefaultProductQuestion}, g.lastProduct)

	st := m.Snapshot()
	assert.True(t, st.Open)
	assert.Equal(t, 0, st.UnreadCount)
	require.Len(t, st.Messages, 2)
	assert.Equal(t, DefaultProductQuestion, st.Messages[0].Text)
	assert.True(t, st.Messages[1].Read)

	_, err = m.AskAboutProduct(context.Background(), "42", "Is it waterproof?")
	require.NoError(t, err)
	assert.Equal(t, "Is it waterproof?", g.lastProduct[1])

	_, err = m.AskAboutProduct(context.Background(), "  ", "question")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestAskAboutProduct_Failure(t *testing.T) {
	g := newScripted()
	g.chatErr = gateway.ErrUnavailable
	m := newTestManager(t, g, false)
	events := m.Subscribe(context.Background())

	msg, err := m.AskAboutProduct(context.Background(), "42", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleError, msg.Role)
	assert.True(t, m.Snapshot().Open)

	n := nextNotification(t, events)
	assert.Equal(t, NotifyError, n.Kind)
	assert.Equal(t, "Failed to get product information", n.Text)
}

func TestCheckOrderStatus(t *testing.T) {
	g := newScripted()
	g.reply = &gateway.Reply{Text: "Order #1001 shipped.", AgentName: "Customer Support", PersonaType: model.PersonaSupport}
	m := newTestManager(t, g, false)
	_, err := m.LoadPersonas(context.Background())
	require.NoError(t, err)

	_, err = m.CheckOrderStatus(context.Background(), "#1001")
	require.NoError(t, err)
	assert.Equal(t, "1001", g.lastOrder)

	st := m.Snapshot()
	assert.True(t, st.Open)
	require.Len(t, st.Messages, 2)
	assert.Equal(t, "Can you give me an update on my order #1001?", st.Messages[0].Text)
	assert.Equal(t, "Customer Support", st.ActivePersona.DisplayName)
	assert.Equal(t, model.DefaultPersonas()[2].Description, st.ActivePersona.Description)

	_, err = m.CheckOrderStatus(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyInput)
}

// =============================================================================
// PERSONA TESTS
// =============================================================================

func TestLoadPersonas_CachedAndShared(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			personas, err := m.LoadPersonas(context.Background())
			assert.NoError(t, err)
			assert.Len(t, personas, 3)
		}()
	}
	wg.Wait()

	_, err := m.LoadPersonas(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, g.listCalls.Load(), int32(8))
	calls := g.listCalls.Load()
	_, _ = m.LoadPersonas(context.Background())
	assert.Equal(t, calls, g.listCalls.Load(), "cached after first load")

	assert.True(t, m.IsPersonaAvailable(model.PersonaSupport))
	assert.False(t, m.IsPersonaAvailable("wizard"))
	p, ok := m.PersonaByType(model.PersonaProductExpert)
	require.True(t, ok)
	assert.Equal(t, "Product Expert", p.DisplayName)
}

func TestLoadPersonas_Failure(t *testing.T) {
	g := newScripted()
	g.listErr = gateway.ErrUnauthorized
	m := newTestManager(t, g, true)

	_, err := m.LoadPersonas(context.Background())
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.True(t, gateway.IsUnauthorized(err))
	assert.Empty(t, m.Personas())
}

func TestSwitchAgent(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	events := m.Subscribe(context.Background())

	// Nothing loaded yet: every persona is unknown.
	err := m.SwitchAgent(context.Background(), model.PersonaSupport)
	assert.ErrorIs(t, err, ErrInvalidPersona)

	_, err = m.LoadPersonas(context.Background())
	require.NoError(t, err)

	err = m.SwitchAgent(context.Background(), "wizard")
	assert.ErrorIs(t, err, ErrInvalidPersona)
	assert.Empty(t, g.switchCalls)
	assert.True(t, m.Snapshot().IsEmpty())

	require.NoError(t, m.SwitchAgent(context.Background(), model.PersonaSupport))
	st := m.Snapshot()
	require.Len(t, st.Messages, 1)
	sys := st.Messages[0]
	assert.Equal(t, model.RoleSystem, sys.Role)
	assert.Equal(t, "Switched to Customer Support. How can I help you?", sys.Text)
	assert.Equal(t, model.PersonaActions(model.PersonaSupport), sys.SuggestedActions)
	assert.Equal(t, model.PersonaSupport, st.PersonaType())

	n := nextNotification(t, events)
	assert.Equal(t, NotifySuccess, n.Kind)
	assert.Equal(t, "Switched to Customer Support", n.Text)

	// Same persona: no gateway call, no message.
	require.NoError(t, m.SwitchAgent(context.Background(), model.PersonaSupport))
	assert.Len(t, m.Snapshot().Messages, 1)
	assert.Equal(t, []string{model.PersonaSupport}, g.switchCalls)
}

func TestSwitchAgent_GatewayFailureLeavesState(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	_, err := m.LoadPersonas(context.Background())
	require.NoError(t, err)
	_, err = m.SendMessage(context.Background(), "hi", nil)
	require.NoError(t, err)
	before := m.Snapshot()
	events := m.Subscribe(context.Background())

	g.switchErr = gateway.ErrUnavailable
	err = m.SwitchAgent(context.Background(), model.PersonaProductExpert)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrGatewayUnavailable)
	assert.True(t, errors.Is(err, gateway.ErrUnavailable))

	after := m.Snapshot()
	assert.Equal(t, before.Messages, after.Messages)
	assert.Equal(t, model.PersonaSales, after.PersonaType())

	n := nextNotification(t, events)
	assert.Equal(t, NotifyError, n.Kind)
}

// =============================================================================
// VISIBILITY AND CLEAR TESTS
// =============================================================================

func TestClear_KeepsOpenAndIDsMonotonic(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, false)

	_, err := m.SendMessage(context.Background(), "hi", nil)
	require.NoError(t, err)
	lastID := m.Snapshot().LastMessage().ID
	require.Equal(t, 1, m.Snapshot().UnreadCount)

	m.Clear()
	st := m.Snapshot()
	assert.True(t, st.IsEmpty())
	assert.Nil(t, st.ActivePersona)
	assert.Equal(t, 0, st.UnreadCount)
	assert.False(t, st.Open, "clear does not change visibility")

	m.SetOpen(true)
	m.Clear()
	assert.True(t, m.Snapshot().Open)

	_, err = m.SendMessage(context.Background(), "after clear", nil)
	require.NoError(t, err)
	assert.Greater(t, m.Snapshot().Messages[0].ID, lastID)
}

func TestClear_DuringSendDropsLateReply(t *testing.T) {
	g := newScripted()
	g.holdCalls()
	m := newTestManager(t, g, true)

	done := make(chan error, 1)
	go func() {
		_, err := m.SendMessage(context.Background(), "slow", nil)
		done <- err
	}()
	<-g.entered

	m.Clear()
	assert.True(t, m.Snapshot().Sending, "send still outstanding")
	_, err := m.SendMessage(context.Background(), "blocked", nil)
	assert.ErrorIs(t, err, ErrSendInFlight)

	close(g.hold)
	assert.ErrorIs(t, <-done, ErrConversationReset)

	st := m.Snapshot()
	assert.True(t, st.IsEmpty())
	assert.False(t, st.Sending)
	assert.False(t, st.Typing)
}

func TestClear_DuringSwitchDropsLateSwitch(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	_, err := m.LoadPersonas(context.Background())
	require.NoError(t, err)
	g.holdCalls()

	done := make(chan error, 1)
	go func() {
		done <- m.SwitchAgent(context.Background(), model.PersonaSupport)
	}()
	<-g.entered

	m.Clear()
	close(g.hold)
	assert.ErrorIs(t, <-done, ErrConversationReset)
	assert.True(t, IsSilent(ErrConversationReset))

	st := m.Snapshot()
	assert.True(t, st.IsEmpty())
	assert.Nil(t, st.ActivePersona)
}

func TestSwitchAgent_OverlappingSwitchesAnnounceOnce(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	_, err := m.LoadPersonas(context.Background())
	require.NoError(t, err)
	g.holdCalls()

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.SwitchAgent(context.Background(), model.PersonaSupport)
		}()
	}
	<-g.entered
	<-g.entered
	close(g.hold)
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	st := m.Snapshot()
	require.Len(t, st.Messages, 1)
	assert.Equal(t, model.RoleSystem, st.Messages[0].Role)
	assert.Equal(t, model.PersonaSupport, st.PersonaType())
}

func TestReset_ClosesAndClears(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	_, err := m.SendMessage(context.Background(), "hi", nil)
	require.NoError(t, err)

	m.Reset()
	st := m.Snapshot()
	assert.True(t, st.IsEmpty())
	assert.False(t, st.Open)
	assert.Nil(t, st.ActivePersona)
}

func TestToggle(t *testing.T) {
	m := newTestManager(t, newScripted(), false)
	assert.True(t, m.Toggle())
	assert.True(t, m.Snapshot().Open)
	assert.False(t, m.Toggle())
	m.SetOpen(false)
	assert.False(t, m.Snapshot().Open)
}

// =============================================================================
// SNAPSHOT AND WELCOME TESTS
// =============================================================================

func TestSnapshot_IsIsolated(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	_, err := m.SendMessage(context.Background(), "hi", nil)
	require.NoError(t, err)

	st := m.Snapshot()
	st.Messages[1].Text = "tampered"
	st.Messages[1].SuggestedActions[0].Label = "tampered"
	st.ActivePersona.DisplayName = "tampered"
	st.Messages = st.Messages[:0]

	again := m.Snapshot()
	require.Len(t, again.Messages, 2)
	assert.Equal(t, "We have three models on sale.", again.Messages[1].Text)
	assert.Equal(t, "View Deals", again.Messages[1].SuggestedActions[0].Label)
	assert.Equal(t, "Sales Assistant", again.ActivePersona.DisplayName)
}

func TestSeedWelcome(t *testing.T) {
	m := newTestManager(t, newScripted(), true)

	require.True(t, m.SeedWelcome(DefaultWelcome("Ada")))
	assert.False(t, m.SeedWelcome(DefaultWelcome("Ada")), "only once")

	st := m.Snapshot()
	require.Len(t, st.Messages, 1)
	w := st.Messages[0]
	assert.Equal(t, model.RoleAgent, w.Role)
	assert.Contains(t, w.Text, "Hi Ada!")
	assert.Equal(t, "Emma - Sales Assistant", w.AgentName)
	assert.Len(t, w.SuggestedActions, 4)
	assert.True(t, w.Read)
	assert.Equal(t, model.PersonaSales, st.PersonaType())
	assert.Equal(t, 0, st.UnreadCount)

	closed := newTestManager(t, newScripted(), false)
	closed.SeedWelcome(DefaultWelcome(""))
	assert.Equal(t, 1, closed.Snapshot().UnreadCount)
	assert.Contains(t, closed.Snapshot().Messages[0].Text, "Hi there!")
}

func TestSummary(t *testing.T) {
	g := newScripted()
	m := newTestManager(t, g, true)
	_, _ = m.SendMessage(context.Background(), "a", nil)
	_, _ = m.SendMessage(context.Background(), "b", nil)

	sum := m.Summary()
	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, 2, sum.UserMessages)
	assert.Equal(t, 2, sum.AgentMessages)
	assert.Equal(t, model.PersonaSales, sum.ActivePersona)
	require.NotNil(t, sum.LastMessageAt)
	assert.WithinDuration(t, time.Now(), *sum.LastMessageAt, time.Minute)
}

func TestManager_AfterCloseDoesNotPanic(t *testing.T) {
	m := NewManager(Options{Gateway: newScripted(), Logger: zerolog.Nop()})
	events := m.Subscribe(context.Background())
	m.Close()

	_, ok := <-events
	assert.False(t, ok)
	_, err := m.SendMessage(context.Background(), "late", nil)
	assert.NoError(t, err)
	assert.Len(t, m.Snapshot().Messages, 2)
}
