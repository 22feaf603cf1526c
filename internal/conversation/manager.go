// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the shopper's conversation with the agent
// gateway: history, active persona, visibility, busy flags and unread count.
package conversation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jeranaias/shopassist/internal/gateway"
	"github.com/jeranaias/shopassist/internal/model"
	"github.com/jeranaias/shopassist/internal/util"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultProductQuestion is asked when the caller supplies none.
	DefaultProductQuestion = "Tell me about this product"

	// DefaultFallbackText is shown in place of a reply when the gateway fails.
	DefaultFallbackText = "Sorry, I encountered an error. Please try again or refresh the page."

	orderQuestionFormat = "Can you give me an update on my order #%s?"
)

// Options configures a Manager. Only Gateway is required.
type Options struct {
	Gateway gateway.Gateway
	Logger  zerolog.Logger

	// SessionContext supplies ambient identity keys sent with every chat
	// turn. May be nil.
	SessionContext func() map[string]any

	ProductQuestion string
	FallbackText    string

	// Open sets the initial visibility.
	Open bool
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager is the single owner of conversation state. All methods are safe
// for concurrent use; gateway calls run without the lock held so the host
// stays responsive while a reply is pending.
type Manager struct {
	gw             gateway.Gateway
	log            zerolog.Logger
	events         *Broadcaster
	sessionContext func() map[string]any
	productQ       string
	fallback       string

	seq     model.Sequence
	loadGrp singleflight.Group

	mu       sync.Mutex
	messages []*model.Message
	persona  *model.Persona
	open     bool
	sending  bool
	typing   bool
	unread   int
	epoch    uint64
	personas []model.Persona
	loaded   bool
}

// NewManager creates a Manager in the idle state with an empty history.
func NewManager(opts Options) *Manager {
	if opts.Gateway == nil {
		panic("conversation: nil gateway")
	}
	if opts.ProductQuestion == "" {
		opts.ProductQuestion = DefaultProductQuestion
	}
	if opts.FallbackText == "" {
		opts.FallbackText = DefaultFallbackText
	}
	logger := opts.Logger.With().Str("component", "conversation").Logger()
	return &Manager{
		gw:             opts.Gateway,
		log:            logger,
		events:         NewBroadcaster(opts.Logger),
		sessionContext: opts.SessionContext,
		productQ:       opts.ProductQuestion,
		fallback:       opts.FallbackText,
		open:           opts.Open,
	}
}

// Subscribe returns a channel of state and notification events. The channel
// closes when ctx is done or the manager is closed.
func (m *Manager) Subscribe(ctx context.Context) <-chan Event {
	ch, _ := m.events.Subscribe(ctx)
	return ch
}

// Close releases subscribers. Operations still in flight complete normally
// but their events go nowhere.
func (m *Manager) Close() {
	m.events.Close()
}

// =============================================================================
// SENDING
// =============================================================================

// SendMessage records text as a user message, asks the gateway for a reply
// and records the outcome. The returned message is the agent reply, or the
// error-role fallback when the gateway failed; gateway failures are never
// returned as errors. ErrEmptyInput and ErrSendInFlight leave state untouched.
func (m *Manager) SendMessage(ctx context.Context, text string, extra map[string]any) (*model.Message, error) {
	if util.IsBlank(text) {
		return nil, ErrEmptyInput
	}
	return m.send(ctx, sendOp{
		name:     "chat",
		userText: text,
		failText: "Failed to send message. Please try again.",
		call: func(ctx context.Context, session map[string]any) (*gateway.Reply, error) {
			return m.gw.Chat(ctx, gateway.ChatRequest{Message: text, Context: extra, Session: session})
		},
	})
}

// AskAboutProduct asks the product endpoint about productID and opens the
// conversation. A blank question becomes DefaultProductQuestion.
func (m *Manager) AskAboutProduct(ctx context.Context, productID, question string) (*model.Message, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, ErrEmptyInput
	}
	q := strings.TrimSpace(question)
	if q == "" {
		q = m.productQ
	}
	return m.send(ctx, sendOp{
		name:      "product_inquiry",
		userText:  q,
		failText:  "Failed to get product information",
		forceOpen: true,
		call: func(ctx context.Context, _ map[string]any) (*gateway.Reply, error) {
			return m.gw.ProductInquiry(ctx, productID, q)
		},
	})
}

// CheckOrderStatus asks the order endpoint about orderID and opens the
// conversation.
func (m *Manager) CheckOrderStatus(ctx context.Context, orderID string) (*model.Message, error) {
	orderID = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(orderID), "#"))
	if orderID == "" {
		return nil, ErrEmptyInput
	}
	return m.send(ctx, sendOp{
		name:      "order_status",
		userText:  fmt.Sprintf(orderQuestionFormat, orderID),
		failText:  "Failed to get order status",
		forceOpen: true,
		call: func(ctx context.Context, _ map[string]any) (*gateway.Reply, error) {
			return m.gw.OrderStatus(ctx, orderID)
		},
	})
}

// HandleSuggestedAction sends the follow-up text for a suggested action.
// Unrecognised identifiers are sent verbatim.
func (m *Manager) HandleSuggestedAction(ctx context.Context, actionID string) (*model.Message, error) {
	action := model.ParseAction(actionID)
	if !action.Known() {
		m.log.Debug().Str("action", actionID).Msg("forwarding unrecognised action verbatim")
	}
	return m.SendMessage(ctx, action.FollowUpText(), map[string]any{"suggested_action": actionID})
}

type sendOp struct {
	name      string
	userText  string
	failText  string
	forceOpen bool
	call      func(ctx context.Context, session map[string]any) (*gateway.Reply, error)
}

// send runs the two-phase update shared by every sending operation: the
// user message and busy flags are committed before the gateway is called,
// and the reply (or fallback) is committed after.
func (m *Manager) send(ctx context.Context, op sendOp) (*model.Message, error) {
	m.mu.Lock()
	if m.sending {
		m.mu.Unlock()
		return nil, ErrSendInFlight
	}
	if op.forceOpen {
		m.openLocked()
	}
	user := m.seq.NewMessage(model.RoleUser, op.userText)
	user.Read = true
	m.messages = append(m.messages, user)
	m.sending, m.typing = true, true
	epoch := m.epoch
	session := m.sessionLocked()
	m.mu.Unlock()
	m.publishState()

	reply, err := op.call(ctx, session)

	m.mu.Lock()
	m.sending, m.typing = false, false
	if epoch != m.epoch {
		m.mu.Unlock()
		m.log.Debug().Str("op", op.name).Msg("dropping reply for a cleared conversation")
		m.publishState()
		return nil, ErrConversationReset
	}

	var resolved *model.Message
	var note *Notification
	if err != nil {
		m.log.Warn().Err(err).Str("op", op.name).Str("error_type", gateway.TypeOf(err).String()).Msg("gateway call failed")
		resolved = m.seq.NewMessage(model.RoleError, m.fallback)
		resolved.Read = true
		note = &Notification{Kind: NotifyError, Text: op.failText, MessageID: resolved.ID}
	} else {
		resolved = m.agentMessageLocked(reply)
		if !m.open {
			m.unread++
			note = &Notification{
				Kind:      NotifyNewMessage,
				Text:      resolved.AgentName + " sent you a message",
				Persona:   resolved.AgentPersona,
				MessageID: resolved.ID,
			}
		}
	}
	m.messages = append(m.messages, resolved)
	out := resolved.Clone()
	m.mu.Unlock()

	m.publishState()
	if note != nil {
		m.notify(*note)
	}
	return out, nil
}

// agentMessageLocked builds the agent message for reply and makes the
// replying persona active.
func (m *Manager) agentMessageLocked(reply *gateway.Reply) *model.Message {
	msg := m.seq.NewMessage(model.RoleAgent, reply.Text)
	msg.AgentName = reply.AgentName
	msg.AgentPersona = reply.PersonaType
	msg.SuggestedActions = append([]model.SuggestedAction(nil), reply.SuggestedActions...)
	msg.Read = m.open

	if reply.PersonaType != "" {
		p, ok := m.findPersonaLocked(reply.PersonaType)
		if !ok {
			p = model.Persona{Type: reply.PersonaType, DisplayName: reply.AgentName}
		}
		m.persona = &p
	}
	if msg.AgentName == "" && m.persona != nil {
		msg.AgentName = m.persona.DisplayName
	}
	return msg
}

func (m *Manager) sessionLocked() map[string]any {
	session := map[string]any{"conversation_length": len(m.messages)}
	if m.sessionContext != nil {
		for k, v := range m.sessionContext() {
			session[k] = v
		}
	}
	return session
}

// =============================================================================
// PERSONAS
// =============================================================================

// LoadPersonas fetches the persona set once per session. Concurrent callers
// share one gateway call; later calls return the cached set.
func (m *Manager) LoadPersonas(ctx context.Context) ([]model.Persona, error) {
	m.mu.Lock()
	if m.loaded {
		out := append([]model.Persona(nil), m.personas...)
		m.mu.Unlock()
		return out, nil
	}
	m.mu.Unlock()

	v, err, _ := m.loadGrp.Do("personas", func() (any, error) {
		personas, err := m.gw.ListPersonas(ctx)
		if err != nil {
			return nil, err
		}
		m.mu.Lock()
		m.personas = append([]model.Persona(nil), personas...)
		m.loaded = true
		m.mu.Unlock()
		m.log.Debug().Int("count", len(personas)).Msg("personas loaded")
		return personas, nil
	})
	if err != nil {
		m.log.Warn().Err(err).Msg("failed to load personas")
		return nil, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	return append([]model.Persona(nil), v.([]model.Persona)...), nil
}

// Personas returns the loaded persona set, or nil before LoadPersonas.
func (m *Manager) Personas() []model.Persona {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Persona(nil), m.personas...)
}

// PersonaByType looks up a loaded persona.
func (m *Manager) PersonaByType(personaType string) (model.Persona, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.findPersonaLocked(personaType)
}

// IsPersonaAvailable reports whether personaType is in the loaded set.
func (m *Manager) IsPersonaAvailable(personaType string) bool {
	_, ok := m.PersonaByType(personaType)
	return ok
}

func (m *Manager) isActiveLocked(personaType string) bool {
	return m.persona != nil && m.persona.Type == personaType
}

func (m *Manager) findPersonaLocked(personaType string) (model.Persona, bool) {
	for _, p := range m.personas {
		if p.Type == personaType {
			return p, true
		}
	}
	return model.Persona{}, false
}

// SwitchAgent makes personaType the active persona. Switching to the
// already active persona is a no-op, also when an overlapping switch to the
// same persona lands first. On gateway failure history is left unchanged and
// the error is returned. A switch that outlives a Clear or Reset is dropped
// with ErrConversationReset.
func (m *Manager) SwitchAgent(ctx context.Context, personaType string) error {
	personaType = strings.TrimSpace(personaType)

	m.mu.Lock()
	p, ok := m.findPersonaLocked(personaType)
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrInvalidPersona, personaType)
	}
	if m.isActiveLocked(personaType) {
		m.mu.Unlock()
		return nil
	}
	epoch := m.epoch
	m.mu.Unlock()

	if err := m.gw.SwitchPersona(ctx, personaType); err != nil {
		m.log.Warn().Err(err).Str("persona", personaType).Msg("persona switch failed")
		m.notify(Notification{Kind: NotifyError, Text: "Failed to switch agent", Persona: personaType})
		return fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	m.mu.Lock()
	if epoch != m.epoch {
		m.mu.Unlock()
		m.log.Debug().Str("persona", personaType).Msg("dropping switch for a cleared conversation")
		return ErrConversationReset
	}
	if m.isActiveLocked(personaType) {
		m.mu.Unlock()
		return nil
	}
	msg := m.seq.NewMessage(model.RoleSystem, fmt.Sprintf("Switched to %s. How can I help you?", p.DisplayName))
	msg.AgentName = p.DisplayName
	msg.AgentPersona = p.Type
	msg.SuggestedActions = model.PersonaActions(p.Type)
	msg.Read = true
	m.messages = append(m.messages, msg)
	m.persona = &p
	m.mu.Unlock()

	m.log.Info().Str("persona", personaType).Msg("persona switched")
	m.publishState()
	m.notify(Notification{Kind: NotifySuccess, Text: "Switched to " + p.DisplayName, Persona: p.Type, MessageID: msg.ID})
	return nil
}

// =============================================================================
// VISIBILITY AND RESET
// =============================================================================

// SetOpen shows or hides the conversation. Opening zeroes the unread count
// and marks every message read.
func (m *Manager) SetOpen(visible bool) {
	m.mu.Lock()
	changed := m.open != visible || (visible && m.unread > 0)
	if visible {
		m.openLocked()
	} else {
		m.open = false
	}
	m.mu.Unlock()

	if changed {
		m.publishState()
	}
}

// Toggle flips visibility and returns the new value.
func (m *Manager) Toggle() bool {
	m.mu.Lock()
	visible := !m.open
	m.mu.Unlock()
	m.SetOpen(visible)
	return visible
}

func (m *Manager) openLocked() {
	m.open = true
	m.unread = 0
	for _, msg := range m.messages {
		msg.Read = true
	}
}

// Clear empties history, forgets the active persona and zeroes the unread
// count. Visibility is unchanged. A reply still in flight is dropped when it
// arrives.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.clearLocked()
	m.mu.Unlock()

	m.log.Info().Msg("conversation cleared")
	m.publishState()
	m.notify(Notification{Kind: NotifySuccess, Text: "Conversation cleared"})
}

// Reset is Clear plus closing the conversation. Used on sign-out.
func (m *Manager) Reset() {
	m.mu.Lock()
	m.clearLocked()
	m.open = false
	m.mu.Unlock()

	m.log.Info().Msg("conversation reset")
	m.publishState()
}

func (m *Manager) clearLocked() {
	m.messages = nil
	m.persona = nil
	m.unread = 0
	m.epoch++
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Snapshot returns a deep copy of the current state.
func (m *Manager) Snapshot() model.ConversationState {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := model.ConversationState{
		Messages:    make([]*model.Message, len(m.messages)),
		Open:        m.open,
		Sending:     m.sending,
		Typing:      m.typing,
		UnreadCount: m.unread,
	}
	for i, msg := range m.messages {
		st.Messages[i] = msg.Clone()
	}
	if m.persona != nil {
		p := *m.persona
		st.ActivePersona = &p
	}
	return st
}

// Summary counts the current history.
func (m *Manager) Summary() model.Summary {
	return m.Snapshot().Summarize()
}

func (m *Manager) publishState() {
	m.events.Publish(Event{Kind: EventStateChanged})
}

func (m *Manager) notify(n Notification) {
	m.events.Publish(Event{Kind: EventNotification, Notification: n})
}
