// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"sync/atomic"
	"time"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser   Role = "user"
	RoleAgent  Role = "agent"
	RoleSystem Role = "system"
	RoleError  Role = "error"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAgent:
		return "Assistant"
	case RoleSystem:
		return "System"
	case RoleError:
		return "Error"
	default:
		return string(r)
	}
}

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAgent, RoleSystem, RoleError:
		return true
	}
	return false
}

// =============================================================================
// SUGGESTED ACTIONS
// =============================================================================

// SuggestedAction is a quick-reply button offered alongside an agent reply.
type SuggestedAction struct {
	Label    string `json:"label"`
	ActionID string `json:"action_id"`
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message is a single entry in the conversation history.
//
// Messages are immutable once appended, except for Read which flips from
// false to true when the conversation is opened.
type Message struct {
	ID        uint64    `json:"id"`
	Role      Role      `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`

	// Set on agent and system messages.
	AgentName    string `json:"agent_name,omitempty"`
	AgentPersona string `json:"agent_persona,omitempty"`

	SuggestedActions []SuggestedAction `json:"suggested_actions,omitempty"`

	Read bool `json:"read"`
}

// Clone returns a deep copy of the message.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	c := *m
	if m.SuggestedActions != nil {
		c.SuggestedActions = append([]SuggestedAction(nil), m.SuggestedActions...)
	}
	return &c
}

// Preview returns at most maxLen runes of the message text.
func (m *Message) Preview(maxLen int) string {
	runes := []rune(m.Text)
	if len(runes) <= maxLen {
		return m.Text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// IsFromAgent reports whether the message came back from the gateway.
func (m *Message) IsFromAgent() bool {
	return m.Role == RoleAgent
}

// =============================================================================
// ID SEQUENCE
// =============================================================================

// Sequence hands out monotonically increasing message IDs. IDs are never
// reused for the lifetime of a Sequence, including across clears.
type Sequence struct {
	last atomic.Uint64
}

// Next returns the next ID. The first ID is 1.
func (s *Sequence) Next() uint64 {
	return s.last.Add(1)
}

// Last returns the most recently issued ID, or 0.
func (s *Sequence) Last() uint64 {
	return s.last.Load()
}

// NewMessage creates a message with the next ID from seq.
func (s *Sequence) NewMessage(role Role, text string) *Message {
	return &Message{
		ID:        s.Next(),
		Role:      role,
		Text:      text,
		CreatedAt: time.Now(),
	}
}
