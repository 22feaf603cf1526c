// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// =============================================================================
// CONVERSATION STATE
// =============================================================================

// ConversationState is a point-in-time copy of everything a host renders.
// Hosts receive it by value; mutating it has no effect on the manager.
type ConversationState struct {
	Messages      []*Message `json:"messages"`
	ActivePersona *Persona   `json:"active_persona,omitempty"`
	Open          bool       `json:"open"`
	Sending       bool       `json:"sending"`
	Typing        bool       `json:"typing"`
	UnreadCount   int        `json:"unread_count"`
}

// LastMessage returns the newest message, or nil when history is empty.
func (s ConversationState) LastMessage() *Message {
	if len(s.Messages) == 0 {
		return nil
	}
	return s.Messages[len(s.Messages)-1]
}

// LastAgentMessage returns the newest agent message, or nil.
func (s ConversationState) LastAgentMessage() *Message {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleAgent {
			return s.Messages[i]
		}
	}
	return nil
}

// IsEmpty reports whether the history has no messages.
func (s ConversationState) IsEmpty() bool {
	return len(s.Messages) == 0
}

// PersonaType returns the active persona type or "".
func (s ConversationState) PersonaType() string {
	if s.ActivePersona == nil {
		return ""
	}
	return s.ActivePersona.Type
}

// Summary counts messages by origin.
type Summary struct {
	Total         int        `json:"total_messages"`
	AgentMessages int        `json:"agent_messages"`
	UserMessages  int        `json:"user_messages"`
	ActivePersona string     `json:"current_agent,omitempty"`
	LastMessageAt *time.Time `json:"last_message_time,omitempty"`
}

// Summarize builds a Summary from the state.
func (s ConversationState) Summarize() Summary {
	sum := Summary{Total: len(s.Messages), ActivePersona: s.PersonaType()}
	for _, m := range s.Messages {
		switch m.Role {
		case RoleAgent:
			sum.AgentMessages++
		case RoleUser:
			sum.UserMessages++
		}
	}
	if last := s.LastMessage(); last != nil {
		at := last.CreatedAt
		sum.LastMessageAt = &at
	}
	return sum
}
