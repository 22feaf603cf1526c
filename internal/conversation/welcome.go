// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"strings"

	"github.com/jeranaias/shopassist/internal/model"
)

// Welcome is the one-time greeting shown to first-time visitors.
type Welcome struct {
	Text        string
	AgentName   string
	PersonaType string
	Actions     []model.SuggestedAction
}

// DefaultWelcome returns the sales greeting, personalised when userName is
// known.
func DefaultWelcome(userName string) Welcome {
	greeting := "Hi there!"
	if name := strings.TrimSpace(userName); name != "" && name != "Guest" {
		greeting = "Hi " + name + "!"
	}
	return Welcome{
		Text: greeting + " Welcome to our store! I'm Emma, your personal shopping assistant. " +
			"I'm here to help you find the perfect products, answer any questions, and make your " +
			"shopping experience amazing. What can I help you with today?",
		AgentName:   "Emma - Sales Assistant",
		PersonaType: model.PersonaSales,
		Actions: []model.SuggestedAction{
			{Label: "Browse Products", ActionID: string(model.ActionBrowseProducts)},
			{Label: "Current Deals", ActionID: string(model.ActionViewDeals)},
			{Label: "Need Help?", ActionID: string(model.ActionGetHelp)},
			{Label: "My Orders", ActionID: string(model.ActionCheckOrders)},
		},
	}
}

// SeedWelcome appends w as an agent message and makes its persona active.
// It only applies to an empty conversation and reports whether it did.
func (m *Manager) SeedWelcome(w Welcome) bool {
	m.mu.Lock()
	if len(m.messages) > 0 {
		m.mu.Unlock()
		return false
	}

	msg := m.seq.NewMessage(model.RoleAgent, w.Text)
	msg.AgentName = w.AgentName
	msg.AgentPersona = w.PersonaType
	msg.SuggestedActions = append([]model.SuggestedAction(nil), w.Actions...)
	msg.Read = m.open
	if !m.open {
		m.unread++
	}
	m.messages = append(m.messages, msg)

	if w.PersonaType != "" {
		p, ok := m.findPersonaLocked(w.PersonaType)
		if !ok {
			p = model.Persona{Type: w.PersonaType, DisplayName: w.AgentName}
		}
		m.persona = &p
	}
	m.mu.Unlock()

	m.log.Debug().Str("persona", w.PersonaType).Msg("welcome message seeded")
	m.publishState()
	return true
}
