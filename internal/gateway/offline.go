// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// OFFLINE GATEWAY
// =============================================================================

// Offline is an in-process Gateway with canned answers. It lets the client
// run without a backend, for demos and for trying the UI.
type Offline struct {
	mu       sync.Mutex
	personas []model.Persona
	active   string
}

var _ Gateway = (*Offline)(nil)

// NewOffline returns an offline gateway serving the default personas,
// starting with sales.
func NewOffline() *Offline {
	return &Offline{personas: model.DefaultPersonas(), active: model.PersonaSales}
}

// ListPersonas returns the default personas.
func (o *Offline) ListPersonas(ctx context.Context) ([]model.Persona, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("list personas", err)
	}
	return append([]model.Persona(nil), o.personas...), nil
}

// Chat answers from a small keyword table.
func (o *Offline) Chat(ctx context.Context, req ChatRequest) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("chat", err)
	}
	o.mu.Lock()
	persona := o.route(req.Message)
	o.active = persona.Type
	o.mu.Unlock()

	text := cannedAnswer(persona.Type, req.Message)
	if name, ok := req.Session["user_name"].(string); ok && name != "" {
		text = "Thanks, " + name + ". " + text
	}
	return &Reply{
		Text:             text,
		AgentName:        persona.DisplayName,
		PersonaType:      persona.Type,
		SuggestedActions: model.PersonaActions(persona.Type),
	}, nil
}

// SwitchPersona changes the active persona.
func (o *Offline) SwitchPersona(ctx context.Context, personaType string) error {
	if err := ctx.Err(); err != nil {
		return transportError("switch agent", err)
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.find(personaType); !ok {
		return &ClientError{Type: ErrTypeInvalidPersona, Message: "invalid agent type", StatusCode: 400}
	}
	o.active = personaType
	return nil
}

// ProductInquiry always answers as the product expert.
func (o *Offline) ProductInquiry(ctx context.Context, productID, question string) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("product inquiry", err)
	}
	o.mu.Lock()
	p, _ := o.find(model.PersonaProductExpert)
	o.active = p.Type
	o.mu.Unlock()
	return &Reply{
		Text:             fmt.Sprintf("Product %s is in stock and ships within two business days. You asked: %q", productID, question),
		AgentName:        p.DisplayName,
		PersonaType:      p.Type,
		SuggestedActions: model.PersonaActions(p.Type),
	}, nil
}

// OrderStatus always answers as support.
func (o *Offline) OrderStatus(ctx context.Context, orderID string) (*Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, transportError("order status", err)
	}
	o.mu.Lock()
	p, _ := o.find(model.PersonaSupport)
	o.active = p.Type
	o.mu.Unlock()
	return &Reply{
		Text:             fmt.Sprintf("Order #%s has shipped and is on its way.", orderID),
		AgentName:        p.DisplayName,
		PersonaType:      p.Type,
		SuggestedActions: model.PersonaActions(p.Type),
	}, nil
}

// route picks the persona for a message the way the backend router does:
// order and return words go to support, spec and comparison words go to the
// product expert, anything else stays with the active persona.
func (o *Offline) route(msg string) model.Persona {
	lower := strings.ToLower(msg)
	target := o.active
	switch {
	case containsAny(lower, "order", "return", "refund", "account", "shipping"):
		target = model.PersonaSupport
	case containsAny(lower, "spec", "compare", "compatib", "review"):
		target = model.PersonaProductExpert
	case containsAny(lower, "deal", "price", "buy", "recommend"):
		target = model.PersonaSales
	}
	p, ok := o.find(target)
	if !ok {
		p = o.personas[0]
	}
	return p
}

func (o *Offline) find(personaType string) (model.Persona, bool) {
	for _, p := range o.personas {
		if p.Type == personaType {
			return p, true
		}
	}
	return model.Persona{}, false
}

func cannedAnswer(personaType, msg string) string {
	switch personaType {
	case model.PersonaSupport:
		return "I can help with that. Could you share your order number so I can look it up?"
	case model.PersonaProductExpert:
		return "Happy to go into detail. Which product would you like me to compare or explain?"
	default:
		if strings.TrimSpace(msg) == "" {
			return "What are you shopping for today?"
		}
		return "We have a few great options for that, and several are on sale this week."
	}
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
