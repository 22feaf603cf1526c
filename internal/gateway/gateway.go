// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package gateway

import (
	"context"

	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// GATEWAY INTERFACE
// =============================================================================

// Gateway is the remote service that produces agent replies and owns persona
// selection. Every method may fail; callers treat any error as the gateway
// being unavailable for that call.
type Gateway interface {
	// ListPersonas returns the personas the backend can serve.
	ListPersonas(ctx context.Context) ([]model.Persona, error)

	// Chat sends one user turn and returns the reply.
	Chat(ctx context.Context, req ChatRequest) (*Reply, error)

	// SwitchPersona tells the backend to hand the conversation to personaType.
	SwitchPersona(ctx context.Context, personaType string) error

	// ProductInquiry asks about a single product.
	ProductInquiry(ctx context.Context, productID, question string) (*Reply, error)

	// OrderStatus asks for an update on a single order.
	OrderStatus(ctx context.Context, orderID string) (*Reply, error)
}

// ChatRequest is one user turn.
type ChatRequest struct {
	Message string

	// Context is caller-supplied (current page, product in view, ...).
	Context map[string]any

	// Session is ambient identity and conversation data. Session keys win
	// over Context keys when both are set.
	Session map[string]any
}

// MergedContext flattens Context and Session into the single object the
// backend expects. Returns nil when both are empty.
func (r ChatRequest) MergedContext() map[string]any {
	if len(r.Context) == 0 && len(r.Session) == 0 {
		return nil
	}
	out := make(map[string]any, len(r.Context)+len(r.Session))
	for k, v := range r.Context {
		out[k] = v
	}
	for k, v := range r.Session {
		out[k] = v
	}
	return out
}

// Reply is an agent answer.
type Reply struct {
	Text             string
	AgentName        string
	PersonaType      string
	SuggestedActions []model.SuggestedAction
}
