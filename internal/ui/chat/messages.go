// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// CONVERSATION EVENTS
// =============================================================================

// EventMsg wraps one broadcaster event.
type EventMsg struct {
	Event conversation.Event
}

// EventsClosedMsg is delivered once the subscription channel closes.
type EventsClosedMsg struct{}

// =============================================================================
// OPERATION RESULTS
// =============================================================================

// OpResultMsg reports the outcome of a send-style operation (chat, product,
// order, suggested action). The manager has already published the state.
type OpResultMsg struct {
	Op    string
	Reply *model.Message
	Err   error
}

// PersonasLoadedMsg reports the persona set fetched at startup.
type PersonasLoadedMsg struct {
	Personas []model.Persona
	Err      error
}

// SwitchResultMsg reports the outcome of /agent.
type SwitchResultMsg struct {
	Persona string
	Err     error
}

// ExportDoneMsg reports the outcome of /export.
type ExportDoneMsg struct {
	Path string
	Err  error
}
