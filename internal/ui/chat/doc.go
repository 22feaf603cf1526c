// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the terminal chat panel.
//
// The panel is a Bubble Tea model layered over a conversation.Manager. It
// holds a read-only snapshot of the conversation and re-reads it whenever
// the manager broadcasts a state change; every mutation (sending, switching
// assistants, toggling visibility) is delegated to the manager.
//
// # Layout
//
// When closed the panel collapses to a launcher button with an unread badge
// and a preview of the latest agent reply. When open it shows:
//
//   - a header with the store name, the active assistant and the shopper
//   - the message history, grouped by day
//   - a typing indicator while a reply is pending
//   - numbered suggested-action chips (keys 1-9)
//   - the input line and a status bar
//
// Notifications from the manager are shown as toasts in the top-right corner.
//
// # Commands
//
// Lines starting with "/" are commands: /agent, /agents, /product, /order,
// /find, /export, /clear, /signout, /help and /quit.
package chat
