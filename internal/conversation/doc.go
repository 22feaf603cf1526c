// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package conversation owns the shopper's conversation with the agent
// gateway.
//
// A Manager is the only writer of conversation state. Hosts read it through
// Snapshot and learn about changes through Subscribe; user-facing
// notifications arrive on the same channel.
//
// Every send is two-phase. The user message and busy flags are committed
// first, the gateway is called without the lock, and the reply or an
// error-role fallback is committed when the call returns. Only one send may
// be outstanding; blank input and concurrent sends are rejected without
// touching state.
//
// # Usage
//
//	mgr := conversation.NewManager(conversation.Options{Gateway: client, Logger: log})
//	events := mgr.Subscribe(ctx)
//	_, _ = mgr.LoadPersonas(ctx)
//	reply, err := mgr.SendMessage(ctx, "Any deals on headphones?", nil)
//	if conversation.IsSilent(err) {
//	    // blank input or a send already in flight
//	}
package conversation
