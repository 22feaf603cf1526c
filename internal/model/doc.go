// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// # Key Types
//
//   - Message: one history entry with role, text, persona, suggested actions
//   - Role: user, agent, system, error
//   - Persona: an agent specialization (sales, product_expert, support)
//   - Action: a parsed suggested action and its follow-up text
//   - ConversationState: immutable snapshot handed to hosts
//
// # Usage
//
//	var seq model.Sequence
//	msg := seq.NewMessage(model.RoleUser, "Do you ship to Canada?")
//
//	action := model.ParseAction("view_deals")
//	text := action.FollowUpText() // "What deals and offers do you have?"
package model
