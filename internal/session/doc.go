// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session tracks the visitor behind a chat: session ID, signed-in
// identity, and whether the profile has been greeted before.
//
// First-visit markers live in a VisitStore:
//
//   - MemoryStore: process lifetime only
//   - FileStore: JSON file, atomic rewrites
//   - SQLiteStore: visits table (modernc.org/sqlite)
//   - RedisStore: SETNX keys with a TTL, shared between machines
//
// # Usage
//
//	store, err := session.OpenStore(ctx, cfg.Session)
//	sess := session.NewManager(session.DefaultConfig(), store, log)
//	conv := conversation.NewManager(conversation.Options{
//	    Gateway:        gw,
//	    SessionContext: sess.SessionContext,
//	})
//	cmd := sess.AutoOpenCmd() // AutoOpenMsg -> sess.GreetCmd(conv)
package session
