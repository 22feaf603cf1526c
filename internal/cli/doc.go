// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the shopassist command-line interface.
//
// The root command starts the terminal chat panel. Subcommands cover the
// same conversation operations for scripts and plain terminals:
//
//   - chat: line-oriented chat with history (no full-screen UI)
//   - ask: send one message and print the reply
//   - product, order: product questions and order status
//   - personas: list the available assistants
//   - config: show, get, set and validate settings
//   - version: print version information
//
// Every command accepts --config, --base-url, --token, --offline and
// --log-level. Commands that print data accept --json.
package cli
