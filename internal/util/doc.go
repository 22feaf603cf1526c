// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the shopassist packages.
//
// # Key Functions
//
//   - TruncateRunes, TruncateWidth: UTF-8 and column aware truncation
//   - IsBlank: whitespace-only input check used by the send path
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	label := util.TruncateWidth(persona.DisplayName, 18)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
