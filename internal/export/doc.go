// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation history to JSON or Markdown files.
//
// The JSON layout matches the storefront's "download history" file:
//
//	{"user": ..., "exportDate": ..., "totalMessages": N,
//	 "conversations": [{"timestamp", "type", "agentName", "agentType", "content"}]}
//
// # Usage
//
//	t := export.NewTranscript(identity.DisplayName(), mgr.Snapshot())
//	exp, _ := export.ForFormat("md", nil)
//	path, err := export.ExportToFile(t, exp, &export.Options{OutputDir: dir})
package export
