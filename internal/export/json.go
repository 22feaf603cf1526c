// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// JSONExporter writes the history-download format the storefront uses.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

type jsonDocument struct {
	User          string      `json:"user"`
	ExportDate    time.Time   `json:"exportDate"`
	TotalMessages int         `json:"totalMessages"`
	Conversations []jsonEntry `json:"conversations"`
}

type jsonEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Type      string    `json:"type"`
	AgentName string    `json:"agentName,omitempty"`
	AgentType string    `json:"agentType,omitempty"`
	Content   string    `json:"content"`
}

// Export converts a transcript to JSON. Every message is included.
func (e *JSONExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}

	doc := jsonDocument{
		User:          t.User,
		ExportDate:    t.ExportedAt,
		TotalMessages: len(t.Messages),
		Conversations: make([]jsonEntry, 0, len(t.Messages)),
	}
	for _, msg := range t.Messages {
		doc.Conversations = append(doc.Conversations, jsonEntry{
			Timestamp: msg.CreatedAt,
			Type:      string(msg.Role),
			AgentName: msg.AgentName,
			AgentType: msg.AgentPersona,
			Content:   msg.Text,
		})
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}

// MimeType returns the MIME type for JSON.
func (e *JSONExporter) MimeType() string {
	return "application/json"
}
