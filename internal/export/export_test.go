// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shopassist/internal/model"
)

func sampleTranscript() *Transcript {
	at := time.Date(2025, 5, 1, 14, 30, 0, 0, time.UTC)
	return &Transcript{
		User:       "ada@example.com",
		ExportedAt: at,
		Persona:    "sales",
		Messages: []*model.Message{
			{ID: 1, Role: model.RoleUser, Text: "Any deals?", CreatedAt: at},
			{ID: 2, Role: model.RoleAgent, Text: "Yes, 20% off tents.", AgentName: "Sales Assistant", AgentPersona: "sales", CreatedAt: at,
				SuggestedActions: []model.SuggestedAction{{Label: "View Deals", ActionID: "view_deals"}}},
			{ID: 3, Role: model.RoleError, Text: "Sorry, I encountered an error.", CreatedAt: at},
		},
	}
}

func TestJSONExporter_Shape(t *testing.T) {
	data, err := NewJSONExporter().Export(sampleTranscript())
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "ada@example.com", doc["user"])
	assert.EqualValues(t, 3, doc["totalMessages"])
	assert.Contains(t, doc, "exportDate")

	convs := doc["conversations"].([]any)
	require.Len(t, convs, 3)
	agent := convs[1].(map[string]any)
	assert.Equal(t, "agent", agent["type"])
	assert.Equal(t, "Sales Assistant", agent["agentName"])
	assert.Equal(t, "sales", agent["agentType"])
	assert.Equal(t, "Yes, 20% off tents.", agent["content"])

	_, err = NewJSONExporter().Export(nil)
	assert.Error(t, err)
}

func TestMarkdownExporter(t *testing.T) {
	data, err := NewMarkdownExporter(nil).Export(sampleTranscript())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "---\nuser: \"ada@example.com\"\n") || strings.HasPrefix(out, "---\nuser: ada@example.com\n"))
	assert.Contains(t, out, "### [You] <sub>14:30:00</sub>")
	assert.Contains(t, out, "### [Sales Assistant]")
	assert.Contains(t, out, "### [Error]")
	assert.Contains(t, out, "<sub>Suggestions: View Deals</sub>")

	plain, err := NewMarkdownExporter(&Options{}).Export(sampleTranscript())
	require.NoError(t, err)
	assert.NotContains(t, string(plain), "generator:")
	assert.NotContains(t, string(plain), "<sub>14:30:00</sub>")

	_, err = NewMarkdownExporter(nil).Export(&Transcript{})
	assert.Error(t, err)
}

func TestExportToFile(t *testing.T) {
	dir := t.TempDir()
	exp, err := ForFormat("markdown", nil)
	require.NoError(t, err)

	path, err := ExportToFile(sampleTranscript(), exp, &Options{OutputDir: dir})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "chat-history-ada@example.com-2025-05-01.md"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestForFormat(t *testing.T) {
	for _, f := range []string{"", "json", ".JSON"} {
		exp, err := ForFormat(f, nil)
		require.NoError(t, err)
		assert.Equal(t, ".json", exp.FileExtension())
	}
	_, err := ForFormat("html", nil)
	assert.Error(t, err)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "guest", sanitizeFilename("  "))
	assert.Equal(t, "Ada_Lovelace-x", sanitizeFilename("Ada Lovelace/x"))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("é", 80))), 50)
}

func TestNewTranscript(t *testing.T) {
	st := model.ConversationState{
		Messages:      sampleTranscript().Messages,
		ActivePersona: &model.Persona{Type: "support"},
	}
	tr := NewTranscript("Ada", st)
	assert.Equal(t, "support", tr.Persona)
	assert.Len(t, tr.Messages, 3)
	assert.WithinDuration(t, time.Now(), tr.ExportedAt, time.Minute)
}
