// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/shopassist/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts to Markdown.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(t *Transcript) ([]byte, error) {
	if t == nil {
		return nil, fmt.Errorf("transcript is nil")
	}
	if len(t.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("user: %s\n", escapeYAML(t.User)))
		sb.WriteString(fmt.Sprintf("exported: %s\n", t.ExportedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(t.Messages)))
		if t.Persona != "" {
			sb.WriteString(fmt.Sprintf("agent: %s\n", t.Persona))
		}
		sb.WriteString("generator: shopassist\n")
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("# Chat history for %s\n\n", escapeMarkdown(t.User)))

	for i, msg := range t.Messages {
		label := roleLabel(msg)
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n", label, formatShortTimestamp(msg.CreatedAt)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", label))
		}

		sb.WriteString(strings.TrimSpace(msg.Text))
		sb.WriteString("\n\n")

		if len(msg.SuggestedActions) > 0 {
			labels := make([]string, len(msg.SuggestedActions))
			for j, a := range msg.SuggestedActions {
				labels[j] = a.Label
			}
			sb.WriteString(fmt.Sprintf("<sub>Suggestions: %s</sub>\n\n", strings.Join(labels, " | ")))
		}

		if i < len(t.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from shopassist on %s*\n", formatTimestamp(t.ExportedAt)))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// roleLabel names the speaker of a message.
func roleLabel(msg *model.Message) string {
	switch msg.Role {
	case model.RoleUser:
		return "[You]"
	case model.RoleAgent:
		if msg.AgentName != "" {
			return "[" + escapeMarkdown(msg.AgentName) + "]"
		}
		return "[Assistant]"
	case model.RoleSystem:
		return "[System]"
	case model.RoleError:
		return "[Error]"
	default:
		return "Unknown"
	}
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes characters that would break headings.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML quotes a value when it contains YAML-significant characters.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
