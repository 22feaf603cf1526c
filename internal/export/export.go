// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation history to JSON or Markdown files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/shopassist/internal/model"
	"github.com/jeranaias/shopassist/internal/util"
)

// =============================================================================
// EXPORT INTERFACE
// =============================================================================

// Exporter defines the interface for transcript exporters.
type Exporter interface {
	// Export renders a transcript in the target format.
	Export(t *Transcript) ([]byte, error)

	// FileExtension returns the file extension (e.g. ".md").
	FileExtension() string

	// MimeType returns the MIME type for the exported format.
	MimeType() string
}

// Transcript is the exportable view of a conversation.
type Transcript struct {
	User       string
	ExportedAt time.Time
	Persona    string
	Messages   []*model.Message
}

// NewTranscript captures st for export on behalf of user.
func NewTranscript(user string, st model.ConversationState) *Transcript {
	return &Transcript{
		User:       user,
		ExportedAt: time.Now(),
		Persona:    st.PersonaType(),
		Messages:   st.Messages,
	}
}

// =============================================================================
// EXPORT OPTIONS
// =============================================================================

// Options configures export behavior.
type Options struct {
	// OutputDir is where files are written. Default: current directory.
	OutputDir string

	// IncludeMetadata adds a header with user, date and counts.
	IncludeMetadata bool

	// IncludeTimestamps adds per-message timestamps.
	IncludeTimestamps bool
}

// DefaultOptions returns default export options.
func DefaultOptions() *Options {
	return &Options{
		OutputDir:         ".",
		IncludeMetadata:   true,
		IncludeTimestamps: true,
	}
}

// ForFormat returns the exporter for "json" or "md"/"markdown".
func ForFormat(format string, opts *Options) (Exporter, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), ".")) {
	case "", "json":
		return NewJSONExporter(), nil
	case "md", "markdown":
		return NewMarkdownExporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported export format %q", format)
	}
}

// =============================================================================
// EXPORT FUNCTIONS
// =============================================================================

// ExportToFile renders t with exporter and writes it atomically into
// opts.OutputDir. Returns the written path.
func ExportToFile(t *Transcript, exporter Exporter, opts *Options) (string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	content, err := exporter.Export(t)
	if err != nil {
		return "", fmt.Errorf("export failed: %w", err)
	}

	filename := fmt.Sprintf("chat-history-%s-%s%s",
		sanitizeFilename(t.User),
		t.ExportedAt.Format("2006-01-02"),
		exporter.FileExtension(),
	)
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}

	outputPath := filepath.Join(dir, filename)
	if err := util.AtomicWriteFile(outputPath, content, 0600); err != nil {
		return "", fmt.Errorf("write file: %w", err)
	}
	return outputPath, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sanitizeFilename removes or replaces characters that are invalid in filenames.
func sanitizeFilename(s string) string {
	runes := []rune(strings.TrimSpace(s))
	if len(runes) > 50 {
		runes = runes[:50]
	}

	result := make([]rune, 0, len(runes))
	for _, r := range runes {
		switch {
		case strings.ContainsRune(`/\:*?"<>|`, r):
			result = append(result, '-')
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			result = append(result, '_')
		case r < 32 || r == 127:
			result = append(result, '-')
		default:
			result = append(result, r)
		}
	}

	if len(result) == 0 {
		return "guest"
	}
	return string(result)
}

// formatTimestamp formats a timestamp for display.
func formatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// formatShortTimestamp formats a timestamp for inline display.
func formatShortTimestamp(t time.Time) string {
	return t.Format("15:04:05")
}
