// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/reflow/wordwrap"
)

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdown renders agent replies with glamour. The renderer is rebuilt only
// when the wrap width changes. Falls back to plain word wrapping when
// disabled or when glamour fails.
type markdown struct {
	enabled bool
	style   string

	mu       sync.Mutex
	width    int
	renderer *glamour.TermRenderer
}

func newMarkdown(enabled, dark bool) *markdown {
	style := "light"
	if dark {
		style = "dark"
	}
	return &markdown{enabled: enabled, style: style}
}

func (md *markdown) Render(text string, width int) string {
	if width < 10 {
		width = 10
	}
	if !md.enabled {
		return wordwrap.String(text, width)
	}

	md.mu.Lock()
	defer md.mu.Unlock()

	if md.renderer == nil || md.width != width {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(md.style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			md.enabled = false
			return wordwrap.String(text, width)
		}
		md.renderer, md.width = r, width
	}

	out, err := md.renderer.Render(text)
	if err != nil {
		return wordwrap.String(text, width)
	}
	return strings.Trim(out, "\n")
}
