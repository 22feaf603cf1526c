// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopassist/internal/model"
	"github.com/jeranaias/shopassist/internal/ui/styles"
	"github.com/jeranaias/shopassist/internal/util"
)

// =============================================================================
// CLOSED PANEL
// =============================================================================

// UnreadBadge renders the unread count, capped at "9+". Empty when zero.
func UnreadBadge(theme *styles.Theme, unread int) string {
	if unread <= 0 {
		return ""
	}
	label := fmt.Sprintf("%d", unread)
	if unread > 9 {
		label = "9+"
	}
	return theme.UnreadBadge.Render(label)
}

// Launcher renders the collapsed chat button shown while the panel is
// closed, with the unread badge and a preview of the latest agent message.
func Launcher(theme *styles.Theme, st model.ConversationState, width int) string {
	button := theme.Launcher.Render("Chat with us  [Tab]")
	if badge := UnreadBadge(theme, st.UnreadCount); badge != "" {
		button = lipgloss.JoinHorizontal(lipgloss.Top, button, " ", badge)
	}

	lines := []string{button}
	if st.UnreadCount > 0 {
		if last := st.LastAgentMessage(); last != nil {
			preview := last.AgentName + ": " + util.FirstLine(last.Text)
			max := 60
			if width > 0 {
				max = width - 4
			}
			if max < 20 {
				max = 20
			}
			lines = append(lines, theme.Muted.Render(util.TruncateWidth(preview, max)))
		}
	}

	block := lipgloss.JoinVertical(lipgloss.Right, lines...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, block)
	}
	return block
}

// =============================================================================
// SUGGESTED ACTIONS
// =============================================================================

// MaxActionKeys is how many actions can be bound to number keys.
const MaxActionKeys = 9

// RenderActions renders suggested actions as numbered chips. Wraps to the
// next line when width is exceeded.
func RenderActions(theme *styles.Theme, actions []model.SuggestedAction, width int) string {
	if len(actions) == 0 {
		return ""
	}

	var lines []string
	var line strings.Builder
	lineWidth := 0
	for i, a := range actions {
		if i >= MaxActionKeys {
			break
		}
		chip := theme.ActionKey.Render(fmt.Sprintf("%d", i+1)) + theme.ActionLabel.Render(" "+a.Label)
		w := lipgloss.Width(chip)
		if width > 0 && lineWidth > 0 && lineWidth+w > width {
			lines = append(lines, line.String())
			line.Reset()
			lineWidth = 0
		}
		line.WriteString(chip)
		lineWidth += w
	}
	if line.Len() > 0 {
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// ActionAt maps a pressed number key ("1".."9") to the action it selects.
func ActionAt(actions []model.SuggestedAction, key string) (model.SuggestedAction, bool) {
	if len(key) != 1 || key[0] < '1' || key[0] > '9' {
		return model.SuggestedAction{}, false
	}
	idx := int(key[0] - '1')
	if idx >= len(actions) {
		return model.SuggestedAction{}, false
	}
	return actions[idx], true
}
