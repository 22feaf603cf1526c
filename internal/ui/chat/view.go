// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/wordwrap"

	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/model"
	"github.com/jeranaias/shopassist/internal/ui/components"
	"github.com/jeranaias/shopassist/internal/ui/styles"
)

// Rows taken by everything except the history viewport.
const (
	headerRows = 3
	typingRows = 1
	inputRows  = 3
	statusRows = 1
)

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) render() string {
	if !m.state.Open {
		return m.renderClosed()
	}

	body := m.viewport.View()
	if m.overlay != "" {
		body = m.renderOverlay()
	}

	sections := []string{
		m.renderHeader(),
		body,
		m.renderTyping(),
	}
	if actions := m.currentActions(); len(actions) > 0 && m.overlay == "" {
		sections = append(sections, components.RenderActions(m.theme, actions, m.width))
	}
	sections = append(sections, m.renderInput(), m.renderStatusBar())

	panel := lipgloss.JoinVertical(lipgloss.Left, sections...)
	return m.withToasts(panel)
}

func (m Model) renderClosed() string {
	launcher := components.Launcher(m.theme, m.state, m.width)
	if m.width <= 0 || m.height <= 0 {
		return m.withToasts(launcher)
	}
	stack := components.RenderToastStack(m.theme, m.toasts.Toasts(), m.toastWidth())
	content := launcher
	if stack != "" {
		content = lipgloss.JoinVertical(lipgloss.Right, stack, launcher)
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Right, lipgloss.Bottom, content)
}

// withToasts stacks the notification column above the panel, aligned right.
func (m Model) withToasts(panel string) string {
	stack := components.RenderToastStack(m.theme, m.toasts.Toasts(), m.toastWidth())
	if stack == "" {
		return panel
	}
	if m.width > 0 {
		stack = lipgloss.PlaceHorizontal(m.width, lipgloss.Right, stack)
	}
	return lipgloss.JoinVertical(lipgloss.Left, stack, panel)
}

func (m Model) toastWidth() int {
	if m.width <= 0 {
		return 40
	}
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	return w
}

// chromeFreeHeight is the viewport height left after the fixed sections.
func (m Model) chromeFreeHeight() int {
	h := m.height - headerRows - typingRows - inputRows - statusRows - 2
	if h < 3 {
		h = 3
	}
	return h
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("ShopAssist")
	agent := "Connecting..."
	if p := m.state.ActivePersona; p != nil {
		agent = lipgloss.NewStyle().Bold(true).Foreground(styles.PersonaColor(p.Type)).Render(p.DisplayName)
	}
	user := m.theme.Muted.Render(m.userName())

	line := title + "  " + agent
	if m.width > 0 {
		gap := m.width - 4 - lipgloss.Width(line) - lipgloss.Width(user)
		if gap < 2 {
			gap = 2
		}
		line += strings.Repeat(" ", gap) + user
	} else {
		line += "  " + user
	}

	style := m.theme.Header
	if m.width > 2 {
		style = style.Width(m.width - 2)
	}
	return style.Render(line)
}

func (m Model) renderTyping() string {
	if !m.state.Typing {
		return ""
	}
	name := "Assistant"
	if p := m.state.ActivePersona; p != nil {
		name = p.DisplayName
	}
	return m.theme.Typing.Render(" " + name + " is typing " + m.spinner.View())
}

func (m Model) renderInput() string {
	style := m.theme.InputContainer
	if m.width > 2 {
		style = style.Width(m.width - 2)
	}
	return style.Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	parts := []string{m.help.ShortHelpView(m.keys.ShortHelp())}
	if m.query != nil {
		parts = append(parts, m.theme.ShortcutKey.Render("filter:")+" "+m.theme.ShortcutDesc.Render(describeQuery(*m.query)))
	}
	if m.state.Sending {
		parts = append(parts, m.theme.ShortcutDesc.Render("sending..."))
	}
	return m.theme.StatusBar.Render(strings.Join(parts, "  |  "))
}

func (m Model) renderOverlay() string {
	text := m.overlay
	if m.width > 4 {
		text = wordwrap.String(text, m.width-4)
	}
	return m.theme.SystemNotice.Render(text)
}

func describeQuery(q conversation.Query) string {
	var parts []string
	if q.Search != "" {
		parts = append(parts, fmt.Sprintf("%q", q.Search))
	}
	if q.Persona != "" {
		parts = append(parts, "persona "+q.Persona)
	}
	if q.Order == conversation.NewestFirst {
		parts = append(parts, "newest first")
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, ", ")
}

// =============================================================================
// HISTORY
// =============================================================================

// renderMessages renders the history, grouped by day, or the filter result
// as a flat list when a query is active.
func (m Model) renderMessages() string {
	msgs := m.state.Messages
	if len(msgs) == 0 {
		return m.theme.Muted.Render("\n  No messages yet. Say hello, or press F1 for help.")
	}

	now := time.Now()
	var sb strings.Builder

	if m.query != nil {
		found := conversation.Filter(msgs, *m.query)
		sb.WriteString(m.theme.DayDivider.Render(fmt.Sprintf("%s (%s)", describeQuery(*m.query), pluralMatches(len(found)))))
		sb.WriteString("\n\n")
		for _, msg := range found {
			sb.WriteString(m.renderMessage(msg, now))
			sb.WriteString("\n")
		}
		return sb.String()
	}

	for _, group := range conversation.GroupByDay(msgs, time.Local) {
		sb.WriteString(m.renderDivider(group.Label(now)))
		sb.WriteString("\n\n")
		for _, msg := range group.Messages {
			sb.WriteString(m.renderMessage(msg, now))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func pluralMatches(n int) string {
	if n == 1 {
		return "1 match"
	}
	return fmt.Sprintf("%d matches", n)
}

func (m Model) renderDivider(label string) string {
	style := m.theme.DayDivider
	if m.width > 0 {
		style = style.Width(m.width)
	}
	return style.Render("── " + label + " ──")
}

func (m Model) renderMessage(msg *model.Message, now time.Time) string {
	width := m.theme.BubbleWidth()
	var out string

	switch msg.Role {
	case model.RoleUser:
		bubble := m.theme.UserBubble.Render(wordwrap.String(msg.Text, width-4))
		out = m.alignRight(bubble)

	case model.RoleAgent:
		name := lipgloss.NewStyle().Bold(true).Foreground(styles.PersonaColor(msg.AgentPersona)).Render(msg.AgentName)
		body := m.md.Render(msg.Text, width-4)
		out = name + "\n" + m.theme.AgentBubble.Render(body)

	case model.RoleSystem:
		out = m.theme.SystemNotice.Render(wordwrap.String(msg.Text, width))

	case model.RoleError:
		out = m.theme.ErrorBubble.Render(styles.StatusIndicators.Error + " " + wordwrap.String(msg.Text, width-8))

	default:
		out = msg.Text
	}

	if m.showTimestamps {
		stamp := m.theme.Timestamp.Render(humanize.RelTime(msg.CreatedAt, now, "ago", "from now"))
		if msg.Role == model.RoleUser {
			stamp = m.alignRight(stamp)
		}
		out += "\n" + stamp
	}
	return out
}

func (m Model) alignRight(s string) string {
	if m.width <= 0 {
		return s
	}
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Right, s)
}
