// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components for the chat panel.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Layout dimensions
	Width  int
	Height int

	// ==========================================================================
	// HEADER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderAgent lipgloss.Style
	Typing      lipgloss.Style

	// ==========================================================================
	// MESSAGES
	// ==========================================================================

	UserBubble   lipgloss.Style
	AgentBubble  lipgloss.Style
	SystemNotice lipgloss.Style
	ErrorBubble  lipgloss.Style
	Timestamp    lipgloss.Style
	DayDivider   lipgloss.Style

	// ==========================================================================
	// SUGGESTED ACTIONS
	// ==========================================================================

	ActionKey   lipgloss.Style
	ActionLabel lipgloss.Style

	// ==========================================================================
	// INPUT AND STATUS
	// ==========================================================================

	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style
	StatusBar      lipgloss.Style
	ShortcutKey    lipgloss.Style
	ShortcutDesc   lipgloss.Style

	// ==========================================================================
	// CLOSED PANEL AND TOASTS
	// ==========================================================================

	Launcher    lipgloss.Style
	UnreadBadge lipgloss.Style

	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastError   lipgloss.Style
	ToastMessage lipgloss.Style

	Muted lipgloss.Style
}

// NewTheme creates a theme. mode is "dark", "light" or "auto"; auto asks
// the terminal for its background.
func NewTheme(mode string) *Theme {
	profile := termenv.ColorProfile()

	var isDark bool
	switch strings.ToLower(mode) {
	case "light":
		isDark = false
	case "dark":
		isDark = true
	default:
		isDark = termenv.HasDarkBackground()
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{IsDark: isDark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	// Header
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Padding(0, 1)

	t.HeaderTitle = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.HeaderAgent = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Typing = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)

	// Messages
	t.UserBubble = lipgloss.NewStyle().
		Foreground(UserBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(UserBubbleBorder).
		Padding(0, 1).
		MarginLeft(4)

	t.AgentBubble = lipgloss.NewStyle().
		Foreground(AgentBubbleFg).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(AgentBubbleBorder).
		Padding(0, 1).
		MarginRight(4)

	t.SystemNotice = lipgloss.NewStyle().
		Foreground(SystemFg).
		Italic(true).
		Align(lipgloss.Center)

	t.ErrorBubble = lipgloss.NewStyle().
		Foreground(ErrorFg).
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ErrorBorder).
		BorderLeft(true).
		PaddingLeft(1)

	t.Timestamp = lipgloss.NewStyle().Foreground(TextMuted)
	t.DayDivider = lipgloss.NewStyle().Foreground(TextMuted).Bold(true).Align(lipgloss.Center)

	// Suggested actions
	t.ActionKey = lipgloss.NewStyle().Foreground(TextInverse).Background(Purple).Padding(0, 1)
	t.ActionLabel = lipgloss.NewStyle().Foreground(Purple).PaddingRight(2)

	// Input and status
	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().Foreground(Cyan).Bold(true)

	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.ShortcutKey = lipgloss.NewStyle().Foreground(Cyan).Bold(true)
	t.ShortcutDesc = lipgloss.NewStyle().Foreground(TextMuted)

	// Closed panel
	t.Launcher = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Purple).
		Foreground(Purple).
		Bold(true).
		Padding(0, 2)
	t.UnreadBadge = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Rose).
		Bold(true).
		Padding(0, 1)

	// Toasts
	toast := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.ToastInfo = toast.BorderForeground(Blue).Foreground(Blue)
	t.ToastSuccess = toast.BorderForeground(Emerald).Foreground(Emerald)
	t.ToastError = toast.BorderForeground(Rose).Foreground(Rose)
	t.ToastMessage = toast.BorderForeground(Purple).Foreground(Purple)

	t.Muted = lipgloss.NewStyle().Foreground(TextMuted)
}

// SetSize updates the theme dimensions for responsive layouts.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// BubbleWidth returns the usable width of a message bubble.
func (t *Theme) BubbleWidth() int {
	w := t.Width - 10
	if t.GetLayoutMode() == LayoutWide {
		w = t.Width * 3 / 4
	}
	if w < 20 {
		w = 20
	}
	return w
}

// GetLayoutMode returns the current layout mode based on width.
func (t *Theme) GetLayoutMode() LayoutMode {
	if t.Width < 60 {
		return LayoutNarrow
	}
	if t.Width < 100 {
		return LayoutMedium
	}
	return LayoutWide
}

// LayoutMode represents the current responsive layout mode.
type LayoutMode int

const (
	LayoutNarrow LayoutMode = iota // < 60 columns
	LayoutMedium                   // 60-100 columns
	LayoutWide                     // > 100 columns
)
