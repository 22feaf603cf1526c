// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shopassist/internal/ui/styles"
)

// init configures lipgloss for piped output and NO_COLOR.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES FOR ALL CLI COMMANDS
// =============================================================================

var (
	// TitleStyle is used for command titles and headers
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Cyan).
			MarginBottom(1)

	// SectionStyle is used for section headers within commands
	SectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextPrimary).
			MarginTop(1)

	// LabelStyle is used for field labels
	LabelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary).
			Width(20)

	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(styles.Amber)

	InfoStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	CommandStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	PromptStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	// SystemStyle marks persona switches and other notices.
	SystemStyle = lipgloss.NewStyle().
			Foreground(styles.SystemFg).
			Italic(true)
)

// agentStyle colours an assistant's name by persona.
func agentStyle(personaType string) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(styles.PersonaColor(personaType))
}
