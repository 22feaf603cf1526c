// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/jeranaias/shopassist/internal/model"
	"github.com/jeranaias/shopassist/internal/ui/styles"
)

// printMessage writes one history entry in the line-oriented format.
func printMessage(w io.Writer, msg *model.Message, width int) {
	if msg == nil {
		return
	}
	when := DimStyle.Render(humanize.Time(msg.CreatedAt))

	switch msg.Role {
	case model.RoleUser:
		fmt.Fprintf(w, "%s %s\n%s\n", PromptStyle.Render("you"), when, WrapText(msg.Text, width))
	case model.RoleAgent:
		fmt.Fprintf(w, "%s %s\n%s\n", agentStyle(msg.AgentPersona).Render(msg.AgentName), when, WrapText(msg.Text, width))
	case model.RoleSystem:
		fmt.Fprintln(w, SystemStyle.Render("-- "+msg.Text))
	case model.RoleError:
		fmt.Fprintln(w, ErrorStyle.Render(styles.StatusIndicators.Error+" "+msg.Text))
	default:
		fmt.Fprintln(w, msg.Text)
	}

	for i, a := range msg.SuggestedActions {
		if i >= 9 {
			break
		}
		fmt.Fprintf(w, "  %s %s\n", CommandStyle.Render(fmt.Sprintf("[%d]", i+1)), a.Label)
	}
}

// printPersonas lists personas, marking the active one.
func printPersonas(w io.Writer, personas []model.Persona, active string) {
	if len(personas) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No assistants available."))
		return
	}
	for _, p := range personas {
		marker := "  "
		if p.Type == active {
			marker = SuccessStyle.Render("* ")
		}
		fmt.Fprintf(w, "%s%s %s\n", marker, agentStyle(p.Type).Render(fmt.Sprintf("%-16s", p.Type)), p.DisplayName)
		if p.Description != "" {
			fmt.Fprintf(w, "    %s\n", DimStyle.Render(p.Description))
		}
	}
}

// formatDuration formats a duration for display (e.g., "5m 30s").
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm %ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
