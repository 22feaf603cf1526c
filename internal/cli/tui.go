// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/shopassist/internal/ui/chat"
	"github.com/jeranaias/shopassist/internal/ui/styles"
)

// runTUI opens the full-screen chat panel. Without a terminal it falls back
// to line chat so piped input still works.
func runTUI(cmd *cobra.Command, opts *globalOptions) error {
	if !IsTTY() || !IsStdoutTTY() {
		return runChat(cmd, opts)
	}

	a, err := newApp(cmd.Context(), opts, appOptions{logToFile: true})
	if err != nil {
		return err
	}
	defer a.Close()

	theme := styles.NewTheme(a.cfg.UI.Theme)
	model := chat.New(chat.Options{
		Conversation:           a.conv,
		Session:                a.sess,
		Theme:                  theme,
		Logger:                 a.log,
		RenderMarkdown:         a.cfg.UI.RenderMarkdown,
		ShowTimestamps:         a.cfg.UI.ShowTimestamps,
		MaxToasts:              a.cfg.UI.MaxToasts,
		NotificationsPerSecond: a.cfg.UI.NotificationsPerSecond,
		ExportDir:              a.cfg.UI.ExportDir,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat panel: %w", err)
	}
	a.log.Info().Dur("duration", a.sess.Duration()).Msg("chat panel closed")
	return nil
}
