// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the shopassist chat panel.

All colors use Lip Gloss AdaptiveColor, resolved against the background
chosen by NewTheme ("dark", "light" or "auto" via termenv detection).

Message roles map to distinct styles so the conversation reads without
color too: user bubbles are indented right, agent bubbles left, system
notices are centered italics and error fallbacks carry a left rule.
Each persona has its own accent (PersonaColor).

Usage:

	theme := styles.NewTheme(cfg.UI.Theme)
	theme.SetSize(width, height)
	fmt.Println(theme.AgentBubble.Width(theme.BubbleWidth()).Render(text))
*/
package styles
