// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/export"
	"github.com/jeranaias/shopassist/internal/ui/components"
)

// =============================================================================
// COMMAND HANDLER REGISTRY
// =============================================================================

// CommandHandler handles one slash command. It may mutate the model and
// returns the command to run.
type CommandHandler func(m *Model, args []string) tea.Cmd

// commandHelp documents the commands in display order.
var commandHelp = []struct {
	usage string
	desc  string
}{
	{"/agent <type>", "switch to another assistant"},
	{"/agents", "list available assistants"},
	{"/product <id> [question]", "ask about a product"},
	{"/order <id>", "check on an order"},
	{"/find [persona:<type>] [order:newest] [text]", "filter the history; no arguments clears"},
	{"/export [json|md]", "save the conversation to a file"},
	{"/clear", "clear the conversation"},
	{"/signout", "sign out and reset the conversation"},
	{"/help", "show this help"},
	{"/quit", "exit"},
}

// commandHandlers maps command names to their handler functions.
var commandHandlers = map[string]CommandHandler{
	"help": handleHelpCommand,
	"h":    handleHelpCommand,
	"?":    handleHelpCommand,
	"quit": handleQuitCommand,
	"q":    handleQuitCommand,
	"exit": handleQuitCommand,

	"agent":   handleAgentCommand,
	"a":       handleAgentCommand,
	"agents":  handleAgentsCommand,
	"product": handleProductCommand,
	"p":       handleProductCommand,
	"order":   handleOrderCommand,
	"o":       handleOrderCommand,

	"find":    handleFindCommand,
	"f":       handleFindCommand,
	"export":  handleExportCommand,
	"e":       handleExportCommand,
	"clear":   handleClearCommand,
	"c":       handleClearCommand,
	"signout": handleSignOutCommand,
	"logout":  handleSignOutCommand,
}

// handleCommand processes slash commands using the command registry.
func (m Model) handleCommand(content string) (tea.Model, tea.Cmd) {
	m.input.Reset()

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return m, nil
	}
	name := strings.ToLower(strings.TrimPrefix(parts[0], "/"))

	handler, ok := commandHandlers[name]
	if !ok {
		m.toasts.Add(components.ToastError, fmt.Sprintf("Unknown command '/%s'. Type /help for commands.", name))
		return m, nil
	}
	cmd := handler(&m, parts[1:])
	return m, cmd
}

// =============================================================================
// HELP AND META COMMANDS
// =============================================================================

func handleHelpCommand(m *Model, _ []string) tea.Cmd {
	m.overlay = m.helpText()
	return nil
}

func handleQuitCommand(m *Model, _ []string) tea.Cmd {
	return m.quit()
}

func (m *Model) helpText() string {
	var sb strings.Builder
	sb.WriteString("Commands\n\n")
	for _, c := range commandHelp {
		fmt.Fprintf(&sb, "  %-46s %s\n", c.usage, c.desc)
	}
	sb.WriteString("\nKeys\n\n")
	sb.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	sb.WriteString("\n\nPress Esc to close.")
	return sb.String()
}

// =============================================================================
// AGENT COMMANDS
// =============================================================================

func handleAgentsCommand(m *Model, _ []string) tea.Cmd {
	m.overlay = m.agentsText()
	return nil
}

func handleAgentCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.overlay = m.agentsText()
		return nil
	}
	return m.switchCmd(args[0])
}

func (m *Model) agentsText() string {
	var sb strings.Builder
	sb.WriteString("Available assistants\n\n")
	personas := m.conv.Personas()
	if len(personas) == 0 {
		sb.WriteString("  Assistants are still loading.\n")
	}
	active := m.state.PersonaType()
	for _, p := range personas {
		marker := "  "
		if p.Type == active {
			marker = "* "
		}
		fmt.Fprintf(&sb, "%s%-16s %s\n    %s\n", marker, p.Type, p.DisplayName, p.Description)
	}
	sb.WriteString("\nUse /agent <type> to switch. Press Esc to close.")
	return sb.String()
}

// =============================================================================
// SHOPPING COMMANDS
// =============================================================================

func handleProductCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.toasts.Add(components.ToastError, "Usage: /product <id> [question]")
		return nil
	}
	return m.productCmd(args[0], strings.Join(args[1:], " "))
}

func handleOrderCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.toasts.Add(components.ToastError, "Usage: /order <id>")
		return nil
	}
	return m.orderCmd(args[0])
}

// =============================================================================
// HISTORY COMMANDS
// =============================================================================

func handleFindCommand(m *Model, args []string) tea.Cmd {
	if len(args) == 0 {
		m.query = nil
		m.updateViewport()
		return nil
	}

	q := conversation.Query{}
	var words []string
	for _, a := range args {
		switch {
		case strings.HasPrefix(a, "persona:"):
			q.Persona = strings.TrimPrefix(a, "persona:")
		case a == "order:newest":
			q.Order = conversation.NewestFirst
		case a == "order:oldest":
			q.Order = conversation.OldestFirst
		default:
			words = append(words, a)
		}
	}
	q.Search = strings.Join(words, " ")
	m.query = &q
	m.updateViewport()
	m.viewport.GotoTop()
	return nil
}

func handleExportCommand(m *Model, args []string) tea.Cmd {
	format := "json"
	if len(args) > 0 {
		format = args[0]
	}
	return m.exportCmd(format)
}

func handleClearCommand(m *Model, _ []string) tea.Cmd {
	m.query = nil
	m.conv.Clear()
	m.refresh()
	return nil
}

func handleSignOutCommand(m *Model, _ []string) tea.Cmd {
	m.query = nil
	if m.sess != nil {
		m.sess.SignOut(m.conv)
	} else {
		m.conv.Reset()
	}
	m.refresh()
	m.toasts.Add(components.ToastInfo, "Signed out")
	return nil
}

// =============================================================================
// OPERATION COMMANDS
// =============================================================================

func (m *Model) sendCmd(text string) tea.Cmd {
	conv, ctx := m.conv, m.ctx
	return func() tea.Msg {
		reply, err := conv.SendMessage(ctx, text, nil)
		return OpResultMsg{Op: "chat", Reply: reply, Err: err}
	}
}

func (m *Model) actionCmd(actionID string) tea.Cmd {
	conv, ctx := m.conv, m.ctx
	return func() tea.Msg {
		reply, err := conv.HandleSuggestedAction(ctx, actionID)
		return OpResultMsg{Op: "action", Reply: reply, Err: err}
	}
}

func (m *Model) productCmd(productID, question string) tea.Cmd {
	conv, ctx := m.conv, m.ctx
	return func() tea.Msg {
		reply, err := conv.AskAboutProduct(ctx, productID, question)
		return OpResultMsg{Op: "product", Reply: reply, Err: err}
	}
}

func (m *Model) orderCmd(orderID string) tea.Cmd {
	conv, ctx := m.conv, m.ctx
	return func() tea.Msg {
		reply, err := conv.CheckOrderStatus(ctx, orderID)
		return OpResultMsg{Op: "order", Reply: reply, Err: err}
	}
}

func (m *Model) switchCmd(personaType string) tea.Cmd {
	conv, ctx := m.conv, m.ctx
	return func() tea.Msg {
		return SwitchResultMsg{Persona: personaType, Err: conv.SwitchAgent(ctx, personaType)}
	}
}

func (m *Model) loadPersonasCmd() tea.Cmd {
	conv, ctx := m.conv, m.ctx
	return func() tea.Msg {
		personas, err := conv.LoadPersonas(ctx)
		return PersonasLoadedMsg{Personas: personas, Err: err}
	}
}

var errNothingToExport = errors.New("nothing to export yet")

func (m *Model) exportCmd(format string) tea.Cmd {
	st := m.conv.Snapshot()
	user := m.userName()
	opts := export.DefaultOptions()
	opts.OutputDir = m.exportDir
	return func() tea.Msg {
		if st.IsEmpty() {
			return ExportDoneMsg{Err: errNothingToExport}
		}
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return ExportDoneMsg{Err: err}
		}
		path, err := export.ExportToFile(export.NewTranscript(user, st), exporter, opts)
		return ExportDoneMsg{Path: path, Err: err}
	}
}

// waitForEvent delivers the next broadcaster event as a tea.Msg.
func waitForEvent(ch <-chan conversation.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return EventsClosedMsg{}
		}
		return EventMsg{Event: ev}
	}
}

func (m *Model) quit() tea.Cmd {
	if m.stop != nil {
		m.stop()
	}
	return tea.Quit
}
