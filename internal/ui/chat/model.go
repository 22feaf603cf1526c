// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/jeranaias/shopassist/internal/conversation"
	"github.com/jeranaias/shopassist/internal/model"
	"github.com/jeranaias/shopassist/internal/session"
	"github.com/jeranaias/shopassist/internal/ui/components"
	"github.com/jeranaias/shopassist/internal/ui/styles"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options wires the chat panel to its collaborators.
type Options struct {
	Conversation *conversation.Manager

	// Session may be nil; first-visit greeting and sign-out identity
	// handling are then skipped.
	Session *session.Manager

	Theme  *styles.Theme
	Logger zerolog.Logger

	RenderMarkdown         bool
	ShowTimestamps         bool
	MaxToasts              int
	NotificationsPerSecond float64
	ExportDir              string
}

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat panel. It never mutates
// conversation state itself; every change goes through the manager and
// comes back as an EventMsg.
type Model struct {
	conv  *conversation.Manager
	sess  *session.Manager
	theme *styles.Theme
	log   zerolog.Logger

	ctx    context.Context
	stop   context.CancelFunc
	events <-chan conversation.Event

	// Latest snapshot
	state model.ConversationState

	// UI Components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	help     help.Model
	keys     KeyMap
	toasts   *components.ToastManager
	md       *markdown

	// Dimensions
	width  int
	height int

	showTimestamps bool
	exportDir      string

	// query filters the history view while set (/find).
	query *conversation.Query

	// overlay replaces the history with help or persona listings.
	overlay string
}

// New creates a chat model and subscribes it to conv.
func New(opts Options) Model {
	if opts.Conversation == nil {
		panic("chat: nil conversation manager")
	}
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme("auto")
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about products, orders or deals..."
	ti.CharLimit = 2000

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{".  ", ".. ", "...", " ..", "  .", "   "},
		FPS:    time.Second / 6,
	}
	sp.Style = theme.Typing

	ctx, stop := context.WithCancel(context.Background())
	events := opts.Conversation.Subscribe(ctx)

	m := Model{
		conv:           opts.Conversation,
		sess:           opts.Session,
		theme:          theme,
		log:            opts.Logger.With().Str("component", "chat-ui").Logger(),
		ctx:            ctx,
		stop:           stop,
		events:         events,
		viewport:       vp,
		input:          ti,
		spinner:        sp,
		help:           help.New(),
		keys:           DefaultKeyMap(),
		toasts:         components.NewToastManager(opts.MaxToasts, opts.NotificationsPerSecond),
		md:             newMarkdown(opts.RenderMarkdown, theme.IsDark),
		showTimestamps: opts.ShowTimestamps,
		exportDir:      opts.ExportDir,
	}
	m.refresh()
	return m
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the event pump, loads personas and schedules the first-visit
// greeting.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		waitForEvent(m.events),
		m.loadPersonasCmd(),
		components.ToastTickCmd(),
		m.spinner.Tick,
	}
	if m.sess != nil {
		cmds = append(cmds, m.sess.AutoOpenCmd())
	}
	return tea.Batch(cmds...)
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case EventMsg:
		m.handleEvent(msg.Event)
		return m, waitForEvent(m.events)

	case EventsClosedMsg:
		return m, nil

	case OpResultMsg:
		if msg.Err != nil && !conversation.IsSilent(msg.Err) {
			m.toasts.Add(components.ToastError, msg.Err.Error())
		}
		if msg.Err != nil {
			m.log.Debug().Err(msg.Err).Str("op", msg.Op).Msg("operation rejected")
		}
		return m, nil

	case PersonasLoadedMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("failed to load agents")
		}
		return m, nil

	case SwitchResultMsg:
		if errors.Is(msg.Err, conversation.ErrInvalidPersona) {
			m.toasts.Add(components.ToastError, "Unknown assistant '"+msg.Persona+"'. Try /agents.")
		}
		return m, nil

	case ExportDoneMsg:
		if msg.Err != nil {
			m.toasts.Add(components.ToastError, "Export failed: "+msg.Err.Error())
		} else {
			m.toasts.Add(components.ToastSuccess, "Conversation saved to "+msg.Path)
		}
		return m, nil

	case session.AutoOpenMsg:
		if m.sess == nil {
			return m, nil
		}
		return m, m.sess.GreetCmd(m.conv)

	case session.GreetedMsg:
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("first-visit greeting skipped")
		}
		return m, nil

	case components.ToastTickMsg:
		m.toasts.Tick()
		return m, components.ToastTickCmd()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	default:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// View renders the chat panel.
func (m Model) View() string {
	return m.render()
}

// =============================================================================
// MESSAGE HANDLERS
// =============================================================================

func (m *Model) handleEvent(ev conversation.Event) {
	switch ev.Kind {
	case conversation.EventStateChanged:
		m.refresh()
	case conversation.EventNotification:
		m.toasts.Add(toastKind(ev.Notification.Kind), ev.Notification.Text)
	}
}

func toastKind(k conversation.NotificationKind) components.ToastKind {
	switch k {
	case conversation.NotifySuccess:
		return components.ToastSuccess
	case conversation.NotifyError:
		return components.ToastError
	case conversation.NotifyNewMessage:
		return components.ToastMessage
	default:
		return components.ToastInfo
	}
}

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(m.width, m.height)
	m.help.Width = m.width

	m.viewport.Width = m.width
	m.viewport.Height = m.chromeFreeHeight()

	inputWidth := m.width - 6
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.updateViewport()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, m.quit()
	}

	if m.overlay != "" {
		if key.Matches(msg, m.keys.Close, m.keys.Submit, m.keys.Help) {
			m.overlay = ""
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Toggle) {
		m.conv.Toggle()
		m.refresh()
		return m, nil
	}

	// The closed panel only reacts to opening.
	if !m.state.Open {
		if key.Matches(msg, m.keys.Submit) {
			m.conv.SetOpen(true)
			m.refresh()
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Close):
		if m.query != nil {
			m.query = nil
			m.updateViewport()
			return m, nil
		}
		m.conv.SetOpen(false)
		m.refresh()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		return m, handleClearCommand(&m, nil)

	case key.Matches(msg, m.keys.Help):
		m.overlay = m.helpText()
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Top):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil

	case key.Matches(msg, m.keys.Action) && m.input.Value() == "":
		if a, ok := components.ActionAt(m.currentActions(), msg.String()); ok && !m.state.Sending {
			return m, m.actionCmd(a.ActionID)
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		return m.handleCommand(text)
	}
	// Input is kept while a reply is pending so nothing typed is lost.
	if m.state.Sending {
		return m, nil
	}
	m.input.Reset()
	return m, m.sendCmd(text)
}

// =============================================================================
// STATE
// =============================================================================

// refresh pulls a fresh snapshot and re-renders the history.
func (m *Model) refresh() {
	m.state = m.conv.Snapshot()
	if m.state.Open {
		m.input.Focus()
	} else {
		m.input.Blur()
	}
	m.updateViewport()
	if m.query == nil {
		m.viewport.GotoBottom()
	}
}

func (m *Model) updateViewport() {
	m.viewport.SetContent(m.renderMessages())
}

// currentActions returns the suggested actions bound to number keys: those
// of the latest message, unless the shopper spoke last.
func (m *Model) currentActions() []model.SuggestedAction {
	last := m.state.LastMessage()
	if last == nil || last.Role == model.RoleUser {
		return nil
	}
	return last.SuggestedActions
}

func (m *Model) userName() string {
	if m.sess == nil {
		return "Guest"
	}
	return m.sess.Identity().DisplayName()
}

// State returns the snapshot the panel is currently showing.
func (m Model) State() model.ConversationState {
	return m.state
}

// Toasts returns the visible notifications.
func (m Model) Toasts() []components.Toast {
	return m.toasts.Toasts()
}
