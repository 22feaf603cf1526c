// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/time/rate"

	"github.com/jeranaias/shopassist/internal/ui/styles"
)

// =============================================================================
// TOAST TYPES
// =============================================================================

// ToastKind represents the type of toast notification.
type ToastKind int

const (
	ToastInfo ToastKind = iota
	ToastSuccess
	ToastError
	// ToastMessage announces an agent reply that arrived while the panel
	// was closed.
	ToastMessage
)

// DefaultToastDuration is the auto-dismiss duration for info and success toasts.
const DefaultToastDuration = 4 * time.Second

// ErrorToastDuration is longer so errors can be read.
const ErrorToastDuration = 8 * time.Second

// Toast is one transient notification.
type Toast struct {
	ID        int
	Text      string
	Kind      ToastKind
	CreatedAt time.Time
	Duration  time.Duration
}

// IsExpired returns true if the toast should be dismissed.
func (t Toast) IsExpired(now time.Time) bool {
	return now.Sub(t.CreatedAt) >= t.Duration
}

func durationFor(kind ToastKind) time.Duration {
	if kind == ToastError {
		return ErrorToastDuration
	}
	return DefaultToastDuration
}

// =============================================================================
// TOAST MANAGER
// =============================================================================

// ToastManager keeps the visible toasts, newest first. Bursts beyond the
// configured rate are dropped; errors always get through.
type ToastManager struct {
	mu        sync.Mutex
	toasts    []Toast
	nextID    int
	maxToasts int
	limiter   *rate.Limiter
	dropped   int
	now       func() time.Time
}

// NewToastManager creates a manager showing at most maxToasts at once and
// admitting perSecond non-error toasts (burst of maxToasts).
func NewToastManager(maxToasts int, perSecond float64) *ToastManager {
	if maxToasts < 1 {
		maxToasts = 5
	}
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &ToastManager{
		nextID:    1,
		maxToasts: maxToasts,
		limiter:   rate.NewLimiter(limit, maxToasts),
		now:       time.Now,
	}
}

// Add queues a toast and returns its ID, or 0 when it was rate limited.
func (m *ToastManager) Add(kind ToastKind, text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if kind != ToastError && !m.limiter.AllowN(now, 1) {
		m.dropped++
		return 0
	}

	toast := Toast{
		ID:        m.nextID,
		Text:      text,
		Kind:      kind,
		CreatedAt: now,
		Duration:  durationFor(kind),
	}
	m.nextID++

	m.toasts = append([]Toast{toast}, m.toasts...)
	if len(m.toasts) > m.maxToasts {
		m.toasts = m.toasts[:m.maxToasts]
	}
	return toast.ID
}

// Remove removes a toast by ID.
func (m *ToastManager) Remove(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, toast := range m.toasts {
		if toast.ID == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// Tick removes expired toasts and returns the remaining ones.
func (m *ToastManager) Tick() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	active := m.toasts[:0]
	for _, toast := range m.toasts {
		if !toast.IsExpired(now) {
			active = append(active, toast)
		}
	}
	m.toasts = active
	return append([]Toast(nil), m.toasts...)
}

// Toasts returns a copy of the current toasts.
func (m *ToastManager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Toast(nil), m.toasts...)
}

// Dropped returns how many toasts were rate limited.
func (m *ToastManager) Dropped() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dropped
}

// Clear removes all toasts.
func (m *ToastManager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.toasts = nil
}

// =============================================================================
// TOAST MESSAGES
// =============================================================================

// ToastTickMsg is sent periodically to expire toasts.
type ToastTickMsg struct {
	Time time.Time
}

// ToastTickCmd returns a command that ticks toasts every 250ms.
func ToastTickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return ToastTickMsg{Time: t}
	})
}

// =============================================================================
// TOAST RENDERING
// =============================================================================

// RenderToast renders a single toast.
func RenderToast(theme *styles.Theme, toast Toast, width int) string {
	maxWidth := 48
	if width > 0 && width-4 < maxWidth {
		maxWidth = width - 4
	}
	if maxWidth < 20 {
		maxWidth = 20
	}

	var style lipgloss.Style
	var icon string
	switch toast.Kind {
	case ToastError:
		style, icon = theme.ToastError, styles.StatusIndicators.Error
	case ToastSuccess:
		style, icon = theme.ToastSuccess, styles.StatusIndicators.Success
	case ToastMessage:
		style, icon = theme.ToastMessage, styles.StatusIndicators.Message
	default:
		style, icon = theme.ToastInfo, styles.StatusIndicators.Info
	}

	text := wordwrap.String(icon+" "+toast.Text, maxWidth-4)
	return style.MaxWidth(maxWidth).Render(text)
}

// RenderToastStack renders toasts stacked vertically, right-aligned.
func RenderToastStack(theme *styles.Theme, toasts []Toast, width int) string {
	if len(toasts) == 0 {
		return ""
	}
	rendered := make([]string, 0, len(toasts))
	for _, toast := range toasts {
		rendered = append(rendered, RenderToast(theme, toast, width))
	}
	stack := lipgloss.JoinVertical(lipgloss.Right, rendered...)
	if width > 0 {
		return lipgloss.PlaceHorizontal(width, lipgloss.Right, stack)
	}
	return stack
}
