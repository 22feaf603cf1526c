// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/shopassist/internal/gateway"
	"github.com/jeranaias/shopassist/internal/model"
)

// scriptedGateway is a Gateway whose answers are set by the test.
type scriptedGateway struct {
	mu sync.Mutex

	personas  []model.Persona
	listErr   error
	reply     *gateway.Reply
	chatErr   error
	switchErr error

	// When hold is non-nil, reply-producing calls signal entered and then
	// wait for hold to close.
	hold    chan struct{}
	entered chan struct{}

	listCalls   atomic.Int32
	chatCalls   atomic.Int32
	switchCalls []string
	lastChat    gateway.ChatRequest
	lastProduct [2]string
	lastOrder   string
}

func newScripted() *scriptedGateway {
	return &scriptedGateway{
		personas: model.DefaultPersonas(),
		reply: &gateway.Reply{
			Text:             "We have three models on sale.",
			AgentName:        "Sales Assistant",
			PersonaType:      model.PersonaSales,
			SuggestedActions: []model.SuggestedAction{{Label: "View Deals", ActionID: "view_deals"}},
		},
	}
}

func (g *scriptedGateway) holdCalls() {
	g.hold = make(chan struct{})
	g.entered = make(chan struct{}, 8)
}

func (g *scriptedGateway) wait(ctx context.Context) error {
	if g.hold == nil {
		return nil
	}
	g.entered <- struct{}{}
	select {
	case <-g.hold:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *scriptedGateway) answer() (*gateway.Reply, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.chatErr != nil {
		return nil, g.chatErr
	}
	r := *g.reply
	return &r, nil
}

func (g *scriptedGateway) ListPersonas(ctx context.Context) ([]model.Persona, error) {
	g.listCalls.Add(1)
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.personas, nil
}

func (g *scriptedGateway) Chat(ctx context.Context, req gateway.ChatRequest) (*gateway.Reply, error) {
	g.chatCalls.Add(1)
	g.mu.Lock()
	g.lastChat = req
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return g.answer()
}

func (g *scriptedGateway) SwitchPersona(ctx context.Context, personaType string) error {
	g.mu.Lock()
	g.switchCalls = append(g.switchCalls, personaType)
	err := g.switchErr
	g.mu.Unlock()
	if werr := g.wait(ctx); werr != nil {
		return werr
	}
	return err
}

func (g *scriptedGateway) ProductInquiry(ctx context.Context, productID, question string) (*gateway.Reply, error) {
	g.mu.Lock()
	g.lastProduct = [2]string{productID, question}
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return g.answer()
}

func (g *scriptedGateway) OrderStatus(ctx context.Context, orderID string) (*gateway.Reply, error) {
	g.mu.Lock()
	g.lastOrder = orderID
	g.mu.Unlock()
	if err := g.wait(ctx); err != nil {
		return nil, err
	}
	return g.answer()
}

func newTestManager(t *testing.T, g *scriptedGateway, open bool) *Manager {
	t.Helper()
	m := NewManager(Options{Gateway: g, Logger: zerolog.Nop(), Open: open})
	t.Cleanup(m.Close)
	return m
}

// nextNotification drains events until a notification arrives.
func nextNotification(t *testing.T, events <-chan Event) Notification {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				t.Fatal("event channel closed")
			}
			if ev.Kind == EventNotification {
				return ev.Notification
			}
		case <-timeout:
			t.Fatal("no notification received")
		}
	}
}

// noNotification asserts that no notification is pending.
func noNotification(t *testing.T, events <-chan Event) {
	t.Helper()
	for {
		select {
		case ev := <-events:
			if ev.Kind == EventNotification {
				t.Fatalf("unexpected notification: %+v", ev.Notification)
			}
		case <-time.After(50 * time.Millisecond):
			return
		}
	}
}
