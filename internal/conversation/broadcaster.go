// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// subscriberBufferSize is the channel buffer for each subscriber.
const subscriberBufferSize = 64

// =============================================================================
// EVENTS
// =============================================================================

// EventKind distinguishes state changes from user-facing notifications.
type EventKind int

const (
	// EventStateChanged means a fresh Snapshot is available.
	EventStateChanged EventKind = iota
	// EventNotification carries a Notification.
	EventNotification
)

// NotificationKind maps to the toast style a host uses.
type NotificationKind int

const (
	NotifyInfo NotificationKind = iota
	NotifySuccess
	NotifyError
	// NotifyNewMessage is raised when a reply lands while the conversation
	// is closed. Hosts typically open the conversation when it is clicked.
	NotifyNewMessage
)

// Notification is an out-of-band message for the shopper.
type Notification struct {
	Kind      NotificationKind
	Text      string
	Persona   string
	MessageID uint64
}

// Event is what subscribers receive.
type Event struct {
	Kind         EventKind
	Notification Notification
}

// =============================================================================
// BROADCASTER
// =============================================================================

// Broadcaster fans events out to subscribers. Publish never blocks: a
// subscriber whose buffer is full misses the event. State events carry no
// payload, so a missed one is repaired by the next.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[string]chan Event
	closed bool
	done   chan struct{}
	logger zerolog.Logger
}

// NewBroadcaster creates a broadcaster.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		subs:   make(map[string]chan Event),
		done:   make(chan struct{}),
		logger: logger.With().Str("component", "broadcaster").Logger(),
	}
}

// Subscribe registers a subscriber. The channel is closed when ctx is done,
// on Unsubscribe, or on Close.
func (b *Broadcaster) Subscribe(ctx context.Context) (<-chan Event, string) {
	subID := uuid.NewString()
	ch := make(chan Event, subscriberBufferSize)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, subID
	}
	b.subs[subID] = ch
	b.mu.Unlock()

	b.logger.Debug().Str("sub_id", subID).Msg("subscriber added")

	go func() {
		select {
		case <-ctx.Done():
			b.Unsubscribe(subID)
		case <-b.done:
		}
	}()
	return ch, subID
}

// Publish delivers ev to every subscriber that has room for it.
func (b *Broadcaster) Publish(ev Event) {
	// Held across the sends so Unsubscribe cannot close a channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()

	for id, ch := range b.subs {
		select {
		case ch <- ev:
		default:
			b.logger.Debug().Str("sub_id", id).Int("kind", int(ev.Kind)).Msg("dropped event for slow subscriber")
		}
	}
}

// Unsubscribe removes a subscription and closes its channel.
func (b *Broadcaster) Unsubscribe(subID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch, ok := b.subs[subID]
	if !ok {
		return
	}
	delete(b.subs, subID)
	close(ch)
	b.logger.Debug().Str("sub_id", subID).Msg("subscriber removed")
}

// Subscribers returns the number of live subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscriber channel. Later publishes are no-ops.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for id, ch := range b.subs {
		close(ch)
		delete(b.subs, id)
	}
	b.logger.Debug().Msg("broadcaster closed")
}
