// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package conversation

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcaster_FanOut(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	defer b.Close()

	a, _ := b.Subscribe(context.Background())
	c, _ := b.Subscribe(context.Background())
	require.Equal(t, 2, b.Subscribers())

	b.Publish(Event{Kind: EventNotification, Notification: Notification{Text: "hi"}})

	for _, ch := range []<-chan Event{a, c} {
		select {
		case ev := <-ch:
			assert.Equal(t, "hi", ev.Notification.Text)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBroadcaster_PublishNeverBlocks(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	defer b.Close()
	ch, _ := b.Subscribe(context.Background())

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBufferSize*3; i++ {
			b.Publish(Event{Kind: EventStateChanged})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBufferSize)
}

func TestBroadcaster_ContextCancelUnsubscribes(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch, _ := b.Subscribe(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("channel not closed after cancel")
	}
	assert.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestBroadcaster_CloseIdempotent(t *testing.T) {
	b := NewBroadcaster(zerolog.Nop())
	ch, id := b.Subscribe(context.Background())
	b.Close()
	b.Close()
	b.Unsubscribe(id)
	b.Publish(Event{})

	_, ok := <-ch
	assert.False(t, ok)

	late, _ := b.Subscribe(context.Background())
	_, ok = <-late
	assert.False(t, ok, "subscribing after close yields a closed channel")
}

func TestBroadcaster_CloseReleasesWatchers(t *testing.T) {
	before := runtime.NumGoroutine()

	b := NewBroadcaster(zerolog.Nop())
	for i := 0; i < 20; i++ {
		b.Subscribe(context.Background())
	}
	require.GreaterOrEqual(t, runtime.NumGoroutine(), before+20)

	b.Close()
	assert.Eventually(t, func() bool { return runtime.NumGoroutine() <= before }, 2*time.Second, 10*time.Millisecond)
}
