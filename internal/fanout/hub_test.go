// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package fanout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/echotrace/echotrace/internal/metrics"
	"github.com/echotrace/echotrace/internal/models"
)

// startHub runs the hub loop for the duration of the test.
func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = hub.RunWithContext(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// register subscribes and waits for the hub loop to pick it up.
func register(t *testing.T, hub *Hub, sub *Subscriber) {
	t.Helper()
	hub.Register <- sub
	waitForCount(t, hub, func(n int) bool { return n > 0 })
}

func waitForCount(t *testing.T, hub *Hub, ok func(int) bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if ok(hub.GetSubscriberCount()) {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("subscriber count never reached expected state, have %d", hub.GetSubscriberCount())
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func testWebhookEvent() *models.WebhookEvent {
	return &models.WebhookEvent{
		ID:        uuid.New(),
		UserID:    "alice",
		MediaURL:  "https://cdn.example.com/spaces/1/playlist.m3u8",
		MediaType: "audio_space",
		SpaceName: "Space 1",
		TweetURL:  "https://x.com/i/spaces/1",
		City:      "Lisbon",
		Region:    "Lisboa",
		Country:   "PT",
		CreatedAt: time.Now().UTC(),
	}
}

// TestPublishReachesAllSubscribers verifies fan-out completeness: every
// registered subscriber receives every published event.
func TestPublishReachesAllSubscribers(t *testing.T) {
	hub := startHub(t)

	const n = 5
	subs := make([]*Subscriber, n)
	for i := range subs {
		subs[i] = NewSubscriber()
		hub.Register <- subs[i]
	}
	waitForCount(t, hub, func(c int) bool { return c == n })

	event := testWebhookEvent()
	hub.PublishWebhook(event)

	for i, sub := range subs {
		select {
		case msg := <-sub.Messages():
			if msg.Type != MessageTypeWebhook {
				t.Errorf("subscriber %d got type %q, want %q", i, msg.Type, MessageTypeWebhook)
			}
			got, ok := msg.Data.(*models.WebhookEvent)
			if !ok {
				t.Fatalf("subscriber %d got data %T, want *models.WebhookEvent", i, msg.Data)
			}
			if got.ID != event.ID {
				t.Errorf("subscriber %d got event %s, want %s", i, got.ID, event.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d never received the event", i)
		}
	}
}

// TestPublishIsSynchronous verifies the happens-before contract: once
// PublishWebhook returns, the message is already buffered for every
// live subscriber.
func TestPublishIsSynchronous(t *testing.T) {
	hub := startHub(t)
	sub := NewSubscriber()
	register(t, hub, sub)

	hub.PublishWebhook(testWebhookEvent())

	select {
	case <-sub.Messages():
	default:
		t.Error("message should be buffered before PublishWebhook returns")
	}
}

// TestPublishOrdering verifies per-subscriber ordering matches publish
// order.
func TestPublishOrdering(t *testing.T) {
	hub := startHub(t)
	sub := NewSubscriber()
	register(t, hub, sub)

	events := make([]*models.WebhookEvent, 10)
	for i := range events {
		events[i] = testWebhookEvent()
		hub.PublishWebhook(events[i])
	}

	for i, want := range events {
		select {
		case msg := <-sub.Messages():
			got := msg.Data.(*models.WebhookEvent)
			if got.ID != want.ID {
				t.Fatalf("message %d: got event %s, want %s", i, got.ID, want.ID)
			}
		case <-time.After(time.Second):
			t.Fatalf("missing message %d", i)
		}
	}
}

// TestSlowSubscriberDropped verifies that a subscriber with a full
// buffer is removed instead of blocking the publisher.
func TestSlowSubscriberDropped(t *testing.T) {
	hub := startHub(t)

	slow := NewSubscriber()
	register(t, hub, slow)

	// Never drain: overflow the buffer plus one
	for i := 0; i < subscriberBufferSize+1; i++ {
		hub.PublishWebhook(testWebhookEvent())
	}

	if count := hub.GetSubscriberCount(); count != 0 {
		t.Errorf("GetSubscriberCount() = %d, want 0 after overflow", count)
	}

	// The hub closed the channel; draining it must terminate
	drained := 0
	for range slow.Messages() {
		drained++
	}
	if drained != subscriberBufferSize {
		t.Errorf("drained %d buffered messages, want %d", drained, subscriberBufferSize)
	}
}

func TestUnregisterClosesChannel(t *testing.T) {
	hub := startHub(t)
	sub := NewSubscriber()
	register(t, hub, sub)

	hub.Unregister <- sub
	waitForCount(t, hub, func(c int) bool { return c == 0 })

	select {
	case _, ok := <-sub.Messages():
		if ok {
			t.Error("unexpected buffered message on unregistered subscriber")
		}
	case <-time.After(time.Second):
		t.Error("channel should be closed after unregister")
	}

	// Publishing to an empty hub must not panic or block
	hub.PublishWebhook(testWebhookEvent())
}

// TestShutdownClosesSubscribers verifies a supervisor-driven stop
// leaves no orphaned subscribers.
func TestShutdownClosesSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		errCh <- hub.RunWithContext(ctx)
	}()

	sub := NewSubscriber()
	hub.Register <- sub
	waitForCount(t, hub, func(c int) bool { return c == 1 })

	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("RunWithContext did not return after cancel")
	}

	if _, ok := <-sub.Messages(); ok {
		t.Error("subscriber channel should be closed on shutdown")
	}
	if count := hub.GetSubscriberCount(); count != 0 {
		t.Errorf("GetSubscriberCount() = %d, want 0 after shutdown", count)
	}
}

// TestSubscriberGaugeTracksHub verifies the subscriber gauge follows
// register and unregister through the hub loop.
func TestSubscriberGaugeTracksHub(t *testing.T) {
	hub := startHub(t)

	a := NewSubscriber()
	b := NewSubscriber()
	register(t, hub, a)
	register(t, hub, b)
	waitForGauge(t, 2)

	hub.Unregister <- a
	waitForGauge(t, 1)
}

// waitForGauge polls the subscriber gauge; the hub updates it just
// after releasing its lock, so reads must tolerate a short lag.
func waitForGauge(t *testing.T, want float64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for testutil.ToFloat64(metrics.FanoutSubscribers) != want {
		select {
		case <-deadline:
			t.Fatalf("FanoutSubscribers = %v, want %v", testutil.ToFloat64(metrics.FanoutSubscribers), want)
		case <-time.After(5 * time.Millisecond):
		}
	}
}
