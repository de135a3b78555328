// Echotrace - Webhook Telemetry and Live Download Dashboard
// Copyright 2026 Echotrace contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/echotrace/echotrace

package fanout

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/echotrace/echotrace/internal/logging"
	"github.com/echotrace/echotrace/internal/metrics"
	"github.com/echotrace/echotrace/internal/models"
)

// Message types pushed to dashboard subscribers.
const (
	MessageTypeWebhook     = "webhook"
	MessageTypeStatsUpdate = "stats_update"
	MessageTypePing        = "ping"
	MessageTypePong        = "pong"
)

// Message is one fan-out payload.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// subscriberBufferSize is the per-subscriber send buffer. A subscriber
// that falls this far behind is dropped.
const subscriberBufferSize = 256

// subscriberIDCounter assigns monotonically increasing subscriber IDs,
// giving broadcasts a deterministic iteration order.
var subscriberIDCounter atomic.Uint64

// Subscriber is one dashboard connection's receive end. Both the
// WebSocket client and the SSE handler consume the same channel.
type Subscriber struct {
	id   uint64
	send chan Message
}

// NewSubscriber allocates a subscriber with a buffered send channel.
// It must be registered with a hub before it receives anything.
func NewSubscriber() *Subscriber {
	return &Subscriber{
		id:   subscriberIDCounter.Add(1),
		send: make(chan Message, subscriberBufferSize),
	}
}

// Messages returns the channel this subscriber receives on. The hub
// closes it when the subscriber is unregistered or dropped.
func (s *Subscriber) Messages() <-chan Message {
	return s.send
}

// Hub maintains the set of live subscribers and broadcasts accepted
// events to them.
//
// Lifecycle (Register/Unregister) flows through channels serviced by
// RunWithContext under supervision. Publish is deliberately NOT routed
// through a channel: the ingest path calls it after the store write
// commits, and the synchronous broadcast under the subscriber lock
// guarantees no subscriber can observe an event that was not persisted.
type Hub struct {
	subscribers map[*Subscriber]bool
	Register    chan *Subscriber
	Unregister  chan *Subscriber
	mu          sync.RWMutex
}

// NewHub creates a new Hub. Callers inject it where needed; there is no
// package-level instance.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]bool),
		Register:    make(chan *Subscriber),
		Unregister:  make(chan *Subscriber),
	}
}

// RunWithContext services subscriber lifecycle events until the context
// is canceled, then closes every subscriber and returns ctx.Err().
// Designed for suture supervision: a restart leaves no orphans.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()

		case sub := <-h.Register:
			h.mu.Lock()
			h.subscribers[sub] = true
			total := len(h.subscribers)
			h.mu.Unlock()
			metrics.FanoutSubscribers.Set(float64(total))
			logging.Debug().Int("total_subscribers", total).Msg("dashboard subscriber connected")

		case sub := <-h.Unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				close(sub.send)
			}
			total := len(h.subscribers)
			h.mu.Unlock()
			metrics.FanoutSubscribers.Set(float64(total))
			logging.Debug().Int("total_subscribers", total).Msg("dashboard subscriber disconnected")
		}
	}
}

// PublishWebhook announces an accepted event to every live subscriber.
// It returns only after every subscriber has been offered the message,
// so callers sequence it strictly after the store write.
func (h *Hub) PublishWebhook(event *models.WebhookEvent) {
	h.broadcast(Message{Type: MessageTypeWebhook, Data: event})
}

// PublishStatsUpdate pushes a refreshed stat summary to subscribers.
func (h *Hub) PublishStatsUpdate(stats *models.WindowedStats) {
	h.broadcast(Message{Type: MessageTypeStatsUpdate, Data: stats})
}

// broadcast offers the message to each subscriber in ID order. A full
// buffer marks the subscriber for removal: slow consumers lose their
// connection, never stall the publisher. Missed events are recovered by
// the dashboard's initial feed fetch on reconnect.
func (h *Hub) broadcast(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := make([]*Subscriber, 0, len(h.subscribers))
	for sub := range h.subscribers {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool {
		return subs[i].id < subs[j].id
	})

	var toRemove []*Subscriber
	for _, sub := range subs {
		select {
		case sub.send <- message:
		default:
			toRemove = append(toRemove, sub)
		}
	}

	for _, sub := range toRemove {
		close(sub.send)
		delete(h.subscribers, sub)
		logging.Warn().Uint64("subscriber_id", sub.id).Msg("dropped slow dashboard subscriber")
	}
	if len(toRemove) > 0 {
		metrics.FanoutSubscribers.Set(float64(len(h.subscribers)))
	}
}

// GetSubscriberCount returns the number of live subscribers.
func (h *Hub) GetSubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// logGracefulShutdown closes all subscribers and logs the shutdown.
// Context cancellation is expected behavior, so it is not logged as an
// error.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	h.mu.Lock()
	closed := len(h.subscribers)
	for sub := range h.subscribers {
		close(sub.send)
		delete(h.subscribers, sub)
	}
	h.mu.Unlock()
	metrics.FanoutSubscribers.Set(0)

	reason := "context_canceled"
	if ctx.Err() == context.DeadlineExceeded {
		reason = "context_deadline"
	}

	logging.Info().
		Str("component", "fanout-hub").
		Str("reason", reason).
		Int("subscribers_closed", closed).
		Msg("fanout hub stopped")
}
