// Package stream provides the in-process hub used by live monitor
// subscribers (SSE clients) and the realtime delivery channel.
package stream

import (
	"context"
	"sync"
)

type subscriber[T any] struct {
	ch chan T
}

// Hub fans events out to all current subscribers.
//
// Publish never blocks: a subscriber that cannot keep up drops events.
type Hub[T any] struct {
	mu   sync.RWMutex
	subs map[*subscriber[T]]struct{}
}

// NewHub creates an empty Hub.
func NewHub[T any]() *Hub[T] {
	return &Hub[T]{subs: make(map[*subscriber[T]]struct{})}
}

// Subscribe registers a stream that is closed when ctx is done.
func (h *Hub[T]) Subscribe(ctx context.Context) <-chan T {
	sub := &subscriber[T]{ch: make(chan T, 16)}

	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.mu.Lock()
		delete(h.subs, sub)
		h.mu.Unlock()
		close(sub.ch)
	}()

	return sub.ch
}

// Publish delivers the event to every subscriber without blocking.
func (h *Hub[T]) Publish(evt T) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs {
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// Len returns the number of active subscribers.
func (h *Hub[T]) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
