// Package queue provides the in-memory priority queues feeding the delivery
// worker. Queues are unbounded, FIFO per tier, and safe for multiple
// producers with a single consumer.
package queue

import (
	"sync"

	"github.com/fanoutlabs/herald/internal/notification/entity"
)

// FIFO is an unbounded first-in first-out queue of payloads.
type FIFO struct {
	mu    sync.Mutex
	items []*entity.Payload
}

// NewFIFO creates an empty FIFO queue.
func NewFIFO() *FIFO {
	return &FIFO{}
}

// Enqueue appends a payload. It never blocks.
func (q *FIFO) Enqueue(p *entity.Payload) {
	q.mu.Lock()
	q.items = append(q.items, p)
	q.mu.Unlock()
}

// TryDequeue removes and returns the oldest payload, or nil when empty.
func (q *FIFO) TryDequeue() *entity.Payload {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	p := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return p
}

// Len returns the number of queued payloads.
func (q *FIFO) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Set holds one FIFO queue per priority tier.
type Set struct {
	tiers map[entity.Priority]*FIFO
}

// NewSet creates a Set with one queue per known priority.
func NewSet() *Set {
	return &Set{tiers: map[entity.Priority]*FIFO{
		entity.PriorityLow:    NewFIFO(),
		entity.PriorityNormal: NewFIFO(),
		entity.PriorityHigh:   NewFIFO(),
		entity.PriorityUrgent: NewFIFO(),
	}}
}

// Enqueue places the payload on the queue for its priority. Unknown
// priorities fall back to the Normal tier.
func (s *Set) Enqueue(p *entity.Payload) {
	q, ok := s.tiers[p.Priority]
	if !ok {
		q = s.tiers[entity.PriorityNormal]
	}
	q.Enqueue(p)
}

// TryDequeue scans tiers from Urgent down to Low and returns the first ready
// payload, or nil when every tier is empty. Urgent work always preempts the
// lower tiers, so sustained urgent traffic starves them.
func (s *Set) TryDequeue() *entity.Payload {
	for _, pr := range []entity.Priority{
		entity.PriorityUrgent,
		entity.PriorityHigh,
		entity.PriorityNormal,
		entity.PriorityLow,
	} {
		if p := s.tiers[pr].TryDequeue(); p != nil {
			return p
		}
	}
	return nil
}

// Len returns the total number of queued payloads across all tiers.
func (s *Set) Len() int {
	n := 0
	for _, q := range s.tiers {
		n += q.Len()
	}
	return n
}
