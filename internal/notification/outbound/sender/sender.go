// Package sender holds the channel adapters performing transport-specific
// delivery, and the registry the pipeline resolves them from.
package sender

import (
	"context"
	"sync"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/pkg/valueobject"
)

// Request is the normalized send request handed to every channel adapter.
// Subject and Body are already template-processed.
type Request struct {
	CorrelationID string
	Recipient     string
	DisplayName   string
	Subject       string
	Body          string
	Metadata      valueobject.JSONMap
}

// Sender performs one delivery. Implementations must treat any transport
// problem as a returned error, never a panic.
type Sender interface {
	Send(ctx context.Context, req Request) error
}

// Registry maps channels to their registered sender.
type Registry struct {
	mu      sync.RWMutex
	senders map[entity.Channel]Sender
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{senders: make(map[entity.Channel]Sender)}
}

// Register binds a sender to a channel, replacing any previous binding.
func (r *Registry) Register(ch entity.Channel, s Sender) {
	r.mu.Lock()
	r.senders[ch] = s
	r.mu.Unlock()
}

// Resolve returns the sender for the channel, if one is registered.
func (r *Registry) Resolve(ch entity.Channel) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.senders[ch]
	return s, ok
}

// Channels lists the registered channels.
func (r *Registry) Channels() []entity.Channel {
	r.mu.RLock()
	defer r.mu.RUnlock()

	chs := make([]entity.Channel, 0, len(r.senders))
	for ch := range r.senders {
		chs = append(chs, ch)
	}
	return chs
}
