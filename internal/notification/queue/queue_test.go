package queue

import (
	"sync"
	"testing"

	"github.com/fanoutlabs/herald/internal/notification/entity"
)

func TestFIFOOrder(t *testing.T) {
	q := NewFIFO()

	if got := q.TryDequeue(); got != nil {
		t.Fatalf("TryDequeue on empty queue = %v, want nil", got)
	}

	q.Enqueue(&entity.Payload{ID: "a"})
	q.Enqueue(&entity.Payload{ID: "b"})
	q.Enqueue(&entity.Payload{ID: "c"})

	for _, want := range []string{"a", "b", "c"} {
		got := q.TryDequeue()
		if got == nil || got.ID != want {
			t.Fatalf("TryDequeue = %v, want id %s", got, want)
		}
	}

	if got := q.TryDequeue(); got != nil {
		t.Fatalf("TryDequeue after drain = %v, want nil", got)
	}
}

func TestSetStrictPrecedence(t *testing.T) {
	s := NewSet()

	s.Enqueue(&entity.Payload{ID: "low", Priority: entity.PriorityLow})
	s.Enqueue(&entity.Payload{ID: "normal", Priority: entity.PriorityNormal})
	s.Enqueue(&entity.Payload{ID: "urgent", Priority: entity.PriorityUrgent})
	s.Enqueue(&entity.Payload{ID: "high", Priority: entity.PriorityHigh})

	for _, want := range []string{"urgent", "high", "normal", "low"} {
		got := s.TryDequeue()
		if got == nil || got.ID != want {
			t.Fatalf("TryDequeue = %v, want id %s", got, want)
		}
	}
}

func TestSetUrgentPreemptsLaterEnqueues(t *testing.T) {
	s := NewSet()

	s.Enqueue(&entity.Payload{ID: "n1", Priority: entity.PriorityNormal})
	if got := s.TryDequeue(); got == nil || got.ID != "n1" {
		t.Fatalf("TryDequeue = %v, want n1", got)
	}

	s.Enqueue(&entity.Payload{ID: "n2", Priority: entity.PriorityNormal})
	s.Enqueue(&entity.Payload{ID: "u1", Priority: entity.PriorityUrgent})

	if got := s.TryDequeue(); got == nil || got.ID != "u1" {
		t.Fatalf("TryDequeue = %v, want u1 before n2", got)
	}
	if got := s.TryDequeue(); got == nil || got.ID != "n2" {
		t.Fatalf("TryDequeue = %v, want n2", got)
	}
}

func TestSetUnknownPriorityFallsBackToNormal(t *testing.T) {
	s := NewSet()

	s.Enqueue(&entity.Payload{ID: "odd", Priority: entity.Priority(42)})

	got := s.TryDequeue()
	if got == nil || got.ID != "odd" {
		t.Fatalf("TryDequeue = %v, want odd from normal tier", got)
	}
}

func TestSetConcurrentProducers(t *testing.T) {
	s := NewSet()

	const producers = 8
	const perProducer = 50

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				s.Enqueue(&entity.Payload{Priority: entity.PriorityNormal})
			}
		}()
	}
	wg.Wait()

	if got := s.Len(); got != producers*perProducer {
		t.Fatalf("Len = %d, want %d", got, producers*perProducer)
	}

	n := 0
	for s.TryDequeue() != nil {
		n++
	}
	if n != producers*perProducer {
		t.Fatalf("drained %d payloads, want %d", n, producers*perProducer)
	}
}
