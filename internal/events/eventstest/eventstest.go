// Package eventstest provides an in-memory events.Publisher for tests.
package eventstest

import (
	"context"
	"sync"

	"github.com/Skotchmaster/restaurant_pos/internal/events"
)

// Recorder keeps published events in memory, one call per batch.
type Recorder struct {
	mu      sync.Mutex
	Events  []events.Event
	Batches [][]events.Event
}

func (r *Recorder) Publish(_ context.Context, _ string, evs ...events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, evs...)
	r.Batches = append(r.Batches, append([]events.Event(nil), evs...))
	return nil
}

func (r *Recorder) Close() error { return nil }

func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, e := range r.Events {
		out[i] = e.Type
	}
	return out
}

// BatchSizes returns how many events each Publish call carried.
func (r *Recorder) BatchSizes() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.Batches))
	for i, b := range r.Batches {
		out[i] = len(b)
	}
	return out
}
