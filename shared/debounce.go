package shared

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MinimumDebounceDelay is the shortest quiescence window accepted for search input
const MinimumDebounceDelay = 500 * time.Millisecond

// ErrSuperseded is returned when a newer request for the same key replaced this one
var ErrSuperseded = errors.New("request superseded by a newer one")

type debounceEntry struct {
	generation uint64
	superseded chan struct{}
}

// Debouncer coalesces bursts of calls per key. Wait returns only after the key
// has been quiet for the configured delay; earlier waiters get ErrSuperseded.
type Debouncer struct {
	delay      time.Duration
	mutex      sync.Mutex
	entries    map[string]*debounceEntry
	generation uint64
}

// NewDebouncer creates a debouncer; delays below MinimumDebounceDelay are raised to it
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay < MinimumDebounceDelay {
		logrus.WithFields(logrus.Fields{
			"component":       "Debouncer",
			"requested_delay": delay,
			"applied_delay":   MinimumDebounceDelay,
		}).Debug("Raised debounce delay to minimum")
		delay = MinimumDebounceDelay
	}
	return &Debouncer{
		delay:   delay,
		entries: make(map[string]*debounceEntry),
	}
}

// Delay returns the effective quiescence window
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Wait blocks until key has been quiet for the delay, ctx is done, or a newer
// Wait for the same key arrives.
func (d *Debouncer) Wait(ctx context.Context, key string) error {
	d.mutex.Lock()
	if previous, ok := d.entries[key]; ok {
		close(previous.superseded)
	}
	d.generation++
	entry := &debounceEntry{generation: d.generation, superseded: make(chan struct{})}
	d.entries[key] = entry
	d.mutex.Unlock()

	timer := time.NewTimer(d.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		d.release(key, entry.generation)
		return ctx.Err()
	case <-entry.superseded:
		return ErrSuperseded
	case <-timer.C:
		d.release(key, entry.generation)
		return nil
	}
}

func (d *Debouncer) release(key string, generation uint64) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if current, ok := d.entries[key]; ok && current.generation == generation {
		delete(d.entries, key)
	}
}

// RequestSequencer implements last-request-wins ordering per key. Begin hands
// out a ticket and cancels the context of the previous in-flight request; a
// result is only trusted when IsLatest still holds for its ticket.
type RequestSequencer struct {
	mutex   sync.Mutex
	counter uint64
	latest  map[string]uint64
	cancels map[string]context.CancelFunc
}

// NewRequestSequencer creates an empty sequencer
func NewRequestSequencer() *RequestSequencer {
	return &RequestSequencer{
		latest:  make(map[string]uint64),
		cancels: make(map[string]context.CancelFunc),
	}
}

// Begin starts a new request for key, superseding any request in flight
func (s *RequestSequencer) Begin(parent context.Context, key string) (context.Context, uint64) {
	ctx, cancel := context.WithCancel(parent)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	if previousCancel, ok := s.cancels[key]; ok {
		previousCancel()
	}
	s.counter++
	s.latest[key] = s.counter
	s.cancels[key] = cancel
	return ctx, s.counter
}

// IsLatest reports whether ticket is still the newest request for key
func (s *RequestSequencer) IsLatest(key string, ticket uint64) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.latest[key] == ticket
}

// Finish releases the request's context; state is dropped when ticket is the latest
func (s *RequestSequencer) Finish(key string, ticket uint64) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.latest[key] != ticket {
		return
	}
	if cancel, ok := s.cancels[key]; ok {
		cancel()
	}
	delete(s.cancels, key)
	delete(s.latest, key)
}
