// Package playback schedules inbound speech buffers for gapless sequential
// output and supports halting every in-flight buffer instantly.
package playback

import (
	"sync"
	"time"

	"github.com/aura-assist/aura/pkg/audio"
	"github.com/aura-assist/aura/pkg/metrics"
)

// Sink consumes one buffer at its scheduled moment. Play must start output
// immediately, call done exactly once when output finishes naturally, and
// return a stop function that halts output early. Stopping an already
// finished unit must be a no-op.
type Sink interface {
	Play(buf audio.Buffer, done func()) (stop func())
}

type unit struct {
	id    uint64
	timer *time.Timer
	stop  func()
}

// Scheduler owns the active-playback set and the shared schedule head.
// Buffers enqueue back-to-back: each starts at max(now, nextStart) so
// chunks that arrive faster than they play never overlap and never gap.
type Scheduler struct {
	clock   Clock
	sink    Sink
	metrics *metrics.Metrics

	mu        sync.Mutex
	active    map[uint64]*unit
	nextStart float64
	nextID    uint64
	closed    bool
}

// NewScheduler creates a scheduler over the given clock and sink.
func NewScheduler(clock Clock, sink Sink, m *metrics.Metrics) *Scheduler {
	if clock == nil {
		clock = NewMonotonicClock()
	}
	return &Scheduler{
		clock:   clock,
		sink:    sink,
		metrics: m,
		active:  make(map[uint64]*unit),
	}
}

// Enqueue schedules buf to start at max(now, nextStart) and advances
// nextStart by the buffer's duration. It returns the scheduled start time
// on the shared clock.
func (s *Scheduler) Enqueue(buf audio.Buffer) float64 {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	now := s.clock.Now()
	start := now
	if s.nextStart > now {
		start = s.nextStart
	}
	s.nextStart = start + buf.Seconds()

	s.nextID++
	id := s.nextID
	u := &unit{id: id}
	s.active[id] = u

	delay := time.Duration((start - now) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}
	u.timer = time.AfterFunc(delay, func() { s.begin(id, buf) })
	s.mu.Unlock()

	s.metrics.IncPlaybackEnqueue()
	return start
}

func (s *Scheduler) begin(id uint64, buf audio.Buffer) {
	s.mu.Lock()
	if _, ok := s.active[id]; !ok || s.sink == nil {
		// Stopped (or closed) before its start time arrived.
		delete(s.active, id)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	// Start output outside the lock: a sink may complete synchronously.
	stop := s.sink.Play(buf, func() { s.complete(id) })

	// Publish the stop handle under the lock so StopAll either sees it or
	// has already removed the unit, in which case the output started into
	// a cleared schedule and is halted here.
	s.mu.Lock()
	u, ok := s.active[id]
	if ok {
		u.stop = stop
	}
	s.mu.Unlock()
	if !ok && stop != nil {
		stop()
	}
}

// complete removes a unit after natural playback completion.
func (s *Scheduler) complete(id uint64) {
	s.mu.Lock()
	delete(s.active, id)
	s.mu.Unlock()
}

// StopAll immediately halts every active unit, clears the active set, and
// resets the schedule head to now so the next utterance starts immediately.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	units := make([]*unit, 0, len(s.active))
	for _, u := range s.active {
		units = append(units, u)
	}
	s.active = make(map[uint64]*unit)
	s.nextStart = s.clock.Now()
	s.mu.Unlock()

	for _, u := range units {
		if u.timer != nil {
			u.timer.Stop()
		}
		if u.stop != nil {
			u.stop()
		}
	}
	s.metrics.IncPlaybackStop()
}

// ActiveCount reports the number of in-flight units.
func (s *Scheduler) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// Close stops all playback and rejects further enqueues. Idempotent.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.StopAll()
	if closer, ok := s.sink.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}
