package playback

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/aura-assist/aura/pkg/audio"
)

type fakeClock struct {
	mu  sync.Mutex
	now float64
}

func (c *fakeClock) Now() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d float64) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

type fakeSink struct {
	mu      sync.Mutex
	played  int
	stopped int
}

func (s *fakeSink) Play(buf audio.Buffer, done func()) func() {
	s.mu.Lock()
	s.played++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.stopped++
		s.mu.Unlock()
	}
}

func bufferOfSeconds(seconds float64) audio.Buffer {
	n := int(seconds * float64(audio.PlaybackSampleRate))
	return audio.Buffer{
		Samples:    make([]float32, n),
		SampleRate: audio.PlaybackSampleRate,
		Channels:   1,
	}
}

func TestEnqueueSchedulesBackToBack(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, &fakeSink{}, nil)
	defer s.Close()

	d1, d2, d3 := 0.5, 0.25, 1.0
	start1 := s.Enqueue(bufferOfSeconds(d1))
	start2 := s.Enqueue(bufferOfSeconds(d2))
	start3 := s.Enqueue(bufferOfSeconds(d3))

	if math.Abs(start1-0) > 1e-6 {
		t.Fatalf("start1=%v, want 0", start1)
	}
	if math.Abs(start2-d1) > 1e-6 {
		t.Fatalf("start2=%v, want %v", start2, d1)
	}
	if math.Abs(start3-(d1+d2)) > 1e-6 {
		t.Fatalf("start3=%v, want %v", start3, d1+d2)
	}
	if got := s.ActiveCount(); got != 3 {
		t.Fatalf("ActiveCount=%d, want 3", got)
	}
}

func TestEnqueueNeverSchedulesInThePast(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, &fakeSink{}, nil)
	defer s.Close()

	s.Enqueue(bufferOfSeconds(0.1))
	clock.advance(5)

	// The backlog head is long gone; the next chunk starts at "now".
	if got := s.Enqueue(bufferOfSeconds(0.1)); math.Abs(got-5) > 1e-6 {
		t.Fatalf("start=%v, want 5", got)
	}
}

func TestStopAllClearsAndResets(t *testing.T) {
	clock := &fakeClock{}
	sink := &fakeSink{}
	s := NewScheduler(clock, sink, nil)
	defer s.Close()

	s.Enqueue(bufferOfSeconds(1))
	s.Enqueue(bufferOfSeconds(1))
	s.Enqueue(bufferOfSeconds(1))
	clock.advance(2)

	s.StopAll()
	if got := s.ActiveCount(); got != 0 {
		t.Fatalf("ActiveCount after StopAll=%d, want 0", got)
	}

	// The stale backlog must not delay the next utterance.
	if got := s.Enqueue(bufferOfSeconds(0.5)); math.Abs(got-2) > 1e-6 {
		t.Fatalf("start after StopAll=%v, want 2 (now)", got)
	}
}

func TestStopAllHaltsStartedUnits(t *testing.T) {
	clock := &fakeClock{}
	sink := &fakeSink{}
	s := NewScheduler(clock, sink, nil)
	defer s.Close()

	s.Enqueue(bufferOfSeconds(10))
	waitFor(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return sink.played == 1
	})

	s.StopAll()
	sink.mu.Lock()
	stopped := sink.stopped
	sink.mu.Unlock()
	if stopped != 1 {
		t.Fatalf("stopped=%d, want 1", stopped)
	}
}

func TestStopAllRacesWithUnitStart(t *testing.T) {
	// Whichever side wins the race, output never keeps playing: StopAll
	// halts units whose start it observed, and a start into a cleared
	// schedule halts itself.
	for i := 0; i < 200; i++ {
		sink := &fakeSink{}
		s := NewScheduler(&fakeClock{}, sink, nil)

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Enqueue(bufferOfSeconds(10))
		}()
		go func() {
			defer wg.Done()
			s.StopAll()
		}()
		wg.Wait()
		s.StopAll() // halt a unit enqueued after the racing StopAll

		waitFor(t, func() bool {
			sink.mu.Lock()
			defer sink.mu.Unlock()
			return sink.stopped == sink.played
		})
		s.Close()
	}
}

func TestStopAllIsIdempotent(t *testing.T) {
	s := NewScheduler(&fakeClock{}, &fakeSink{}, nil)
	defer s.Close()

	s.Enqueue(bufferOfSeconds(1))
	s.StopAll()
	s.StopAll() // stopping with nothing active must not panic
}

func TestNaturalCompletionSelfRemoves(t *testing.T) {
	clock := &fakeClock{}
	s := NewScheduler(clock, completingSink{}, nil)
	defer s.Close()

	s.Enqueue(bufferOfSeconds(0.01))
	waitFor(t, func() bool { return s.ActiveCount() == 0 })
}

func TestEnqueueAfterCloseIsNoop(t *testing.T) {
	sink := &fakeSink{}
	s := NewScheduler(&fakeClock{}, sink, nil)
	s.Close()

	s.Enqueue(bufferOfSeconds(1))
	if got := s.ActiveCount(); got != 0 {
		t.Fatalf("ActiveCount=%d, want 0", got)
	}
}

// completingSink reports natural completion immediately.
type completingSink struct{}

func (completingSink) Play(buf audio.Buffer, done func()) func() {
	go done()
	return func() {}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not reached in time")
}
