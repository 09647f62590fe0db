package playback

import (
	"sync"

	"github.com/gordonklaus/portaudio"

	"github.com/aura-assist/aura/pkg/audio"
	"github.com/aura-assist/aura/pkg/core"
)

const deviceFramesPerBuffer = 1024

// deviceUnit is one queued segment awaiting output.
type deviceUnit struct {
	samples []float32
	pos     int
	done    func()
	stopped bool
}

// Device is a PortAudio-backed Sink. A single output stream drains a FIFO
// of queued segments from its callback; stopping a segment removes its
// unconsumed samples from the queue without disturbing neighbors.
type Device struct {
	stream *portaudio.Stream

	mu    sync.Mutex
	queue []*deviceUnit

	closeOnce sync.Once
	closeErr  error
}

var _ Sink = (*Device)(nil)

// OpenDevice opens the default output device at the given rate.
func OpenDevice(sampleRate, channels int) (*Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, core.NewDeviceError("initialize audio output", err)
	}

	d := &Device{}
	stream, err := portaudio.OpenDefaultStream(0, channels, float64(sampleRate), deviceFramesPerBuffer, d.callback)
	if err != nil {
		_ = portaudio.Terminate()
		return nil, core.NewDeviceError("open output stream", err)
	}
	d.stream = stream
	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return nil, core.NewDeviceError("start output stream", err)
	}
	return d, nil
}

func (d *Device) callback(out []float32) {
	d.mu.Lock()
	var finished []func()
	for i := range out {
		out[i] = 0
		for len(d.queue) > 0 {
			head := d.queue[0]
			if head.stopped || head.pos >= len(head.samples) {
				if !head.stopped && head.done != nil {
					finished = append(finished, head.done)
				}
				d.queue = d.queue[1:]
				continue
			}
			out[i] = head.samples[head.pos]
			head.pos++
			break
		}
	}
	d.mu.Unlock()

	// Completion callbacks run off the realtime path.
	for _, done := range finished {
		go done()
	}
}

// Play queues buf for output. The returned stop function discards the
// segment's remaining samples; stopping twice or after completion is a
// no-op.
func (d *Device) Play(buf audio.Buffer, done func()) (stop func()) {
	u := &deviceUnit{samples: buf.Samples, done: done}

	d.mu.Lock()
	d.queue = append(d.queue, u)
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		u.stopped = true
		d.mu.Unlock()
	}
}

// Close stops the stream and releases the device. Idempotent.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		for _, u := range d.queue {
			u.stopped = true
		}
		d.queue = nil
		d.mu.Unlock()

		if d.stream != nil {
			_ = d.stream.Stop()
			d.closeErr = d.stream.Close()
		}
		_ = portaudio.Terminate()
	})
	return d.closeErr
}
