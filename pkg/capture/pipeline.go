package capture

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aura-assist/aura/pkg/audio"
	"github.com/aura-assist/aura/pkg/core"
	"github.com/aura-assist/aura/pkg/live"
	"github.com/aura-assist/aura/pkg/metrics"
)

// DefaultFrameInterval is the gap between camera frames sent upstream.
const DefaultFrameInterval = time.Second

// Pipeline pumps a microphone and a camera into a Sender. Audio blocks
// stream as fast as the device produces them; frames go out on a timer
// with at most one frame in flight at a time.
type Pipeline struct {
	sender live.Sender
	mic    BlockSource
	camera FrameSource

	frameInterval time.Duration
	logger        *slog.Logger
	metrics       *metrics.Metrics
	onError       func(error)

	frameBusy atomic.Bool

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup

	errMu sync.Mutex
	err   error
}

// PipelineOptions configures a Pipeline. Mic and Camera are both optional;
// a nil source simply disables that stream.
type PipelineOptions struct {
	Mic           BlockSource
	Camera        FrameSource
	FrameInterval time.Duration
	Logger        *slog.Logger
	Metrics       *metrics.Metrics

	// OnError observes the first device failure of either pump. A stop
	// racing a blocking read is not a failure and is never reported.
	OnError func(error)
}

// NewPipeline wires sources to a sender. Call Start to begin streaming.
func NewPipeline(sender live.Sender, opts PipelineOptions) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	interval := opts.FrameInterval
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	return &Pipeline{
		sender:        sender,
		mic:           opts.Mic,
		camera:        opts.Camera,
		frameInterval: interval,
		logger:        logger,
		metrics:       opts.Metrics,
		onError:       opts.OnError,
		stop:          make(chan struct{}),
	}
}

// Start launches the audio and frame pumps.
func (p *Pipeline) Start() {
	if p.mic != nil {
		p.wg.Add(1)
		go p.pumpAudio()
	}
	if p.camera != nil {
		p.wg.Add(1)
		go p.pumpFrames()
	}
}

// Stop halts both pumps and waits for them to exit. Idempotent.
func (p *Pipeline) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
		if p.mic != nil {
			_ = p.mic.Close()
		}
		if p.camera != nil {
			_ = p.camera.Close()
		}
	})
	p.wg.Wait()
}

// Err returns the first pump error, if any. Device failures end the pump
// that hit them; the other stream keeps going.
func (p *Pipeline) Err() error {
	p.errMu.Lock()
	defer p.errMu.Unlock()
	return p.err
}

func (p *Pipeline) setErr(err error) {
	if err == nil {
		return
	}
	p.errMu.Lock()
	first := p.err == nil
	if first {
		p.err = err
	}
	p.errMu.Unlock()

	if first && p.onError != nil {
		p.onError(err)
	}
}

func (p *Pipeline) pumpAudio() {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			return
		default:
		}

		block, err := p.mic.NextBlock()
		if err != nil {
			select {
			case <-p.stop:
				// Close raced the blocking read; not a failure.
				return
			default:
			}
			p.logger.Error("microphone read failed", "error", err)
			p.setErr(err)
			return
		}

		chunk := live.MediaChunk{
			Data:     audio.Encode(audio.Float32ToPCM16(block)),
			MimeType: audio.CaptureMimeType,
		}
		if err := p.sender.SendMedia(chunk); err != nil {
			if core.TypeOf(err) == core.ErrTransport {
				p.logger.Info("audio pump stopping, session closed")
				return
			}
			p.logger.Warn("dropping audio block", "error", err)
		}
	}
}

func (p *Pipeline) pumpFrames() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.frameInterval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
		}

		// A slow grab or send must not queue frames behind it.
		if !p.frameBusy.CompareAndSwap(false, true) {
			p.metrics.IncFrameDropped()
			continue
		}
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			defer p.frameBusy.Store(false)
			p.sendFrame()
		}()
	}
}

func (p *Pipeline) sendFrame() {
	frame, err := p.camera.NextFrame()
	if err != nil {
		select {
		case <-p.stop:
			return
		default:
		}
		p.logger.Warn("camera frame grab failed", "error", err)
		p.setErr(err)
		return
	}

	chunk := live.MediaChunk{
		Data:     audio.Encode(frame),
		MimeType: FrameMimeType,
	}
	if err := p.sender.SendMedia(chunk); err != nil {
		p.logger.Warn("dropping camera frame", "error", err)
	}
}
