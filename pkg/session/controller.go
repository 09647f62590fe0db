// Package session binds transport, capture, playback, tools, and haptics
// into the live-experience lifecycle.
package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aura-assist/aura/pkg/audio"
	"github.com/aura-assist/aura/pkg/core"
	"github.com/aura-assist/aura/pkg/haptics"
	"github.com/aura-assist/aura/pkg/live"
	"github.com/aura-assist/aura/pkg/memory"
	"github.com/aura-assist/aura/pkg/metrics"
	"github.com/aura-assist/aura/pkg/tools"
)

// State is the controller's lifecycle state.
type State string

const (
	StateIdle        State = "idle"
	StateConnecting  State = "connecting"
	StateActive      State = "active"
	StateInterrupted State = "interrupted"
	StateFailed      State = "failed"
	StateClosed      State = "closed"
)

// Transport is the controller's view of the live connection: the narrow
// send capabilities plus the inbound event stream and lifecycle control.
type Transport interface {
	live.Sender
	live.ToolResponder
	Events() <-chan live.Event
	Close() error
	Err() error
}

// Player schedules inbound speech for gapless output.
type Player interface {
	Enqueue(buf audio.Buffer) float64
	StopAll()
	Close()
}

// Capture streams device media into a Sender.
type Capture interface {
	Start()
	Stop()
}

// Options wires a Controller. Dial and NewCapture are injected so the
// lifecycle is testable with scripted events and no devices.
type Options struct {
	// Dial opens the live connection with the full instruction text.
	Dial func(ctx context.Context, instruction string) (Transport, error)

	// NewCapture builds the capture pipeline over the session's send
	// capability. onError must be invoked on a mid-session device failure
	// so the controller can end the session with a plain-language message.
	// Nil disables capture (text-only sessions, tests).
	NewCapture func(sender live.Sender, onError func(error)) (Capture, error)

	Store   *memory.Store
	Player  Player
	Haptics haptics.Driver
	Dialer  tools.Dialer

	// OnCaption observes caption changes; the empty string clears.
	OnCaption func(text string)

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Controller owns the session lifecycle state machine. One controller
// drives at most one connection; re-entering the live experience after a
// failure means building a fresh controller.
type Controller struct {
	opts       Options
	logger     *slog.Logger
	metrics    *metrics.Metrics
	dispatcher *tools.Dispatcher

	mu        sync.Mutex
	state     State
	caption   string
	userErr   string
	failErr   error
	transport Transport
	capture   Capture

	closeOnce sync.Once
	done      chan struct{}
}

// NewController creates an idle controller.
func NewController(opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Haptics == nil {
		opts.Haptics = haptics.LogDriver{Logger: logger}
	}
	return &Controller{
		opts:    opts,
		logger:  logger,
		metrics: opts.Metrics,
		state:   StateIdle,
		done:    make(chan struct{}),
	}
}

// State returns the current lifecycle state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Caption returns the currently displayed assistant transcript.
func (c *Controller) Caption() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.caption
}

// UserMessage returns the plain-language failure message, if the session
// failed.
func (c *Controller) UserMessage() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userErr
}

// Done closes when the session has fully ended.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// Run drives the session to completion: connect, start capture, process
// inbound events until the connection ends or Close is called. The memory
// snapshot taken here stays frozen for the whole session.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	c.setState(StateConnecting)

	snapshot := c.opts.Store.Snapshot()
	instruction := Instruction + "\n" + snapshot.ContextBlock()

	transport, err := c.opts.Dial(ctx, instruction)
	if err != nil {
		c.fail(err)
		c.Close()
		return err
	}
	c.mu.Lock()
	c.transport = transport
	c.mu.Unlock()

	if c.opts.NewCapture != nil {
		capture, err := c.opts.NewCapture(transport, c.captureFailed)
		if err != nil {
			c.fail(err)
			c.Close()
			return err
		}
		c.mu.Lock()
		c.capture = capture
		c.mu.Unlock()
		capture.Start()
	}

	c.dispatcher = tools.NewDispatcher(c.opts.Store, transport, tools.DispatcherOptions{
		Dialer:  c.opts.Dialer,
		Logger:  c.logger,
		Metrics: c.metrics,
	})

	c.setState(StateActive)
	c.eventLoop(transport)

	c.mu.Lock()
	state := c.state
	failErr := c.failErr
	c.mu.Unlock()
	// A failed session is still fully torn down; Close preserves Failed.
	c.Close()
	if state == StateFailed {
		if failErr != nil {
			return failErr
		}
		return transport.Err()
	}
	return nil
}

// captureFailed ends the session when a device pump dies mid-session.
// Closing the transport unwinds the event loop, which finishes teardown.
func (c *Controller) captureFailed(err error) {
	c.fail(err)
	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()
	if transport != nil {
		_ = transport.Close()
	}
}

func (c *Controller) eventLoop(transport Transport) {
	for event := range transport.Events() {
		switch e := event.(type) {
		case live.InputTranscriptEvent:
			if IsSilenceCommand(e.Text) {
				c.interrupt("silence command")
			}

		case live.OutputTranscriptEvent:
			if IsHazardWarning(e.Text) {
				c.opts.Haptics.Vibrate(haptics.Hazard)
			}
			c.setCaption(e.Text)
			c.resume()

		case live.AudioChunkEvent:
			buf, err := audio.BuildPlayable(e.Data, audio.PlaybackSampleRate, 1)
			if err != nil {
				// Malformed chunk: drop it, keep the session.
				c.logger.Warn("dropping malformed audio chunk", "error", err)
				continue
			}
			if c.opts.Player != nil {
				c.opts.Player.Enqueue(buf)
			}
			c.resume()

		case live.ToolCallEvent:
			c.dispatcher.Handle(e)
			c.opts.Haptics.Vibrate(haptics.Confirm)

		case live.InterruptedEvent:
			c.interrupt("model interrupted")

		case live.TurnCompleteEvent:
			c.logger.Debug("turn complete")

		case live.GoAwayEvent:
			c.logger.Warn("server requested disconnect", "time_left", e.TimeLeft)

		case live.ClosedEvent:
			if e.Err != nil {
				c.fail(e.Err)
			}
			return
		}
	}
}

// interrupt stops playback instantly and clears the caption.
func (c *Controller) interrupt(reason string) {
	if c.opts.Player != nil {
		c.opts.Player.StopAll()
	}
	c.setCaption("")

	c.mu.Lock()
	transition := c.state == StateActive
	if transition {
		c.state = StateInterrupted
	}
	c.mu.Unlock()
	if transition {
		c.logger.Info("playback interrupted", "reason", reason)
		c.metrics.IncState(string(StateInterrupted))
	}
}

// resume returns to Active on the next inbound speech event.
func (c *Controller) resume() {
	c.mu.Lock()
	transition := c.state == StateInterrupted
	if transition {
		c.state = StateActive
	}
	c.mu.Unlock()
	if transition {
		c.metrics.IncState(string(StateActive))
	}
}

// Scan asks the assistant to describe the surroundings.
func (c *Controller) Scan() error {
	return c.sendQuickAction(QuickActionScan)
}

// Help asks the assistant for guidance.
func (c *Controller) Help() error {
	return c.sendQuickAction(QuickActionHelp)
}

func (c *Controller) sendQuickAction(text string) error {
	c.mu.Lock()
	transport := c.transport
	c.mu.Unlock()
	if transport == nil {
		return core.NewInvalidError("session is not connected")
	}
	c.opts.Haptics.Vibrate(haptics.QuickAction)
	return transport.SendText(text)
}

// Close tears the session down: capture, transport, playback, in an order
// that tolerates any of them already being gone. Idempotent; the single
// cancellation root.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		capture := c.capture
		transport := c.transport
		if c.state != StateFailed {
			c.state = StateClosed
		}
		c.caption = ""
		c.mu.Unlock()
		c.metrics.IncState(string(StateClosed))

		if capture != nil {
			capture.Stop()
		}
		if transport != nil {
			_ = transport.Close()
		}
		if c.opts.Player != nil {
			c.opts.Player.Close()
		}
	})
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.metrics.IncState(string(s))
}

func (c *Controller) setCaption(text string) {
	c.mu.Lock()
	c.caption = text
	fn := c.opts.OnCaption
	c.mu.Unlock()
	if fn != nil {
		fn(text)
	}
}

// fail records a terminal failure with its plain-language message.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	c.state = StateFailed
	c.userErr = core.UserMessage(err)
	if c.failErr == nil {
		c.failErr = err
	}
	c.mu.Unlock()
	c.metrics.IncState(string(StateFailed))
	c.logger.Error("session failed", "error", err)
}
