package live

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/aura-assist/aura/pkg/core"
	"github.com/aura-assist/aura/pkg/metrics"
)

const (
	defaultHost = "generativelanguage.googleapis.com"
	bidiPath    = "/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"

	defaultConnectTimeout = 15 * time.Second
)

// Config describes one session-open request.
type Config struct {
	// APIKey authenticates against the remote endpoint.
	APIKey string

	// Model is the remote model identifier (with or without the
	// "models/" prefix).
	Model string

	// Instruction is the full system instruction: base behavioral prompt
	// concatenated with the memory context block.
	Instruction string

	// Tools declares the callable tool schema.
	Tools []FunctionDeclaration

	// VoiceName selects the prebuilt synthesis voice.
	VoiceName string

	// Endpoint overrides the remote URL (tests). Defaults to the public
	// endpoint over wss.
	Endpoint string

	ConnectTimeout time.Duration

	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// MediaChunk is one outbound media payload.
type MediaChunk struct {
	Data     string
	MimeType string
}

// Sender is the narrow outbound-media capability handed to the capture
// pipeline. It carries no lifecycle control.
type Sender interface {
	SendMedia(chunk MediaChunk) error
	SendText(text string) error
}

// ToolResponder is the narrow capability handed to the tool dispatcher.
type ToolResponder interface {
	SendToolResult(invocationID, name, result string) error
}

// Session is the single live bidirectional connection to the remote model.
type Session struct {
	conn *websocket.Conn

	events chan Event
	done   chan struct{}
	stop   chan struct{}

	writeMu   sync.Mutex
	closeOnce sync.Once
	closed    atomic.Bool

	errMu sync.Mutex
	err   error

	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ Sender = (*Session)(nil)
var _ ToolResponder = (*Session)(nil)

// Connect opens the session: dial, send setup, await setup completion.
// Failure is terminal for the attempt; the caller does not retry.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, core.NewInvalidError("model must not be empty")
	}
	if strings.TrimSpace(cfg.APIKey) == "" && cfg.Endpoint == "" {
		return nil, core.NewInvalidError("API key must not be empty")
	}

	endpoint, err := cfg.endpointURL()
	if err != nil {
		return nil, err
	}

	dialCtx := ctx
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		timeout := cfg.ConnectTimeout
		if timeout <= 0 {
			timeout = defaultConnectTimeout
		}
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	dialer := websocket.DefaultDialer
	if dialer == nil {
		dialer = &websocket.Dialer{}
	}
	conn, resp, err := dialer.DialContext(dialCtx, endpoint, nil)
	if err != nil {
		if resp != nil {
			return nil, core.NewConnectError(fmt.Sprintf("websocket dial failed (status %d)", resp.StatusCode), err)
		}
		return nil, core.NewConnectError("websocket dial failed", err)
	}

	if err := conn.WriteJSON(clientSetupMessage{Setup: cfg.buildSetup()}); err != nil {
		_ = conn.Close()
		return nil, core.NewConnectError("send setup", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(defaultConnectTimeout))
	_, payload, err := conn.ReadMessage()
	if err != nil {
		_ = conn.Close()
		return nil, core.NewConnectError("read setup completion", err)
	}
	_ = conn.SetReadDeadline(time.Time{})

	var first serverMessage
	if err := json.Unmarshal(payload, &first); err != nil {
		_ = conn.Close()
		return nil, core.NewConnectError("decode setup completion", err)
	}
	if first.SetupComplete == nil {
		_ = conn.Close()
		return nil, core.NewConnectError("unexpected first frame before setup completion", nil)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		conn:    conn,
		events:  make(chan Event, 256),
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
		logger:  logger,
		metrics: cfg.Metrics,
	}
	go s.readLoop()
	return s, nil
}

func (cfg Config) endpointURL() (string, error) {
	if cfg.Endpoint != "" {
		u, err := url.Parse(cfg.Endpoint)
		if err != nil {
			return "", core.NewInvalidError("invalid endpoint URL")
		}
		switch strings.ToLower(u.Scheme) {
		case "http":
			u.Scheme = "ws"
		case "https":
			u.Scheme = "wss"
		case "ws", "wss":
			// already websocket scheme.
		default:
			return "", core.NewInvalidError("endpoint must use http(s) or ws(s)")
		}
		return u.String(), nil
	}
	u := url.URL{
		Scheme:   "wss",
		Host:     defaultHost,
		Path:     bidiPath,
		RawQuery: url.Values{"key": {cfg.APIKey}}.Encode(),
	}
	return u.String(), nil
}

func (cfg Config) buildSetup() Setup {
	model := cfg.Model
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	setup := Setup{
		Model: model,
		GenerationConfig: &GenerationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
		InputAudioTranscription:  &struct{}{},
		OutputAudioTranscription: &struct{}{},
	}
	if cfg.Instruction != "" {
		setup.SystemInstruction = &Content{Parts: []Part{{Text: cfg.Instruction}}}
	}
	if len(cfg.Tools) > 0 {
		setup.Tools = []Tool{{FunctionDeclarations: cfg.Tools}}
	}
	if cfg.VoiceName != "" {
		setup.GenerationConfig.SpeechConfig = &SpeechConfig{
			VoiceConfig: &VoiceConfig{
				PrebuiltVoiceConfig: &PrebuiltVoiceConfig{VoiceName: cfg.VoiceName},
			},
		}
	}
	return setup
}

// Events yields inbound events strictly in arrival order. The channel is
// closed after the terminal ClosedEvent.
func (s *Session) Events() <-chan Event {
	if s == nil {
		return nil
	}
	return s.events
}

// SendMedia enqueues one outbound media chunk. Ordering between chunks of
// the same type is preserved by the write mutex.
func (s *Session) SendMedia(chunk MediaChunk) error {
	if err := s.sendJSON(clientRealtimeInputMessage{
		RealtimeInput: RealtimeInput{
			MediaChunks: []Blob{{MimeType: chunk.MimeType, Data: chunk.Data}},
		},
	}); err != nil {
		return err
	}
	s.metrics.AddMediaBytes(chunk.MimeType, len(chunk.Data))
	return nil
}

// SendText enqueues one outbound text command.
func (s *Session) SendText(text string) error {
	return s.sendJSON(clientRealtimeInputMessage{
		RealtimeInput: RealtimeInput{Text: text},
	})
}

// SendToolResult confirms one tool invocation, echoing its identifier.
func (s *Session) SendToolResult(invocationID, name, result string) error {
	return s.sendJSON(clientToolResponseMessage{
		ToolResponse: ToolResponse{
			FunctionResponses: []FunctionResponse{{
				ID:       invocationID,
				Name:     name,
				Response: map[string]any{"result": result},
			}},
		},
	})
}

func (s *Session) sendJSON(v any) error {
	if s == nil {
		return core.NewInvalidError("session must not be nil")
	}
	if s.closed.Load() {
		return core.NewTransportError("session is closed", nil)
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(v); err != nil {
		return core.NewTransportError("write frame", err)
	}
	return nil
}

// Close terminates the connection. Idempotent; safe from any state.
func (s *Session) Close() error {
	if s == nil {
		return nil
	}
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		close(s.stop)
		s.writeMu.Lock()
		_ = s.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(2*time.Second))
		s.writeMu.Unlock()
		_ = s.conn.Close()
	})
	<-s.done
	return nil
}

// Err returns the terminal session error, if any, after the read loop ends.
func (s *Session) Err() error {
	if s == nil {
		return nil
	}
	<-s.done
	s.errMu.Lock()
	defer s.errMu.Unlock()
	return s.err
}

func (s *Session) setErr(err error) {
	if err == nil {
		return
	}
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

func (s *Session) readLoop() {
	defer close(s.done)
	defer close(s.events)

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if s.closed.Load() || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.emit(ClosedEvent{})
				return
			}
			terminal := core.NewTransportError("read frame", err)
			s.setErr(terminal)
			s.emit(ClosedEvent{Err: terminal})
			return
		}

		events, err := decodeServerFrame(data)
		if err != nil {
			// A frame this client cannot decode is dropped; the
			// session survives.
			s.logger.Warn("dropping undecodable frame", "error", err)
			s.metrics.IncEvent("undecodable")
			continue
		}
		for _, event := range events {
			s.metrics.IncEvent(eventName(event))
			s.emit(event)
		}
	}
}

// emit delivers in order, blocking until the consumer takes the event or
// the session is being closed. Ordering is part of the contract, so events
// are never dropped to relieve backpressure.
func (s *Session) emit(event Event) {
	select {
	case s.events <- event:
	case <-s.stop:
	}
}

func eventName(event Event) string {
	if event == nil {
		return "nil"
	}
	return event.eventType()
}
