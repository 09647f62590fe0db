package live

import (
	"encoding/json"

	"github.com/aura-assist/aura/pkg/audio"
)

// Event is one inbound session event. Events are delivered strictly in
// arrival order through a single channel; a frame that carries several
// payloads expands into several events in a fixed order (input transcript,
// output transcript, tool calls, audio, interruption).
type Event interface {
	eventType() string
}

// InputTranscriptEvent is a fragment of the user's speech transcript.
type InputTranscriptEvent struct {
	Text     string
	Finished bool
}

func (InputTranscriptEvent) eventType() string { return "input_transcript" }

// OutputTranscriptEvent is a fragment of the assistant's speech transcript.
type OutputTranscriptEvent struct {
	Text     string
	Finished bool
}

func (OutputTranscriptEvent) eventType() string { return "output_transcript" }

// AudioChunkEvent is one decoded inbound speech chunk (raw PCM bytes).
type AudioChunkEvent struct {
	Data     []byte
	MimeType string
}

func (AudioChunkEvent) eventType() string { return "audio_chunk" }

// Invocation is one requested tool call.
type Invocation struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolCallEvent carries the invocations of one inbound tool-call frame.
// Invocations apply sequentially in the order listed.
type ToolCallEvent struct {
	Invocations []Invocation
}

func (ToolCallEvent) eventType() string { return "tool_call" }

// InterruptedEvent signals the model was interrupted; playback must stop.
type InterruptedEvent struct{}

func (InterruptedEvent) eventType() string { return "interrupted" }

// TurnCompleteEvent marks the end of a model turn.
type TurnCompleteEvent struct{}

func (TurnCompleteEvent) eventType() string { return "turn_complete" }

// GoAwayEvent announces an imminent server-side disconnect.
type GoAwayEvent struct {
	TimeLeft string
}

func (GoAwayEvent) eventType() string { return "go_away" }

// ClosedEvent is the terminal event; Err is nil on a normal close.
type ClosedEvent struct {
	Err error
}

func (ClosedEvent) eventType() string { return "closed" }

// UnknownEvent passes through frames this client does not understand.
type UnknownEvent struct {
	Raw json.RawMessage
}

func (UnknownEvent) eventType() string { return "unknown" }

// decodeServerFrame expands one inbound frame into ordered events.
// Undecodable media parts are dropped rather than failing the session.
func decodeServerFrame(data []byte) ([]Event, error) {
	var msg serverMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}

	var events []Event
	switch {
	case msg.SetupComplete != nil:
		// Consumed during connect; a late duplicate is ignored.
	case msg.ToolCall != nil:
		event := ToolCallEvent{Invocations: make([]Invocation, 0, len(msg.ToolCall.FunctionCalls))}
		for _, call := range msg.ToolCall.FunctionCalls {
			event.Invocations = append(event.Invocations, Invocation{
				ID:   call.ID,
				Name: call.Name,
				Args: call.Args,
			})
		}
		events = append(events, event)
	case msg.ServerContent != nil:
		content := msg.ServerContent
		if content.InputTranscription != nil && content.InputTranscription.Text != "" {
			events = append(events, InputTranscriptEvent{
				Text:     content.InputTranscription.Text,
				Finished: content.InputTranscription.Finished,
			})
		}
		if content.OutputTranscription != nil && content.OutputTranscription.Text != "" {
			events = append(events, OutputTranscriptEvent{
				Text:     content.OutputTranscription.Text,
				Finished: content.OutputTranscription.Finished,
			})
		}
		if content.ModelTurn != nil {
			for _, part := range content.ModelTurn.Parts {
				if part.InlineData == nil || part.InlineData.Data == "" {
					continue
				}
				raw, err := audio.Decode(part.InlineData.Data)
				if err != nil {
					// Malformed chunk: drop it, keep the session.
					continue
				}
				events = append(events, AudioChunkEvent{Data: raw, MimeType: part.InlineData.MimeType})
			}
		}
		if content.Interrupted {
			events = append(events, InterruptedEvent{})
		}
		if content.TurnComplete {
			events = append(events, TurnCompleteEvent{})
		}
	case msg.GoAway != nil:
		events = append(events, GoAwayEvent{TimeLeft: msg.GoAway.TimeLeft})
	default:
		events = append(events, UnknownEvent{Raw: append(json.RawMessage(nil), data...)})
	}
	return events, nil
}
