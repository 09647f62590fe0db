package tools

import (
	"fmt"
	"log/slog"

	"github.com/aura-assist/aura/pkg/live"
	"github.com/aura-assist/aura/pkg/memory"
	"github.com/aura-assist/aura/pkg/metrics"
)

// Dispatcher applies tool invocations to the memory store and acknowledges
// each one back through the session. Invocations within one event apply
// sequentially in order, and every invocation gets exactly one response,
// even when its name or arguments are unusable.
type Dispatcher struct {
	store     *memory.Store
	responder live.ToolResponder
	dialer    Dialer
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// DispatcherOptions configures a Dispatcher.
type DispatcherOptions struct {
	Dialer  Dialer
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// NewDispatcher wires a dispatcher to the store and responder.
func NewDispatcher(store *memory.Store, responder live.ToolResponder, opts DispatcherOptions) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = LogDialer{Logger: logger}
	}
	return &Dispatcher{
		store:     store,
		responder: responder,
		dialer:    dialer,
		logger:    logger,
		metrics:   opts.Metrics,
	}
}

// Handle processes one tool-call event.
func (d *Dispatcher) Handle(event live.ToolCallEvent) {
	for _, invocation := range event.Invocations {
		result, outcome := d.apply(invocation)
		d.metrics.IncTool(invocation.Name, outcome)
		if err := d.responder.SendToolResult(invocation.ID, invocation.Name, result); err != nil {
			d.logger.Warn("tool acknowledgement failed",
				"name", invocation.Name, "id", invocation.ID, "error", err)
		}
	}
}

// apply mutates memory for one invocation and returns the spoken
// confirmation. The fallback acknowledgement keeps the model from
// stalling on a call it should not have made.
func (d *Dispatcher) apply(invocation live.Invocation) (result, outcome string) {
	switch invocation.Name {
	case NameSaveLocation:
		name, okName := stringArg(invocation.Args, "name")
		description, okDesc := stringArg(invocation.Args, "description")
		if !okName || !okDesc {
			return d.malformed(invocation)
		}
		d.store.UpsertLocation(name, description)
		return "Updated.", "ok"

	case NameAddPerson:
		name, okName := stringArg(invocation.Args, "name")
		relationship, okRel := stringArg(invocation.Args, "relationship")
		if !okName || !okRel {
			return d.malformed(invocation)
		}
		d.store.UpsertPerson(name, relationship)
		return "Updated.", "ok"

	case NameAddEmergencyContact:
		name, okName := stringArg(invocation.Args, "name")
		phone, okPhone := stringArg(invocation.Args, "phone")
		if !okName || !okPhone {
			return d.malformed(invocation)
		}
		d.store.UpsertContact(name, phone)
		return "Updated.", "ok"

	case NameCallContact:
		name, okName := stringArg(invocation.Args, "name")
		phone, okPhone := stringArg(invocation.Args, "phone")
		if !okName || !okPhone {
			return d.malformed(invocation)
		}
		if err := d.dialer.Dial(name, phone); err != nil {
			d.logger.Warn("dial failed", "name", name, "error", err)
		}
		return fmt.Sprintf("Calling %s.", name), "ok"

	default:
		d.logger.Warn("unknown tool invocation", "name", invocation.Name, "id", invocation.ID)
		return "Updated.", "unknown"
	}
}

func (d *Dispatcher) malformed(invocation live.Invocation) (string, string) {
	d.logger.Warn("malformed tool arguments", "name", invocation.Name, "id", invocation.ID)
	return "Updated.", "malformed"
}

func stringArg(args map[string]any, key string) (string, bool) {
	v, ok := args[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}
