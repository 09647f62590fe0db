package tools

import (
	"log/slog"
	"os/exec"
)

// Dialer places a phone call on behalf of the user.
type Dialer interface {
	Dial(name, phone string) error
}

// ExecDialer hands the call off to an external handler program for tel:
// URIs (xdg-open on most Linux desktops).
type ExecDialer struct {
	// Command is the handler binary (default xdg-open).
	Command string
}

func (d ExecDialer) Dial(name, phone string) error {
	command := d.Command
	if command == "" {
		command = "xdg-open"
	}
	return exec.Command(command, "tel:"+phone).Start()
}

// LogDialer records call requests without placing them. Used where no
// telephony handler exists.
type LogDialer struct {
	Logger *slog.Logger
}

func (d LogDialer) Dial(name, phone string) error {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("call requested", "name", name, "phone", phone)
	return nil
}
