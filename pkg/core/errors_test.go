package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorFormatting(t *testing.T) {
	err := NewConnectError("dial failed", errors.New("timeout"))
	want := "connect_error: dial failed: timeout"
	if err.Error() != want {
		t.Fatalf("Error()=%q, want %q", err.Error(), want)
	}

	bare := NewInvalidError("model must not be empty")
	if bare.Error() != "invalid_error: model must not be empty" {
		t.Fatalf("Error()=%q", bare.Error())
	}
}

func TestIsFatal(t *testing.T) {
	cases := []struct {
		err   *Error
		fatal bool
	}{
		{NewDeviceError("mic denied", nil), true},
		{NewConnectError("dial failed", nil), true},
		{NewTransportError("read failed", nil), true},
		{NewProtocolError("bad frame", nil), false},
		{NewInvalidError("bad config"), false},
	}
	for _, tc := range cases {
		if got := tc.err.IsFatal(); got != tc.fatal {
			t.Errorf("IsFatal(%s)=%v, want %v", tc.err.Type, got, tc.fatal)
		}
	}
}

func TestUnwrapAndTypeOf(t *testing.T) {
	cause := errors.New("underlying")
	err := NewTransportError("read failed", cause)
	if !errors.Is(err, cause) {
		t.Fatal("expected errors.Is to find the cause")
	}

	wrapped := fmt.Errorf("session: %w", err)
	if got := TypeOf(wrapped); got != ErrTransport {
		t.Fatalf("TypeOf=%q, want %q", got, ErrTransport)
	}
	if got := TypeOf(errors.New("plain")); got != "" {
		t.Fatalf("TypeOf(plain)=%q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	if got := NewDeviceError("mic denied", nil).UserMessage(); got != "I need to see and hear to help you." {
		t.Fatalf("device UserMessage=%q", got)
	}
	if got := NewConnectError("dial failed", nil).UserMessage(); got != "Check connection..." {
		t.Fatalf("connect UserMessage=%q", got)
	}
}
