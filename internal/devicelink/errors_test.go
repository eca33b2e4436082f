package devicelink

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"go.bug.st/serial"
)

func TestLinkErrorFormatting(t *testing.T) {
	err := NewReadError("COM4", errors.New("device unplugged"))

	if got := err.Error(); got != "Read Error: Lost connection while reading (COM4) (caused by: device unplugged)" {
		t.Errorf("Error() = %q", got)
	}
	if errors.Unwrap(err).Error() != "device unplugged" {
		t.Error("Unwrap() should return the cause")
	}

	plain := NewConnectionError("", "No serial port selected")
	if got := plain.Error(); got != "Connection Error: No serial port selected" {
		t.Errorf("Error() = %q", got)
	}
}

func TestErrorPredicates(t *testing.T) {
	tests := []struct {
		name string
		err  error
		is   func(error) bool
	}{
		{"unsupported", NewUnsupportedError("no serial", nil), IsUnsupportedError},
		{"connection", NewConnectionError("COM1", "busy"), IsConnectionError},
		{"read", NewReadError("COM1", errIO), IsReadError},
		{"send", NewSendError("COM1", errIO), IsSendError},
		{"wrapped", fmt.Errorf("connect: %w", NewConnectionError("COM1", "busy")), IsConnectionError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.is(tt.err) {
				t.Errorf("predicate returned false for %v", tt.err)
			}
		})
	}

	if IsConnectionError(errors.New("plain")) {
		t.Error("plain errors are not link errors")
	}
}

var errIO = errors.New("i/o error")

func TestClassifyOpenErrorGeneric(t *testing.T) {
	if ClassifyOpenError(nil, "COM1") != nil {
		t.Error("nil error should classify to nil")
	}

	lerr := ClassifyOpenError(errors.New("boom"), "COM1")
	if lerr.Type != ErrTypeConnection || lerr.Port != "COM1" {
		t.Errorf("ClassifyOpenError() = %+v", lerr)
	}
}

func TestMessages(t *testing.T) {
	tests := []struct {
		err       error
		short     string
		hintMatch string
	}{
		{NewUnsupportedError("x", nil), "Serial ports not supported here", "no serial port support"},
		{NewConnectionError("COM7", "Serial port not found"), "Serial port not found: COM7", "screwctl ports"},
		{NewReadError("COM1", errIO), "Connection lost", "stopped responding"},
		{NewSendError("COM1", errIO), "Command not sent", "will not be retried"},
		{errors.New("plain"), "plain", "unexpected error"},
	}

	for _, tt := range tests {
		if got := GetShortErrorMessage(tt.err); got != tt.short {
			t.Errorf("GetShortErrorMessage(%v) = %q, want %q", tt.err, got, tt.short)
		}
		if got := GetTroubleshootingHint(tt.err); !strings.Contains(got, tt.hintMatch) {
			t.Errorf("GetTroubleshootingHint(%v) = %q, want it to mention %q", tt.err, got, tt.hintMatch)
		}
	}
}

func TestConnectionHintFollowsPortCode(t *testing.T) {
	tests := []struct {
		name string
		err  *LinkError
		want string
		not  string
	}{
		{"no code", NewConnectionError("COM7", "Serial port not found"), "screwctl ports", "Close other programs"},
		{"generic open failure", ClassifyOpenError(errors.New("boom"), "COM7"), "screwctl ports", "Close other programs"},
		{"busy", &LinkError{Type: ErrTypeConnection, Port: "COM7", Code: serial.PortBusy, HasCode: true}, "Close other programs", "screwctl ports"},
		{"permission", &LinkError{Type: ErrTypeConnection, Port: "COM7", Code: serial.PermissionDenied, HasCode: true}, "dialout", "screwctl ports"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := GetTroubleshootingHint(tt.err)
			if !strings.Contains(hint, tt.want) {
				t.Errorf("hint = %q, want it to mention %q", hint, tt.want)
			}
			if strings.Contains(hint, tt.not) {
				t.Errorf("hint = %q, should not mention %q", hint, tt.not)
			}
		})
	}
}
