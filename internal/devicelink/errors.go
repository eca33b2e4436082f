package devicelink

import (
	"errors"
	"fmt"
	"strings"

	"go.bug.st/serial"

	"github.com/muurk/screwctl/internal/urls"
)

// ErrorType represents the category of link failure
type ErrorType int

const (
	// ErrTypeUnsupported indicates the serial transport is unavailable on this platform
	ErrTypeUnsupported ErrorType = iota
	// ErrTypeConnection indicates the port could not be opened
	ErrTypeConnection
	// ErrTypeRead indicates the read loop failed and the link was dropped
	ErrTypeRead
	// ErrTypeSend indicates a command could not be written
	ErrTypeSend
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeUnsupported:
		return "Unsupported"
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeRead:
		return "Read Error"
	case ErrTypeSend:
		return "Send Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// LinkError represents a failure on the serial link
type LinkError struct {
	Type    ErrorType // Category of error
	Message string    // Human-readable error message
	Port    string    // Port name (for context)
	Code    serial.PortErrorCode // Valid only when HasCode is set
	HasCode bool                 // Code came from the serial library
	Err     error                // Underlying error (if any)
}

// Error implements the error interface
func (e *LinkError) Error() string {
	msg := e.Message
	if e.Port != "" {
		msg = fmt.Sprintf("%s (%s)", e.Message, e.Port)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, msg)
}

// Unwrap returns the underlying error for error chain inspection
func (e *LinkError) Unwrap() error {
	return e.Err
}

// portErrorCode extracts the serial library error code. The library returns
// both *PortError and PortError depending on the call site.
func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var ptr *serial.PortError
	if errors.As(err, &ptr) && ptr != nil {
		return ptr.Code(), true
	}
	var val serial.PortError
	if errors.As(err, &val) {
		return val.Code(), true
	}
	return 0, false
}

// ClassifyOpenError turns an error from opening a port into a LinkError
func ClassifyOpenError(err error, port string) *LinkError {
	if err == nil {
		return nil
	}

	code, ok := portErrorCode(err)
	if !ok {
		return &LinkError{Type: ErrTypeConnection, Message: "Failed to open serial port", Port: port, Err: err}
	}

	lerr := &LinkError{Type: ErrTypeConnection, Port: port, Code: code, HasCode: true, Err: err}
	switch code {
	case serial.FunctionNotImplemented:
		lerr.Type = ErrTypeUnsupported
		lerr.Message = "Serial ports are not supported on this platform"
	case serial.PortNotFound, serial.InvalidSerialPort:
		lerr.Message = "Serial port not found"
	case serial.PortBusy:
		lerr.Message = "Serial port is busy"
	case serial.PermissionDenied:
		lerr.Message = "Permission denied opening serial port"
	case serial.InvalidSpeed, serial.InvalidDataBits, serial.InvalidParity, serial.InvalidStopBits:
		lerr.Message = "Serial settings rejected by the port"
	default:
		lerr.Message = "Failed to open serial port"
	}
	return lerr
}

// NewUnsupportedError creates an unsupported-environment error
func NewUnsupportedError(message string, err error) *LinkError {
	return &LinkError{Type: ErrTypeUnsupported, Message: message, Err: err}
}

// NewConnectionError creates a connection error
func NewConnectionError(port, message string) *LinkError {
	return &LinkError{Type: ErrTypeConnection, Message: message, Port: port}
}

// NewReadError creates a read-loop error
func NewReadError(port string, err error) *LinkError {
	return &LinkError{Type: ErrTypeRead, Message: "Lost connection while reading", Port: port, Err: err}
}

// NewSendError creates a send error
func NewSendError(port string, err error) *LinkError {
	return &LinkError{Type: ErrTypeSend, Message: "Failed to write command", Port: port, Err: err}
}

func isType(err error, t ErrorType) bool {
	var lerr *LinkError
	return errors.As(err, &lerr) && lerr.Type == t
}

// IsUnsupportedError checks if an error is an unsupported-environment error
func IsUnsupportedError(err error) bool { return isType(err, ErrTypeUnsupported) }

// IsConnectionError checks if an error is a connection error
func IsConnectionError(err error) bool { return isType(err, ErrTypeConnection) }

// IsReadError checks if an error is a read-loop error
func IsReadError(err error) bool { return isType(err, ErrTypeRead) }

// IsSendError checks if an error is a send error
func IsSendError(err error) bool { return isType(err, ErrTypeSend) }

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var lerr *LinkError
	if !errors.As(err, &lerr) {
		return "An unexpected error occurred. Please try again.\nIf it persists, report it at " + urls.Issues
	}

	switch lerr.Type {
	case ErrTypeUnsupported:
		return strings.Join([]string{
			"This platform has no serial port support.",
			"Presets can still be edited, imported and exported offline.",
		}, "\n")

	case ErrTypeConnection:
		hint := []string{"Could not open the serial port."}
		switch {
		case lerr.HasCode && lerr.Code == serial.PermissionDenied:
			hint = append(hint, "Troubleshooting:",
				"  • Add your user to the dialout (Linux) or uucp (Arch) group",
				"  • Log out and back in after changing groups")
		case lerr.HasCode && lerr.Code == serial.PortBusy:
			hint = append(hint, "Troubleshooting:",
				"  • Close other programs using the port (serial monitors, IDEs)",
				"  • Unplug and reconnect the controller")
		default:
			hint = append(hint, "Troubleshooting:",
				"  • Check the controller is plugged in and powered",
				"  • Run 'screwctl ports' to list available ports",
				"  • Check the baud rate matches the controller (default 9600)")
		}
		return strings.Join(hint, "\n")

	case ErrTypeRead:
		return strings.Join([]string{
			"The controller stopped responding and the link was closed.",
			"Troubleshooting:",
			"  • Check the USB cable",
			"  • Reconnect from the panel",
		}, "\n")

	case ErrTypeSend:
		return "A command could not be written. It will not be retried; adjust the value again once the link is healthy."

	default:
		return "An error occurred. Please check the error message for details.\nIf it persists, report it at " + urls.Issues
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var lerr *LinkError
	if !errors.As(err, &lerr) {
		return err.Error()
	}

	switch lerr.Type {
	case ErrTypeUnsupported:
		return "Serial ports not supported here"
	case ErrTypeConnection:
		if lerr.Port != "" {
			return fmt.Sprintf("%s: %s", lerr.Message, lerr.Port)
		}
		return lerr.Message
	case ErrTypeRead:
		return "Connection lost"
	case ErrTypeSend:
		return "Command not sent"
	default:
		return lerr.Message
	}
}
