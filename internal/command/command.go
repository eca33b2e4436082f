// Package command formats the line-oriented text commands understood by the
// screwdriver controller.
//
// Every command is a single UTF-8 line terminated by CRLF:
//
//	SET TORQUE 40\r\n
//	SET SPEED 50\r\n
//
// The device does not acknowledge commands; they are fire-and-forget.
package command

import (
	"fmt"
	"math"
	"strings"
)

// Terminator ends every command line sent to the device.
const Terminator = "\r\n"

// Parameter identifies a device-facing value.
type Parameter string

const (
	Torque Parameter = "TORQUE"
	Speed  Parameter = "SPEED"
)

// Parameters lists all parameters in display order.
var Parameters = []Parameter{Torque, Speed}

// String returns the lower-case display name ("torque", "speed").
func (p Parameter) String() string {
	return strings.ToLower(string(p))
}

// Label returns the capitalised name used in table headers ("Torque").
func (p Parameter) Label() string {
	s := p.String()
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// ParseParameter resolves a case-insensitive parameter name.
func ParseParameter(name string) (Parameter, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(Torque):
		return Torque, nil
	case string(Speed):
		return Speed, nil
	default:
		return "", fmt.Errorf("unknown parameter %q (expected torque or speed)", name)
	}
}

// Command is one encoded line ready for transmission.
type Command struct {
	Parameter Parameter
	Value     int
}

// Encode builds the command setting p to v. The value is rounded to the
// nearest integer since the controller only accepts whole numbers.
func Encode(p Parameter, v float64) Command {
	return Command{Parameter: p, Value: int(math.Round(v))}
}

// String returns the full line including the terminator.
func (c Command) String() string {
	return fmt.Sprintf("SET %s %d%s", string(c.Parameter), c.Value, Terminator)
}

// Bytes returns the UTF-8 encoding of the line.
func (c Command) Bytes() []byte {
	return []byte(c.String())
}
