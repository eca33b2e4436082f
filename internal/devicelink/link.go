package devicelink

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"go.bug.st/serial"
	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/command"
	"github.com/muurk/screwctl/internal/config"
	"github.com/muurk/screwctl/internal/logging"
)

// readBufferSize is the chunk size for the read loop
const readBufferSize = 256

// Port is an open byte-stream connection to the controller
type Port interface {
	io.ReadWriteCloser
}

// Opener opens the named port with the given serial settings
type Opener func(name string, cfg config.Serial) (Port, error)

// Handler receives decoded text from the read loop. It runs on the read
// loop goroutine.
type Handler func(port, text string)

// Status is reported to status listeners on every connect and disconnect.
// Err is set when the link dropped because of a read failure.
type Status struct {
	Connected bool
	Port      string
	Err       error
}

// Option configures a Link
type Option func(*Link)

// WithOpener replaces the serial opener (used by tests and alternate transports)
func WithOpener(open Opener) Option {
	return func(l *Link) { l.open = open }
}

// WithHandler sets the handler for incoming text
func WithHandler(h Handler) Option {
	return func(l *Link) { l.handler = h }
}

// Link manages a single connection to the controller.
//
// Writes are serialized by their own mutex and never wait on the read loop.
// Send never fails the caller: a missing connection or a write error is
// logged and the command is dropped.
type Link struct {
	cfg     config.Serial
	open    Opener
	handler Handler

	mu       sync.Mutex // guards port, name, done, onStatus
	port     Port
	name     string
	done     chan struct{}
	onStatus []func(Status)

	writeMu sync.Mutex
}

// New creates a disconnected link
func New(cfg config.Serial, opts ...Option) *Link {
	l := &Link{
		cfg:     cfg,
		open:    OpenSerial,
		handler: logHandler,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// OpenSerial opens a real serial port with go.bug.st/serial
func OpenSerial(name string, cfg config.Serial) (Port, error) {
	mode, err := ModeFor(cfg)
	if err != nil {
		return nil, err
	}
	return serial.Open(name, mode)
}

// ModeFor maps serial settings onto a serial.Mode. Zero values fall back to
// 9600 8N1.
func ModeFor(cfg config.Serial) (*serial.Mode, error) {
	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: cfg.DataBits,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	if mode.BaudRate == 0 {
		mode.BaudRate = 9600
	}
	if mode.DataBits == 0 {
		mode.DataBits = 8
	}

	switch strings.ToLower(cfg.Parity) {
	case "", "none":
	case "odd":
		mode.Parity = serial.OddParity
	case "even":
		mode.Parity = serial.EvenParity
	case "mark":
		mode.Parity = serial.MarkParity
	case "space":
		mode.Parity = serial.SpaceParity
	default:
		return nil, NewConnectionError("", "unknown parity "+cfg.Parity)
	}

	switch cfg.StopBits {
	case 0, 1:
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, NewConnectionError("", "stop bits must be 1 or 2")
	}

	return mode, nil
}

// ListPorts enumerates serial ports
func ListPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		if code, ok := portErrorCode(err); ok && code == serial.FunctionNotImplemented {
			return nil, NewUnsupportedError("Serial port enumeration is not supported on this platform", err)
		}
		return nil, &LinkError{Type: ErrTypeConnection, Message: "Failed to enumerate serial ports", Err: err}
	}
	return ports, nil
}

// OnStatus registers fn to receive connect and disconnect notifications.
// fn may be called from the read loop goroutine.
func (l *Link) OnStatus(fn func(Status)) {
	l.mu.Lock()
	l.onStatus = append(l.onStatus, fn)
	l.mu.Unlock()
}

// Connected reports whether a port is open
func (l *Link) Connected() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port != nil
}

// Port returns the name of the open port, or "" when disconnected
func (l *Link) Port() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.name
}

// Open connects to the named port, or the configured default when name is
// empty, and starts the read loop. On failure the link stays disconnected.
func (l *Link) Open(ctx context.Context, name string) error {
	if name == "" {
		name = l.cfg.Port
	}
	if name == "" {
		return NewConnectionError("", "No serial port selected")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	if l.port != nil {
		current := l.name
		l.mu.Unlock()
		return NewConnectionError(current, "Already connected")
	}

	logging.LogLinkEvent(name, "opening", zap.Int("baud_rate", l.cfg.BaudRate))
	port, err := l.open(name, l.cfg)
	if err != nil {
		l.mu.Unlock()
		lerr := ClassifyOpenError(err, name)
		var existing *LinkError
		if errors.As(err, &existing) {
			lerr = existing
			lerr.Port = name
		}
		logging.Error("Failed to open serial port", zap.String("port", name), zap.Error(err))
		return lerr
	}

	if err := ctx.Err(); err != nil {
		l.mu.Unlock()
		port.Close()
		return err
	}

	done := make(chan struct{})
	l.port = port
	l.name = name
	l.done = done
	listeners := l.listeners()
	l.mu.Unlock()

	go l.readLoop(port, name, done)

	logging.LogLinkEvent(name, "connected")
	notify(listeners, Status{Connected: true, Port: name})
	return nil
}

// Close disconnects and waits for the read loop to exit. Closing a
// disconnected link is a no-op.
func (l *Link) Close() error {
	l.mu.Lock()
	port, name, done := l.port, l.name, l.done
	if port == nil {
		l.mu.Unlock()
		return nil
	}
	l.port, l.name, l.done = nil, "", nil
	listeners := l.listeners()
	l.mu.Unlock()

	// Closing the port unblocks the pending Read.
	err := port.Close()
	<-done

	logging.LogLinkEvent(name, "disconnected")
	notify(listeners, Status{Connected: false, Port: name})
	if err != nil {
		return &LinkError{Type: ErrTypeConnection, Message: "Error closing serial port", Port: name, Err: err}
	}
	return nil
}

// Send writes an encoded command. It does not report failure.
func (l *Link) Send(cmd command.Command) {
	l.mu.Lock()
	port, name := l.port, l.name
	l.mu.Unlock()

	if port == nil {
		logging.Debug("Not connected, dropping command", zap.String("command", strings.TrimSpace(cmd.String())))
		return
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()

	if _, err := port.Write(cmd.Bytes()); err != nil {
		logging.Warn("Failed to send command",
			zap.String("port", name),
			zap.String("command", strings.TrimSpace(cmd.String())),
			zap.Error(NewSendError(name, err)),
		)
		return
	}
	logging.LogSerialTx(name, cmd.String())
}

func (l *Link) readLoop(port Port, name string, done chan struct{}) {
	defer close(done)

	buf := make([]byte, readBufferSize)
	var dec textDecoder
	for {
		n, err := port.Read(buf)
		if n > 0 {
			logging.LogRawBytes(name+" rx", buf[:n])
			if text := dec.Decode(buf[:n]); text != "" {
				l.handler(name, text)
			}
		}
		if err != nil {
			l.drop(port, name, err)
			return
		}
	}
}

// drop releases the port after a read failure. It does nothing when Close
// already released it.
func (l *Link) drop(port Port, name string, err error) {
	l.mu.Lock()
	if l.port != port {
		l.mu.Unlock()
		return
	}
	l.port, l.name, l.done = nil, "", nil
	listeners := l.listeners()
	l.mu.Unlock()

	port.Close()

	var status Status
	status.Port = name
	if !errors.Is(err, io.EOF) {
		status.Err = NewReadError(name, err)
		logging.Error("Read loop failed", zap.String("port", name), zap.Error(err))
	} else {
		logging.LogLinkEvent(name, "closed by device")
	}
	notify(listeners, status)
}

// listeners must be called with l.mu held
func (l *Link) listeners() []func(Status) {
	out := make([]func(Status), len(l.onStatus))
	copy(out, l.onStatus)
	return out
}

func notify(listeners []func(Status), s Status) {
	for _, fn := range listeners {
		fn(s)
	}
}

func logHandler(port, text string) {
	logging.LogSerialRx(port, text)
}

// textDecoder decodes a byte stream as UTF-8, holding back a rune split
// across chunk boundaries. Invalid sequences become U+FFFD.
type textDecoder struct {
	pending []byte
}

func (d *textDecoder) Decode(chunk []byte) string {
	data := append(d.pending, chunk...)
	d.pending = nil

	// Hold back a trailing partial rune (at most UTFMax-1 bytes).
	for i := 1; i < utf8.UTFMax && i <= len(data); i++ {
		start := len(data) - i
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if !utf8.FullRune(data[start:]) {
			d.pending = append([]byte(nil), data[start:]...)
			data = data[:start]
		}
		break
	}

	return strings.ToValidUTF8(string(data), "\uFFFD")
}
