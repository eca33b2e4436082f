package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/muurk/screwctl/internal/devicelink"
	"github.com/muurk/screwctl/internal/logging"
	"github.com/muurk/screwctl/internal/session"
)

// Config holds the server configuration
type Config struct {
	Host     string
	Port     int
	CertPath string // Serve HTTPS when both CertPath and KeyPath are set
	KeyPath  string
}

// Option customises a Server
type Option func(*Server)

// WithPortLister overrides serial port enumeration for /api/ports
func WithPortLister(fn func() ([]string, error)) Option {
	return func(s *Server) { s.listPorts = fn }
}

// Server exposes one session over HTTP and a WebSocket state stream.
type Server struct {
	config    *Config
	tlsConfig *tls.Config
	listPorts func() ([]string, error)
	hub       *hub

	mu      sync.Mutex // serializes every session call
	session *session.Session

	httpServer *http.Server
	listener   net.Listener
	wg         sync.WaitGroup
}

// New creates a server for s. The session must not be used elsewhere once
// the server is started.
func New(config *Config, s *session.Session, opts ...Option) (*Server, error) {
	if config == nil {
		config = &Config{}
	}

	srv := &Server{
		config:    config,
		listPorts: devicelink.ListPorts,
		hub:       newHub(),
		session:   s,
	}
	for _, opt := range opts {
		opt(srv)
	}

	if config.CertPath != "" || config.KeyPath != "" {
		tlsConfig, err := NewTLSConfig(config.CertPath, config.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS config: %w", err)
		}
		srv.tlsConfig = tlsConfig
	}

	// Called with mu held, from inside a session method.
	s.Subscribe(func(e session.Event) {
		switch {
		case e.Kind == session.EventNotice:
			srv.hub.broadcast(wsMessage{Type: "notice", Message: e.Message})
		case e.Kind == session.EventLink && e.Err != nil:
			srv.hub.broadcast(wsMessage{
				Type:    "error",
				Message: devicelink.GetShortErrorMessage(e.Err),
				Hint:    devicelink.GetTroubleshootingHint(e.Err),
			})
		}
	})

	return srv, nil
}

// do runs fn with the session lock held and pushes the resulting state to
// every WebSocket client.
func (s *Server) do(fn func(*session.Session) error) (session.View, error) {
	s.mu.Lock()
	err := fn(s.session)
	view := s.session.View()
	s.mu.Unlock()

	s.hub.broadcast(wsMessage{Type: "state", State: &view})
	return view, err
}

// view returns the current state
func (s *Server) view() session.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session.View()
}

// LinkStatus records a link status change. Pass it to the link's OnStatus.
// Listeners can fire from inside Connect or Disconnect while the session
// lock is held, so the update runs on its own goroutine.
func (s *Server) LinkStatus(status devicelink.Status) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_, _ = s.do(func(sess *session.Session) error {
			sess.LinkChanged(status)
			return nil
		})
	}()
}

// Received forwards device text to WebSocket clients. It matches
// devicelink.Handler.
func (s *Server) Received(port, text string) {
	if s == nil {
		return
	}
	logging.LogSerialRx(port, text)
	s.hub.broadcast(wsMessage{Type: "rx", Port: port, Text: text})
}

// Addr returns the listen address, or the configured one before Start
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Listen binds the configured address. Start calls it when needed.
func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	var (
		listener net.Listener
		err      error
	)
	if s.tlsConfig != nil {
		listener, err = tls.Listen("tcp", addr, s.tlsConfig)
	} else {
		listener, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	return nil
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.Info("Remote panel listening",
		zap.String("addr", s.listener.Addr().String()),
		zap.Any("tls_info", GetTLSInfo(s.tlsConfig)),
	)

	errChan := make(chan error, 1)
	go func() {
		errChan <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Shutdown stops accepting requests, closes WebSocket clients and waits
// for pending link updates.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down server...")

	var err error
	if s.httpServer != nil {
		err = s.httpServer.Shutdown(ctx)
	}
	s.hub.closeAll()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return err
}

// ClientCount returns the number of connected WebSocket clients
func (s *Server) ClientCount() int {
	return s.hub.count()
}
