package server

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/raniellyferreira/linekv/internal/safe"
	"github.com/raniellyferreira/linekv/protocol"
)

// Owner executes operations against the store on behalf of sessions
type Owner interface {
	Do(op protocol.Operation) (protocol.Reply, error)
}

// Logger interface for server logging
type Logger interface {
	Debug(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// MetricsCollector interface for server metrics
type MetricsCollector interface {
	RecordCommandProcessed(cmd string, duration time.Duration)
	RecordConnection()
	RecordDisconnection()
	RecordError(errorType string)
}

// Server accepts client connections and serves the line protocol
type Server struct {
	owner Owner

	// Server configuration
	addr    string
	logger  Logger
	metrics MetricsCollector

	// Connection management
	listener net.Listener
	sessions sync.Map // map[net.Conn]*Session

	// Control
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// Stats
	connCount    atomic.Int64
	commandCount atomic.Int64
	errorCount   atomic.Int64
}

// NewServer creates a new server that dispatches to owner
func NewServer(addr string, owner Owner) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	return &Server{
		owner:   owner,
		addr:    addr,
		logger:  nopLogger{},
		metrics: nopMetrics{},
		ctx:     ctx,
		cancel:  cancel,
	}
}

// SetLogger sets the logger. Call before Start.
func (s *Server) SetLogger(logger Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// SetMetrics sets the metrics collector. Call before Start.
func (s *Server) SetMetrics(metrics MetricsCollector) {
	if metrics != nil {
		s.metrics = metrics
	}
}

// Start binds the listener and starts accepting connections
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %s", s.addr)
	}
	s.serve(ln)
	return nil
}

// serve runs the accept loop on ln
func (s *Server) serve(ln net.Listener) {
	s.listener = ln
	s.logger.Info("Server listening", "addr", ln.Addr().String())

	s.wg.Add(1)
	go s.acceptConnections()
}

// Stop closes the listener and every open session, then waits for all
// session goroutines to finish
func (s *Server) Stop() error {
	s.cancel()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}

	s.sessions.Range(func(key, value interface{}) bool {
		if session, ok := value.(*Session); ok {
			session.Close()
		}
		return true
	})

	s.wg.Wait()

	if err != nil && !errors.Is(err, net.ErrClosed) {
		return errors.Wrap(err, "failed to close listener")
	}
	return nil
}

// Addr returns the server's listening address
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.addr
}

// Stats returns server statistics
func (s *Server) Stats() map[string]interface{} {
	clientCount := 0
	s.sessions.Range(func(key, value interface{}) bool {
		clientCount++
		return true
	})

	return map[string]interface{}{
		"connected_clients": clientCount,
		"total_commands":    s.commandCount.Load(),
		"total_errors":      s.errorCount.Load(),
		"total_connections": s.connCount.Load(),
	}
}

// acceptConnections accepts new client connections
func (s *Server) acceptConnections() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return // Server is shutting down
			}
			s.logger.Error("Accept failed", "error", err)
			continue
		}

		s.handleNewClient(conn)
	}
}

// handleNewClient registers a session for conn and runs it
func (s *Server) handleNewClient(conn net.Conn) {
	s.connCount.Add(1)
	s.metrics.RecordConnection()

	session := &Session{
		id:     uuid.New(),
		conn:   conn,
		reader: protocol.NewReader(conn),
		writer: protocol.NewWriter(conn),
		server: s,
	}
	s.sessions.Store(conn, session)

	// Stop cancels before ranging over sessions, so a session stored after
	// that range is caught here.
	if s.shuttingDown() {
		session.Close()
		s.metrics.RecordDisconnection()
		return
	}

	s.logger.Info("New connection", "session", session.id.String(), "remote", conn.RemoteAddr().String())

	s.wg.Add(1)
	go s.runSession(session)
}

// runSession runs a session to completion and reports how it ended
func (s *Server) runSession(session *Session) {
	defer s.wg.Done()
	defer s.metrics.RecordDisconnection()
	defer session.Close()

	err := safe.Run(session.serve)
	if err != nil {
		s.metrics.RecordError("transport")
		s.logger.Error("Error handling connection",
			"session", session.id.String(),
			"remote", session.conn.RemoteAddr().String(),
			"error", err,
		)
		return
	}
	s.logger.Info("Client disconnected", "session", session.id.String())
}

// shuttingDown reports whether Stop has been called
func (s *Server) shuttingDown() bool {
	return s.ctx.Err() != nil
}

func (s *Server) recordError(errorType string) {
	s.errorCount.Add(1)
	s.metrics.RecordError(errorType)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type nopMetrics struct{}

func (nopMetrics) RecordCommandProcessed(string, time.Duration) {}
func (nopMetrics) RecordConnection()                            {}
func (nopMetrics) RecordDisconnection()                         {}
func (nopMetrics) RecordError(string)                           {}

// String returns a short description of the server
func (s *Server) String() string {
	return fmt.Sprintf("linekv server on %s", s.Addr())
}
