package server

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/raniellyferreira/linekv/protocol"
	"github.com/raniellyferreira/linekv/storage"
)

// Session serves one client connection, one request at a time
type Session struct {
	id     uuid.UUID
	conn   net.Conn
	reader *protocol.Reader
	writer *protocol.Writer
	server *Server

	closeOnce sync.Once
}

// ID returns the session identifier
func (s *Session) ID() string {
	return s.id.String()
}

// Close closes the client connection
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.conn.Close()
		s.server.sessions.Delete(s.conn)
	})
}

// serve runs the read, dispatch, reply loop until the client goes away.
// A clean disconnect or a closed owner returns nil.
func (s *Session) serve() error {
	for {
		line, err := s.reader.ReadLine()
		if err != nil {
			if err == io.EOF || s.server.shuttingDown() {
				return nil
			}
			return errors.Wrap(err, "failed to read line from client")
		}

		op := protocol.Parse(line)
		s.server.logger.Debug("Received command", "session", s.ID(), "command", op.Kind.String())

		start := time.Now()
		reply, err := s.server.owner.Do(op)
		if errors.Is(err, storage.ErrOwnerClosed) {
			s.server.logger.Info("Store owner unavailable, closing session", "session", s.ID())
			return nil
		}
		s.server.commandCount.Add(1)
		s.server.metrics.RecordCommandProcessed(op.Kind.String(), time.Since(start))

		if err := s.respond(reply, err); err != nil {
			if s.server.shuttingDown() {
				return nil
			}
			return err
		}
	}
}

// respond writes the response line for one request and flushes it
func (s *Session) respond(reply protocol.Reply, doErr error) error {
	var err error
	switch {
	case doErr != nil:
		s.server.logger.Error("Response channel closed unexpectedly", "session", s.ID(), "error", doErr)
		s.server.recordError("internal")
		err = s.writer.WriteInternalError()
	case reply.IsFailure():
		s.server.recordError("protocol")
		err = s.writer.WriteReply(reply)
	default:
		err = s.writer.WriteReply(reply)
	}
	if err != nil {
		return errors.Wrap(err, "failed to write response to client")
	}

	if err := s.writer.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush writer")
	}
	return nil
}
