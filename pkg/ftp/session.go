package ftp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gusamyky/ftpfs/internal/logger"
)

// Session owns one accepted connection: it writes the banner, reads command
// lines under an idle deadline, and drives the dispatcher until EOF, timeout
// or a fatal I/O error. Command execution within a session is strictly
// sequential; the protocol has no pipelining.
type Session struct {
	srv      *Server
	conn     net.Conn
	reader   *bufio.Reader
	writer   *bufio.Writer
	identity Identity
	remote   string
}

func newSession(conn net.Conn, srv *Server) *Session {
	bufSize := srv.config.SocketBufferSize
	if bufSize <= 0 {
		bufSize = 4 << 10
	}
	return &Session{
		srv:    srv,
		conn:   conn,
		reader: bufio.NewReaderSize(conn, bufSize),
		writer: bufio.NewWriterSize(conn, bufSize),
		remote: conn.RemoteAddr().String(),
	}
}

// Serve runs the session loop until the connection ends. It never panics the
// acceptor: protocol and handler failures are answered in-band, transport
// failures close this session only.
func (s *Session) Serve(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("panic in session",
				logger.KeyAddress, s.remote,
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()

	if err := s.sendLine(Banner); err != nil {
		logger.Debug("failed to write banner", logger.KeyAddress, s.remote, logger.KeyError, err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("session closed due to shutdown", logger.KeyAddress, s.remote)
			return
		default:
		}

		line, err := s.readLine(s.srv.config.IdleTimeout)
		if err != nil {
			s.logDisconnect(err)
			return
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := s.dispatch(ctx, line); err != nil {
			logger.Debug("session terminated during command",
				logger.KeyAddress, s.remote,
				logger.KeyUser, s.identity.ActorName(),
				logger.KeyError, err)
			return
		}
	}
}

// readLine reads one newline-terminated line with the given deadline applied
// to the whole read. Only the read half is armed; write deadlines are owned
// by the write paths so an in-flight transfer never trips a stale one.
func (s *Session) readLine(timeout time.Duration) (string, error) {
	if timeout > 0 {
		if err := s.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
			return "", err
		}
	}
	return s.reader.ReadString('\n')
}

func (s *Session) logDisconnect(err error) {
	switch {
	case errors.Is(err, io.EOF):
		logger.Debug("client disconnected", logger.KeyAddress, s.remote)
	case isTimeout(err):
		logger.Debug("session idle timeout", logger.KeyAddress, s.remote)
	default:
		logger.Debug("session read error", logger.KeyAddress, s.remote, logger.KeyError, err)
	}
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// sendLine writes a single response line and flushes it under a fresh write
// deadline. A write failure is terminal for the session.
func (s *Session) sendLine(line string) error {
	if timeout := s.srv.config.IdleTimeout; timeout > 0 {
		if err := s.conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
	}
	if _, err := s.writer.WriteString(line + "\n"); err != nil {
		return err
	}
	return s.writer.Flush()
}

func (s *Session) sendOK(msg string) error {
	return s.sendLine("OK: " + msg)
}

func (s *Session) sendError(msg string) error {
	return s.sendLine("ERROR: " + msg)
}

// failCommand answers a failed command with one ERROR line, records metrics,
// and appends the matching audit event.
func (s *Session) failCommand(ctx context.Context, verb, reason, msg string) error {
	s.srv.metrics.RecordCommand(verb, false)
	s.srv.auditor.Record(ctx, s.identity, failTag(verb, reason))
	return s.sendError(msg)
}

// recordOK records metrics and the audit event for a successful command. The
// response line is the caller's responsibility because success literals vary
// by verb.
func (s *Session) recordOK(ctx context.Context, verb, detail string) {
	s.srv.metrics.RecordCommand(verb, true)
	s.srv.auditor.Record(ctx, s.identity, okTag(verb, detail))
}
