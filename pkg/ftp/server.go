package ftp

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gusamyky/ftpfs/internal/logger"
	"github.com/gusamyky/ftpfs/pkg/bufpool"
	"github.com/gusamyky/ftpfs/pkg/metrics"
	"github.com/gusamyky/ftpfs/pkg/store"
)

// Config holds the acceptor and session settings.
type Config struct {
	// Host is the address to bind to. Empty binds all interfaces.
	Host string

	// Port is the TCP port to listen on.
	Port int

	// FilesDir is the root directory for uploaded files and reports.
	FilesDir string

	// MaxConnections is the admission ceiling for concurrent sessions.
	// Connections past the ceiling get one "server full" line and are
	// closed. 0 means unlimited.
	MaxConnections int

	// IdleTimeout bounds the wait for the next command line. Default: 5m.
	IdleTimeout time.Duration

	// StallTimeout bounds the wait for forward progress during a binary
	// transfer, distinct from an idle session. Default: 5m.
	StallTimeout time.Duration

	// MaxUploadSize rejects UPLOAD declarations above this many bytes
	// before any file is opened. 0 means unlimited. Default: 100 MiB.
	MaxUploadSize int64

	// SocketBufferSize sizes the per-session buffered reader and writer.
	SocketBufferSize int

	// ShutdownTimeout is the maximum wait for active sessions during
	// graceful shutdown before they are force-closed. Default: 30s.
	ShutdownTimeout time.Duration
}

// ApplyDefaults fills in zero values with the protocol defaults.
func (c *Config) ApplyDefaults() {
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 5 * time.Minute
	}
	if c.StallTimeout == 0 {
		c.StallTimeout = 5 * time.Minute
	}
	if c.MaxUploadSize == 0 {
		c.MaxUploadSize = 100 << 20
	}
	if c.SocketBufferSize <= 0 {
		c.SocketBufferSize = bufpool.DefaultChunkSize
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = 30 * time.Second
	}
}

// Server owns the listening socket and spawns one Session per admitted
// connection. All exported methods are safe for concurrent use; Stop is
// idempotent.
type Server struct {
	config  Config
	store   store.Store
	metrics *metrics.Metrics
	auditor *Auditor
	pool    *bufpool.Pool

	listener   net.Listener
	listenerMu sync.RWMutex

	// activeConns tracks running sessions for graceful shutdown.
	activeConns sync.WaitGroup

	// connCount is the live session count checked against the ceiling.
	connCount atomic.Int32

	// activeSessions maps remote address to net.Conn for forced closure.
	activeSessions sync.Map

	shutdown     chan struct{}
	shutdownOnce sync.Once

	// shutdownCtx is cancelled during shutdown so in-flight sessions stop
	// at their next dispatch boundary.
	shutdownCtx    context.Context
	cancelSessions context.CancelFunc

	// ListenerReady is closed once the listener accepts connections. Tests
	// use it to synchronize with startup.
	ListenerReady chan struct{}
}

// NewServer creates a server in a stopped state. Call Serve to start. The
// metrics recorder may be nil to disable instrumentation.
func NewServer(config Config, st store.Store, m *metrics.Metrics) *Server {
	config.ApplyDefaults()
	shutdownCtx, cancelSessions := context.WithCancel(context.Background())

	return &Server{
		config:         config,
		store:          st,
		metrics:        m,
		auditor:        NewAuditor(st),
		pool:           bufpool.New(bufpool.DefaultLineSize, config.SocketBufferSize),
		shutdown:       make(chan struct{}),
		shutdownCtx:    shutdownCtx,
		cancelSessions: cancelSessions,
		ListenerReady:  make(chan struct{}),
	}
}

// Serve binds the listening socket and runs the accept loop until ctx is
// cancelled or Stop is called. A bind failure is fatal and returned to the
// caller, not retried.
func (s *Server) Serve(ctx context.Context) error {
	if err := os.MkdirAll(s.config.FilesDir, 0o755); err != nil {
		return fmt.Errorf("failed to create files directory %q: %w", s.config.FilesDir, err)
	}

	listenAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	listener, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", listenAddr, err)
	}

	s.listenerMu.Lock()
	s.listener = listener
	s.listenerMu.Unlock()
	close(s.ListenerReady)

	logger.Info("server listening",
		"host", s.config.Host,
		logger.KeyPort, s.config.Port,
		"max_connections", s.config.MaxConnections)

	go func() {
		<-ctx.Done()
		s.initiateShutdown()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-s.shutdown:
				// Expected: the listener was closed during shutdown.
				return s.gracefulShutdown()
			default:
				logger.Debug("accept error", logger.KeyError, err)
				continue
			}
		}

		if tcp, ok := conn.(*net.TCPConn); ok {
			if err := tcp.SetNoDelay(true); err != nil {
				logger.Debug("failed to set TCP_NODELAY", logger.KeyError, err)
			}
		}

		// Admission ceiling: refuse with one line, never spawn a session.
		if max := s.config.MaxConnections; max > 0 && s.connCount.Load() >= int32(max) {
			s.refuse(conn)
			continue
		}

		s.activeConns.Add(1)
		active := s.connCount.Add(1)
		s.metrics.ConnectionOpened()

		addr := conn.RemoteAddr().String()
		s.activeSessions.Store(addr, conn)
		logger.Debug("connection accepted",
			logger.KeyAddress, addr,
			logger.KeyActive, active)

		sess := newSession(conn, s)
		go func(addr string, conn net.Conn) {
			defer func() {
				conn.Close()
				s.activeSessions.Delete(addr)
				s.activeConns.Done()
				remaining := s.connCount.Add(-1)
				s.metrics.ConnectionClosed()
				logger.Debug("connection closed",
					logger.KeyAddress, addr,
					logger.KeyActive, remaining)
			}()
			sess.Serve(s.shutdownCtx)
		}(addr, conn)
	}
}

// refuse writes the server-full line and closes the connection.
func (s *Server) refuse(conn net.Conn) {
	s.metrics.ConnectionRefused()
	logger.Warn("connection refused at admission ceiling",
		logger.KeyAddress, conn.RemoteAddr().String(),
		"max_connections", s.config.MaxConnections)

	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	if _, err := conn.Write([]byte(RespServerFull + "\n")); err != nil {
		logger.Debug("failed to write refusal", logger.KeyError, err)
	}
	_ = conn.Close()
}

// initiateShutdown stops the accept loop, interrupts blocked reads, and
// cancels in-flight sessions. Safe to call multiple times.
func (s *Server) initiateShutdown() {
	s.shutdownOnce.Do(func() {
		logger.Debug("shutdown initiated")
		close(s.shutdown)

		s.listenerMu.Lock()
		if s.listener != nil {
			if err := s.listener.Close(); err != nil {
				logger.Debug("error closing listener", logger.KeyError, err)
			}
		}
		s.listenerMu.Unlock()

		// Unblock sessions waiting in a line read.
		deadline := time.Now().Add(100 * time.Millisecond)
		s.activeSessions.Range(func(_, value any) bool {
			if conn, ok := value.(net.Conn); ok {
				_ = conn.SetReadDeadline(deadline)
			}
			return true
		})

		s.cancelSessions()
	})
}

// gracefulShutdown waits for active sessions up to ShutdownTimeout, then
// force-closes the stragglers.
func (s *Server) gracefulShutdown() error {
	active := s.connCount.Load()
	logger.Info("graceful shutdown: waiting for active sessions",
		logger.KeyActive, active,
		"timeout", s.config.ShutdownTimeout)

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
		return nil
	case <-time.After(s.config.ShutdownTimeout):
		remaining := s.forceCloseSessions()
		logger.Warn("shutdown timeout exceeded, force-closing sessions",
			logger.KeyActive, remaining)
		return fmt.Errorf("shutdown timeout: %d sessions force-closed", remaining)
	}
}

// forceCloseSessions closes every tracked session connection and returns how
// many were still live.
func (s *Server) forceCloseSessions() int32 {
	remaining := s.connCount.Load()
	s.activeSessions.Range(func(_, value any) bool {
		if conn, ok := value.(net.Conn); ok {
			_ = conn.Close()
		}
		return true
	})
	return remaining
}

// Stop initiates graceful shutdown and waits for active sessions to finish
// or the context to expire. Safe to call concurrently with Serve.
func (s *Server) Stop(ctx context.Context) error {
	s.initiateShutdown()

	if ctx == nil {
		return s.gracefulShutdown()
	}

	done := make(chan struct{})
	go func() {
		s.activeConns.Wait()
		close(done)
	}()

	select {
	case <-done:
		logger.Info("graceful shutdown complete")
		return nil
	case <-ctx.Done():
		remaining := s.forceCloseSessions()
		logger.Warn("shutdown context expired, force-closing sessions",
			logger.KeyActive, remaining,
			logger.KeyError, ctx.Err())
		return ctx.Err()
	}
}

// ActiveSessions returns the current number of live sessions.
func (s *Server) ActiveSessions() int32 {
	return s.connCount.Load()
}

// Addr returns the bound listener address. It blocks until the listener is
// ready, making it safe for tests that listen on port 0.
func (s *Server) Addr() string {
	<-s.ListenerReady

	s.listenerMu.RLock()
	defer s.listenerMu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
