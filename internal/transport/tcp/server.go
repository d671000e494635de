package tcp

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/core"
)

// Options configure the listener.
type Options struct {
	Addr            string
	MaxLineBytes    int
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// Server accepts relay clients and hands each connection to the hub.
type Server struct {
	opts Options
	hub  *core.Hub
	log  *zerolog.Logger

	mu       sync.Mutex
	listener net.Listener
	ready    chan struct{}

	active sync.WaitGroup
	count  atomic.Int32
	conns  sync.Map // remote address -> net.Conn
}

// NewServer builds a TCP server for hub.
func NewServer(opts Options, hub *core.Hub, logger *zerolog.Logger) *Server {
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = 512
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	return &Server{
		opts:  opts,
		hub:   hub,
		log:   logger,
		ready: make(chan struct{}),
	}
}

// Addr blocks until the listener is up and returns its address.
func (s *Server) Addr() net.Addr {
	<-s.ready
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Serve listens and accepts connections until ctx is cancelled, then waits
// for live sessions to finish up to ShutdownTimeout.
func (s *Server) Serve(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.opts.Addr)
	if err != nil {
		close(s.ready)
		return fmt.Errorf("listen %s: %w", s.opts.Addr, err)
	}
	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()
	close(s.ready)

	s.log.Info().Str("addr", listener.Addr().String()).Msg("irc listener started")

	return s.acceptLoop(ctx, listener)
}

// acceptLoop hands accepted connections to the hub. Errors other than the
// listener closing (EMFILE and friends) back off before retrying.
func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	var backoff acceptBackoff
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return s.drain()
			}
			delay := backoff.next()
			s.log.Warn().Err(err).Dur("retry_in", delay).Msg("accept failed")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		backoff.reset()

		s.track(ctx, conn)
	}
}

const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// acceptBackoff doubles the retry delay after each consecutive accept error.
type acceptBackoff struct {
	delay time.Duration
}

func (b *acceptBackoff) next() time.Duration {
	if b.delay == 0 {
		b.delay = minAcceptDelay
	} else {
		b.delay = min(2*b.delay, maxAcceptDelay)
	}
	return b.delay
}

func (b *acceptBackoff) reset() {
	b.delay = 0
}

func (s *Server) track(ctx context.Context, conn net.Conn) {
	key := conn.RemoteAddr().String()
	s.active.Add(1)
	s.conns.Store(key, conn)
	active := s.count.Add(1)
	s.log.Debug().Str("remote", key).Int32("active", active).Msg("connection accepted")

	go func() {
		defer func() {
			s.conns.Delete(key)
			active := s.count.Add(-1)
			s.active.Done()
			s.log.Debug().Str("remote", key).Int32("active", active).Msg("connection closed")
		}()

		lc := newLineConn(conn, s.opts.MaxLineBytes, s.opts.WriteTimeout)
		if err := s.hub.Serve(ctx, lc); err != nil {
			s.log.Warn().Err(err).Str("remote", key).Msg("session ended with error")
		}
	}()
}

// drain waits for sessions to end and force-closes stragglers.
func (s *Server) drain() error {
	done := make(chan struct{})
	go func() {
		s.active.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.log.Info().Msg("irc listener stopped")
		return nil
	case <-time.After(s.opts.ShutdownTimeout):
		remaining := s.count.Load()
		s.conns.Range(func(_, v any) bool {
			_ = v.(net.Conn).Close()
			return true
		})
		return fmt.Errorf("irc shutdown timeout: %d connection(s) force-closed", remaining)
	}
}
