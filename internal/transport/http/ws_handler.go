package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	stdhttp "net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/core"
)

// closeWait bounds how long ServeHTTP waits for the close handshake.
const closeWait = 5 * time.Second

var errLineTooLong = errors.New("line too long")

// WSOptions tunes the WebSocket bridge.
type WSOptions struct {
	MaxLineBytes int
	WriteTimeout time.Duration
}

// WSHandler upgrades HTTP connections and serves them as relay sessions.
// Each text frame carries one or more CRLF-terminated lines.
type WSHandler struct {
	hub  *core.Hub
	opts WSOptions
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, opts WSOptions, logger *zerolog.Logger) stdhttp.Handler {
	if opts.MaxLineBytes <= 0 {
		opts.MaxLineBytes = 512
	}
	return &WSHandler{hub: hub, opts: opts, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}

	wc := newWSConn(conn, peerHost(r.RemoteAddr), h.opts)
	if err := h.hub.Serve(r.Context(), wc); err != nil {
		h.log.Warn().Err(err).Msg("ws session ended with error")
	}

	_ = wc.Close()
	select {
	case <-wc.done:
	case <-time.After(closeWait):
		_ = conn.CloseNow()
	}
}

// wsConn adapts a websocket connection to core.Conn.
type wsConn struct {
	conn         *websocket.Conn
	peer         string
	maxLine      int
	writeTimeout time.Duration

	// pending holds lines from a frame that carried more than one.
	pending []string

	closed    atomic.Bool
	closeOnce sync.Once
	done      chan struct{}
}

func newWSConn(conn *websocket.Conn, peer string, opts WSOptions) *wsConn {
	// A frame may batch several lines, so allow a handful per read.
	conn.SetReadLimit(int64(opts.MaxLineBytes) * 8)
	return &wsConn{
		conn:         conn,
		peer:         peer,
		maxLine:      opts.MaxLineBytes,
		writeTimeout: opts.WriteTimeout,
		done:         make(chan struct{}),
	}
}

func (c *wsConn) ReadLine(ctx context.Context) (string, error) {
	for len(c.pending) == 0 {
		if c.closed.Load() {
			return "", core.ErrClosed
		}
		typ, data, err := c.conn.Read(ctx)
		if err != nil {
			return "", c.readErr(err)
		}
		if typ != websocket.MessageText {
			continue
		}
		lines, err := splitFrame(string(data), c.maxLine)
		if err != nil {
			return "", err
		}
		c.pending = lines
	}
	line := c.pending[0]
	c.pending = c.pending[1:]
	return line, nil
}

func (c *wsConn) readErr(err error) error {
	switch {
	case c.closed.Load(), errors.Is(err, net.ErrClosed):
		return core.ErrClosed
	case websocket.CloseStatus(err) != -1, errors.Is(err, io.EOF):
		return io.EOF
	default:
		return err
	}
}

func (c *wsConn) WriteLine(line string) error {
	if c.closed.Load() {
		return core.ErrClosed
	}
	ctx := context.Background()
	if c.writeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.writeTimeout)
		defer cancel()
	}
	if err := c.conn.Write(ctx, websocket.MessageText, []byte(line)); err != nil {
		if c.closed.Load() || errors.Is(err, net.ErrClosed) {
			return core.ErrClosed
		}
		return err
	}
	return nil
}

// Close starts the close handshake without waiting for it. Close may be
// called from a goroutine delivering to this connection.
func (c *wsConn) Close() error {
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		go func() {
			defer close(c.done)
			_ = c.conn.Close(websocket.StatusNormalClosure, "")
		}()
	})
	return nil
}

func (c *wsConn) PeerAddress() string {
	return c.peer
}

// splitFrame breaks a text frame into lines. A trailing terminator does
// not produce an extra empty line.
func splitFrame(data string, maxLine int) ([]string, error) {
	data = strings.TrimSuffix(data, "\n")
	data = strings.TrimSuffix(data, "\r")
	lines := strings.Split(data, "\n")
	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if len(line) > maxLine {
			return nil, fmt.Errorf("%w: %d bytes", errLineTooLong, len(line))
		}
		lines[i] = line
	}
	return lines, nil
}

func peerHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
