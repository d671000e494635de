package tcp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/wirechat-irc/internal/core"
)

// lineConn adapts a net.Conn to core.Conn with CRLF framing.
type lineConn struct {
	conn         net.Conn
	scanner      *bufio.Scanner
	writeTimeout time.Duration
	peer         string

	writeMu sync.Mutex
}

func newLineConn(conn net.Conn, maxLineBytes int, writeTimeout time.Duration) *lineConn {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 512), maxLineBytes)
	return &lineConn{
		conn:         conn,
		scanner:      scanner,
		writeTimeout: writeTimeout,
		peer:         hostOf(conn.RemoteAddr()),
	}
}

// ReadLine returns the next line without its terminator. Cancellation is
// delivered by closing the connection.
func (c *lineConn) ReadLine(_ context.Context) (string, error) {
	if c.scanner.Scan() {
		return strings.TrimRight(c.scanner.Text(), "\r"), nil
	}
	err := c.scanner.Err()
	switch {
	case err == nil:
		return "", io.EOF
	case errors.Is(err, net.ErrClosed):
		return "", core.ErrClosed
	default:
		return "", err
	}
}

func (c *lineConn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return mapClosed(err)
		}
	}
	_, err := io.WriteString(c.conn, line+"\r\n")
	return mapClosed(err)
}

func (c *lineConn) Close() error {
	err := c.conn.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

func (c *lineConn) PeerAddress() string {
	return c.peer
}

func mapClosed(err error) error {
	if errors.Is(err, net.ErrClosed) {
		return core.ErrClosed
	}
	return err
}

func hostOf(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}
