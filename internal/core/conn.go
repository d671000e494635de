package core

import (
	"context"
	"strings"
)

// Conn is the transport contract a session runs on.
// Implementations must allow Close to be called concurrently with ReadLine
// and WriteLine, and more than once.
type Conn interface {
	// ReadLine blocks until the next inbound line (without CRLF) or an error.
	ReadLine(ctx context.Context) (string, error)
	// WriteLine sends one line; the transport appends the terminator.
	WriteLine(line string) error
	Close() error
	// PeerAddress is the remote host, used in message prefixes.
	PeerAddress() string
}

// displayAddress keeps IPv6 literals from starting with a colon, which would
// otherwise read as a trailing parameter on the wire.
func displayAddress(addr string) string {
	if addr == "" {
		return "unknown"
	}
	if strings.HasPrefix(addr, ":") {
		return "0" + addr
	}
	return addr
}
