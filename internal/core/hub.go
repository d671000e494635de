package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	applog "github.com/vovakirdan/wirechat-irc/internal/log"
	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// Defaults applied by NewHub to zero Options fields.
const (
	DefaultServerName   = "wirechat"
	DefaultOutboxBytes  = 1 << 20
	DefaultFlushTimeout = 2 * time.Second
)

// Options tune a Hub.
type Options struct {
	// ServerName is the source of every numeric reply.
	ServerName string
	// OutboxBytes caps the bytes queued for one connection. Lines past the
	// cap are dropped for that connection.
	OutboxBytes int
	// WriteTimeout closes a connection whose single write blocks longer.
	// Zero leaves timeouts to the transport.
	WriteTimeout time.Duration
	// FlushTimeout caps how long a closing session waits for queued lines.
	FlushTimeout time.Duration
	// Journal receives session lifecycle events. Nil discards them.
	Journal store.Journal
}

// Hub owns the client registry and channel directory and serves connections.
// A single mutex guards both, along with every channel member set and the
// nick and channels fields of every Client.
type Hub struct {
	opts   Options
	log    *zerolog.Logger
	router router

	mu       sync.Mutex
	clients  clientRegistry
	channels channelDirectory

	sessions atomic.Int64
}

// NewHub creates a hub ready to Serve connections.
func NewHub(opts Options, logger *zerolog.Logger) *Hub {
	if logger == nil {
		logger = applog.Nop()
	}
	if opts.ServerName == "" {
		opts.ServerName = DefaultServerName
	}
	if opts.OutboxBytes <= 0 {
		opts.OutboxBytes = DefaultOutboxBytes
	}
	if opts.FlushTimeout <= 0 {
		opts.FlushTimeout = DefaultFlushTimeout
	}
	if opts.Journal == nil {
		opts.Journal = store.Discard
	}

	return &Hub{
		opts:     opts,
		log:      logger,
		router:   router{log: logger},
		clients:  newClientRegistry(),
		channels: newChannelDirectory(),
	}
}

// ServerName returns the name used as the source of numeric replies.
func (h *Hub) ServerName() string {
	return h.opts.ServerName
}

// Journal returns the session journal the hub records into.
func (h *Hub) Journal() store.Journal {
	return h.opts.Journal
}

// replyLine renders a numeric addressed to target.
func (h *Hub) replyLine(target string, r proto.Reply) string {
	return r.Line(h.opts.ServerName, target)
}

// removeClient unregisters c, tells every other registered client it quit
// and drops it from its channels. Callers hold h.mu. Safe to call twice.
func (h *Hub) removeClient(c *Client, reason string) plan {
	var p plan
	if !h.clients.remove(c) {
		return p
	}
	p.toAll(&h.clients, proto.Format(c.prefix(), proto.CmdQuit, reason), c)
	for _, ch := range c.channelList() {
		h.channels.leave(ch, c)
	}
	return p
}
