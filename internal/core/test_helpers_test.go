package core

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/wirechat-irc/internal/store"
)

const (
	testServer = "irc.test"
	testAddr   = "127.0.0.1"
	waitFor    = 2 * time.Second
)

// pipeConn is an in-memory Conn. Tests push inbound lines into in and read
// what the server wrote from out.
type pipeConn struct {
	addr   string
	in     chan string
	out    chan string
	closed chan struct{}

	closeOnce  sync.Once
	hangupOnce sync.Once
}

func newPipeConn(addr string, outCap int) *pipeConn {
	return &pipeConn{
		addr:   addr,
		in:     make(chan string, 64),
		out:    make(chan string, outCap),
		closed: make(chan struct{}),
	}
}

func (p *pipeConn) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-p.closed:
		return "", ErrClosed
	default:
	}
	select {
	case line, ok := <-p.in:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-p.closed:
		return "", ErrClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (p *pipeConn) WriteLine(line string) error {
	select {
	case <-p.closed:
		return ErrClosed
	default:
	}
	select {
	case p.out <- line:
		return nil
	case <-p.closed:
		return ErrClosed
	}
}

func (p *pipeConn) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

func (p *pipeConn) PeerAddress() string { return p.addr }

// hangup simulates the remote side going away.
func (p *pipeConn) hangup() {
	p.hangupOnce.Do(func() { close(p.in) })
}

type testEnv struct {
	t   *testing.T
	hub *Hub
	ctx context.Context
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	if opts.ServerName == "" {
		opts.ServerName = testServer
	}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return &testEnv{t: t, hub: NewHub(opts, nil), ctx: ctx}
}

type testClient struct {
	t    *testing.T
	nick string
	conn *pipeConn
	done chan error
}

func (e *testEnv) dial() *testClient {
	return e.dialWith(newPipeConn(testAddr, 256))
}

func (e *testEnv) dialWith(conn *pipeConn) *testClient {
	tc := &testClient{t: e.t, conn: conn, done: make(chan error, 1)}
	go func() {
		tc.done <- e.hub.Serve(e.ctx, conn)
	}()
	return tc
}

// register connects and completes the handshake as nick.
func (e *testEnv) register(nick string) *testClient {
	e.t.Helper()
	tc := e.dial()
	tc.send("NICK "+nick, "USER "+nick+" 0 * :"+strings.ToUpper(nick))
	tc.expect(":irc.test 001 " + nick + " :Welcome to the Internet Relay Network " + nick + "!" + nick + "@" + testAddr)
	tc.nick = nick
	return tc
}

func (tc *testClient) send(lines ...string) {
	tc.t.Helper()
	for _, line := range lines {
		select {
		case tc.conn.in <- line:
		case <-time.After(waitFor):
			tc.t.Fatalf("send %q: timed out", line)
		}
	}
}

func (tc *testClient) next() string {
	tc.t.Helper()
	select {
	case line := <-tc.conn.out:
		return line
	case <-time.After(waitFor):
		tc.t.Fatalf("%s: expected a line, got none", tc.nick)
		return ""
	}
}

func (tc *testClient) expect(want ...string) {
	tc.t.Helper()
	for _, w := range want {
		require.Equal(tc.t, w, tc.next())
	}
}

// waitLine skips lines until want arrives.
func (tc *testClient) waitLine(want string) {
	tc.t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case line := <-tc.conn.out:
			if line == want {
				return
			}
		case <-deadline:
			tc.t.Fatalf("%s: never received %q", tc.nick, want)
		}
	}
}

// sync round-trips an unknown command. Any line already queued for this
// client arrives before the 421, so a following expect sees it.
func (tc *testClient) sync() {
	tc.t.Helper()
	tc.send("PING sync")
	tc.expect(":irc.test 421 " + tc.nick + " PING :Unknown command")
}

// flush discards everything queued for this client so far.
func (tc *testClient) flush() {
	tc.t.Helper()
	tc.send("PING flush")
	tc.waitLine(":irc.test 421 " + tc.nick + " PING :Unknown command")
}

func (tc *testClient) expectClosed() {
	tc.t.Helper()
	select {
	case err := <-tc.done:
		require.NoError(tc.t, err)
	case <-time.After(waitFor):
		tc.t.Fatalf("%s: session did not end", tc.nick)
	}
	select {
	case <-tc.conn.closed:
	default:
		tc.t.Fatalf("%s: connection left open", tc.nick)
	}
}

// lineLog records every line a client receives from a background reader.
type lineLog struct {
	mu    sync.Mutex
	lines []string
}

func (tc *testClient) collect() *lineLog {
	log := &lineLog{}
	go func() {
		for {
			select {
			case line := <-tc.conn.out:
				log.mu.Lock()
				log.lines = append(log.lines, line)
				log.mu.Unlock()
			case <-tc.conn.closed:
				return
			}
		}
	}()
	return log
}

func (l *lineLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

func (l *lineLog) has(want string) bool {
	for _, line := range l.snapshot() {
		if line == want {
			return true
		}
	}
	return false
}

// settle round-trips an unknown command through a collected client so every
// line it caused has been delivered.
func (tc *testClient) settle(log *lineLog) {
	tc.t.Helper()
	tc.send("PING settle")
	want := ":irc.test 421 " + tc.nick + " PING :Unknown command"
	require.Eventually(tc.t, func() bool { return log.has(want) }, waitFor, 5*time.Millisecond, "%s never settled", tc.nick)
}

// checkInvariants verifies registry and directory agree with each other.
func checkInvariants(t *testing.T, h *Hub) {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()

	for nick, c := range h.clients.byNick {
		require.Equal(t, nick, c.nick, "registry key out of date")
		for name, ch := range c.channels {
			cur, ok := h.channels.lookup(name)
			require.True(t, ok, "%s lists missing channel %s", nick, name)
			require.Same(t, cur, ch)
			require.True(t, ch.has(c), "%s not in members of %s", nick, name)
		}
	}
	for name, ch := range h.channels.channels {
		require.Equal(t, name, ch.Name)
		require.False(t, ch.empty(), "empty channel %s persists", name)
		for c := range ch.members {
			reg, ok := h.clients.lookup(c.nick)
			require.True(t, ok, "member %s of %s is not registered", c.nick, name)
			require.Same(t, reg, c)
			require.Same(t, ch, c.channels[name])
		}
	}
}

// memJournal keeps events in memory.
type memJournal struct {
	mu     sync.Mutex
	events []store.SessionEvent
}

func (j *memJournal) Record(_ context.Context, ev *store.SessionEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	ev.ID = int64(len(j.events) + 1)
	j.events = append(j.events, *ev)
	return nil
}

func (j *memJournal) ListEvents(context.Context, store.EventFilter) ([]*store.SessionEvent, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*store.SessionEvent, len(j.events))
	for i := range j.events {
		ev := j.events[i]
		out[i] = &ev
	}
	return out, nil
}

func (j *memJournal) Close() error { return nil }

func (j *memJournal) kinds(sessionID string) []store.EventKind {
	j.mu.Lock()
	defer j.mu.Unlock()
	var kinds []store.EventKind
	for _, ev := range j.events {
		if ev.SessionID == sessionID {
			kinds = append(kinds, ev.Kind)
		}
	}
	return kinds
}
