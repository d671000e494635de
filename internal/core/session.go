package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
	"github.com/vovakirdan/wirechat-irc/internal/utils"
)

// Quit reasons for sessions that end without a QUIT command.
const (
	reasonRemoteClosed       = "Remote host closed the connection"
	reasonServerShutdown     = "Server shutting down"
	reasonRegistrationFailed = "Registration failed"
	reasonWriteFailed        = "Write error"
	defaultQuitReason        = "Client Quit"
)

const journalTimeout = 2 * time.Second

// session drives one connection from accept to close.
type session struct {
	hub  *Hub
	id   string
	conn Conn
	addr string
	out  *outbox
	log  zerolog.Logger

	// reg and client are only touched by the session goroutine.
	reg    pendingRegistration
	client *Client

	finishOnce sync.Once
}

// Serve runs conn until it closes, the client quits or ctx is cancelled.
// Cleanup always completes before Serve returns.
func (h *Hub) Serve(ctx context.Context, conn Conn) error {
	s := h.newSession(conn)
	h.sessions.Add(1)
	defer h.sessions.Add(-1)

	go s.out.run()
	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	s.log.Debug().Msg("session started")
	s.record(store.EventConnect, "", "")

	for {
		line, err := conn.ReadLine(ctx)
		if err != nil {
			reason, unexpected := s.closeReason(ctx, err)
			s.finish(reason, false)
			if unexpected {
				return fmt.Errorf("session %s: read: %w", s.id, err)
			}
			return nil
		}
		if s.handleLine(line) {
			return nil
		}
	}
}

func (h *Hub) newSession(conn Conn) *session {
	id := utils.NewID()
	addr := displayAddress(conn.PeerAddress())
	logger := h.log.With().Str("session_id", id).Str("addr", addr).Logger()
	return &session{
		hub:  h,
		id:   id,
		conn: conn,
		addr: addr,
		out:  newOutbox(conn, h.opts.OutboxBytes, h.opts.WriteTimeout, &logger),
		log:  logger,
	}
}

// closeReason names why the read loop stopped. unexpected is false for
// ordinary hang-ups and shutdown.
func (s *session) closeReason(ctx context.Context, err error) (reason string, unexpected bool) {
	switch {
	case ctx.Err() != nil:
		return reasonServerShutdown, false
	case s.out.failed():
		return reasonWriteFailed, false
	case errors.Is(err, io.EOF), errors.Is(err, ErrClosed):
		return reasonRemoteClosed, false
	default:
		return "Read error: " + err.Error(), true
	}
}

// handleLine processes one inbound line. Returns true once the session has ended.
func (s *session) handleLine(line string) bool {
	msg, err := proto.Parse(line)
	if errors.Is(err, proto.ErrBadChar) {
		s.log.Debug().Msg("dropped line with control characters")
		return false
	}
	if s.client == nil {
		return s.handleUnregistered(msg, err)
	}

	res := s.hub.execute(s.client, msg, err)
	if res.quit {
		s.finish(res.reason, true)
		return true
	}
	s.hub.router.deliver(res.plan)
	if ev := res.event; ev != nil {
		s.record(ev.kind, ev.nick, ev.detail)
	}
	return false
}

// finish tears the session down exactly once. With farewell set the client
// gets an ERROR line before the others hear about the quit.
func (s *session) finish(reason string, farewell bool) {
	s.finishOnce.Do(func() {
		nick := s.reg.nick
		if c := s.client; c != nil {
			var p plan
			s.hub.mu.Lock()
			nick = c.nick
			if farewell {
				p.toOne(c, proto.Format("", proto.CmdError, fmt.Sprintf("Closing Link: %s (%s)", c.Addr, reason)))
			}
			p.merge(s.hub.removeClient(c, reason))
			s.hub.mu.Unlock()
			s.hub.router.deliver(p)
		}

		s.log.Info().Str("nick", nick).Str("reason", reason).Msg("session closed")
		s.record(store.EventQuit, nick, reason)

		if !s.out.shutdown(s.hub.opts.FlushTimeout) {
			s.log.Warn().Msg("outbox flush timed out")
		}
		_ = s.conn.Close()
	})
}

// send queues a line for this connection only.
func (s *session) send(line string) {
	switch err := s.out.enqueue(line); {
	case err == nil:
	case errors.Is(err, errOutboxFull):
		s.log.Warn().Msg("outbox over limit, dropping line")
	}
}

// sendReply renders a numeric for a connection that has not registered yet.
func (s *session) sendReply(r proto.Reply) {
	s.send(s.hub.replyLine("*", r))
}

func (s *session) record(kind store.EventKind, nick, detail string) {
	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()

	ev := &store.SessionEvent{
		SessionID: s.id,
		Kind:      kind,
		Nick:      nick,
		Address:   s.addr,
		Detail:    detail,
	}
	if err := s.hub.opts.Journal.Record(ctx, ev); err != nil {
		s.log.Warn().Err(err).Str("kind", string(kind)).Msg("journal record failed")
	}
}
