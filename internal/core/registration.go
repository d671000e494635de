package core

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// stage is where a connection sits in the NICK then USER handshake.
type stage int

const (
	stageUnregistered stage = iota
	stageNickSet
	stageRegistered
)

func (s stage) String() string {
	switch s {
	case stageUnregistered:
		return "unregistered"
	case stageNickSet:
		return "nick_set"
	case stageRegistered:
		return "registered"
	default:
		return "unknown"
	}
}

const (
	maxNickLen  = 9
	maxUserMode = 7
)

type userPayload struct {
	username string
	realname string
}

// pendingRegistration is per-connection state held until a Client exists.
type pendingRegistration struct {
	stage stage
	nick  string
	// user survives a lost nickname race so the next NICK can finish the job.
	user *userPayload
}

// parseNick validates `NICK <nickname>`.
func parseNick(m proto.Message) (string, *ReplyError) {
	fields := m.Fields()
	switch len(fields) {
	case 0:
		return "", replyErr(proto.ErrErroneusNickname)
	case 1:
	default:
		return "", replyErr(proto.ErrErroneusNickname, fields[0])
	}
	nick := proto.Trailing(fields[0])
	if !validNick(nick) {
		return "", replyErr(proto.ErrErroneusNickname, fields[0])
	}
	return nick, nil
}

func validNick(nick string) bool {
	if nick == "" || utf8.RuneCountInString(nick) > maxNickLen {
		return false
	}
	// PRIVMSG routes by the first character, so a nickname starting with a
	// channel prefix could never be messaged. !@ would break the user prefix.
	if hasChannelPrefix(nick) || strings.ContainsAny(nick, "!@,") {
		return false
	}
	return true
}

// parseUser validates `USER <username> <mode> * :<realname>`.
func parseUser(m proto.Message) (*userPayload, *ReplyError) {
	fields := m.SplitArgs(4)
	if len(fields) != 4 || fields[0] == "" {
		return nil, replyErr(proto.ErrNeedMoreParams, proto.CmdUser)
	}
	mode, err := strconv.Atoi(fields[1])
	if err != nil || mode < 0 || mode > maxUserMode {
		return nil, replyErr(proto.ErrNeedMoreParams, proto.CmdUser)
	}
	if fields[2] != "*" || !strings.HasPrefix(fields[3], ":") {
		return nil, replyErr(proto.ErrNeedMoreParams, proto.CmdUser)
	}
	return &userPayload{
		username: fields[0],
		realname: proto.Trailing(fields[3]),
	}, nil
}

// handleUnregistered runs the handshake. Anything but NICK and USER is dropped.
// Returns true when the session has ended.
func (s *session) handleUnregistered(m proto.Message, parseErr error) bool {
	if parseErr != nil {
		return false
	}
	switch m.Command {
	case proto.CmdNick:
		return s.registerNick(m)
	case proto.CmdUser:
		return s.registerUser(m)
	default:
		return false
	}
}

func (s *session) registerNick(m proto.Message) bool {
	nick, rerr := parseNick(m)
	if rerr == nil && s.reg.user != nil {
		// USER was already accepted; this NICK completes registration.
		s.reg.nick = nick
		s.completeRegistration()
		return false
	}
	if rerr == nil {
		s.hub.mu.Lock()
		taken := s.hub.clients.taken(nick)
		s.hub.mu.Unlock()
		if taken {
			rerr = replyErr(proto.ErrNicknameInUse, nick)
		}
	}

	if rerr != nil {
		s.sendReply(rerr.Reply)
		if s.reg.stage == stageUnregistered {
			s.log.Debug().Str("reply", rerr.Error()).Msg("registration rejected")
			s.finish(reasonRegistrationFailed, false)
			return true
		}
		return false
	}

	s.reg.nick = nick
	s.reg.stage = stageNickSet
	return false
}

func (s *session) registerUser(m proto.Message) bool {
	if s.reg.stage != stageNickSet {
		return false
	}
	if s.reg.user != nil {
		// Already accepted, waiting for a free nickname.
		return false
	}

	user, rerr := parseUser(m)
	if rerr != nil {
		s.sendReply(rerr.Reply)
		s.log.Debug().Str("reply", rerr.Error()).Msg("registration rejected")
		s.finish(reasonRegistrationFailed, false)
		return true
	}
	s.reg.user = user
	s.completeRegistration()
	return false
}

// completeRegistration turns the pending state into a Client. The nickname is
// checked again under the lock since another connection may have taken it
// after NICK was accepted.
func (s *session) completeRegistration() {
	h := s.hub
	c := newClient(s.id, s.reg.nick, s.reg.user.username, s.reg.user.realname, s.addr, s.out)
	welcome := proto.Reply{
		Code:     proto.RplWelcome,
		Trailing: proto.RplWelcome.Text() + " " + proto.Prefix(c.nick, c.Addr),
	}

	h.mu.Lock()
	if h.clients.taken(c.nick) {
		h.mu.Unlock()
		s.sendReply(proto.NewReply(proto.ErrNicknameInUse, c.nick))
		return
	}
	// Queued before the client becomes visible so 001 is always its first line.
	s.send(h.replyLine(c.nick, welcome))
	h.clients.insert(c)
	h.mu.Unlock()

	s.client = c
	s.reg = pendingRegistration{stage: stageRegistered}
	s.log.Info().Str("nick", c.nick).Str("user", c.User).Msg("client registered")
	s.record(store.EventRegister, c.nick, c.User)
}
