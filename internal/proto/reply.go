package proto

import "fmt"

// ReplyCode enumerates the numeric replies the server emits.
type ReplyCode int

const (
	RplWelcome ReplyCode = iota + 1
	RplEndOfWho
	RplWhoReply
	RplNamReply
	RplEndOfNames

	ErrNoSuchNick
	ErrNoSuchChannel
	ErrCannotSendToChan
	ErrTooManyChannels
	ErrNoTextToSend
	ErrUnknownCommand
	ErrErroneusNickname
	ErrNicknameInUse
	ErrUserNotInChannel
	ErrNeedMoreParams
)

// ReplyKind groups reply codes by what went wrong.
type ReplyKind int

const (
	KindInfo ReplyKind = iota
	KindMalformed
	KindConflict
	KindNotFound
	KindNotMember
	KindLimit
	KindEmpty
	KindUnrecognized
)

func (k ReplyKind) String() string {
	switch k {
	case KindInfo:
		return "info"
	case KindMalformed:
		return "malformed"
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "not_found"
	case KindNotMember:
		return "not_member"
	case KindLimit:
		return "limit"
	case KindEmpty:
		return "empty"
	case KindUnrecognized:
		return "unrecognized"
	default:
		return "unknown"
	}
}

type replyInfo struct {
	numeric string
	name    string
	text    string
	kind    ReplyKind
}

var replies = map[ReplyCode]replyInfo{
	RplWelcome:    {"001", "RPL_WELCOME", "Welcome to the Internet Relay Network", KindInfo},
	RplEndOfWho:   {"315", "RPL_ENDOFWHO", "End of WHO list", KindInfo},
	RplWhoReply:   {"352", "RPL_WHOREPLY", "", KindInfo},
	RplNamReply:   {"353", "RPL_NAMREPLY", "", KindInfo},
	RplEndOfNames: {"366", "RPL_ENDOFNAMES", "End of NAMES list", KindInfo},

	ErrNoSuchNick:       {"401", "ERR_NOSUCHNICK", "No such nick/channel", KindNotFound},
	ErrNoSuchChannel:    {"403", "ERR_NOSUCHCHANNEL", "No such channel", KindNotFound},
	ErrCannotSendToChan: {"404", "ERR_CANNOTSENDTOCHAN", "Cannot send to channel", KindNotMember},
	ErrTooManyChannels:  {"405", "ERR_TOOMANYCHANNELS", "You have joined too many channels", KindLimit},
	ErrNoTextToSend:     {"412", "ERR_NOTEXTTOSEND", "No text to send", KindEmpty},
	ErrUnknownCommand:   {"421", "ERR_UNKNOWNCOMMAND", "Unknown command", KindUnrecognized},
	ErrErroneusNickname: {"432", "ERR_ERRONEUSNICKNAME", "Erroneous nickname", KindMalformed},
	ErrNicknameInUse:    {"433", "ERR_NICKNAMEINUSE", "Nickname is already in use", KindConflict},
	ErrUserNotInChannel: {"441", "ERR_USERNOTINCHANNEL", "You're not on that channel", KindNotMember},
	ErrNeedMoreParams:   {"461", "ERR_NEEDMOREPARAMS", "Not enough parameters", KindMalformed},
}

// Numeric returns the three-digit wire code.
func (c ReplyCode) Numeric() string { return c.info().numeric }

// Name returns the conventional RPL_/ERR_ identifier.
func (c ReplyCode) Name() string { return c.info().name }

// Text returns the fixed human-readable trailing text. Empty for list replies.
func (c ReplyCode) Text() string { return c.info().text }

// Kind classifies the reply.
func (c ReplyCode) Kind() ReplyKind { return c.info().kind }

// IsError reports whether the code is an error numeric (4xx/5xx).
func (c ReplyCode) IsError() bool {
	n := c.Numeric()
	return n != "" && (n[0] == '4' || n[0] == '5')
}

func (c ReplyCode) String() string {
	info := c.info()
	if info.numeric == "" {
		return fmt.Sprintf("ReplyCode(%d)", int(c))
	}
	return info.numeric + " " + info.name
}

func (c ReplyCode) info() replyInfo {
	return replies[c]
}

// Reply is one numeric addressed to a single client.
type Reply struct {
	Code   ReplyCode
	Params []string
	// Trailing overrides Code.Text() when set.
	Trailing string
}

// NewReply builds a reply with the code's fixed text.
func NewReply(code ReplyCode, params ...string) Reply {
	return Reply{Code: code, Params: params}
}

// Line renders the reply as `:<server> <numeric> <target> <params...> :<text>`.
func (r Reply) Line(server, target string) string {
	if target == "" {
		target = "*"
	}
	trailing := r.Trailing
	if trailing == "" {
		trailing = r.Code.Text()
	}

	params := make([]string, 0, len(r.Params)+2)
	params = append(params, target)
	params = append(params, r.Params...)
	params = append(params, trailing)
	return Format(server, r.Code.Numeric(), params...)
}
