package core

import (
	"errors"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
)

var (
	// ErrClosed is returned by transports once a connection is gone.
	ErrClosed = errors.New("connection closed")

	errOutboxFull   = errors.New("outbox full")
	errOutboxClosed = errors.New("outbox closed")
)

// ReplyError is a validation failure that maps onto a numeric reply.
type ReplyError struct {
	Reply proto.Reply
}

func (e *ReplyError) Error() string {
	return e.Reply.Code.String()
}

func replyErr(code proto.ReplyCode, params ...string) *ReplyError {
	return &ReplyError{Reply: proto.NewReply(code, params...)}
}

// replyFor extracts the reply carried by err. Anything else becomes
// ERR_UNKNOWNCOMMAND so the client still hears back.
func replyFor(err error) proto.Reply {
	var re *ReplyError
	if errors.As(err, &re) {
		return re.Reply
	}
	return proto.NewReply(proto.ErrUnknownCommand, "*")
}
