package core

import (
	"errors"
	"strings"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// journalEntry is a lifecycle event a command wants recorded once the lock
// is released.
type journalEntry struct {
	kind   store.EventKind
	nick   string
	detail string
}

// result is what a registered command produced.
type result struct {
	plan   plan
	event  *journalEntry
	quit   bool
	reason string
}

// handlerFunc runs one registered command. It is called with Hub.mu held and
// must not block.
type handlerFunc func(h *Hub, c *Client, m proto.Message) result

var handlers = map[string]handlerFunc{
	proto.CmdNick:    (*Hub).changeNick,
	proto.CmdJoin:    (*Hub).join,
	proto.CmdPart:    (*Hub).part,
	proto.CmdPrivmsg: (*Hub).privmsg,
	proto.CmdWho:     (*Hub).who,
	proto.CmdQuit:    (*Hub).quit,
	proto.CmdCap:     ignore,
	proto.CmdMode:    ignore,
	// Registration is over; a repeated USER changes nothing.
	proto.CmdUser: ignore,
}

func ignore(*Hub, *Client, proto.Message) result {
	return result{}
}

// execute validates and applies one command from a registered client under
// the hub lock. Delivery of the resulting plan is left to the caller.
func (h *Hub) execute(c *Client, m proto.Message, parseErr error) result {
	h.mu.Lock()
	defer h.mu.Unlock()

	if parseErr != nil {
		return h.unknown(c, unparsedCommand(m, parseErr))
	}
	handler, ok := handlers[m.Command]
	if !ok {
		return h.unknown(c, m.Command)
	}
	return handler(h, c, m)
}

func (h *Hub) unknown(c *Client, command string) result {
	return h.fail(c, replyErr(proto.ErrUnknownCommand, command))
}

// fail answers the sender alone with the reply carried by err.
func (h *Hub) fail(c *Client, err error) result {
	var res result
	res.plan.toOne(c, h.replyLine(c.nick, replyFor(err)))
	return res
}

func unparsedCommand(m proto.Message, err error) string {
	if errors.Is(err, proto.ErrEmptyLine) {
		return "*"
	}
	if fields := strings.Fields(m.Raw); len(fields) > 0 {
		return fields[0]
	}
	return "*"
}
