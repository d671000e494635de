package core

import (
	"strings"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
	"github.com/vovakirdan/wirechat-irc/internal/store"
)

// Handlers below run with Hub.mu held. Each validates fully before it mutates.

func (h *Hub) changeNick(c *Client, m proto.Message) result {
	nick, rerr := parseNick(m)
	if rerr != nil {
		return h.fail(c, rerr)
	}
	if nick == c.nick {
		return result{}
	}

	oldNick, oldPrefix := c.nick, c.prefix()
	if !h.clients.rename(c, nick) {
		return h.fail(c, replyErr(proto.ErrNicknameInUse, nick))
	}

	line := proto.Format(oldPrefix, proto.CmdNick, nick)
	var res result
	res.plan.toOne(c, line)
	res.plan.add(line, c.peers()...)
	res.event = &journalEntry{kind: store.EventNick, nick: nick, detail: oldNick}
	return res
}

func (h *Hub) join(c *Client, m proto.Message) result {
	fields := m.Fields()
	switch {
	case len(fields) == 0:
		return h.fail(c, replyErr(proto.ErrNeedMoreParams, proto.CmdJoin))
	case len(fields) == 1 && fields[0] == "0":
		return h.partAll(c)
	case len(fields) > 1:
		return h.fail(c, replyErr(proto.ErrNoSuchChannel, fields[0]))
	}

	name := proto.Trailing(fields[0])
	if !validChannelName(name) {
		return h.fail(c, replyErr(proto.ErrNoSuchChannel, name))
	}
	if ch, ok := h.channels.lookup(name); ok && ch.has(c) {
		return result{}
	}
	if len(c.channels) >= maxChannels {
		return h.fail(c, replyErr(proto.ErrTooManyChannels, name))
	}

	ch := h.channels.join(name, c)

	var res result
	res.plan.toChannel(ch, proto.Format(c.prefix(), proto.CmdJoin, name), nil)
	res.plan.toOne(c, h.replyLine(c.nick, proto.Reply{
		Code:     proto.RplNamReply,
		Params:   []string{"=", name},
		Trailing: strings.Join(ch.nicks(), " "),
	}))
	res.plan.toOne(c, h.replyLine(c.nick, proto.NewReply(proto.RplEndOfNames, name)))
	return res
}

// partAll handles `JOIN 0`.
func (h *Hub) partAll(c *Client) result {
	if len(c.channels) == 0 {
		return h.fail(c, replyErr(proto.ErrUserNotInChannel, "0"))
	}

	var res result
	for _, ch := range c.channelList() {
		res.plan.toChannel(ch, proto.Format(c.prefix(), proto.CmdPart, ch.Name), nil)
		h.channels.leave(ch, c)
	}
	return res
}

func (h *Hub) part(c *Client, m proto.Message) result {
	args := m.SplitArgs(2)
	if len(args) == 0 || args[0] == "" {
		return h.fail(c, replyErr(proto.ErrNeedMoreParams, proto.CmdPart))
	}

	var reason string
	if len(args) == 2 {
		reason = proto.Trailing(strings.TrimLeft(args[1], " "))
	}

	var res result
	for _, name := range strings.Split(args[0], ",") {
		if !hasChannelPrefix(name) {
			res.plan.toOne(c, h.replyLine(c.nick, proto.NewReply(proto.ErrNoSuchChannel, name)))
			continue
		}
		ch, ok := c.channels[name]
		if !ok {
			res.plan.toOne(c, h.replyLine(c.nick, proto.NewReply(proto.ErrUserNotInChannel, name)))
			continue
		}

		params := []string{name}
		if reason != "" {
			params = append(params, reason)
		}
		res.plan.toChannel(ch, proto.Format(c.prefix(), proto.CmdPart, params...), nil)
		h.channels.leave(ch, c)
	}
	return res
}

func (h *Hub) privmsg(c *Client, m proto.Message) result {
	args := m.SplitArgs(2)
	if len(args) == 0 || args[0] == "" {
		return h.fail(c, replyErr(proto.ErrNeedMoreParams, proto.CmdPrivmsg))
	}
	if len(args) < 2 {
		return h.fail(c, replyErr(proto.ErrNeedMoreParams, proto.CmdPrivmsg))
	}
	target := args[0]

	text := proto.Trailing(strings.TrimLeft(args[1], " "))
	if text == "" {
		return h.fail(c, replyErr(proto.ErrNoTextToSend))
	}

	line := proto.Format(c.prefix(), proto.CmdPrivmsg, target, text)
	var res result

	if hasChannelPrefix(target) {
		ch, ok := h.channels.lookup(target)
		if !ok {
			return h.fail(c, replyErr(proto.ErrNoSuchChannel, target))
		}
		if !ch.has(c) {
			return h.fail(c, replyErr(proto.ErrCannotSendToChan, target))
		}
		res.plan.toChannel(ch, line, c)
		return res
	}

	dst, ok := h.clients.lookup(target)
	if !ok {
		return h.fail(c, replyErr(proto.ErrNoSuchNick, target))
	}
	res.plan.toOne(dst, line)
	return res
}

func (h *Hub) who(c *Client, m proto.Message) result {
	fields := m.Fields()
	if len(fields) == 0 {
		return h.fail(c, replyErr(proto.ErrNeedMoreParams, proto.CmdWho))
	}
	name := fields[0]

	ch, ok := h.channels.lookup(name)
	if !ok {
		return h.fail(c, replyErr(proto.ErrNoSuchChannel, name))
	}
	if !ch.has(c) {
		return h.fail(c, replyErr(proto.ErrUserNotInChannel, name))
	}

	var res result
	for _, member := range ch.snapshot() {
		res.plan.toOne(c, h.replyLine(c.nick, proto.Reply{
			Code:     proto.RplWhoReply,
			Params:   []string{name, member.User, member.Addr, h.opts.ServerName, member.nick, "H"},
			Trailing: "0 " + member.Realname,
		}))
	}
	res.plan.toOne(c, h.replyLine(c.nick, proto.NewReply(proto.RplEndOfWho, name)))
	return res
}

// quit only parses the reason; the session performs the teardown.
func (h *Hub) quit(_ *Client, m proto.Message) result {
	reason := proto.Trailing(m.Args)
	if reason == "" {
		reason = defaultQuitReason
	}
	return result{quit: true, reason: reason}
}
