package core

import (
	"sort"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
)

// Client is a fully registered participant.
// nick and channels are guarded by Hub.mu; the rest never changes.
type Client struct {
	ID       string
	User     string
	Realname string
	Addr     string

	nick     string
	channels map[string]*Channel
	out      *outbox
}

func newClient(id, nick, user, realname, addr string, out *outbox) *Client {
	return &Client{
		ID:       id,
		User:     user,
		Realname: realname,
		Addr:     addr,
		nick:     nick,
		channels: make(map[string]*Channel),
		out:      out,
	}
}

func (c *Client) prefix() string {
	return proto.Prefix(c.nick, c.Addr)
}

// channelList returns the client's channels ordered by name.
func (c *Client) channelList() []*Channel {
	list := make([]*Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		list = append(list, ch)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

// peers returns every other client sharing at least one channel, each once.
func (c *Client) peers() []*Client {
	seen := make(map[*Client]struct{})
	var out []*Client
	for _, ch := range c.channels {
		for m := range ch.members {
			if m == c {
				continue
			}
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
