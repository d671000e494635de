package core

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	channelPrefixes   = "#&+!"
	maxChannelNameLen = 50
	maxChannels       = 10
)

// Channel groups clients that receive each other's channel traffic.
type Channel struct {
	Name    string
	members map[*Client]struct{}
}

func newChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		members: make(map[*Client]struct{}),
	}
}

// add inserts a client. Returns true if newly added.
func (ch *Channel) add(c *Client) bool {
	if _, exists := ch.members[c]; exists {
		return false
	}
	ch.members[c] = struct{}{}
	return true
}

// remove deletes a client. Returns true if removed.
func (ch *Channel) remove(c *Client) bool {
	if _, exists := ch.members[c]; !exists {
		return false
	}
	delete(ch.members, c)
	return true
}

func (ch *Channel) has(c *Client) bool {
	_, ok := ch.members[c]
	return ok
}

func (ch *Channel) empty() bool {
	return len(ch.members) == 0
}

// snapshot copies the member set, ordered by nickname.
func (ch *Channel) snapshot() []*Client {
	list := make([]*Client, 0, len(ch.members))
	for c := range ch.members {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].nick < list[j].nick })
	return list
}

func (ch *Channel) nicks() []string {
	members := ch.snapshot()
	names := make([]string, len(members))
	for i, c := range members {
		names[i] = c.nick
	}
	return names
}

func hasChannelPrefix(name string) bool {
	return name != "" && strings.IndexByte(channelPrefixes, name[0]) >= 0
}

// validChannelName checks prefix, length and the single-name rule.
func validChannelName(name string) bool {
	return hasChannelPrefix(name) &&
		utf8.RuneCountInString(name) <= maxChannelNameLen &&
		!strings.ContainsAny(name, ", \a")
}
