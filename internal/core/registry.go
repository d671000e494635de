package core

import "sort"

// clientRegistry indexes registered clients by nickname. Callers hold Hub.mu.
// Nicknames compare case-sensitively.
type clientRegistry struct {
	byNick map[string]*Client
}

func newClientRegistry() clientRegistry {
	return clientRegistry{byNick: make(map[string]*Client)}
}

func (r *clientRegistry) lookup(nick string) (*Client, bool) {
	c, ok := r.byNick[nick]
	return c, ok
}

func (r *clientRegistry) taken(nick string) bool {
	_, ok := r.byNick[nick]
	return ok
}

// insert adds c under its nickname. Returns false if the nickname is taken.
func (r *clientRegistry) insert(c *Client) bool {
	if r.taken(c.nick) {
		return false
	}
	r.byNick[c.nick] = c
	return true
}

// rename moves c to a new nickname. Returns false if the nickname is taken.
func (r *clientRegistry) rename(c *Client, nick string) bool {
	if r.taken(nick) {
		return false
	}
	if cur, ok := r.byNick[c.nick]; ok && cur == c {
		delete(r.byNick, c.nick)
	}
	c.nick = nick
	r.byNick[nick] = c
	return true
}

// remove drops c. Returns false if c was not registered.
func (r *clientRegistry) remove(c *Client) bool {
	cur, ok := r.byNick[c.nick]
	if !ok || cur != c {
		return false
	}
	delete(r.byNick, c.nick)
	return true
}

func (r *clientRegistry) len() int {
	return len(r.byNick)
}

// list returns all clients ordered by nickname.
func (r *clientRegistry) list() []*Client {
	list := make([]*Client, 0, len(r.byNick))
	for _, c := range r.byNick {
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].nick < list[j].nick })
	return list
}
