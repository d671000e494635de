package core

// ChannelView is a point-in-time copy of one channel.
type ChannelView struct {
	Name    string
	Members []string
}

// ClientView is a point-in-time copy of one registered client.
type ClientView struct {
	ID       string
	Nick     string
	Username string
	Realname string
	Address  string
	Channels []string
}

// Stats summarises hub state.
type Stats struct {
	Sessions int
	Clients  int
	Channels int
}

// Channels lists every live channel ordered by name.
func (h *Hub) Channels() []ChannelView {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.channels.list()
	views := make([]ChannelView, len(list))
	for i, ch := range list {
		views[i] = channelView(ch)
	}
	return views
}

// Channel returns one channel by exact name.
func (h *Hub) Channel(name string) (ChannelView, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch, ok := h.channels.lookup(name)
	if !ok {
		return ChannelView{}, false
	}
	return channelView(ch), true
}

// Clients lists every registered client ordered by nickname.
func (h *Hub) Clients() []ClientView {
	h.mu.Lock()
	defer h.mu.Unlock()

	list := h.clients.list()
	views := make([]ClientView, len(list))
	for i, c := range list {
		views[i] = clientView(c)
	}
	return views
}

// Client returns one registered client by exact nickname.
func (h *Hub) Client(nick string) (ClientView, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.clients.lookup(nick)
	if !ok {
		return ClientView{}, false
	}
	return clientView(c), true
}

// Stats reports current counts.
func (h *Hub) Stats() Stats {
	h.mu.Lock()
	defer h.mu.Unlock()

	return Stats{
		Sessions: int(h.sessions.Load()),
		Clients:  h.clients.len(),
		Channels: h.channels.len(),
	}
}

func channelView(ch *Channel) ChannelView {
	return ChannelView{Name: ch.Name, Members: ch.nicks()}
}

func clientView(c *Client) ClientView {
	list := c.channelList()
	names := make([]string, len(list))
	for i, ch := range list {
		names[i] = ch.Name
	}
	return ClientView{
		ID:       c.ID,
		Nick:     c.nick,
		Username: c.User,
		Realname: c.Realname,
		Address:  c.Addr,
		Channels: names,
	}
}
