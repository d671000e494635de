package core

import "sort"

// channelDirectory owns the live channels. Callers hold Hub.mu.
type channelDirectory struct {
	channels map[string]*Channel
}

func newChannelDirectory() channelDirectory {
	return channelDirectory{channels: make(map[string]*Channel)}
}

func (d *channelDirectory) lookup(name string) (*Channel, bool) {
	ch, ok := d.channels[name]
	return ch, ok
}

// join adds c to the named channel, creating it if needed, and records the
// membership on both sides.
func (d *channelDirectory) join(name string, c *Client) *Channel {
	ch, ok := d.channels[name]
	if !ok {
		ch = newChannel(name)
		d.channels[name] = ch
	}
	ch.add(c)
	c.channels[name] = ch
	return ch
}

// leave removes c from ch on both sides and drops ch once it is empty.
// Returns true if the channel was deleted.
func (d *channelDirectory) leave(ch *Channel, c *Client) bool {
	ch.remove(c)
	delete(c.channels, ch.Name)
	if !ch.empty() {
		return false
	}
	if cur, ok := d.channels[ch.Name]; ok && cur == ch {
		delete(d.channels, ch.Name)
	}
	return true
}

func (d *channelDirectory) len() int {
	return len(d.channels)
}

func (d *channelDirectory) list() []*Channel {
	list := make([]*Channel, 0, len(d.channels))
	for _, ch := range d.channels {
		list = append(list, ch)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}
