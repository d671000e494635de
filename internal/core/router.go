package core

import (
	"errors"

	"github.com/rs/zerolog"
)

// delivery is one wire line bound for a resolved set of recipients.
type delivery struct {
	to   []*Client
	line string
}

// plan is the ordered output of one command, computed under Hub.mu and
// delivered after it is released.
type plan struct {
	deliveries []delivery
}

func (p *plan) add(line string, to ...*Client) {
	if len(to) == 0 {
		return
	}
	p.deliveries = append(p.deliveries, delivery{to: to, line: line})
}

// toOne queues line for a single client.
func (p *plan) toOne(c *Client, line string) {
	p.add(line, c)
}

// toChannel queues line for every member of ch except the given client.
// Pass nil to include everyone.
func (p *plan) toChannel(ch *Channel, line string, except *Client) {
	p.add(line, without(ch.snapshot(), except)...)
}

// toAll queues line for every registered client except the given one.
func (p *plan) toAll(reg *clientRegistry, line string, except *Client) {
	p.add(line, without(reg.list(), except)...)
}

func (p *plan) merge(other plan) {
	p.deliveries = append(p.deliveries, other.deliveries...)
}

func without(list []*Client, except *Client) []*Client {
	if except == nil {
		return list
	}
	out := list[:0]
	for _, c := range list {
		if c != except {
			out = append(out, c)
		}
	}
	return out
}

// router hands planned lines to recipient outboxes. It never touches Hub.mu.
type router struct {
	log *zerolog.Logger
}

// deliver enqueues every line in order. A line that does not fit a peer's
// outbox is dropped for that peer alone; the rest of the fan-out continues.
func (r router) deliver(p plan) {
	for _, d := range p.deliveries {
		for _, c := range d.to {
			err := c.out.enqueue(d.line)
			switch {
			case err == nil:
			case errors.Is(err, errOutboxFull):
				r.log.Warn().Str("client_id", c.ID).Msg("outbox over limit, dropping line")
			case errors.Is(err, errOutboxClosed):
				// Peer is already shutting down.
			default:
				r.log.Error().Err(err).Str("client_id", c.ID).Msg("deliver failed")
			}
		}
	}
}
