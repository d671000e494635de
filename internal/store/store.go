package store

import (
	"context"
	"time"
)

// EventKind names a session lifecycle transition.
type EventKind string

const (
	EventConnect  EventKind = "connect"
	EventRegister EventKind = "register"
	EventNick     EventKind = "nick"
	EventQuit     EventKind = "quit"
)

// SessionEvent is one journal row. It never carries message bodies.
type SessionEvent struct {
	ID        int64
	SessionID string
	Kind      EventKind
	Nick      string
	Address   string
	Detail    string
	CreatedAt time.Time
}

// EventFilter narrows ListEvents. Zero values match everything.
type EventFilter struct {
	SessionID string
	Nick      string
	Kind      EventKind
	// Limit caps the number of rows, newest first. Zero means DefaultListLimit.
	Limit int
}

// DefaultListLimit bounds ListEvents when no limit is given.
const DefaultListLimit = 100

// Journal records session lifecycle events.
type Journal interface {
	// Record appends an event. CreatedAt is filled in when zero.
	Record(ctx context.Context, ev *SessionEvent) error

	// ListEvents returns matching events, newest first.
	ListEvents(ctx context.Context, filter EventFilter) ([]*SessionEvent, error)

	// Close releases the underlying storage.
	Close() error
}

// Discard is a Journal that keeps nothing.
var Discard Journal = discard{}

type discard struct{}

func (discard) Record(context.Context, *SessionEvent) error { return nil }

func (discard) ListEvents(context.Context, EventFilter) ([]*SessionEvent, error) {
	return []*SessionEvent{}, nil
}

func (discard) Close() error { return nil }
