package core

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// outbox is a FIFO of outbound lines drained by one writer goroutine. enqueue never blocks. maxBytes caps memory held for a
// peer that stops reading; lines beyond it are dropped, the peer is not.
// The connection is only closed when a write fails or outlives writeTimeout.
type outbox struct {
	conn         Conn
	log          *zerolog.Logger
	maxBytes     int
	writeTimeout time.Duration

	mu     sync.Mutex
	queue  []string
	queued int
	closed bool
	wake   chan struct{}

	done      chan struct{}
	closeOnce sync.Once
	broken    atomic.Bool
}

func newOutbox(conn Conn, maxBytes int, writeTimeout time.Duration, logger *zerolog.Logger) *outbox {
	return &outbox{
		conn:         conn,
		log:          logger,
		maxBytes:     maxBytes,
		writeTimeout: writeTimeout,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
}

// run writes queued lines in order until the outbox is shut down or a
// write fails.
func (o *outbox) run() {
	defer close(o.done)
	for {
		o.mu.Lock()
		batch, closed := o.queue, o.closed
		o.queue, o.queued = nil, 0
		o.mu.Unlock()

		if len(batch) == 0 {
			if closed {
				return
			}
			<-o.wake
			continue
		}
		for _, line := range batch {
			if err := o.write(line); err != nil {
				o.log.Debug().Err(err).Msg("write failed")
				o.fail()
				o.discard()
				return
			}
		}
	}
}

// write sends one line. A write still blocked after writeTimeout has its
// connection closed, which unblocks it.
func (o *outbox) write(line string) error {
	if o.writeTimeout > 0 {
		watchdog := time.AfterFunc(o.writeTimeout, o.fail)
		defer watchdog.Stop()
	}
	return o.conn.WriteLine(line)
}

func (o *outbox) enqueue(line string) error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return errOutboxClosed
	}
	if o.maxBytes > 0 && o.queued+len(line) > o.maxBytes {
		o.mu.Unlock()
		return errOutboxFull
	}
	o.queue = append(o.queue, line)
	o.queued += len(line)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
	return nil
}

// discard stops accepting lines after the writer gave up.
func (o *outbox) discard() {
	o.mu.Lock()
	o.closed = true
	o.queue, o.queued = nil, 0
	o.mu.Unlock()
}

// fail closes the transport so the owning session's read loop ends.
func (o *outbox) fail() {
	o.broken.Store(true)
	o.closeOnce.Do(func() {
		_ = o.conn.Close()
	})
}

// failed reports whether the transport was closed because of this outbox.
func (o *outbox) failed() bool {
	return o.broken.Load()
}

// shutdown stops accepting lines and waits up to wait for the queue to flush.
// Returns false if the writer did not finish in time.
func (o *outbox) shutdown(wait time.Duration) bool {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}

	if wait <= 0 {
		<-o.done
		return true
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-o.done:
		return true
	case <-timer.C:
		return false
	}
}
