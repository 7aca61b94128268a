package log

import (
	"bytes"
	"sync"
	"sync/atomic"
)

const (
	defaultBufferSize = 64
	defaultHistory    = 8
)

// Publisher is an [io.Writer] that turns each write into a log line and fans
// it out to subscribers.
//
// slog handlers issue one write per record, so one write is one line; the
// trailing newline is stripped. The most recent lines are retained and
// replayed to new subscribers, so a display that subscribes after startup
// still sees what was logged while it was being built. Delivery never blocks:
// when a subscriber's channel is full its oldest line is dropped. Safe for
// concurrent use.
//
// Create instances with [NewPublisher].
type Publisher struct {
	subscribers []*Subscription
	history     [][]byte
	bufSize     int
	keep        int
	mu          sync.Mutex
	closed      bool
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithBufferSize sets the channel buffer size for new subscriptions. Values
// less than 1 are clamped to 1.
func WithBufferSize(n int) PublisherOption {
	return func(p *Publisher) {
		p.bufSize = max(n, 1)
	}
}

// WithHistory sets how many recent lines are replayed to new subscriptions.
// Negative values are clamped to 0.
func WithHistory(n int) PublisherOption {
	return func(p *Publisher) {
		p.keep = max(n, 0)
	}
}

// NewPublisher creates a [Publisher]. By default subscriptions buffer 64
// lines and the last 8 lines are replayed.
func NewPublisher(opts ...PublisherOption) *Publisher {
	p := &Publisher{
		bufSize: defaultBufferSize,
		keep:    defaultHistory,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Write publishes a copy of b without its trailing newline. It always
// returns len(b), nil.
func (p *Publisher) Write(b []byte) (int, error) {
	line := bytes.Clone(bytes.TrimRight(b, "\r\n"))

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return len(b), nil
	}

	if p.keep > 0 {
		if len(p.history) == p.keep {
			p.history = append(p.history[:0], p.history[1:]...)
		}

		p.history = append(p.history, line)
	}

	alive := p.subscribers[:0]
	for _, sub := range p.subscribers {
		if sub.closed.Load() {
			close(sub.ch)

			continue
		}

		sub.send(line)

		alive = append(alive, sub)
	}

	clear(p.subscribers[len(alive):])
	p.subscribers = alive

	return len(b), nil
}

// Subscribe registers a new [Subscription] primed with the retained history.
// If the Publisher is closed the subscription's channel is closed after the
// history.
func (p *Publisher) Subscribe() *Subscription {
	p.mu.Lock()
	defer p.mu.Unlock()

	sub := &Subscription{
		ch: make(chan []byte, p.bufSize),
	}

	for _, line := range p.history {
		sub.send(line)
	}

	if p.closed {
		close(sub.ch)

		return sub
	}

	p.subscribers = append(p.subscribers, sub)

	return sub
}

// Close closes every subscription channel. Idempotent.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}

	p.closed = true
	for _, sub := range p.subscribers {
		close(sub.ch)
	}

	p.subscribers = nil

	return nil
}

// Subscription receives log lines from a [Publisher].
type Subscription struct {
	ch     chan []byte
	closed atomic.Bool
}

// C returns the channel delivering log lines. Callers must not modify the
// returned slices.
func (s *Subscription) C() <-chan []byte {
	return s.ch
}

// Close detaches the subscription. The [Publisher] closes the channel on its
// next write or close. Idempotent.
func (s *Subscription) Close() {
	s.closed.Store(true)
}

// send delivers line, dropping the oldest buffered line when full. Callers
// hold the publisher lock.
func (s *Subscription) send(line []byte) {
	select {
	case s.ch <- line:
	default:
		// The reader may drain the channel concurrently, so neither step may
		// block.
		select {
		case <-s.ch:
		default:
		}

		select {
		case s.ch <- line:
		default:
		}
	}
}
