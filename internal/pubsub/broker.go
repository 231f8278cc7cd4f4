package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

// Broker fans published events out to every live subscription. Publishing
// never blocks: a subscriber whose buffer is full loses the event, which it
// sees as a gap in the sequence numbers and which Dropped counts.
type Broker[T any] struct {
	mu         sync.Mutex
	subs       map[chan Event[T]]struct{}
	closed     bool
	seq        uint64
	dropped    uint64
	bufferSize int
}

// NewBroker creates a broker whose subscriptions buffer 64 events.
func NewBroker[T any]() *Broker[T] {
	return NewBrokerWithBuffer[T](defaultBufferSize)
}

// NewBrokerWithBuffer creates a broker with a custom subscription buffer.
func NewBrokerWithBuffer[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[chan Event[T]]struct{}),
		bufferSize: size,
	}
}

// Subscribe creates a subscription that is closed when ctx is done or the
// broker is closed.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	ch, _ := b.subscribe(ctx)
	return ch
}

// subscribe also returns the sequence number current at subscription time;
// the first event delivered is numbered after it.
func (b *Broker[T]) subscribe(ctx context.Context) (<-chan Event[T], uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := make(chan Event[T], b.bufferSize)
	if b.closed {
		close(sub)
		return sub, b.seq
	}
	b.subs[sub] = struct{}{}
	context.AfterFunc(ctx, func() { b.unsubscribe(sub) })
	return sub, b.seq
}

func (b *Broker[T]) unsubscribe(sub chan Event[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub]; !ok {
		return
	}
	delete(b.subs, sub)
	close(sub)
}

// Publish numbers the event and hands it to every subscriber with room for
// it. Concurrent publishes are delivered in sequence order. It returns the
// sequence number, or 0 once the broker is closed.
func (b *Broker[T]) Publish(eventType EventType, payload T) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}

	b.seq++
	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Seq:       b.seq,
		Timestamp: time.Now(),
	}
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			b.dropped++
		}
	}
	return b.seq
}

// Seq returns the number of the most recently published event.
func (b *Broker[T]) Seq() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq
}

// Dropped returns how many deliveries were skipped for full buffers.
func (b *Broker[T]) Dropped() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Close shuts down the broker and all subscriber channels.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		close(sub)
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

var (
	_ Subscriber[string] = (*Broker[string])(nil)
	_ Publisher[string]  = (*Broker[string])(nil)
)
