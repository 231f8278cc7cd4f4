package pubsub

import (
	"context"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// ListenCmd waits for the next event on ch and returns it as a tea.Msg, or
// nil once ctx is done or ch is closed.
func ListenCmd[T any](ctx context.Context, ch <-chan Event[T]) tea.Cmd {
	return func() tea.Msg {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-ch:
			if !ok {
				return nil
			}
			return event
		}
	}
}

// ContinuousListener keeps one broker subscription alive across Bubble Tea
// update cycles and counts the events it lost to a full buffer.
type ContinuousListener[T any] struct {
	ctx    context.Context
	ch     <-chan Event[T]
	last   atomic.Uint64
	missed atomic.Uint64
}

// NewContinuousListener subscribes to broker until ctx is done.
func NewContinuousListener[T any](ctx context.Context, broker *Broker[T]) *ContinuousListener[T] {
	ch, seq := broker.subscribe(ctx)
	l := &ContinuousListener[T]{ctx: ctx, ch: ch}
	l.last.Store(seq)
	return l
}

// Listen returns a tea.Cmd that waits for the next event. Re-issue it from
// Update after each event to keep receiving.
func (l *ContinuousListener[T]) Listen() tea.Cmd {
	listen := ListenCmd(l.ctx, l.ch)
	return func() tea.Msg {
		msg := listen()
		if event, ok := msg.(Event[T]); ok {
			l.observe(event.Seq)
		}
		return msg
	}
}

func (l *ContinuousListener[T]) observe(seq uint64) {
	if seq == 0 {
		return
	}
	if last := l.last.Swap(seq); seq > last+1 {
		l.missed.Add(seq - last - 1)
	}
}

// TakeMissed returns the number of events lost since the previous call.
func (l *ContinuousListener[T]) TakeMissed() uint64 {
	return l.missed.Swap(0)
}
