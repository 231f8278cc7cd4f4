package pubsub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fieldChange struct {
	Name string
}

func TestBroker_Subscribe(t *testing.T) {
	broker := NewBroker[fieldChange]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := broker.Subscribe(ctx)
	broker.Publish(RegisteredEvent, fieldChange{Name: "MagneticField"})

	select {
	case event := <-ch:
		require.Equal(t, "MagneticField", event.Payload.Name)
		require.Equal(t, RegisteredEvent, event.Type)
		require.False(t, event.Timestamp.IsZero())
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for event")
	}
}

func TestBroker_MultipleSubscribers(t *testing.T) {
	broker := NewBroker[int]()
	defer broker.Close()

	ctx := context.Background()
	subs := []<-chan Event[int]{broker.Subscribe(ctx), broker.Subscribe(ctx), broker.Subscribe(ctx)}
	require.Equal(t, 3, broker.SubscriberCount())

	broker.Publish(RemovedEvent, 42)

	for i, ch := range subs {
		select {
		case event := <-ch:
			require.Equal(t, 42, event.Payload, "subscriber %d", i)
			require.Equal(t, RemovedEvent, event.Type, "subscriber %d", i)
		case <-time.After(100 * time.Millisecond):
			require.Fail(t, "timeout waiting for event", "subscriber %d", i)
		}
	}
}

func TestBroker_ContextCancellationClosesChannel(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	ctx, cancel := context.WithCancel(context.Background())
	ch := broker.Subscribe(ctx)
	require.Equal(t, 1, broker.SubscriberCount())

	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel should be closed")
	case <-time.After(100 * time.Millisecond):
		require.Fail(t, "timeout waiting for channel close")
	}
	require.Eventually(t, func() bool { return broker.SubscriberCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestBroker_DropsWhenSubscriberFull(t *testing.T) {
	broker := NewBrokerWithBuffer[int](2)
	defer broker.Close()

	ch := broker.Subscribe(context.Background())
	for i := range 5 {
		broker.Publish(RegisteredEvent, i)
	}

	require.Len(t, ch, 2)
	require.Equal(t, 0, (<-ch).Payload)
	require.Equal(t, 1, (<-ch).Payload)
	require.Equal(t, uint64(3), broker.Dropped())
	require.Equal(t, uint64(5), broker.Seq())
}

func TestBroker_Sequence(t *testing.T) {
	broker := NewBroker[string]()
	defer broker.Close()

	require.Zero(t, broker.Seq())
	ch := broker.Subscribe(context.Background())

	require.Equal(t, uint64(1), broker.Publish(RegisteredEvent, "B"))
	require.Equal(t, uint64(2), broker.Publish(RemovedEvent, "B"))
	require.Equal(t, uint64(2), broker.Seq())

	first, second := <-ch, <-ch
	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, uint64(2), second.Seq)

	require.True(t, first.Stale(1))
	require.False(t, second.Stale(1))
	require.False(t, Event[string]{}.Stale(10), "unnumbered events are never stale")
}

func TestBroker_ConcurrentPublishIsOrdered(t *testing.T) {
	broker := NewBrokerWithBuffer[int](1000)
	defer broker.Close()
	ch := broker.Subscribe(context.Background())

	var wg sync.WaitGroup
	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 100 {
				broker.Publish(RegisteredEvent, w*100+i)
			}
		}()
	}
	wg.Wait()

	require.Len(t, ch, 400)
	for want := uint64(1); want <= 400; want++ {
		require.Equal(t, want, (<-ch).Seq)
	}
}

func TestBroker_CloseIsIdempotent(t *testing.T) {
	broker := NewBroker[string]()
	ch := broker.Subscribe(context.Background())

	broker.Close()
	broker.Close()

	_, ok := <-ch
	require.False(t, ok)

	// Subscribing or publishing after close must not panic.
	late := broker.Subscribe(context.Background())
	_, ok = <-late
	require.False(t, ok)
	require.NotPanics(t, func() {
		require.Zero(t, broker.Publish(ReloadedEvent, "x"))
	})
}
