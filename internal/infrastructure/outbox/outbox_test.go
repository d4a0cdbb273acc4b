package outbox_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domoutbox "github.com/Zhima-Mochi/garmentshop/internal/domain/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/infrastructure/outbox"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/obstest"
)

type pinged struct{ n int }

func (pinged) EventName() string { return "test.pinged" }

func TestBusDeliversToEverySubscriber(t *testing.T) {
	tel := obstest.New()
	bus := outbox.NewBus(tel)

	var mu sync.Mutex
	var got []int
	var wg sync.WaitGroup
	wg.Add(4)
	record := func(_ context.Context, e domoutbox.Event) error {
		defer wg.Done()
		mu.Lock()
		got = append(got, e.(pinged).n)
		mu.Unlock()
		return nil
	}
	bus.Subscribe("test.pinged", record)
	bus.Subscribe("test.pinged", record)
	bus.Start(context.Background())

	require.NoError(t, bus.Publish(context.Background(), pinged{n: 1}))
	require.NoError(t, bus.Publish(context.Background(), pinged{n: 2}))
	wg.Wait()

	assert.ElementsMatch(t, []int{1, 1, 2, 2}, got)
	require.NoError(t, bus.Stop(context.Background()))
	assert.Equal(t, 4.0, tel.Met.Value(observability.MEventsHandled,
		observability.L("event", "test.pinged"),
		observability.L("outcome", "success"),
	))
}

func TestBusStopDrainsQueue(t *testing.T) {
	bus := outbox.NewBus(nil)
	var mu sync.Mutex
	count := 0
	bus.Subscribe("test.pinged", func(context.Context, domoutbox.Event) error {
		mu.Lock()
		count++
		mu.Unlock()
		return nil
	})
	for i := range 5 {
		require.NoError(t, bus.Publish(context.Background(), pinged{n: i}))
	}
	bus.Start(context.Background())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, count)
	assert.ErrorIs(t, bus.Publish(context.Background(), pinged{}), outbox.ErrClosed)
}

func TestBusStopWithoutStart(t *testing.T) {
	bus := outbox.NewBus(nil)
	require.NoError(t, bus.Stop(context.Background()))
	require.NoError(t, bus.Stop(context.Background()))
}

func TestBusRecordsHandlerFailures(t *testing.T) {
	tel := obstest.New()
	bus := outbox.NewBus(tel)
	bus.Subscribe("test.pinged", func(context.Context, domoutbox.Event) error { return errors.New("nope") })
	bus.Subscribe("test.pinged", func(context.Context, domoutbox.Event) error { panic("boom") })
	bus.Start(context.Background())

	require.NoError(t, bus.Publish(context.Background(), pinged{}))
	require.NoError(t, bus.Publish(context.Background(), unrouted{}))
	require.NoError(t, bus.Stop(context.Background()))

	assert.Equal(t, 1.0, tel.Met.Value(observability.MEventsHandled,
		observability.L("event", "test.pinged"), observability.L("outcome", "error")))
	assert.Equal(t, 1.0, tel.Met.Value(observability.MEventsHandled,
		observability.L("event", "test.pinged"), observability.L("outcome", "panic")))
	assert.Equal(t, 1.0, tel.Met.Value(observability.MEventsHandled,
		observability.L("event", "test.unrouted"), observability.L("outcome", "dropped")))
	assert.Contains(t, tel.Log.Messages(), "event_handler_panic")
	assert.Contains(t, tel.Log.Messages(), "event_handler_error")
}

type unrouted struct{}

func (unrouted) EventName() string { return "test.unrouted" }

func TestBusPublishHonoursContextWhenFull(t *testing.T) {
	bus := outbox.NewBus(nil, outbox.WithQueueSize(1))
	require.NoError(t, bus.Publish(context.Background(), pinged{}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, bus.Publish(ctx, pinged{}), context.DeadlineExceeded)
}

func TestMulti(t *testing.T) {
	var calls []string
	sink := func(name string, err error) domoutbox.Publisher {
		return domoutbox.PublisherFunc(func(context.Context, domoutbox.Event) error {
			calls = append(calls, name)
			return err
		})
	}
	failure := errors.New("broker unavailable")

	p := outbox.Multi(sink("bus", nil), nil, sink("rabbit", failure), sink("audit", nil))
	err := p.Publish(context.Background(), pinged{})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, []string{"bus", "rabbit", "audit"}, calls)

	single := sink("only", nil)
	calls = nil
	require.NoError(t, outbox.Multi(nil, single).Publish(context.Background(), pinged{}))
	assert.Equal(t, []string{"only"}, calls)
}
