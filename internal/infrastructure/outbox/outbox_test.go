package outbox

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	domoutbox "github.com/Zhima-Mochi/minishop-cart/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-cart/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type pinged struct{ n int }

func (pinged) EventName() string { return "test.pinged" }

func TestPublishFansOutToEverySubscriber(t *testing.T) {
	bus := NewBus(observability.NopLogger(), Options{})
	var got atomic.Int64
	var wg sync.WaitGroup
	wg.Add(4)
	for range 2 {
		bus.Subscribe("test.pinged", func(_ context.Context, e domoutbox.Event) error {
			got.Add(int64(e.(pinged).n))
			wg.Done()
			return nil
		})
	}
	bus.Start(context.Background())

	require.NoError(t, bus.Publish(context.Background(), pinged{n: 1}))
	require.NoError(t, bus.Publish(context.Background(), pinged{n: 10}))
	wg.Wait()

	assert.Equal(t, int64(22), got.Load())
	require.NoError(t, bus.Stop(context.Background()))
}

func TestHandlerPanicDoesNotStopDispatch(t *testing.T) {
	bus := NewBus(observability.NopLogger(), Options{Concurrency: 1})
	done := make(chan struct{})
	bus.Subscribe("test.pinged", func(_ context.Context, e domoutbox.Event) error {
		if e.(pinged).n == 0 {
			panic("boom")
		}
		close(done)
		return errors.New("handled with error")
	})
	bus.Start(context.Background())

	require.NoError(t, bus.Publish(context.Background(), pinged{n: 0}))
	require.NoError(t, bus.Publish(context.Background(), pinged{n: 1}))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second event was not dispatched")
	}
	require.NoError(t, bus.Stop(context.Background()))
}

func TestStopDrainsAndRejectsNewEvents(t *testing.T) {
	bus := NewBus(observability.NopLogger(), Options{})
	var handled atomic.Int64
	bus.Subscribe("test.pinged", func(context.Context, domoutbox.Event) error {
		handled.Add(1)
		return nil
	})
	for i := range 5 {
		require.NoError(t, bus.Publish(context.Background(), pinged{n: i}))
	}
	bus.Start(context.Background())

	require.NoError(t, bus.Stop(context.Background()))
	assert.Equal(t, int64(5), handled.Load())
	assert.ErrorIs(t, bus.Publish(context.Background(), pinged{}), ErrClosed)
}

func TestStopWithoutStart(t *testing.T) {
	bus := NewBus(nil, Options{})
	require.NoError(t, bus.Stop(context.Background()))
}
