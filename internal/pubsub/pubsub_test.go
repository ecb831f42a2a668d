package pubsub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SamuelFlet/hpdb/internal/domain"
)

func receive(t *testing.T, ch <-chan *domain.Listing) *domain.Listing {
	t.Helper()
	select {
	case l := <-ch:
		return l
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for listing")
		return nil
	}
}

func TestPublishReachesLiveSubscribers(t *testing.T) {
	bus := NewListingBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := bus.Subscribe(ctx)
	second := bus.Subscribe(ctx)

	listing := &domain.Listing{ID: 1, Title: "lamp"}
	bus.Publish(listing)

	assert.Equal(t, listing, receive(t, first))
	assert.Equal(t, listing, receive(t, second))
}

func TestLateSubscriberMissesEarlierPublishes(t *testing.T) {
	bus := NewListingBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus.Publish(&domain.Listing{ID: 1})

	late := bus.Subscribe(ctx)
	select {
	case l := <-late:
		t.Fatalf("late subscriber received %v", l)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublishOrderPerSubscriber(t *testing.T) {
	bus := NewListingBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := bus.Subscribe(ctx)
	for i := int64(1); i <= 5; i++ {
		bus.Publish(&domain.Listing{ID: i})
	}

	for i := int64(1); i <= 5; i++ {
		assert.Equal(t, i, receive(t, ch).ID)
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	bus := NewListingBus()
	ctx, cancel := context.WithCancel(context.Background())

	ch := bus.Subscribe(ctx)
	require.Equal(t, 1, bus.Len())

	cancel()
	for {
		if _, open := <-ch; !open {
			break
		}
	}
	assert.Eventually(t, func() bool { return bus.Len() == 0 }, time.Second, 10*time.Millisecond)

	// publish after unsubscribe must not panic or block
	bus.Publish(&domain.Listing{ID: 9})
}

func TestSlowSubscriberDoesNotBlockPublish(t *testing.T) {
	bus := NewListingBus()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus.Subscribe(ctx) // never drained

	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer*2; i++ {
			bus.Publish(&domain.Listing{ID: int64(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}
