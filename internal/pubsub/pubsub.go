// Package pubsub is the in-process event channel for new-listing
// notifications. Delivery is fan-out to currently live subscribers only:
// no buffering, no replay, a slow subscriber drops events rather than
// blocking a publish.
package pubsub

import (
	"context"
	"sync"

	"github.com/SamuelFlet/hpdb/internal/domain"
)

const subscriberBuffer = 16

// ListingBus broadcasts newly created listings to subscribers.
type ListingBus struct {
	mu   sync.Mutex
	subs map[int]chan *domain.Listing
	next int
}

func NewListingBus() *ListingBus {
	return &ListingBus{subs: make(map[int]chan *domain.Listing)}
}

// Subscribe registers a consumer for listings published after this call.
// The returned channel is closed when ctx is done.
func (b *ListingBus) Subscribe(ctx context.Context) <-chan *domain.Listing {
	ch := make(chan *domain.Listing, subscriberBuffer)

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
		close(ch)
	}()

	return ch
}

// Publish delivers listing to every live subscriber in publish order.
// Subscribers with a full buffer miss the event.
func (b *ListingBus) Publish(listing *domain.Listing) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- listing:
		default:
		}
	}
}

// Len reports the number of live subscribers.
func (b *ListingBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
