package events

import (
	"context"
	"errors"
	"sync"

	"github.com/BerylCAtieno/cheatsheet-api/internal/models"
)

const subscriberBuffer = 16

var ErrBrokerClosed = errors.New("broker closed")

// MemoryBroker delivers events within a single process.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan SummaryEvent]struct{}
	closed bool
}

func NewMemoryBroker() *MemoryBroker {
	return &MemoryBroker{
		subs: make(map[string]map[chan SummaryEvent]struct{}),
	}
}

func (b *MemoryBroker) Publish(_ context.Context, event SummaryEvent) error {
	identity := recordIdentity(event.Summary)
	if identity.IsZero() {
		return errors.New("event has no owner")
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return ErrBrokerClosed
	}

	for ch := range b.subs[ownerKey(identity)] {
		select {
		case ch <- event:
		default:
			// slow subscriber; drop
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context, identity models.Identity) (<-chan SummaryEvent, error) {
	if identity.IsZero() {
		return nil, errors.New("subscription requires an identity")
	}

	key := ownerKey(identity)
	ch := make(chan SummaryEvent, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	if b.subs[key] == nil {
		b.subs[key] = make(map[chan SummaryEvent]struct{})
	}
	b.subs[key][ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(key, ch)
	}()

	return ch, nil
}

func (b *MemoryBroker) remove(key string, ch chan SummaryEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subs[key][ch]; !ok {
		return
	}
	delete(b.subs[key], ch)
	if len(b.subs[key]) == 0 {
		delete(b.subs, key)
	}
	close(ch)
}

// Close ends every subscription.
func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	for key, chans := range b.subs {
		for ch := range chans {
			close(ch)
		}
		delete(b.subs, key)
	}
	return nil
}
