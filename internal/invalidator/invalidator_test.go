package invalidator

import (
	"context"
	"testing"
	"time"

	"github.com/yourorg/listing-api/internal/events"
)

type signalCache struct{ calls chan struct{} }

func (c signalCache) Invalidate(context.Context) error {
	c.calls <- struct{}{}
	return nil
}

func TestRunInvalidatesOnEvent(t *testing.T) {
	bus := events.NewInMemory(4)
	cache := signalCache{calls: make(chan struct{}, 4)}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		(&Invalidator{Sub: bus, Cache: cache}).Run(ctx)
		close(done)
	}()

	_ = bus.PublishCatalogUpdated(ctx, events.NewCatalogUpdated("villa", "abc"))
	select {
	case <-cache.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("cache was not invalidated")
	}
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop on cancel")
	}
}
