package invalidator

import (
    "context"
    "log"
    "time"

    "github.com/yourorg/listing-api/internal/events"
)

type Cache interface {
    Invalidate(ctx context.Context) error
}

// Invalidator consumes catalog.updated events and drops the cached catalog
// so the next read sees the imported change.
type Invalidator struct {
    Sub   events.Subscriber
    Cache Cache
}

func (i *Invalidator) Run(ctx context.Context) {
    sub := i.Sub.SubscribeCatalogUpdated(ctx)
    for {
        select {
        case <-ctx.Done():
            return
        case evt, ok := <-sub:
            if !ok { return }
            if err := i.Cache.Invalidate(ctx); err != nil {
                log.Printf("[WARN] invalidator: catalog.updated id=%s key=%s: %v", evt.ID, evt.PropertyKey, err)
                continue
            }
            log.Printf("[INFO] invalidator: catalog.updated id=%s key=%s at=%s", evt.ID, evt.PropertyKey, evt.At.Format(time.RFC3339))
        }
    }
}
