package events

import (
    "context"
    "time"

    "github.com/google/uuid"
)

// CatalogUpdated announces that one property's stored definition or asset
// list changed. Checksum is empty when the property was removed.
type CatalogUpdated struct {
    ID          uuid.UUID `json:"id"`
    PropertyKey string    `json:"property_key"`
    Checksum    string    `json:"checksum,omitempty"`
    At          time.Time `json:"at"`
}

func NewCatalogUpdated(propertyKey, checksum string) CatalogUpdated {
    return CatalogUpdated{ID: uuid.New(), PropertyKey: propertyKey, Checksum: checksum, At: time.Now().UTC()}
}

type Publisher interface {
    PublishCatalogUpdated(ctx context.Context, evt CatalogUpdated) error
}

type Subscriber interface {
    // SubscribeCatalogUpdated delivers events until ctx is done.
    SubscribeCatalogUpdated(ctx context.Context) <-chan CatalogUpdated
}

type InMemory struct { ch chan CatalogUpdated }

func NewInMemory(buffer int) *InMemory {
    if buffer <= 0 { buffer = 256 }
    return &InMemory{ ch: make(chan CatalogUpdated, buffer) }
}

// PublishCatalogUpdated never blocks; events are dropped when the buffer is full.
func (m *InMemory) PublishCatalogUpdated(_ context.Context, evt CatalogUpdated) error {
    select { case m.ch <- evt: default: }
    return nil
}

func (m *InMemory) SubscribeCatalogUpdated(_ context.Context) <-chan CatalogUpdated { return m.ch }
