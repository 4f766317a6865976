package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestInMemoryDropsWhenFull(t *testing.T) {
	m := NewInMemory(1)
	ctx := context.Background()
	first := NewCatalogUpdated("villa", "abc")
	if err := m.PublishCatalogUpdated(ctx, first); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := m.PublishCatalogUpdated(ctx, NewCatalogUpdated("plot", "def")); err != nil {
		t.Fatalf("publish: %v", err)
	}
	got := <-m.SubscribeCatalogUpdated(ctx)
	if got.ID != first.ID || got.PropertyKey != "villa" {
		t.Fatalf("got %+v", got)
	}
	select {
	case evt := <-m.SubscribeCatalogUpdated(ctx):
		t.Fatalf("unexpected event %+v", evt)
	default:
	}
}

func TestCatalogUpdatedWireFormat(t *testing.T) {
	evt := NewCatalogUpdated("villa", "abc")
	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	back, err := decodeCatalogUpdated(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if back.ID != evt.ID || back.Checksum != "abc" || !back.At.Equal(evt.At) {
		t.Fatalf("got %+v, want %+v", back, evt)
	}
	if _, err := decodeCatalogUpdated([]byte(`{"id":"` + evt.ID.String() + `"}`)); err == nil {
		t.Fatal("event without property key should be rejected")
	}
}
