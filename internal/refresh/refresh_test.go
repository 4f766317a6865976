package refresh

import (
	"context"
	"sync/atomic"
	"testing"
)

func TestEnqueueDedupesInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var runs int32
	r := New(4, 1, func(ctx context.Context, j Job) {
		atomic.AddInt32(&runs, 1)
		started <- struct{}{}
		<-release
	})

	if !r.Enqueue(Job{Key: "catalog"}) {
		t.Fatal("first enqueue should be accepted")
	}
	<-started
	if r.Enqueue(Job{Key: "catalog"}) {
		t.Fatal("in-flight key should be dropped")
	}
	if !r.Enqueue(Job{Key: "other"}) {
		t.Fatal("distinct key should be accepted")
	}
	close(release)
	r.Close()

	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("runs = %d, want 2", got)
	}
	if r.Enqueue(Job{Key: "late"}) {
		t.Fatal("closed refresher should refuse jobs")
	}
}
