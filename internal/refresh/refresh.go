// Package refresh runs background cache rebuilds on a small worker pool.
// A key that is already queued or running is not queued again.
package refresh

import (
    "context"
    "sync"
    "time"
)

type Job struct {
    Key string
}

type Refresher struct {
    ch      chan Job
    inFly   sync.Map // key -> struct{}
    Do      func(ctx context.Context, j Job)
    Timeout time.Duration

    mu     sync.RWMutex
    closed bool
    wg     sync.WaitGroup
}

func New(capacity int, workerCount int, do func(ctx context.Context, j Job)) *Refresher {
    if capacity <= 0 { capacity = 256 }
    if workerCount <= 0 { workerCount = 2 }
    r := &Refresher{ ch: make(chan Job, capacity), Do: do, Timeout: 15 * time.Second }
    for i := 0; i < workerCount; i++ {
        r.wg.Add(1)
        go r.worker()
    }
    return r
}

// Enqueue reports whether the job was queued. Duplicates of an in-flight
// key and jobs offered to a saturated or closed queue are dropped.
func (r *Refresher) Enqueue(j Job) bool {
    r.mu.RLock()
    defer r.mu.RUnlock()
    if r.closed { return false }
    if _, exists := r.inFly.LoadOrStore(j.Key, struct{}{}); exists {
        return false
    }
    select {
    case r.ch <- j:
        return true
    default:
        // drop if saturated
        r.inFly.Delete(j.Key)
        return false
    }
}

// Close stops accepting jobs and waits for queued ones to finish.
func (r *Refresher) Close() {
    r.mu.Lock()
    if r.closed {
        r.mu.Unlock()
        return
    }
    r.closed = true
    close(r.ch)
    r.mu.Unlock()
    r.wg.Wait()
}

func (r *Refresher) worker() {
    defer r.wg.Done()
    for j := range r.ch {
        ctx, cancel := context.WithTimeout(context.Background(), r.Timeout)
        func() {
            defer func() {
                r.inFly.Delete(j.Key)
                cancel()
            }()
            if r.Do != nil { r.Do(ctx, j) }
        }()
    }
}
