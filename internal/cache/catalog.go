// Package cache memoizes the resolved catalog in Redis.
//
// Entries carry a staleness deadline ahead of their TTL. A stale entry is
// still served while a background refresh rebuilds it, so readers never wait
// on a reload once the cache is warm.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/yourorg/listing-api/internal/redisx"
	"github.com/yourorg/listing-api/internal/refresh"
	"github.com/yourorg/listing-api/listing"
)

// KV is the subset of redisx.Client the catalog needs.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	SetNX(ctx context.Context, key string, val string, ttl time.Duration) (bool, error)
}

type envelope struct {
	Data []listing.Property `json:"data"`
	Meta struct {
		LastFetch  time.Time `json:"last_fetch_at"`
		StaleAfter time.Time `json:"stale_after"`
		TTLSeconds int       `json:"ttl_seconds"`
		Source     string    `json:"source"`
	} `json:"meta"`
}

type Options struct {
	Key        string
	TTL        time.Duration
	StaleAfter time.Duration
	// Source is recorded in the envelope, e.g. "fs" or "postgres".
	Source string
	Logger *log.Logger
}

// Catalog implements listing.Loader over another Loader.
type Catalog struct {
	loader    listing.Loader
	kv        KV
	opts      Options
	refresher *refresh.Refresher
	now       func() time.Time
}

func New(loader listing.Loader, kv KV, opts Options) *Catalog {
	if opts.Key == "" {
		opts.Key = "catalog:v1"
	}
	opts.TTL = maxDur(opts.TTL, time.Hour)
	opts.StaleAfter = maxDur(opts.StaleAfter, 5*time.Minute)
	c := &Catalog{loader: loader, kv: kv, opts: opts, now: time.Now}
	c.refresher = refresh.New(4, 1, c.rebuild)
	return c
}

func (c *Catalog) logf(format string, args ...any) {
	if c.opts.Logger != nil {
		c.opts.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

// LoadAll serves the cached collection when present, fresh or stale. Redis
// failures fall through to the wrapped loader.
func (c *Catalog) LoadAll(ctx context.Context) ([]listing.Property, error) {
	if c.kv == nil {
		return c.loader.LoadAll(ctx)
	}
	val, err := c.kv.Get(ctx, c.opts.Key)
	switch {
	case err == nil && val != "":
		var env envelope
		if err := json.Unmarshal([]byte(val), &env); err == nil {
			if c.now().After(env.Meta.StaleAfter) {
				c.refresher.Enqueue(refresh.Job{Key: c.opts.Key})
			}
			return env.Data, nil
		}
		c.logf("[WARN] cache: discarding undecodable entry %s", c.opts.Key)
	case err != nil && !redisx.IsMiss(err):
		c.logf("[WARN] cache get %s: %v; loading directly", c.opts.Key, err)
	}
	return c.load(ctx)
}

func (c *Catalog) LoadByID(ctx context.Context, id int) (listing.Property, bool, error) {
	props, err := c.LoadAll(ctx)
	if err != nil {
		return listing.Property{}, false, err
	}
	p, ok := listing.FindByID(props, id)
	return p, ok, nil
}

// Invalidate drops the cached collection; the next read reloads it.
func (c *Catalog) Invalidate(ctx context.Context) error {
	if c.kv == nil {
		return nil
	}
	return c.kv.Del(ctx, c.opts.Key)
}

// Close waits for any background refresh to finish.
func (c *Catalog) Close() { c.refresher.Close() }

func (c *Catalog) load(ctx context.Context) ([]listing.Property, error) {
	props, err := c.loader.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	c.store(ctx, props)
	return props, nil
}

func (c *Catalog) store(ctx context.Context, props []listing.Property) {
	var env envelope
	env.Data = props
	env.Meta.LastFetch = c.now()
	env.Meta.StaleAfter = env.Meta.LastFetch.Add(c.opts.StaleAfter)
	env.Meta.TTLSeconds = int(c.opts.TTL.Seconds())
	env.Meta.Source = c.opts.Source
	b, err := json.Marshal(env)
	if err != nil {
		c.logf("[WARN] cache encode: %v", err)
		return
	}
	if err := c.kv.Set(ctx, c.opts.Key, string(b), c.opts.TTL); err != nil {
		c.logf("[WARN] cache set %s: %v", c.opts.Key, err)
	}
}

// rebuild reloads the collection for a stale entry. The short lock keeps
// several instances from rebuilding at once.
func (c *Catalog) rebuild(ctx context.Context, j refresh.Job) {
	if ok, err := c.kv.SetNX(ctx, j.Key+":lock", "1", 30*time.Second); err != nil || !ok {
		return
	}
	defer func() { _ = c.kv.Del(ctx, j.Key+":lock") }()
	props, err := c.loader.LoadAll(ctx)
	if err != nil {
		c.logf("[WARN] cache refresh %s: %v", j.Key, err)
		return
	}
	c.store(ctx, props)
	c.logf("[INFO] cache refreshed %s (%d properties)", j.Key, len(props))
}

func maxDur(a, b time.Duration) time.Duration {
	if a > 0 {
		return a
	}
	return b
}
