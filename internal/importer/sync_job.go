// Package importer copies the on-disk catalog into Postgres so that API
// instances can serve it without sharing a filesystem.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/yourorg/listing-api/internal/events"
	"github.com/yourorg/listing-api/internal/store"
	"github.com/yourorg/listing-api/listing"
)

// Writer is the part of store.Store the job writes through.
type Writer interface {
	WriteSnapshot(ctx context.Context, in store.SnapshotInput) (store.SnapshotResult, error)
	DeleteMissing(ctx context.Context, keep []string) ([]string, error)
}

type Config struct {
	Interval time.Duration
	// Prune removes stored properties whose definition no longer exists.
	Prune bool
}

type SyncJob struct {
	Defs   listing.DefinitionSource
	Assets listing.AssetSource
	Store  Writer
	Pub    events.Publisher
	Logger *log.Logger
	Config Config
}

// Summary counts what one pass did.
type Summary struct {
	Written   int
	Unchanged int
	Skipped   int
	Removed   int
}

func (j *SyncJob) logf(format string, args ...any) {
	if j.Logger != nil {
		j.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (j *SyncJob) validate() error {
	if j == nil {
		return errors.New("nil sync job")
	}
	if j.Defs == nil || j.Assets == nil {
		return errors.New("importer sync job requires definition and asset sources")
	}
	if j.Store == nil {
		return errors.New("importer sync job requires a store")
	}
	return nil
}

func (j *SyncJob) Run(ctx context.Context) error {
	if err := j.validate(); err != nil {
		return err
	}
	interval := j.Config.Interval
	if interval <= 0 {
		_, err := j.RunOnce(ctx)
		return err
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	j.logf("[INFO] importer sync job starting with interval %s", interval)
	if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
		j.logf("[WARN] importer initial run error: %v", err)
	}
	for {
		select {
		case <-ctx.Done():
			j.logf("[INFO] importer sync job stopping: %v", ctx.Err())
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			if _, err := j.RunOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
				j.logf("[WARN] importer iteration error: %v", err)
			}
		}
	}
}

// RunOnce imports every definition once. Malformed definitions are logged
// and skipped; their previously stored version, if any, is kept. Store
// failures for individual properties are joined into the returned error.
func (j *SyncJob) RunOnce(ctx context.Context) (Summary, error) {
	var sum Summary
	if err := j.validate(); err != nil {
		return sum, err
	}
	defs, err := j.Defs.Definitions(ctx)
	if err != nil {
		return sum, fmt.Errorf("load definitions: %w", err)
	}
	pool, err := j.Assets.Assets(ctx)
	if err != nil {
		return sum, fmt.Errorf("load assets: %w", err)
	}
	sort.SliceStable(defs, func(a, b int) bool { return defs[a].Key < defs[b].Key })

	var joined error
	keep := make([]string, 0, len(defs))
	for _, def := range defs {
		if ctx.Err() != nil {
			return sum, ctx.Err()
		}
		if listing.IsTemplateKey(def.Key) {
			continue
		}
		rec, err := listing.DecodeRecord(def.Data, def.Format)
		if err != nil {
			j.logf("[WARN] importer: skip property %s: %v", def.Key, err)
			keep = append(keep, def.Key)
			sum.Skipped++
			continue
		}
		if rec.Template {
			continue
		}
		keep = append(keep, def.Key)

		res, err := j.Store.WriteSnapshot(ctx, snapshotFor(def, pool))
		if err != nil {
			joined = errors.Join(joined, fmt.Errorf("property %s: %w", def.Key, err))
			continue
		}
		if !res.Changed {
			sum.Unchanged++
			continue
		}
		sum.Written++
		j.publish(ctx, events.NewCatalogUpdated(def.Key, res.Checksum))
	}

	if j.Config.Prune && joined == nil {
		removed, err := j.Store.DeleteMissing(ctx, keep)
		if err != nil {
			joined = errors.Join(joined, fmt.Errorf("prune: %w", err))
		}
		for _, key := range removed {
			sum.Removed++
			j.publish(ctx, events.NewCatalogUpdated(key, ""))
		}
	}
	j.logf("[INFO] importer: %d written, %d unchanged, %d skipped, %d removed", sum.Written, sum.Unchanged, sum.Skipped, sum.Removed)
	return sum, joined
}

func (j *SyncJob) publish(ctx context.Context, evt events.CatalogUpdated) {
	if j.Pub == nil {
		return
	}
	if err := j.Pub.PublishCatalogUpdated(ctx, evt); err != nil {
		j.logf("[WARN] importer: publish catalog.updated for %s: %v", evt.PropertyKey, err)
	}
}

var assetKinds = []listing.AssetKind{listing.KindImage, listing.KindVideo, listing.KindDocument}

func snapshotFor(def listing.Definition, pool listing.AssetPool) store.SnapshotInput {
	in := store.SnapshotInput{PropertyKey: def.Key, Format: def.Format, Payload: def.Data}
	for _, kind := range assetKinds {
		for _, a := range pool.Get(def.Key, kind) {
			in.Assets = append(in.Assets, store.AssetInput{Kind: kind, Name: a.Name, Locator: a.Locator})
		}
	}
	return in
}
