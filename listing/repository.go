package listing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
)

// Repository loads the catalog from a definition source and an asset
// source. It holds no state between calls.
type Repository struct {
	defs      DefinitionSource
	assets    AssetSource
	strictIDs bool
	logger    *log.Logger
}

type Option func(*Repository)

// WithStrictIDs rejects definitions without a valid integer id instead of
// assigning one.
func WithStrictIDs() Option {
	return func(r *Repository) { r.strictIDs = true }
}

func WithLogger(l *log.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

func NewRepository(defs DefinitionSource, assets AssetSource, opts ...Option) *Repository {
	r := &Repository{defs: defs, assets: assets}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) logf(format string, args ...any) {
	if r.logger != nil {
		r.logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

type pending struct {
	prop     Property
	id       int
	explicit bool
}

// LoadAll resolves every listable definition, sorted ascending by ID.
// A failing definition is logged and skipped; only a failure to read
// either source is returned.
func (r *Repository) LoadAll(ctx context.Context) ([]Property, error) {
	if r.defs == nil || r.assets == nil {
		return nil, errors.New("repository sources are not configured")
	}
	defs, err := r.defs.Definitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("load definitions: %w", err)
	}
	pool, err := r.assets.Assets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}

	defs = append([]Definition(nil), defs...)
	sort.SliceStable(defs, func(i, j int) bool { return defs[i].Key < defs[j].Key })

	var items []pending
	taken := make(map[int]bool)
	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if IsTemplateKey(def.Key) {
			continue
		}
		item, skip, err := r.prepare(def, pool)
		if err != nil {
			r.logf("[WARN] skip property %s: %v", def.Key, err)
			continue
		}
		if skip {
			continue
		}
		if item.explicit {
			if taken[item.id] {
				r.logf("[WARN] skip property %s: %v: duplicate id %d", def.Key, ErrMalformed, item.id)
				continue
			}
			taken[item.id] = true
		}
		items = append(items, item)
	}

	out := make([]Property, 0, len(items))
	for _, item := range items {
		id := item.id
		if !item.explicit {
			id = len(out) + 1
			for taken[id] {
				id++
			}
			taken[id] = true
		}
		item.prop.ID = id
		out = append(out, item.prop)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Repository) prepare(def Definition, pool AssetPool) (pending, bool, error) {
	rec, err := DecodeRecord(def.Data, def.Format)
	if err != nil {
		return pending{}, false, err
	}
	if rec.Template {
		return pending{}, true, nil
	}
	item := pending{prop: normalize(def.Key, rec, pool)}
	if id, ok := rec.ID.Int(); ok {
		item.id, item.explicit = id, true
	} else if r.strictIDs {
		return pending{}, false, fmt.Errorf("%w: missing or invalid id %q", ErrMalformed, string(rec.ID))
	}
	return item, false, nil
}

// LoadByID scans the full collection. The bool is false when no property
// has the given id.
func (r *Repository) LoadByID(ctx context.Context, id int) (Property, bool, error) {
	props, err := r.LoadAll(ctx)
	if err != nil {
		return Property{}, false, err
	}
	p, ok := FindByID(props, id)
	return p, ok, nil
}

// FindByID returns the first property with the given id.
func FindByID(props []Property, id int) (Property, bool) {
	for _, p := range props {
		if p.ID == id {
			return p, true
		}
	}
	return Property{}, false
}
