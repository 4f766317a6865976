// Package fsstore reads property definitions and assets from a directory
// tree laid out as <root>/<key>/data.json plus images/, videos/ and
// documents/ subdirectories.
package fsstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/url"
	"path"
	"strings"

	"github.com/yourorg/listing-api/listing"
)

var definitionFiles = []string{"data.json", "data.yaml", "data.yml"}

var assetDirs = map[string]listing.AssetKind{
	"images":    listing.KindImage,
	"videos":    listing.KindVideo,
	"documents": listing.KindDocument,
}

type Store struct {
	FS        fs.FS
	Root      string
	URLPrefix string
	Logger    *log.Logger
}

// New serves the tree below root in fsys. Asset locators are URLPrefix
// followed by the asset's path relative to root.
func New(fsys fs.FS, root, urlPrefix string) *Store {
	if root == "" {
		root = "."
	}
	return &Store{FS: fsys, Root: root, URLPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *Store) logf(format string, args ...any) {
	if s.Logger != nil {
		s.Logger.Printf(format, args...)
		return
	}
	log.Printf(format, args...)
}

func (s *Store) keys() ([]string, error) {
	entries, err := fs.ReadDir(s.FS, s.Root)
	if err != nil {
		return nil, fmt.Errorf("read catalog dir: %w", err)
	}
	keys := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			keys = append(keys, e.Name())
		}
	}
	return keys, nil
}

// Definitions returns one definition per property directory. Directories
// without a data file are ignored; unreadable files are logged and skipped.
func (s *Store) Definitions(ctx context.Context) ([]listing.Definition, error) {
	keys, err := s.keys()
	if err != nil {
		return nil, err
	}
	out := make([]listing.Definition, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		def, ok, err := s.definition(key)
		if err != nil {
			s.logf("[WARN] fsstore: read definition %s: %v", key, err)
			continue
		}
		if ok {
			out = append(out, def)
		}
	}
	return out, nil
}

func (s *Store) definition(key string) (listing.Definition, bool, error) {
	for _, name := range definitionFiles {
		data, err := fs.ReadFile(s.FS, path.Join(s.Root, key, name))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return listing.Definition{}, false, err
		}
		format, _ := listing.FormatForFile(name)
		return listing.Definition{Key: key, Format: format, Data: data}, true, nil
	}
	return listing.Definition{}, false, nil
}

// Assets lists every recognised file under each property's asset
// directories in lexical order. Files whose extension does not belong to
// the directory's kind are ignored.
func (s *Store) Assets(ctx context.Context) (listing.AssetPool, error) {
	keys, err := s.keys()
	if err != nil {
		return nil, err
	}
	pool := listing.AssetPool{}
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, dir := range []string{"images", "videos", "documents"} {
			kind := assetDirs[dir]
			entries, err := fs.ReadDir(s.FS, path.Join(s.Root, key, dir))
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				s.logf("[WARN] fsstore: read %s/%s: %v", key, dir, err)
				continue
			}
			for _, e := range entries {
				if e.IsDir() {
					continue
				}
				if k, ok := listing.KindForFile(e.Name()); !ok || k != kind {
					continue
				}
				pool.Add(key, kind, listing.Asset{Name: e.Name(), Locator: s.locator(key, dir, e.Name())})
			}
		}
	}
	return pool, nil
}

func (s *Store) locator(segments ...string) string {
	escaped := make([]string, len(segments))
	for i, seg := range segments {
		escaped[i] = url.PathEscape(seg)
	}
	return s.URLPrefix + "/" + strings.Join(escaped, "/")
}
