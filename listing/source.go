package listing

import (
	"context"
	"path"
	"strings"
)

// AssetKind groups the files that belong to a property.
type AssetKind string

const (
	KindImage    AssetKind = "image"
	KindVideo    AssetKind = "video"
	KindDocument AssetKind = "document"
)

var assetExtensions = map[AssetKind][]string{
	KindImage:    {".jpg", ".jpeg", ".png", ".webp"},
	KindVideo:    {".mp4", ".webm", ".mov"},
	KindDocument: {".pdf"},
}

// KindForFile classifies a filename by extension, case-insensitively.
func KindForFile(name string) (AssetKind, bool) {
	ext := strings.ToLower(path.Ext(name))
	for kind, exts := range assetExtensions {
		for _, e := range exts {
			if e == ext {
				return kind, true
			}
		}
	}
	return "", false
}

// Asset is one discoverable file. Name is the bare filename used for
// matching; Locator is what consumers receive (URL or path).
type Asset struct {
	Name    string `json:"name"`
	Locator string `json:"locator"`
}

// AssetPool maps property key -> kind -> assets in discovery order.
type AssetPool map[string]map[AssetKind][]Asset

func (p AssetPool) Add(key string, kind AssetKind, a Asset) {
	kinds, ok := p[key]
	if !ok {
		kinds = make(map[AssetKind][]Asset)
		p[key] = kinds
	}
	kinds[kind] = append(kinds[kind], a)
}

func (p AssetPool) Get(key string, kind AssetKind) []Asset {
	if p == nil {
		return nil
	}
	return p[key][kind]
}

// Format is the encoding of a raw property definition.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatForFile maps data.json / data.yaml / data.yml to a Format.
func FormatForFile(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Definition is one raw property definition as held by a backing store.
// Key is the directory (or row) key the assets are grouped under.
type Definition struct {
	Key    string
	Format Format
	Data   []byte
}

// IsTemplateKey reports whether a key follows the placeholder convention
// (e.g. "_template") and must never be listed.
func IsTemplateKey(key string) bool {
	return strings.HasPrefix(key, "_")
}

type DefinitionSource interface {
	Definitions(ctx context.Context) ([]Definition, error)
}

type AssetSource interface {
	Assets(ctx context.Context) (AssetPool, error)
}

// Loader is the read surface shared by Repository and its caching wrappers.
type Loader interface {
	LoadAll(ctx context.Context) ([]Property, error)
	LoadByID(ctx context.Context, id int) (Property, bool, error)
}
