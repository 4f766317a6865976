package listing

import (
	"path"
	"strings"
)

// normalize builds a Property from a decoded record without its identifier.
// Assets are resolved against the pool scoped to key.
func normalize(key string, rec Record, pool AssetPool) Property {
	p := Property{
		Key:         key,
		Title:       rec.Title,
		Description: rec.Description,
		Beds:        rec.Beds,
		Baths:       rec.Baths,
		Categories:  normalizeCategories(rec),
		Area:        rec.Area,
		TotalLand:   rec.TotalLand,
		PlotSize:    rec.PlotSize,
		Location:    normalizeLocation(rec.Location),
		Locality:    normalizeLocality(rec.Locality),
	}
	if p.Title == "" {
		p.Title = "Property " + key
	}
	p.Price = firstNonEmpty(string(rec.Price), string(rec.Rate))
	p.Rate = firstNonEmpty(string(rec.Rate), string(rec.Price))

	images := resolveAssets(refsFromFiles(rec.Images), pool.Get(key, KindImage))
	p.Images = make([]string, 0, len(images))
	for _, m := range images {
		p.Images = append(p.Images, m.asset.Locator)
	}
	if len(p.Images) > 0 {
		p.PrimaryImage = p.Images[0]
	}

	for _, m := range resolveAssets(rec.Videos, pool.Get(key, KindVideo)) {
		p.Videos = append(p.Videos, Video{URL: m.asset.Locator, Title: m.name})
	}
	for _, m := range resolveAssets(rec.documentRefs(), pool.Get(key, KindDocument)) {
		name := m.name
		if name == "" {
			name = DisplayName(m.asset.Name)
		}
		p.Documents = append(p.Documents, Document{Name: name, URL: m.asset.Locator})
	}
	return p
}

// normalizeCategories prefers the list, then the legacy field, then buy.
// Duplicates are dropped keeping first occurrence.
func normalizeCategories(rec Record) []Category {
	raw := rec.Categories
	if len(raw) == 0 && rec.Category != "" {
		raw = []string{rec.Category}
	}
	out := make([]Category, 0, len(raw))
	seen := make(map[Category]bool, len(raw))
	for _, v := range raw {
		c, ok := ParseCategory(v)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	if len(out) == 0 {
		out = append(out, CategoryBuy)
	}
	return out
}

func normalizeLocation(raw *rawLocation) Location {
	if raw == nil {
		return Location{}
	}
	loc := Location{City: raw.City, State: raw.State, Address: raw.Address}
	if raw.Coordinates != nil {
		c := *raw.Coordinates
		loc.Coordinates = &c
	}
	return loc
}

func normalizeLocality(raw map[string]Landmark) map[Direction]Landmark {
	if len(raw) == 0 {
		return nil
	}
	out := make(map[Direction]Landmark, len(raw))
	for k, v := range raw {
		out[Direction(k)] = v
	}
	return out
}

type match struct {
	asset Asset
	name  string
}

func refsFromFiles(files []string) []MediaRef {
	if files == nil {
		return nil
	}
	refs := make([]MediaRef, 0, len(files))
	for _, f := range files {
		refs = append(refs, MediaRef{Kind: RefPath, File: f})
	}
	return refs
}

// resolveAssets matches declared refs by bare filename in declared order,
// dropping misses. With no refs, or no hits, every pooled asset is used in
// discovery order.
func resolveAssets(refs []MediaRef, pool []Asset) []match {
	if len(refs) > 0 {
		out := make([]match, 0, len(refs))
		for _, ref := range refs {
			name := baseName(ref.File)
			if name == "" {
				continue
			}
			for _, a := range pool {
				if a.Name == name {
					out = append(out, match{asset: a, name: ref.Name})
					break
				}
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	out := make([]match, 0, len(pool))
	for _, a := range pool {
		out = append(out, match{asset: a})
	}
	return out
}

func baseName(ref string) string {
	ref = strings.TrimSpace(strings.ReplaceAll(ref, "\\", "/"))
	if i := strings.IndexAny(ref, "?#"); i >= 0 {
		ref = ref[:i]
	}
	if ref == "" || strings.HasSuffix(ref, "/") {
		return ""
	}
	return path.Base(ref)
}

// DisplayName turns "floor-plan.pdf" into "floor plan".
func DisplayName(file string) string {
	name := strings.TrimSuffix(file, path.Ext(file))
	return strings.TrimSpace(strings.ReplaceAll(name, "-", " "))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
