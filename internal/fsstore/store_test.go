package fsstore

import (
	"bytes"
	"context"
	"log"
	"reflect"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/yourorg/listing-api/listing"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"properties/_template/data.json":            {Data: []byte(`{"id": 0, "title": "TEMPLATE"}`)},
		"properties/villa/data.json":                {Data: []byte(`{"id": 2, "title": "Villa", "images": ["b.jpg", "a.jpg"]}`)},
		"properties/villa/images/a.jpg":             {Data: []byte("a")},
		"properties/villa/images/b.jpg":             {Data: []byte("b")},
		"properties/villa/images/c.jpg":             {Data: []byte("c")},
		"properties/villa/images/notes.txt":         {Data: []byte("ignored")},
		"properties/villa/videos/tour.mp4":          {Data: []byte("v")},
		"properties/villa/documents/floor-plan.pdf": {Data: []byte("d")},
		"properties/farm/data.yaml":                 {Data: []byte("id: 1\ntitle: Farm\ncategories: [land]\n")},
		"properties/farm/images/plot view.jpg":      {Data: []byte("p")},
		"properties/empty/readme.md":                {Data: []byte("no definition here")},
		"properties/loose-file.json":                {Data: []byte("{}")},
	}
}

func TestDefinitions(t *testing.T) {
	s := New(testFS(), "properties", "/media")
	defs, err := s.Definitions(context.Background())
	if err != nil {
		t.Fatalf("definitions: %v", err)
	}
	var keys []string
	for _, d := range defs {
		keys = append(keys, d.Key+":"+string(d.Format))
	}
	want := []string{"_template:json", "farm:yaml", "villa:json"}
	if !reflect.DeepEqual(keys, want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
}

func TestAssets(t *testing.T) {
	s := New(testFS(), "properties", "https://cdn.example.com/catalog/")
	pool, err := s.Assets(context.Background())
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	var images []string
	for _, a := range pool.Get("villa", listing.KindImage) {
		images = append(images, a.Locator)
	}
	want := []string{
		"https://cdn.example.com/catalog/villa/images/a.jpg",
		"https://cdn.example.com/catalog/villa/images/b.jpg",
		"https://cdn.example.com/catalog/villa/images/c.jpg",
	}
	if !reflect.DeepEqual(images, want) {
		t.Fatalf("images = %v", images)
	}
	farm := pool.Get("farm", listing.KindImage)
	if len(farm) != 1 || farm[0].Name != "plot view.jpg" || farm[0].Locator != "https://cdn.example.com/catalog/farm/images/plot%20view.jpg" {
		t.Fatalf("farm images = %+v", farm)
	}
	if docs := pool.Get("villa", listing.KindDocument); len(docs) != 1 {
		t.Fatalf("documents = %+v", docs)
	}
}

func TestMissingRoot(t *testing.T) {
	s := New(fstest.MapFS{}, "properties", "")
	if _, err := s.Definitions(context.Background()); err == nil {
		t.Fatal("expected error for missing catalog dir")
	}
}

func TestRepositoryOverDirectory(t *testing.T) {
	var buf bytes.Buffer
	s := New(testFS(), "properties", "/media")
	s.Logger = log.New(&buf, "", 0)
	repo := listing.NewRepository(s, s, listing.WithLogger(log.New(&buf, "", 0)))

	props, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(props) != 2 || props[0].Key != "farm" || props[1].Key != "villa" {
		t.Fatalf("unexpected props %+v", props)
	}
	villa := props[1]
	if !reflect.DeepEqual(villa.Images, []string{"/media/villa/images/b.jpg", "/media/villa/images/a.jpg"}) {
		t.Fatalf("villa images = %v", villa.Images)
	}
	if len(villa.Documents) != 1 || villa.Documents[0].Name != "floor plan" {
		t.Fatalf("villa documents = %+v", villa.Documents)
	}
	if strings.Contains(buf.String(), "TEMPLATE") {
		t.Fatalf("template leaked: %s", buf.String())
	}
}
