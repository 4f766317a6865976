package cdn

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yourorg/listing-api/listing"
)

func TestAssetsFromManifest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/manifest.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"properties":{
			"villa":{"images":["b.jpg","a photo.jpg"],"documents":["https://files.example.com/deed.pdf"]},
			"plot":{"videos":["tour.mp4"," "]}
		}}`))
	}))
	defer srv.Close()

	pool, err := NewClient(srv.URL + "/").Assets(context.Background())
	if err != nil {
		t.Fatalf("assets: %v", err)
	}
	imgs := pool.Get("villa", listing.KindImage)
	if len(imgs) != 2 || imgs[0].Name != "b.jpg" || imgs[1].Locator != srv.URL+"/villa/images/a%20photo.jpg" {
		t.Fatalf("images = %+v", imgs)
	}
	docs := pool.Get("villa", listing.KindDocument)
	if len(docs) != 1 || docs[0].Name != "deed.pdf" || docs[0].Locator != "https://files.example.com/deed.pdf" {
		t.Fatalf("documents = %+v", docs)
	}
	if vids := pool.Get("plot", listing.KindVideo); len(vids) != 1 || vids[0].Locator != srv.URL+"/plot/videos/tour.mp4" {
		t.Fatalf("videos = %+v", vids)
	}
}

func TestAssetsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Assets(context.Background())
	if err == nil || !strings.Contains(err.Error(), "cdn error 404") {
		t.Fatalf("err = %v", err)
	}
}

func TestReadAllLimit(t *testing.T) {
	if _, err := ioReadAllLimit(strings.NewReader("12345"), 4); !errors.Is(err, ErrManifestTooLarge) {
		t.Fatalf("err = %v", err)
	}
	b, err := ioReadAllLimit(strings.NewReader("1234"), 4)
	if err != nil || string(b) != "1234" {
		t.Fatalf("got %q, %v", b, err)
	}
}
