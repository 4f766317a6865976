package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/yourorg/listing-api/internal/fsstore"
	"github.com/yourorg/listing-api/listing"
)

func TestRouterServesCatalogAndMedia(t *testing.T) {
	fsys := fstest.MapFS{
		"villa/data.json":        {Data: []byte(`{"id": 7, "title": "Villa", "images": ["front.jpg"]}`)},
		"villa/images/front.jpg": {Data: []byte("jpeg")},
	}
	files := fsstore.New(fsys, ".", "/media")
	h := BuildRouter(RouterDeps{
		Catalog:     listing.NewRepository(files, files),
		MediaPrefix: files.URLPrefix,
		Media:       files.MediaHandler(),
	})

	get := func(target string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil).WithContext(context.Background()))
		return rec
	}

	if rec := get("/health"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"ok":true`) {
		t.Fatalf("health: %d %s", rec.Code, rec.Body.String())
	}
	rec := get("/properties/7")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"image":"/media/villa/images/front.jpg"`) {
		t.Fatalf("detail: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type %q", ct)
	}
	if rec := get("/media/villa/images/front.jpg"); rec.Code != http.StatusOK || rec.Body.String() != "jpeg" {
		t.Fatalf("media: %d %q", rec.Code, rec.Body.String())
	}
	if rec := get("/media/villa/data.json"); rec.Code != http.StatusNotFound {
		t.Fatalf("definition file exposed: %d", rec.Code)
	}
}
