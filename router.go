package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/go-chi/render"

	httpapi "github.com/yourorg/listing-api/http"
	"github.com/yourorg/listing-api/listing"
)

type RouterDeps struct {
	Catalog         listing.Loader
	RateLimitPerMin int
	// MediaPrefix and Media serve local asset files when set.
	MediaPrefix string
	Media       http.Handler
}

func BuildRouter(d RouterDeps) http.Handler {
	limit := d.RateLimitPerMin
	if limit <= 0 {
		limit = 120
	}
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(httprate.LimitByIP(limit, 1*time.Minute))

	if d.Media != nil && d.MediaPrefix != "" {
		r.Handle(d.MediaPrefix+"/*", d.Media)
	}

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) { render.JSON(w, r, map[string]any{"ok": true}) })
		httpapi.RegisterProperties(r, httpapi.PropertiesDeps{Catalog: d.Catalog})
	})
	return r
}
