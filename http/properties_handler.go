package httpapi

import (
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/yourorg/listing-api/listing"
)

const defaultFeatured = 3

var validate = validator.New()

type PropertiesDeps struct {
	Catalog listing.Loader
}

// PropertiesQuery is the query string of GET /properties. Q is "City, State"
// free text and takes precedence over City and State.
type PropertiesQuery struct {
	Category string   `validate:"omitempty,oneof=buy rent land"`
	City     string   `validate:"max=100"`
	State    string   `validate:"max=100"`
	Q        string   `validate:"max=200"`
	Lat      *float64 `validate:"required_with=Lng,omitempty,gte=-90,lte=90"`
	Lng      *float64 `validate:"required_with=Lat,omitempty,gte=-180,lte=180"`
	RadiusKm *float64 `validate:"omitempty,gt=0,lte=20000"`
}

func (q PropertiesQuery) location() *listing.LocationQuery {
	var loc *listing.LocationQuery
	if q.Q != "" {
		loc = listing.ParseLocationQuery(q.Q)
	} else if q.City != "" || q.State != "" {
		loc = &listing.LocationQuery{City: q.City, State: q.State}
	}
	if q.Lat != nil && q.Lng != nil {
		if loc == nil {
			loc = &listing.LocationQuery{}
		}
		loc.Coordinates = &listing.Coordinates{Lat: *q.Lat, Lng: *q.Lng}
		if q.RadiusKm != nil {
			loc.RadiusKm = *q.RadiusKm
		}
	}
	return loc
}

func RegisterProperties(r chi.Router, d PropertiesDeps) {
	r.Get("/properties", func(w http.ResponseWriter, req *http.Request) {
		query, err := parsePropertiesQuery(req)
		if err != nil {
			writeError(w, req, http.StatusBadRequest, "invalid_query", err.Error())
			return
		}
		props, err := d.Catalog.LoadAll(req.Context())
		if err != nil {
			catalogUnavailable(w, req, err)
			return
		}
		if query.Category != "" {
			props = listing.FilterByCategory(props, listing.Category(query.Category))
		}
		props = listing.FilterByLocation(props, query.location())
		render.JSON(w, req, map[string]any{"ok": true, "count": len(props), "properties": props})
	})

	r.Get("/properties/{id}", func(w http.ResponseWriter, req *http.Request) {
		p, ok := loadProperty(w, req, d)
		if !ok {
			return
		}
		render.JSON(w, req, map[string]any{"ok": true, "property": p})
	})

	r.Get("/properties/{id}/documents", func(w http.ResponseWriter, req *http.Request) {
		p, ok := loadProperty(w, req, d)
		if !ok {
			return
		}
		docs := p.Documents
		if docs == nil {
			docs = []listing.Document{}
		}
		render.JSON(w, req, map[string]any{"ok": true, "count": len(docs), "documents": docs})
	})

	r.Get("/featured", func(w http.ResponseWriter, req *http.Request) {
		limit := defaultFeatured
		if v := req.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || validate.Var(n, "gte=0,lte=100") != nil {
				writeError(w, req, http.StatusBadRequest, "invalid_limit", "limit must be an integer between 0 and 100")
				return
			}
			limit = n
		}
		props, err := d.Catalog.LoadAll(req.Context())
		if err != nil {
			catalogUnavailable(w, req, err)
			return
		}
		featured := listing.Featured(props, limit)
		render.JSON(w, req, map[string]any{"ok": true, "count": len(featured), "properties": featured})
	})
}

func parsePropertiesQuery(req *http.Request) (PropertiesQuery, error) {
	q := req.URL.Query()
	out := PropertiesQuery{
		Category: q.Get("category"),
		City:     q.Get("city"),
		State:    q.Get("state"),
		Q:        q.Get("q"),
	}
	for name, dst := range map[string]**float64{"lat": &out.Lat, "lng": &out.Lng, "radius_km": &out.RadiusKm} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return out, &strconv.NumError{Func: name, Num: v, Err: strconv.ErrSyntax}
		}
		*dst = &f
	}
	if err := validate.Struct(out); err != nil {
		return out, err
	}
	return out, nil
}

func loadProperty(w http.ResponseWriter, req *http.Request, d PropertiesDeps) (listing.Property, bool) {
	raw := chi.URLParam(req, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, req, http.StatusBadRequest, "invalid_id", "id must be an integer")
		return listing.Property{}, false
	}
	p, found, err := d.Catalog.LoadByID(req.Context(), id)
	if err != nil {
		catalogUnavailable(w, req, err)
		return listing.Property{}, false
	}
	if !found {
		writeError(w, req, http.StatusNotFound, "not_found", "no property with id "+raw)
		return listing.Property{}, false
	}
	return p, true
}

func catalogUnavailable(w http.ResponseWriter, req *http.Request, err error) {
	log.Printf("[WARN] catalog load failed for %s: %v", req.URL.Path, err)
	writeError(w, req, http.StatusBadGateway, "catalog_unavailable", err.Error())
}

func writeError(w http.ResponseWriter, req *http.Request, status int, code, detail string) {
	render.Status(req, status)
	render.JSON(w, req, map[string]any{"error": code, "detail": detail})
}
