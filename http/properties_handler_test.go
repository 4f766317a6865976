package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/yourorg/listing-api/listing"
)

type staticCatalog struct {
	props []listing.Property
	err   error
}

func (c staticCatalog) LoadAll(context.Context) ([]listing.Property, error) { return c.props, c.err }

func (c staticCatalog) LoadByID(_ context.Context, id int) (listing.Property, bool, error) {
	if c.err != nil {
		return listing.Property{}, false, c.err
	}
	p, ok := listing.FindByID(c.props, id)
	return p, ok, nil
}

func catalogProps() []listing.Property {
	return []listing.Property{
		{ID: 1, Title: "Sea View Flat", Categories: []listing.Category{listing.CategoryBuy}, Images: []string{},
			Location: listing.Location{City: "Mumbai", State: "Maharashtra", Coordinates: &listing.Coordinates{Lat: 19.0596, Lng: 72.8295}}},
		{ID: 2, Title: "Farm Plot", Categories: []listing.Category{listing.CategoryLand, listing.CategoryBuy}, Images: []string{},
			Location: listing.Location{City: "Nashik", State: "Maharashtra"},
			Documents: []listing.Document{{Name: "7-12 extract", URL: "/p/farm/documents/7-12-extract.pdf"}}},
		{ID: 3, Title: "Studio", Categories: []listing.Category{listing.CategoryRent}, Images: []string{},
			Location: listing.Location{City: "Delhi", State: "Delhi"}},
		{ID: 4, Title: "Bungalow", Categories: []listing.Category{listing.CategoryBuy}, Images: []string{},
			Location: listing.Location{City: "Pune", State: "Maharashtra"}},
	}
}

func newTestRouter(c listing.Loader) http.Handler {
	r := chi.NewRouter()
	RegisterProperties(r, PropertiesDeps{Catalog: c})
	return r
}

type response struct {
	OK         bool               `json:"ok"`
	Count      int                `json:"count"`
	Properties []listing.Property `json:"properties"`
	Property   listing.Property   `json:"property"`
	Documents  []listing.Document `json:"documents"`
	Error      string             `json:"error"`
}

func do(t *testing.T, h http.Handler, target string) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	var body response
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("%s: decode %q: %v", target, rec.Body.String(), err)
	}
	return rec.Code, body
}

func propIDs(props []listing.Property) []int {
	out := []int{}
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func TestListProperties(t *testing.T) {
	h := newTestRouter(staticCatalog{props: catalogProps()})
	tests := []struct {
		target string
		want   []int
	}{
		{"/properties", []int{1, 2, 3, 4}},
		{"/properties?category=buy", []int{1, 2, 4}},
		{"/properties?category=land", []int{2}},
		{"/properties?category=buy&state=maharashtra", []int{1, 2, 4}},
		{"/properties?city=pune", []int{4}},
		{"/properties?q=Delhi", []int{3}},
		{"/properties?q=Nashik,%20Goa", []int{2}},
		{"/properties?lat=19.07&lng=72.88&radius_km=10", []int{1}},
		{"/properties?city=Pune&lat=19.07&lng=72.88&radius_km=10", []int{1, 4}},
	}
	for _, tt := range tests {
		code, body := do(t, h, tt.target)
		if code != http.StatusOK || !body.OK {
			t.Fatalf("%s: status %d", tt.target, code)
		}
		if got := propIDs(body.Properties); !equalInts(got, tt.want) || body.Count != len(tt.want) {
			t.Fatalf("%s: got %v (count %d), want %v", tt.target, got, body.Count, tt.want)
		}
	}
}

func TestListPropertiesRejectsBadQuery(t *testing.T) {
	h := newTestRouter(staticCatalog{props: catalogProps()})
	for _, target := range []string{
		"/properties?category=lease",
		"/properties?lat=91&lng=0",
		"/properties?lat=abc&lng=0",
		"/properties?lat=10",
		"/properties?lat=10&lng=10&radius_km=-1",
	} {
		code, body := do(t, h, target)
		if code != http.StatusBadRequest || body.Error != "invalid_query" {
			t.Fatalf("%s: got %d %q", target, code, body.Error)
		}
	}
}

func TestGetProperty(t *testing.T) {
	h := newTestRouter(staticCatalog{props: catalogProps()})

	code, body := do(t, h, "/properties/2")
	if code != http.StatusOK || body.Property.Title != "Farm Plot" {
		t.Fatalf("got %d %+v", code, body.Property)
	}
	if code, body := do(t, h, "/properties/99"); code != http.StatusNotFound || body.Error != "not_found" {
		t.Fatalf("missing: got %d %q", code, body.Error)
	}
	if code, body := do(t, h, "/properties/abc"); code != http.StatusBadRequest || body.Error != "invalid_id" {
		t.Fatalf("non-numeric: got %d %q", code, body.Error)
	}
}

func TestPropertyDocuments(t *testing.T) {
	h := newTestRouter(staticCatalog{props: catalogProps()})
	_, body := do(t, h, "/properties/2/documents")
	if body.Count != 1 || body.Documents[0].Name != "7-12 extract" {
		t.Fatalf("got %+v", body)
	}
	_, body = do(t, h, "/properties/1/documents")
	if body.Count != 0 || body.Documents == nil {
		t.Fatalf("expected empty list, got %+v", body)
	}
}

func TestFeatured(t *testing.T) {
	h := newTestRouter(staticCatalog{props: catalogProps()})
	if _, body := do(t, h, "/featured"); !equalInts(propIDs(body.Properties), []int{1, 2, 3}) {
		t.Fatalf("default featured = %v", propIDs(body.Properties))
	}
	if _, body := do(t, h, "/featured?limit=1"); !equalInts(propIDs(body.Properties), []int{1}) {
		t.Fatalf("limit=1 = %v", propIDs(body.Properties))
	}
	if code, _ := do(t, h, "/featured?limit=-2"); code != http.StatusBadRequest {
		t.Fatalf("negative limit status %d", code)
	}
}

func TestCatalogUnavailable(t *testing.T) {
	h := newTestRouter(staticCatalog{err: errors.New("catalog dir missing")})
	for _, target := range []string{"/properties", "/properties/1", "/featured"} {
		if code, body := do(t, h, target); code != http.StatusBadGateway || body.Error != "catalog_unavailable" {
			t.Fatalf("%s: got %d %q", target, code, body.Error)
		}
	}
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
