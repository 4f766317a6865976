package listing

import (
	"math"

	"github.com/yourorg/listing-api/internal/canon"
)

// DefaultRadiusKm is the search radius used when a location query carries
// coordinates but no radius.
const DefaultRadiusKm = 50.0

// FilterByCategory keeps properties listed under category, preserving order.
func FilterByCategory(props []Property, category Category) []Property {
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if p.HasCategory(category) {
			out = append(out, p)
		}
	}
	return out
}

// LocationQuery is a free-text city/state search, optionally anchored at a
// point.
type LocationQuery struct {
	City        string
	State       string
	Coordinates *Coordinates
	RadiusKm    float64
}

// ParseLocationQuery reads "City, State" text into a query.
func ParseLocationQuery(text string) *LocationQuery {
	city, state := canon.ParseQuery(text)
	if city == "" && state == "" {
		return nil
	}
	return &LocationQuery{City: city, State: state}
}

func (q *LocationQuery) empty() bool {
	return q == nil || (canon.Fold(q.City) == "" && canon.Fold(q.State) == "" && q.Coordinates == nil)
}

// Matches applies the text rule: city contains the city term OR state
// contains the state term. When only one term is given it is tried against
// both fields. With coordinates on both sides the rule is distance within
// the radius instead.
func (q *LocationQuery) Matches(p Property) bool {
	if q.empty() {
		return true
	}
	if q.Coordinates != nil && p.Location.Coordinates != nil {
		radius := q.RadiusKm
		if radius <= 0 {
			radius = DefaultRadiusKm
		}
		return DistanceKm(*q.Coordinates, *p.Location.Coordinates) <= radius
	}
	city, state := q.City, q.State
	if canon.Fold(city) == "" {
		city = state
	}
	if canon.Fold(state) == "" {
		state = city
	}
	return canon.Contains(p.Location.City, city) || canon.Contains(p.Location.State, state)
}

// FilterByLocation keeps properties matching q. A nil or blank query
// returns props unchanged.
func FilterByLocation(props []Property, q *LocationQuery) []Property {
	if q.empty() {
		return props
	}
	out := make([]Property, 0, len(props))
	for _, p := range props {
		if q.Matches(p) {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the first n properties of the sorted collection.
func Featured(props []Property, n int) []Property {
	if n < 0 {
		n = 0
	}
	if n > len(props) {
		n = len(props)
	}
	return props[:n]
}

const earthRadiusKm = 6371.0

// DistanceKm is the haversine great-circle distance between two points.
func DistanceKm(a, b Coordinates) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(b.Lat - a.Lat)
	dLng := rad(b.Lng - a.Lng)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(a.Lat))*math.Cos(rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
