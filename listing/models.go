package listing

import "encoding/json"

type Category string

const (
	CategoryBuy  Category = "buy"
	CategoryRent Category = "rent"
	CategoryLand Category = "land"
)

// ParseCategory accepts the lower-case wire value of a category.
func ParseCategory(s string) (Category, bool) {
	switch c := Category(s); c {
	case CategoryBuy, CategoryRent, CategoryLand:
		return c, true
	}
	return "", false
}

type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// Landmark is a nearby point of interest, e.g. {"place": "Airport", "distance": "12 km"}.
type Landmark struct {
	Place    string `json:"place" yaml:"place"`
	Distance string `json:"distance" yaml:"distance"`
}

type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" yaml:"lng" validate:"gte=-180,lte=180"`
}

type Location struct {
	City        string       `json:"city"`
	State       string       `json:"state"`
	Address     string       `json:"address,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
}

type Video struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

type Document struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Property is a fully resolved catalog entry. Every media URL it carries
// points at an asset that exists in the pool it was resolved against.
type Property struct {
	ID           int                    `json:"id"`
	Key          string                 `json:"key"`
	Title        string                 `json:"title"`
	Description  string                 `json:"description"`
	Price        string                 `json:"price"`
	Rate         string                 `json:"rate"`
	Beds         int                    `json:"beds"`
	Baths        int                    `json:"baths"`
	Categories   []Category             `json:"categories"`
	Area         string                 `json:"area,omitempty"`
	TotalLand    string                 `json:"totalLand,omitempty"`
	PlotSize     string                 `json:"plotSize,omitempty"`
	Locality     map[Direction]Landmark `json:"locality,omitempty"`
	Location     Location               `json:"location"`
	Images       []string               `json:"images"`
	PrimaryImage string                 `json:"image"`
	Videos       []Video                `json:"videos,omitempty"`
	Documents    []Document             `json:"documents,omitempty"`
}

// Category is the legacy single-category view of Categories.
func (p Property) Category() Category {
	if len(p.Categories) == 0 {
		return ""
	}
	return p.Categories[0]
}

func (p Property) HasCategory(c Category) bool {
	for _, have := range p.Categories {
		if have == c {
			return true
		}
	}
	return false
}

// IsLand reports whether the property should be shown with land descriptors
// instead of beds and baths.
func (p Property) IsLand() bool {
	return p.Area != "" || p.TotalLand != "" || p.PlotSize != "" || p.HasCategory(CategoryLand)
}

func (p Property) MarshalJSON() ([]byte, error) {
	type plain Property
	return json.Marshal(struct {
		plain
		Category Category `json:"category"`
		Land     bool     `json:"isLand"`
	}{plain(p), p.Category(), p.IsLand()})
}
