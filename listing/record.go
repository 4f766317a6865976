package listing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// ErrMalformed marks a definition that cannot be turned into a Property.
var ErrMalformed = errors.New("malformed property definition")

var validate = validator.New()

// stringNumber accepts string or number and stores it as string
type stringNumber string

func (s *stringNumber) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = stringNumber(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return err
	}
	*s = stringNumber(num.String())
	return nil
}

func (s *stringNumber) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var v interface{}
	if err := unmarshal(&v); err != nil {
		return err
	}
	switch t := v.(type) {
	case nil:
		*s = ""
	case string:
		*s = stringNumber(t)
	case int, int64, uint64, float64:
		*s = stringNumber(fmt.Sprint(t))
	default:
		return fmt.Errorf("expected string or number, got %T", v)
	}
	return nil
}

// Int parses the value as an integer identifier. Integral floats ("7.0")
// are accepted.
func (s stringNumber) Int() (int, bool) {
	v := strings.TrimSpace(string(s))
	if v == "" {
		return 0, false
	}
	if i, err := strconv.Atoi(v); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

type RefKind int

const (
	// RefPath is a bare filename entry: "tour.mp4".
	RefPath RefKind = iota
	// RefNamed is an object entry: {"file": "tour.mp4", "name": "Walkthrough"}.
	RefNamed
)

// MediaRef is one entry of a definition's videos or documents list.
type MediaRef struct {
	Kind RefKind
	File string
	Name string
}

type namedRef struct {
	File  string `json:"file" yaml:"file"`
	URL   string `json:"url" yaml:"url"`
	Path  string `json:"path" yaml:"path"`
	Name  string `json:"name" yaml:"name"`
	Title string `json:"title" yaml:"title"`
}

func (n namedRef) ref() MediaRef {
	file := n.File
	if file == "" {
		file = n.URL
	}
	if file == "" {
		file = n.Path
	}
	name := n.Name
	if name == "" {
		name = n.Title
	}
	return MediaRef{Kind: RefNamed, File: file, Name: name}
}

func (m *MediaRef) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var file string
		if err := json.Unmarshal(b, &file); err != nil {
			return err
		}
		*m = MediaRef{Kind: RefPath, File: file}
		return nil
	}
	var n namedRef
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*m = n.ref()
	return nil
}

func (m *MediaRef) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var file string
	if err := unmarshal(&file); err == nil {
		*m = MediaRef{Kind: RefPath, File: file}
		return nil
	}
	var n namedRef
	if err := unmarshal(&n); err != nil {
		return err
	}
	*m = n.ref()
	return nil
}

type rawLocation struct {
	City        string       `json:"city" yaml:"city"`
	State       string       `json:"state" yaml:"state"`
	Address     string       `json:"address" yaml:"address"`
	Coordinates *Coordinates `json:"coordinates" yaml:"coordinates" validate:"omitempty"`
}

// Record is the raw, externally supplied shape of a property definition.
// Unknown fields are ignored.
type Record struct {
	ID          stringNumber        `json:"id" yaml:"id"`
	Title       string              `json:"title" yaml:"title"`
	Description string              `json:"description" yaml:"description"`
	Price       stringNumber        `json:"price" yaml:"price"`
	Rate        stringNumber        `json:"rate" yaml:"rate"`
	Categories  []string            `json:"categories" yaml:"categories" validate:"omitempty,dive,oneof=buy rent land"`
	Category    string              `json:"category" yaml:"category" validate:"omitempty,oneof=buy rent land"`
	Area        string              `json:"area" yaml:"area"`
	TotalLand   string              `json:"totalLand" yaml:"totalLand"`
	PlotSize    string              `json:"plotSize" yaml:"plotSize"`
	Beds        int                 `json:"beds" yaml:"beds" validate:"gte=0"`
	Baths       int                 `json:"baths" yaml:"baths" validate:"gte=0"`
	Locality    map[string]Landmark `json:"locality" yaml:"locality" validate:"omitempty,dive,keys,oneof=north south east west,endkeys"`
	Location    *rawLocation        `json:"location" yaml:"location" validate:"omitempty"`
	Images      []string            `json:"images" yaml:"images"`
	Videos      []MediaRef          `json:"videos" yaml:"videos"`
	Documents   []MediaRef          `json:"documents" yaml:"documents"`
	PDFs        []MediaRef          `json:"pdfs" yaml:"pdfs"`
	Template    bool                `json:"template" yaml:"template"`
}

// DecodeRecord parses and validates a raw definition. Any failure wraps
// ErrMalformed.
func DecodeRecord(data []byte, format Format) (Record, error) {
	var rec Record
	var err error
	switch format {
	case FormatJSON, "":
		err = json.Unmarshal(data, &rec)
	case FormatYAML:
		err = yaml.Unmarshal(data, &rec)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := validate.Struct(rec); err != nil {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return rec, nil
}

// documentRefs merges the current and legacy document lists.
func (r Record) documentRefs() []MediaRef {
	if len(r.Documents) > 0 {
		return r.Documents
	}
	return r.PDFs
}
