package domain

import (
	"slices"
	"time"
)

type PropertyType string

const (
	TypeSale   PropertyType = "sale"
	TypeRental PropertyType = "rental"
	TypeLand   PropertyType = "land"
	// TypeAll only appears in filters.
	TypeAll PropertyType = "all"
)

func (t PropertyType) Valid() bool {
	switch t {
	case TypeSale, TypeRental, TypeLand:
		return true
	}
	return false
}

type PropertyStatus string

const (
	StatusAvailable PropertyStatus = "available"
	StatusSold      PropertyStatus = "sold"
	StatusRented    PropertyStatus = "rented"
)

func (s PropertyStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusSold, StatusRented:
		return true
	}
	return false
}

const (
	MaxAmenities = 15
	MaxImages    = 15
	MaxFeatured  = 6
	RecentCount  = 5
)

// Features holds the measurable attributes of a listing. Optional counts are
// pointers: a nil Garage means "not recorded", which is not the same as 0.
type Features struct {
	Area      float64  `json:"area"`
	Bedrooms  *int     `json:"bedrooms,omitempty"`
	Bathrooms *int     `json:"bathrooms,omitempty"`
	Garage    *int     `json:"garage,omitempty"`
	BuiltArea *float64 `json:"builtArea,omitempty"`
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Property struct {
	ID               string         `json:"id"`
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Type             PropertyType   `json:"type"`
	Status           PropertyStatus `json:"status"`
	Price            float64        `json:"price"`
	City             string         `json:"city"`
	Neighborhood     string         `json:"neighborhood"`
	Address          string         `json:"address,omitempty"`
	Features         Features       `json:"features"`
	Amenities        []string       `json:"amenities"`
	Images           []string       `json:"images"`
	Coordinates      *Coordinates   `json:"coordinates,omitempty"`
	AcceptsExchange  bool           `json:"acceptsExchange"`
	AcceptsFinancing bool           `json:"acceptsFinancing"`
	Highlighted      bool           `json:"highlighted"`
	CreatedAt        time.Time      `json:"createdAt"`
}

// Cover returns the first image, or "" for a listing without images.
func (p Property) Cover() string {
	if len(p.Images) == 0 {
		return ""
	}
	return p.Images[0]
}

func (p Property) Available() bool { return p.Status == StatusAvailable }

// Clone returns a copy that shares no slices or pointers with p.
func (p Property) Clone() Property {
	c := p
	c.Amenities = slices.Clone(p.Amenities)
	c.Images = slices.Clone(p.Images)
	c.Features.Bedrooms = cloneInt(p.Features.Bedrooms)
	c.Features.Bathrooms = cloneInt(p.Features.Bathrooms)
	c.Features.Garage = cloneInt(p.Features.Garage)
	if p.Features.BuiltArea != nil {
		v := *p.Features.BuiltArea
		c.Features.BuiltArea = &v
	}
	if p.Coordinates != nil {
		v := *p.Coordinates
		c.Coordinates = &v
	}
	return c
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type Stats struct {
	Total       int `json:"total"`
	Available   int `json:"available"`
	Unavailable int `json:"unavailable"`
}
