package domain

type SortBy string

const (
	SortRecent    SortBy = "recent"
	SortPriceAsc  SortBy = "price-asc"
	SortPriceDesc SortBy = "price-desc"
	SortAreaDesc  SortBy = "area-desc"
)

// ParseSortBy maps user input to a sort key. "area" is kept as an alias of
// area-desc; anything unknown sorts by recency.
func ParseSortBy(s string) SortBy {
	switch SortBy(s) {
	case SortPriceAsc, SortPriceDesc, SortAreaDesc:
		return SortBy(s)
	case "area":
		return SortAreaDesc
	}
	return SortRecent
}

// MatchMode decides how bedroom/bathroom/garage filters compare.
type MatchMode string

const (
	MatchExact   MatchMode = "exact"
	MatchAtLeast MatchMode = "at-least"
)

const CityAny = "any"

type PriceRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

const DefaultMaxPrice = 1_000_000

type FilterOptions struct {
	SearchTerm       string       `json:"searchTerm"`
	Type             PropertyType `json:"type"`
	PriceRange       PriceRange   `json:"priceRange"`
	City             string       `json:"city"`
	Bedrooms         *int         `json:"bedrooms,omitempty"`
	Bathrooms        *int         `json:"bathrooms,omitempty"`
	Garage           *int         `json:"garage,omitempty"`
	MinArea          *float64     `json:"minArea,omitempty"`
	AcceptsExchange  bool         `json:"acceptsExchange,omitempty"`
	AcceptsFinancing bool         `json:"acceptsFinancing,omitempty"`
	SortBy           SortBy       `json:"sortBy"`
	RoomMatch        MatchMode    `json:"roomMatch"`
}

func DefaultFilters() FilterOptions {
	return FilterOptions{
		Type:       TypeAll,
		PriceRange: PriceRange{Min: 0, Max: DefaultMaxPrice},
		SortBy:     SortRecent,
		RoomMatch:  MatchExact,
	}
}

// Field is a patch slot for an optional value: untouched when Set is false,
// cleared when Set is true and Value is nil.
type Field[T any] struct {
	Set   bool
	Value *T
}

func SetTo[T any](v T) Field[T] { return Field[T]{Set: true, Value: &v} }

func Clear[T any]() Field[T] { return Field[T]{Set: true} }

func (f Field[T]) apply(dst **T) {
	if !f.Set {
		return
	}
	if f.Value == nil {
		*dst = nil
		return
	}
	v := *f.Value
	*dst = &v
}

// FilterPatch is a partial FilterOptions; nil/unset fields keep their value.
type FilterPatch struct {
	SearchTerm       *string
	Type             *PropertyType
	PriceRange       *PriceRange
	City             *string
	Bedrooms         Field[int]
	Bathrooms        Field[int]
	Garage           Field[int]
	MinArea          Field[float64]
	AcceptsExchange  *bool
	AcceptsFinancing *bool
	SortBy           *SortBy
	RoomMatch        *MatchMode
}

// Merge shallow-merges the patch into o. Values are not validated.
func (o FilterOptions) Merge(p FilterPatch) FilterOptions {
	if p.SearchTerm != nil {
		o.SearchTerm = *p.SearchTerm
	}
	if p.Type != nil {
		o.Type = *p.Type
	}
	if p.PriceRange != nil {
		o.PriceRange = *p.PriceRange
	}
	if p.City != nil {
		o.City = *p.City
	}
	p.Bedrooms.apply(&o.Bedrooms)
	p.Bathrooms.apply(&o.Bathrooms)
	p.Garage.apply(&o.Garage)
	p.MinArea.apply(&o.MinArea)
	if p.AcceptsExchange != nil {
		o.AcceptsExchange = *p.AcceptsExchange
	}
	if p.AcceptsFinancing != nil {
		o.AcceptsFinancing = *p.AcceptsFinancing
	}
	if p.SortBy != nil {
		o.SortBy = *p.SortBy
	}
	if p.RoomMatch != nil {
		o.RoomMatch = *p.RoomMatch
	}
	return o
}
