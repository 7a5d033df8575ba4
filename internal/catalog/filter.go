package catalog

import (
	"cmp"
	"slices"
	"strings"

	"brokerage/internal/domain"
)

// Filter returns the listings that pass every predicate in opts, ordered by
// opts.SortBy. The sort is stable, so equal keys keep their input order.
// The input slice is never modified.
func Filter(props []domain.Property, opts domain.FilterOptions) []domain.Property {
	out := make([]domain.Property, 0, len(props))
	for _, p := range props {
		if matches(p, opts) {
			out = append(out, p)
		}
	}
	slices.SortStableFunc(out, comparator(opts.SortBy))
	return out
}

func matches(p domain.Property, o domain.FilterOptions) bool {
	if o.SearchTerm != "" {
		q := strings.ToLower(o.SearchTerm)
		if !strings.Contains(strings.ToLower(p.Title), q) &&
			!strings.Contains(strings.ToLower(p.City), q) &&
			!strings.Contains(strings.ToLower(p.Neighborhood), q) {
			return false
		}
	}
	if o.Type != "" && o.Type != domain.TypeAll && p.Type != o.Type {
		return false
	}
	if p.Price < o.PriceRange.Min || p.Price > o.PriceRange.Max {
		return false
	}
	if o.City != "" && o.City != domain.CityAny && p.City != o.City {
		return false
	}
	if !roomMatch(p.Features.Bedrooms, o.Bedrooms, o.RoomMatch) ||
		!roomMatch(p.Features.Bathrooms, o.Bathrooms, o.RoomMatch) ||
		!roomMatch(p.Features.Garage, o.Garage, o.RoomMatch) {
		return false
	}
	if o.MinArea != nil && p.Features.Area < *o.MinArea {
		return false
	}
	if o.AcceptsExchange && !p.AcceptsExchange {
		return false
	}
	if o.AcceptsFinancing && !p.AcceptsFinancing {
		return false
	}
	return true
}

// roomMatch treats an unrecorded value as never matching a set filter.
func roomMatch(have, want *int, mode domain.MatchMode) bool {
	if want == nil {
		return true
	}
	if have == nil {
		return false
	}
	if mode == domain.MatchAtLeast {
		return *have >= *want
	}
	return *have == *want
}

func comparator(by domain.SortBy) func(a, b domain.Property) int {
	switch by {
	case domain.SortPriceAsc:
		return func(a, b domain.Property) int { return cmp.Compare(a.Price, b.Price) }
	case domain.SortPriceDesc:
		return func(a, b domain.Property) int { return cmp.Compare(b.Price, a.Price) }
	case domain.SortAreaDesc, "area":
		return func(a, b domain.Property) int { return cmp.Compare(b.Features.Area, a.Features.Area) }
	default:
		return func(a, b domain.Property) int { return b.CreatedAt.Compare(a.CreatedAt) }
	}
}

// Cities lists the distinct cities in first-seen order.
func Cities(props []domain.Property) []string {
	seen := make(map[string]bool, len(props))
	var out []string
	for _, p := range props {
		if p.City == "" || seen[p.City] {
			continue
		}
		seen[p.City] = true
		out = append(out, p.City)
	}
	return out
}

// Featured returns up to MaxFeatured highlighted, available listings in collection order.
func Featured(props []domain.Property) []domain.Property {
	var out []domain.Property
	for _, p := range props {
		if p.Highlighted && p.Available() {
			out = append(out, p)
			if len(out) == domain.MaxFeatured {
				break
			}
		}
	}
	return out
}

func Summarize(props []domain.Property) domain.Stats {
	s := domain.Stats{Total: len(props)}
	for _, p := range props {
		if p.Available() {
			s.Available++
		}
	}
	s.Unavailable = s.Total - s.Available
	return s
}
