package catalog

import (
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"brokerage/internal/domain"
)

func ids(props []domain.Property) []string {
	out := make([]string, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func withPatch(p domain.FilterPatch) domain.FilterOptions {
	return domain.DefaultFilters().Merge(p)
}

func ptr[T any](v T) *T { return &v }

func TestFilter(t *testing.T) {
	seed := SeedProperties()
	cases := []struct {
		name string
		opts domain.FilterOptions
		want []string
	}{
		{"defaults sort newest first", domain.DefaultFilters(), []string{"5", "6", "4", "2", "1", "3"}},
		{"rental only", withPatch(domain.FilterPatch{Type: ptr(domain.TypeRental)}), []string{"5", "2"}},
		{"price window is inclusive", withPatch(domain.FilterPatch{PriceRange: &domain.PriceRange{Min: 300000, Max: 500000}}), []string{"1"}},
		{"price window upper bound", withPatch(domain.FilterPatch{PriceRange: &domain.PriceRange{Min: 450000, Max: 520000}}), []string{"6", "1"}},
		{"inverted range yields nothing", withPatch(domain.FilterPatch{PriceRange: &domain.PriceRange{Min: 500000, Max: 100}}), []string{}},
		{"search is case-insensitive across title and city", withPatch(domain.FilterPatch{SearchTerm: ptr("CASCAVEL")}), []string{"5", "1"}},
		{"search matches neighborhood", withPatch(domain.FilterPatch{SearchTerm: ptr("centro")}), []string{"2"}},
		{"exact city", withPatch(domain.FilterPatch{City: ptr("Foz do Iguaçu")}), []string{"6", "2"}},
		{"any city", withPatch(domain.FilterPatch{City: ptr(domain.CityAny)}), []string{"5", "6", "4", "2", "1", "3"}},
		{"bedrooms exact", withPatch(domain.FilterPatch{Bedrooms: domain.SetTo(3)}), []string{"5", "6", "1"}},
		{"bedrooms at least", withPatch(domain.FilterPatch{Bedrooms: domain.SetTo(3), RoomMatch: ptr(domain.MatchAtLeast)}), []string{"5", "6", "4", "1"}},
		{"bathrooms exact", withPatch(domain.FilterPatch{Bathrooms: domain.SetTo(1)}), []string{"2"}},
		{"garage zero excludes unrecorded garage", withPatch(domain.FilterPatch{Garage: domain.SetTo(0)}), []string{}},
		{"min area", withPatch(domain.FilterPatch{MinArea: domain.SetTo(250.0)}), []string{"6", "4", "3"}},
		{"accepts exchange", withPatch(domain.FilterPatch{AcceptsExchange: ptr(true)}), []string{"6", "4", "1", "3"}},
		{"accepts financing and rental", withPatch(domain.FilterPatch{AcceptsFinancing: ptr(true), Type: ptr(domain.TypeRental)}), []string{}},
		{"price ascending", withPatch(domain.FilterPatch{SortBy: ptr(domain.SortPriceAsc)}), []string{"5", "2", "3", "1", "6", "4"}},
		{"price descending", withPatch(domain.FilterPatch{SortBy: ptr(domain.SortPriceDesc)}), []string{"4", "6", "1", "3", "2", "5"}},
		{"area descending", withPatch(domain.FilterPatch{SortBy: ptr(domain.SortAreaDesc)}), []string{"3", "4", "6", "1", "5", "2"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ids(Filter(seed, tc.opts))
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("Filter() ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFilter_GarageZeroMatchesRecordedZero(t *testing.T) {
	props := SeedProperties()
	studio := props[1].Clone()
	studio.ID = "7"
	studio.Features.Garage = ptr(0)
	props = append(props, studio)

	got := ids(Filter(props, withPatch(domain.FilterPatch{Garage: domain.SetTo(0)})))
	if diff := cmp.Diff([]string{"7"}, got); diff != "" {
		t.Errorf("garage=0 mismatch (-want +got):\n%s", diff)
	}
}

func TestFilter_ResultIsSubsetOfInput(t *testing.T) {
	seed := SeedProperties()
	known := map[string]bool{}
	for _, p := range seed {
		known[p.ID] = true
	}
	patches := []domain.FilterPatch{
		{},
		{Type: ptr(domain.TypeSale)},
		{SearchTerm: ptr("a")},
		{Bedrooms: domain.SetTo(2), RoomMatch: ptr(domain.MatchAtLeast)},
		{MinArea: domain.SetTo(90.0), SortBy: ptr(domain.SortPriceDesc)},
	}
	for _, p := range patches {
		got := Filter(seed, withPatch(p))
		if len(got) > len(seed) {
			t.Fatalf("result larger than input: %d > %d", len(got), len(seed))
		}
		for _, g := range got {
			if !known[g.ID] {
				t.Fatalf("result contains fabricated id %q", g.ID)
			}
		}
	}
}

func TestFilter_StableOnEqualKeys(t *testing.T) {
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, price float64) domain.Property {
		return domain.Property{ID: id, Type: domain.TypeSale, Price: price, Features: domain.Features{Area: 100}, CreatedAt: at}
	}
	props := []domain.Property{mk("a", 10), mk("b", 5), mk("c", 10), mk("d", 5), mk("e", 10)}

	cases := map[domain.SortBy][]string{
		domain.SortRecent:    {"a", "b", "c", "d", "e"},
		domain.SortPriceAsc:  {"b", "d", "a", "c", "e"},
		domain.SortPriceDesc: {"a", "c", "e", "b", "d"},
		domain.SortAreaDesc:  {"a", "b", "c", "d", "e"},
	}
	for by, want := range cases {
		got := ids(Filter(props, withPatch(domain.FilterPatch{SortBy: ptr(by)})))
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("sort %s not stable (-want +got):\n%s", by, diff)
		}
	}
}

func TestFilter_DoesNotModifyInput(t *testing.T) {
	seed := SeedProperties()
	before := ids(seed)
	_ = Filter(seed, withPatch(domain.FilterPatch{SortBy: ptr(domain.SortPriceAsc)}))
	if !slices.Equal(before, ids(seed)) {
		t.Fatalf("input order changed: %v", ids(seed))
	}
}

func TestParseSortBy(t *testing.T) {
	cases := map[string]domain.SortBy{
		"":           domain.SortRecent,
		"recent":     domain.SortRecent,
		"price-asc":  domain.SortPriceAsc,
		"price-desc": domain.SortPriceDesc,
		"area":       domain.SortAreaDesc,
		"area-desc":  domain.SortAreaDesc,
		"bogus":      domain.SortRecent,
	}
	for in, want := range cases {
		if got := domain.ParseSortBy(in); got != want {
			t.Errorf("ParseSortBy(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCitiesFeaturedSummarize(t *testing.T) {
	seed := SeedProperties()
	if diff := cmp.Diff([]string{"Cascavel", "Foz do Iguaçu", "Toledo", "Maringá"}, Cities(seed)); diff != "" {
		t.Errorf("Cities mismatch (-want +got):\n%s", diff)
	}

	seed[0].Status = domain.StatusSold
	if diff := cmp.Diff([]string{"2", "4", "5", "6"}, ids(Featured(seed))); diff != "" {
		t.Errorf("Featured mismatch (-want +got):\n%s", diff)
	}
	if got := Summarize(seed); got != (domain.Stats{Total: 6, Available: 5, Unavailable: 1}) {
		t.Errorf("Summarize = %+v", got)
	}
}

func TestFeatured_CapsAtSix(t *testing.T) {
	var props []domain.Property
	for i := 0; i < 9; i++ {
		props = append(props, domain.Property{ID: string(rune('a' + i)), Status: domain.StatusAvailable, Highlighted: true})
	}
	if got := len(Featured(props)); got != domain.MaxFeatured {
		t.Fatalf("Featured returned %d listings, want %d", got, domain.MaxFeatured)
	}
}
