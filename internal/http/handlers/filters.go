package handlers

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"brokerage/internal/domain"
	applog "brokerage/internal/log"
	"brokerage/internal/validate"
)

// parseFilters turns catalog query parameters into a patch. Absent or
// malformed parameters leave the corresponding filter untouched.
func parseFilters(c *fiber.Ctx) domain.FilterPatch {
	var p domain.FilterPatch
	if raw := c.Query("q"); raw != "" {
		if q, ok := validate.Q(raw); ok {
			p.SearchTerm = &q
		} else {
			applog.Security(c, "validation.fail", map[string]any{"field": "q"})
		}
	}
	if t := domain.PropertyType(c.Query("type")); t == domain.TypeAll || t.Valid() {
		p.Type = &t
	}
	lo, loOK := queryFloat(c, "min")
	hi, hiOK := queryFloat(c, "max")
	if loOK || hiOK {
		r := domain.PriceRange{Min: 0, Max: domain.DefaultMaxPrice}
		if loOK {
			r.Min = lo
		}
		if hiOK {
			r.Max = hi
		}
		p.PriceRange = &r
	}
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		p.City = &city
	}
	p.Bedrooms = intField(c, "bedrooms")
	p.Bathrooms = intField(c, "bathrooms")
	p.Garage = intField(c, "garage")
	if v, ok := queryFloat(c, "minArea"); ok {
		p.MinArea = domain.SetTo(v)
	}
	if queryBool(c, "exchange") {
		v := true
		p.AcceptsExchange = &v
	}
	if queryBool(c, "financing") {
		v := true
		p.AcceptsFinancing = &v
	}
	if s := c.Query("sort"); s != "" {
		by := domain.ParseSortBy(s)
		p.SortBy = &by
	}
	if m := domain.MatchMode(c.Query("match")); m == domain.MatchExact || m == domain.MatchAtLeast {
		p.RoomMatch = &m
	}
	return p
}

func intField(c *fiber.Ctx, key string) domain.Field[int] {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return domain.Field[int]{}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return domain.Field[int]{}
	}
	return domain.SetTo(n)
}

func queryFloat(c *fiber.Ctx, key string) (float64, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !validate.Finite(v) || v < 0 {
		return 0, false
	}
	return v, true
}

func queryBool(c *fiber.Ctx, key string) bool {
	switch strings.ToLower(c.Query(key)) {
	case "1", "on", "true", "yes":
		return true
	}
	return false
}
