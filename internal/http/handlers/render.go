package handlers

import (
	"html/template"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"brokerage/internal/domain"
	"brokerage/internal/lead"
	applog "brokerage/internal/log"
)

const (
	siteKey = "site"
	leadKey = "lead"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals(applog.UserKey); u != nil {
		data["User"] = u
	}
	// Pick up the token the CSRF middleware put into Locals
	if tok, _ := c.Locals("CSRFToken").(string); tok != "" {
		data["CSRFToken"] = tok
	} else if tok := c.Cookies("csrf_"); tok != "" {
		data["CSRFToken"] = tok
	}
	if s, ok := c.Locals(siteKey).(domain.SiteSettings); ok {
		data["Site"] = s
	}
	if b, ok := c.Locals(leadKey).(lead.Builder); ok {
		data["ContactLink"] = b.GeneralLink()
	}
	data["Path"] = c.Path()
	return c.Render(tmpl, data)
}

func notFound(c *fiber.Ctx, msg string) error {
	c.Status(fiber.StatusNotFound)
	return render(c, "notfound", fiber.Map{"Message": msg})
}

func builderFrom(c *fiber.Ctx) lead.Builder {
	if b, ok := c.Locals(leadKey).(lead.Builder); ok {
		return b
	}
	return lead.Builder{Domain: lead.DefaultDomain}
}

// templateFuncs are registered on the view engine.
func templateFuncs() map[string]any {
	return map[string]any{
		"price": func(p domain.Property) string { return lead.FormatPrice(p.Price, p.Type) },
		"img":   imageURL,
		"deref": func(v *int) string {
			if v == nil {
				return ""
			}
			return strconv.Itoa(*v)
		},
		"derefF": func(v *float64) string {
			if v == nil {
				return ""
			}
			return strconv.FormatFloat(*v, 'f', -1, 64)
		},
		"num":         func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
		"lines":       func(s []string) string { return strings.Join(s, "\n") },
		"typeLabel":   typeLabel,
		"statusLabel": statusLabel,
		"dict":        dict,
	}
}

// dict builds a map from alternating keys and values so partials can take
// more than one argument.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		if k, ok := kv[i].(string); ok {
			m[k] = kv[i+1]
		}
	}
	return m
}

// imageURL lets http(s) and inlined image data through html/template's URL
// filter; anything else renders as an empty src.
func imageURL(ref string) template.URL {
	switch {
	case strings.HasPrefix(ref, "https://"), strings.HasPrefix(ref, "http://"),
		strings.HasPrefix(ref, "data:image/"), strings.HasPrefix(ref, "/"):
		return template.URL(ref)
	}
	return ""
}

func typeLabel(t domain.PropertyType) string {
	switch t {
	case domain.TypeSale:
		return "For sale"
	case domain.TypeRental:
		return "For rent"
	case domain.TypeLand:
		return "Land"
	}
	return "All"
}

func statusLabel(s domain.PropertyStatus) string {
	switch s {
	case domain.StatusSold:
		return "Sold"
	case domain.StatusRented:
		return "Rented"
	}
	return "Available"
}
