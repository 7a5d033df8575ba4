package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"brokerage/internal/catalog"
	applog "brokerage/internal/log"
	"brokerage/internal/metrics"
	"brokerage/internal/validate"
)

const (
	clientCookie = "cid"
	goneMsg      = "This property is no longer available"
)

type CatalogHandler struct {
	Store   *catalog.Store
	Favs    catalog.FavoritesRepository
	Metrics *metrics.Metrics
}

// ensureClientID returns the anonymous browsing id that keys favorites.
func ensureClientID(c *fiber.Ctx) string {
	cid := c.Cookies(clientCookie)
	if _, ok := validate.ID(cid); !ok {
		cid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     clientCookie,
			Value:    cid,
			Path:     "/",
			MaxAge:   365 * 24 * 60 * 60,
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	c.Locals(applog.ClientKey, cid)
	return cid
}

func (h *CatalogHandler) view(c *fiber.Ctx) (*catalog.View, error) {
	return h.Store.NewView(c.UserContext(), h.Favs, ensureClientID(c))
}

// GET /
func (h *CatalogHandler) Home(c *fiber.Ctx) error {
	h.Metrics.LeadLinks.WithLabelValues("general").Inc()
	return render(c, "home", fiber.Map{
		"Featured": h.Store.Featured(),
		"Cities":   h.Store.Cities(),
		"Stats":    h.Store.Stats(),
	})
}

// GET /properties
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	v, err := h.view(c)
	if err != nil {
		return err
	}
	if c.Query("reset") == "" {
		v.SetFilters(parseFilters(c))
	} else {
		v.ResetFilters()
	}
	props := v.FilteredProperties()
	return render(c, "properties", fiber.Map{
		"Properties": props,
		"Count":      len(props),
		"Filters":    v.Filters(),
		"Cities":     h.Store.Cities(),
		"Favs":       favSet(v),
	})
}

// GET /properties/:id
func (h *CatalogHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "property"})
		return notFound(c, goneMsg)
	}
	p, found := h.Store.GetPropertyByID(id)
	if !found {
		return notFound(c, goneMsg)
	}
	v, err := h.view(c)
	if err != nil {
		return err
	}
	h.Metrics.PropertyViews.WithLabelValues(string(p.Type)).Inc()
	h.Metrics.LeadLinks.WithLabelValues("property").Inc()
	return render(c, "property", fiber.Map{
		"P":        p,
		"LeadLink": builderFrom(c).PropertyLink(p),
		"IsFav":    v.IsFavorite(p.ID),
	})
}

// GET /contact
func (h *CatalogHandler) Contact(c *fiber.Ctx) error {
	h.Metrics.LeadLinks.WithLabelValues("general").Inc()
	return render(c, "contact", fiber.Map{})
}

func favSet(v *catalog.View) map[string]bool {
	out := map[string]bool{}
	for _, id := range v.Favorites() {
		out[id] = true
	}
	return out
}

type FavoritesHandler struct {
	Store   *catalog.Store
	Favs    catalog.FavoritesRepository
	Metrics *metrics.Metrics
}

// GET /favorites
func (h *FavoritesHandler) List(c *fiber.Ctx) error {
	v, err := h.Store.NewView(c.UserContext(), h.Favs, ensureClientID(c))
	if err != nil {
		return err
	}
	return render(c, "favorites", fiber.Map{
		"Properties": v.FavoriteProperties(),
		"Favs":       favSet(v),
	})
}

// POST /favorites/:id
func (h *FavoritesHandler) Toggle(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "favorite"})
		return notFound(c, goneMsg)
	}
	v, err := h.Store.NewView(c.UserContext(), h.Favs, ensureClientID(c))
	if err != nil {
		return err
	}
	// Unknown ids may still be removed, never added.
	if _, found := h.Store.GetPropertyByID(id); !found && !v.IsFavorite(id) {
		return notFound(c, goneMsg)
	}
	added, err := v.ToggleFavorite(c.UserContext(), id)
	if err != nil {
		applog.Error(c, "favorites.toggle.fail", err, map[string]any{"property_id": id})
		h.Metrics.StoreFailures.WithLabelValues("favorites").Inc()
		c.Status(fiber.StatusInternalServerError)
		return render(c, "notfound", fiber.Map{"Message": "Could not update your favorites. Please try again."})
	}
	action := "removed"
	if added {
		action = "added"
	}
	h.Metrics.FavoriteToggles.WithLabelValues(action).Inc()
	applog.Info(c, "favorites."+action, map[string]any{"property_id": id})
	return c.Redirect(backTo(c.FormValue("next"), "/favorites"), fiber.StatusSeeOther)
}

// backTo accepts only local paths so the form cannot redirect off-site.
func backTo(next, fallback string) string {
	if len(next) > 0 && next[0] == '/' && (len(next) == 1 || (next[1] != '/' && next[1] != '\\')) {
		return next
	}
	return fallback
}
