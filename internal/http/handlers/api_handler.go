package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"brokerage/internal/cache"
	"brokerage/internal/catalog"
	"brokerage/internal/domain"
	applog "brokerage/internal/log"
	"brokerage/internal/metrics"
	"brokerage/internal/validate"
)

type APIHandler struct {
	Store         *catalog.Store
	Cache         *cache.ListingCache
	Metrics       *metrics.Metrics
	MaxImageBytes int
}

type listResponse struct {
	Items   []domain.Property    `json:"items"`
	Total   int                  `json:"total"`
	Filters domain.FilterOptions `json:"filters"`
}

// GET /api/v1/properties
func (h *APIHandler) List(c *fiber.Ctx) error {
	key := cache.QueryKey("api:properties", h.Store.Revision(), c.Queries())
	var resp listResponse
	hit, err := h.Cache.Get(c.UserContext(), key, &resp)
	if err != nil {
		applog.Error(c, "cache.get.fail", err, nil)
		h.Metrics.CacheLookups.WithLabelValues("error").Inc()
	}
	if hit {
		h.Metrics.CacheLookups.WithLabelValues("hit").Inc()
		c.Set("X-Cache", "HIT")
		return c.JSON(resp)
	}

	opts := domain.DefaultFilters().Merge(parseFilters(c))
	items := h.Store.Filtered(opts)
	if items == nil {
		items = []domain.Property{}
	}
	resp = listResponse{Items: items, Total: len(items), Filters: opts}
	if h.Cache != nil {
		h.Metrics.CacheLookups.WithLabelValues("miss").Inc()
		if err := h.Cache.Set(c.UserContext(), key, resp); err != nil {
			applog.Error(c, "cache.set.fail", err, nil)
		}
	}
	c.Set("X-Cache", "MISS")
	return c.JSON(resp)
}

// GET /api/v1/properties/:id
func (h *APIHandler) Get(c *fiber.Ctx) error {
	p, ok := h.lookup(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "property not found"})
	}
	h.Metrics.PropertyViews.WithLabelValues(string(p.Type)).Inc()
	return c.JSON(p)
}

// GET /api/v1/properties/:id/lead
func (h *APIHandler) Lead(c *fiber.Ctx) error {
	p, ok := h.lookup(c)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "property not found"})
	}
	h.Metrics.LeadLinks.WithLabelValues("property").Inc()
	return c.JSON(fiber.Map{"url": builderFrom(c).PropertyLink(p)})
}

// GET /api/v1/cities
func (h *APIHandler) Cities(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"cities": h.Store.Cities()})
}

// GET /api/v1/featured
func (h *APIHandler) Featured(c *fiber.Ctx) error {
	items := h.Store.Featured()
	if items == nil {
		items = []domain.Property{}
	}
	return c.JSON(fiber.Map{"items": items})
}

// POST /api/v1/admin/properties
func (h *APIHandler) Create(c *fiber.Ctx) error {
	var p domain.Property
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, ok := validate.ID(p.ID); !ok {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": validate.FieldErrors{"id": "invalid"}})
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	if fe := validate.Listing(p, h.MaxImageBytes); len(fe) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": fe})
	}
	if err := h.Store.AddProperty(c.UserContext(), p); err != nil {
		return h.writeFailed(c, "api.property.create.fail", p.ID, err)
	}
	applog.Audit(c, "api.property.create", map[string]any{"property_id": p.ID})
	return c.Status(fiber.StatusCreated).JSON(p)
}

// PUT /api/v1/admin/properties/:id
func (h *APIHandler) Update(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "property not found"})
	}
	var p domain.Property
	if err := c.BodyParser(&p); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if fe := validate.Listing(p, h.MaxImageBytes); len(fe) > 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"errors": fe})
	}
	if err := h.Store.UpdateProperty(c.UserContext(), id, p); err != nil {
		return h.writeFailed(c, "api.property.update.fail", id, err)
	}
	applog.Audit(c, "api.property.update", map[string]any{"property_id": id})
	updated, _ := h.Store.GetPropertyByID(id)
	return c.JSON(updated)
}

// DELETE /api/v1/admin/properties/:id
func (h *APIHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.SendStatus(fiber.StatusNoContent)
	}
	if err := h.Store.DeleteProperty(c.UserContext(), id); err != nil {
		return h.writeFailed(c, "api.property.delete.fail", id, err)
	}
	applog.Audit(c, "api.property.delete", map[string]any{"property_id": id})
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandler) lookup(c *fiber.Ctx) (domain.Property, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return domain.Property{}, false
	}
	return h.Store.GetPropertyByID(id)
}

func (h *APIHandler) writeFailed(c *fiber.Ctx, action, id string, err error) error {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "property not found"})
	case errors.Is(err, catalog.ErrDuplicateID):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "property id already exists"})
	}
	applog.Error(c, action, err, map[string]any{"property_id": id})
	h.Metrics.StoreFailures.WithLabelValues("property").Inc()
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "could not save, please retry"})
}
