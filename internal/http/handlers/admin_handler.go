package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"brokerage/internal/catalog"
	"brokerage/internal/domain"
	applog "brokerage/internal/log"
	"brokerage/internal/metrics"
	"brokerage/internal/retry"
	"brokerage/internal/validate"
)

const saveFailedMsg = "Could not save your changes. Please try again."

type AdminHandler struct {
	Store         *catalog.Store
	Settings      SettingsStore
	Metrics       *metrics.Metrics
	Retry         retry.Policy
	MaxImageBytes int
}

// GET /admin
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	return render(c, "admin_dashboard", fiber.Map{
		"Stats":  h.Store.Stats(),
		"Recent": h.Store.Recent(domain.RecentCount),
	})
}

// GET /admin/properties
func (h *AdminHandler) Properties(c *fiber.Ctx) error {
	opts := domain.DefaultFilters()
	opts.PriceRange.Max = math.Inf(1)
	q, _ := validate.Q(c.Query("q"))
	opts.SearchTerm = q
	props := catalog.Filter(h.Store.All(), opts)
	status := domain.PropertyStatus(c.Query("status"))
	if status.Valid() {
		kept := props[:0]
		for _, p := range props {
			if p.Status == status {
				kept = append(kept, p)
			}
		}
		props = kept
	}
	return render(c, "admin_properties", fiber.Map{"Properties": props, "Q": q, "Status": string(status)})
}

// GET /admin/properties/new
func (h *AdminHandler) NewForm(c *fiber.Ctx) error {
	p := domain.Property{Type: domain.TypeSale, Status: domain.StatusAvailable}
	return h.form(c, p, true, nil, "")
}

// POST /admin/properties
func (h *AdminHandler) Create(c *fiber.Ctx) error {
	p, fe := h.parseListing(c)
	p.ID = uuid.NewString()
	p.CreatedAt = time.Now().UTC()
	if len(fe) > 0 {
		c.Status(fiber.StatusBadRequest)
		return h.form(c, p, true, fe, "Please fix the highlighted fields.")
	}
	if err := h.Store.AddProperty(c.UserContext(), p); err != nil {
		return h.saveFailed(c, p, true, "admin.property.create.fail", err)
	}
	applog.Audit(c, "admin.property.create", map[string]any{"property_id": p.ID, "title": p.Title})
	return c.Redirect("/admin/properties", fiber.StatusSeeOther)
}

// GET /admin/properties/:id/edit
func (h *AdminHandler) EditForm(c *fiber.Ctx) error {
	p, ok := h.lookup(c)
	if !ok {
		return notFound(c, goneMsg)
	}
	return h.form(c, p, false, nil, "")
}

// POST /admin/properties/:id
func (h *AdminHandler) Update(c *fiber.Ctx) error {
	current, ok := h.lookup(c)
	if !ok {
		return notFound(c, goneMsg)
	}
	p, fe := h.parseListing(c)
	p.ID = current.ID
	p.CreatedAt = current.CreatedAt
	if len(fe) > 0 {
		c.Status(fiber.StatusBadRequest)
		return h.form(c, p, false, fe, "Please fix the highlighted fields.")
	}
	err := h.Store.UpdateProperty(c.UserContext(), p.ID, p)
	if errors.Is(err, catalog.ErrNotFound) {
		return notFound(c, goneMsg)
	}
	if err != nil {
		return h.saveFailed(c, p, false, "admin.property.update.fail", err)
	}
	applog.Audit(c, "admin.property.update", map[string]any{"property_id": p.ID})
	return c.Redirect("/admin/properties", fiber.StatusSeeOther)
}

// POST /admin/properties/:id/delete
func (h *AdminHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return notFound(c, goneMsg)
	}
	if err := h.Store.DeleteProperty(c.UserContext(), id); err != nil {
		applog.Error(c, "admin.property.delete.fail", err, map[string]any{"property_id": id})
		h.Metrics.StoreFailures.WithLabelValues("delete").Inc()
		c.Status(fiber.StatusInternalServerError)
		return render(c, "notfound", fiber.Map{"Message": saveFailedMsg})
	}
	applog.Audit(c, "admin.property.delete", map[string]any{"property_id": id})
	return c.Redirect("/admin/properties", fiber.StatusSeeOther)
}

// GET /admin/settings
func (h *AdminHandler) SettingsForm(c *fiber.Ctx) error {
	s, err := h.Settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return render(c, "admin_settings", fiber.Map{"S": s, "Errors": validate.FieldErrors{}, "Saved": c.Query("saved") != ""})
}

// POST /admin/settings
func (h *AdminHandler) SaveSettings(c *fiber.Ctx) error {
	s := domain.SiteSettings{
		SellerName:      strings.TrimSpace(c.FormValue("sellerName")),
		SellerPhone:     strings.TrimSpace(c.FormValue("sellerPhone")),
		SellerEmail:     strings.TrimSpace(c.FormValue("sellerEmail")),
		SellerBio:       strings.TrimSpace(c.FormValue("sellerBio")),
		WhatsAppNumber:  strings.TrimSpace(c.FormValue("whatsappNumber")),
		MetaDescription: strings.TrimSpace(c.FormValue("metaDescription")),
		Keywords:        strings.TrimSpace(c.FormValue("keywords")),
	}
	if fe := validate.Settings(s); len(fe) > 0 {
		c.Status(fiber.StatusBadRequest)
		return render(c, "admin_settings", fiber.Map{"S": s, "Errors": fe, "Err": "Please fix the highlighted fields."})
	}
	err := retry.Do(c.UserContext(), h.Retry, func() error { return h.Settings.Save(c.UserContext(), s) })
	if err != nil {
		applog.Error(c, "admin.settings.save.fail", err, nil)
		h.Metrics.StoreFailures.WithLabelValues("settings").Inc()
		c.Status(fiber.StatusInternalServerError)
		return render(c, "admin_settings", fiber.Map{"S": s, "Errors": validate.FieldErrors{}, "Err": saveFailedMsg})
	}
	applog.Audit(c, "admin.settings.save", nil)
	return c.Redirect("/admin/settings?saved=1", fiber.StatusSeeOther)
}

func (h *AdminHandler) lookup(c *fiber.Ctx) (domain.Property, bool) {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return domain.Property{}, false
	}
	return h.Store.GetPropertyByID(id)
}

func (h *AdminHandler) form(c *fiber.Ctx, p domain.Property, isNew bool, fe validate.FieldErrors, msg string) error {
	action := "/admin/properties"
	if !isNew {
		action += "/" + p.ID
	}
	return render(c, "admin_property_form", fiber.Map{
		"P":      p,
		"IsNew":  isNew,
		"Action": action,
		"Errors": fe,
		"Err":    msg,
	})
}

func (h *AdminHandler) saveFailed(c *fiber.Ctx, p domain.Property, isNew bool, action string, err error) error {
	applog.Error(c, action, err, map[string]any{"property_id": p.ID})
	status := fiber.StatusInternalServerError
	msg := saveFailedMsg
	if errors.Is(err, catalog.ErrDuplicateID) {
		status, msg = fiber.StatusConflict, "A listing with this code already exists."
	} else {
		h.Metrics.StoreFailures.WithLabelValues("property").Inc()
	}
	c.Status(status)
	return h.form(c, p, isNew, nil, msg)
}

// parseListing reads the property form. Kept images arrive as repeated
// "images" values in display order; new files arrive as "uploads" and are
// inlined as data URLs after the kept ones.
func (h *AdminHandler) parseListing(c *fiber.Ctx) (domain.Property, validate.FieldErrors) {
	fe := validate.FieldErrors{}
	num := func(field string) float64 {
		raw := strings.TrimSpace(c.FormValue(field))
		if raw == "" {
			return 0
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
		if err != nil || !validate.Finite(v) {
			fe[field] = "must be a number"
			return 0
		}
		return v
	}
	optInt := func(field string) *int {
		raw := strings.TrimSpace(c.FormValue(field))
		if raw == "" {
			return nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			fe[field] = "must be a whole number"
			return nil
		}
		return &v
	}

	p := domain.Property{
		Title:            strings.TrimSpace(c.FormValue("title")),
		Description:      strings.TrimSpace(c.FormValue("description")),
		Type:             domain.PropertyType(c.FormValue("type")),
		Status:           domain.PropertyStatus(c.FormValue("status")),
		Price:            num("price"),
		City:             strings.TrimSpace(c.FormValue("city")),
		Neighborhood:     strings.TrimSpace(c.FormValue("neighborhood")),
		Address:          strings.TrimSpace(c.FormValue("address")),
		AcceptsExchange:  c.FormValue("acceptsExchange") != "",
		AcceptsFinancing: c.FormValue("acceptsFinancing") != "",
		Highlighted:      c.FormValue("highlighted") != "",
		Features: domain.Features{
			Area:      num("area"),
			Bedrooms:  optInt("bedrooms"),
			Bathrooms: optInt("bathrooms"),
			Garage:    optInt("garage"),
		},
	}
	if strings.TrimSpace(c.FormValue("builtArea")) != "" {
		v := num("builtArea")
		p.Features.BuiltArea = &v
	}
	if strings.TrimSpace(c.FormValue("lat")) != "" || strings.TrimSpace(c.FormValue("lng")) != "" {
		p.Coordinates = &domain.Coordinates{Lat: num("lat"), Lng: num("lng")}
		for _, k := range []string{"lat", "lng"} {
			if msg, bad := fe[k]; bad {
				delete(fe, k)
				fe["coordinates"] = k + " " + msg
			}
		}
	}
	for _, line := range strings.Split(c.FormValue("amenities"), "\n") {
		if a := strings.TrimSpace(line); a != "" {
			p.Amenities = append(p.Amenities, a)
		}
	}

	kept, uploads := formImages(c)
	for _, ref := range kept {
		if ref = strings.TrimSpace(ref); ref != "" {
			p.Images = append(p.Images, ref)
		}
	}
	for _, fh := range uploads {
		if h.MaxImageBytes > 0 && fh.Size > int64(h.MaxImageBytes) {
			fe["images"] = fmt.Sprintf("%s is larger than %d MB", fh.Filename, h.MaxImageBytes>>20)
			continue
		}
		ref, err := inlineImage(fh)
		if err != nil {
			fe["images"] = err.Error()
			continue
		}
		p.Images = append(p.Images, ref)
	}

	for k, v := range validate.Listing(p, h.MaxImageBytes) {
		if _, seen := fe[k]; !seen {
			fe[k] = v
		}
	}
	return p, fe
}

func formImages(c *fiber.Ctx) ([]string, []*multipart.FileHeader) {
	if mf, err := c.MultipartForm(); err == nil {
		return mf.Value["images"], mf.File["uploads"]
	}
	var kept []string
	for _, v := range c.Request().PostArgs().PeekMulti("images") {
		kept = append(kept, string(v))
	}
	return kept, nil
}

func inlineImage(fh *multipart.FileHeader) (string, error) {
	ct := fh.Header.Get(fiber.HeaderContentType)
	if !strings.HasPrefix(ct, "image/") {
		return "", fmt.Errorf("%s is not an image", fh.Filename)
	}
	f, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("could not read %s", fh.Filename)
	}
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("could not read %s", fh.Filename)
	}
	return "data:" + ct + ";base64," + base64.StdEncoding.EncodeToString(b), nil
}
