package validate

import (
	"encoding/base64"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"brokerage/internal/domain"
)

// FieldErrors maps a form field name to a user-facing message.
type FieldErrors map[string]string

func (fe FieldErrors) Error() string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + fe[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Err returns nil when there are no messages so callers can use `if err != nil`.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return fe
}

// Listing checks an admin-submitted property. maxImageBytes bounds each
// inlined image after decoding; 0 disables the check.
func Listing(p domain.Property, maxImageBytes int) FieldErrors {
	fe := FieldErrors{}
	required := map[string]string{
		"title":        p.Title,
		"description":  p.Description,
		"city":         p.City,
		"neighborhood": p.Neighborhood,
	}
	for field, v := range required {
		if strings.TrimSpace(v) == "" {
			fe[field] = "required"
		}
	}
	if utf8.RuneCountInString(p.Title) > 120 {
		fe["title"] = "must be at most 120 characters"
	}
	if !p.Type.Valid() {
		fe["type"] = "must be sale, rental or land"
	}
	if !p.Status.Valid() {
		fe["status"] = "must be available, sold or rented"
	}
	switch {
	case !Finite(p.Price):
		fe["price"] = "must be a number"
	case p.Price <= 0:
		fe["price"] = "must be greater than zero"
	}
	switch {
	case !Finite(p.Features.Area):
		fe["area"] = "must be a number"
	case p.Features.Area <= 0:
		fe["area"] = "must be greater than zero"
	}
	for field, v := range map[string]*int{
		"bedrooms":  p.Features.Bedrooms,
		"bathrooms": p.Features.Bathrooms,
		"garage":    p.Features.Garage,
	} {
		if v != nil && *v < 0 {
			fe[field] = "cannot be negative"
		}
	}
	if b := p.Features.BuiltArea; b != nil {
		if !Finite(*b) {
			fe["builtArea"] = "must be a number"
		} else if *b < 0 {
			fe["builtArea"] = "cannot be negative"
		}
	}
	if len(p.Amenities) > domain.MaxAmenities {
		fe["amenities"] = fmt.Sprintf("at most %d amenities", domain.MaxAmenities)
	}
	switch {
	case len(p.Images) == 0:
		fe["images"] = "at least one image is required"
	case len(p.Images) > domain.MaxImages:
		fe["images"] = fmt.Sprintf("at most %d images", domain.MaxImages)
	default:
		for i, img := range p.Images {
			if n := ImageSize(img); maxImageBytes > 0 && n > maxImageBytes {
				fe["images"] = fmt.Sprintf("image %d is larger than %d MB", i+1, maxImageBytes>>20)
				break
			}
		}
	}
	if c := p.Coordinates; c != nil && !(c.Lat >= -90 && c.Lat <= 90 && c.Lng >= -180 && c.Lng <= 180) {
		// NaN fails every comparison and lands here too
		fe["coordinates"] = "out of range"
	}
	return fe
}

// Finite reports whether v is neither NaN nor an infinity; strconv.ParseFloat
// accepts "NaN" and "Inf" as input.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ImageSize returns the decoded size of a base64 data URL, or 0 for a plain
// URL reference.
func ImageSize(ref string) int {
	if !strings.HasPrefix(ref, "data:") {
		return 0
	}
	_, payload, ok := strings.Cut(ref, ",")
	if !ok {
		return 0
	}
	return base64.StdEncoding.DecodedLen(len(payload)) - strings.Count(payload[max(0, len(payload)-2):], "=")
}

func Settings(s domain.SiteSettings) FieldErrors {
	fe := FieldErrors{}
	if strings.TrimSpace(s.SellerName) == "" {
		fe["sellerName"] = "required"
	}
	if _, ok := Phone(s.WhatsAppNumber); !ok {
		fe["whatsappNumber"] = "must be a phone number in international format"
	}
	if s.SellerPhone != "" {
		if _, ok := Phone(s.SellerPhone); !ok {
			fe["sellerPhone"] = "invalid phone number"
		}
	}
	if s.SellerEmail != "" {
		if _, ok := Email(s.SellerEmail); !ok {
			fe["sellerEmail"] = "invalid email"
		}
	}
	if utf8.RuneCountInString(s.MetaDescription) > domain.MaxMetaDescription {
		fe["metaDescription"] = fmt.Sprintf("at most %d characters", domain.MaxMetaDescription)
	}
	return fe
}
