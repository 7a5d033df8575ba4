// Package lead builds the outbound WhatsApp links a visitor follows to
// contact the seller. Nothing here performs a network call.
package lead

import (
	"fmt"
	"math"
	"net/url"
	"strings"

	"github.com/dustin/go-humanize"

	"brokerage/internal/domain"
)

const DefaultDomain = "https://wa.me"

type Builder struct {
	Domain string // scheme and host, no trailing slash
	Number string // international format, digits only
	Seller string // first name used in the greeting
}

// NewBuilder takes the destination from the site settings. Only the seller's
// first name is used in greetings.
func NewBuilder(domainURL string, s domain.SiteSettings) Builder {
	if domainURL == "" {
		domainURL = DefaultDomain
	}
	first, _, _ := strings.Cut(strings.TrimSpace(s.SellerName), " ")
	return Builder{Domain: strings.TrimRight(domainURL, "/"), Number: digits(s.WhatsAppNumber), Seller: first}
}

// Link encodes message into a deep link for the configured number.
func (b Builder) Link(message string) string {
	return fmt.Sprintf("%s/%s?text=%s", b.Domain, b.Number, Escape(message))
}

func (b Builder) GeneralLink() string {
	return b.Link(b.greeting() + " I would like to know more about the available properties.")
}

func (b Builder) PropertyLink(p domain.Property) string {
	msg := fmt.Sprintf("%s I'm interested in the property \"%s\" in %s - %s. Could you send me more information?\n\nPrice: %s\nCode: #%s",
		b.greeting(), p.Title, p.City, p.Neighborhood, FormatPrice(p.Price, p.Type), p.ID)
	return b.Link(msg)
}

func (b Builder) greeting() string {
	if b.Seller == "" {
		return "Hello!"
	}
	return "Hello " + b.Seller + "!"
}

// Escape percent-encodes s for a query value, spaces as %20.
func Escape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// FormatPrice renders whole reais with dot thousands, e.g. "R$ 450.000".
// Rentals get a "/month" suffix.
func FormatPrice(price float64, t domain.PropertyType) string {
	s := "R$ " + humanize.FormatFloat("#.###,", math.Round(price))
	if t == domain.TypeRental {
		s += "/month"
	}
	return s
}

func digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
