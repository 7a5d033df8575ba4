package lead_test

import (
	"net/url"
	"strings"
	"testing"

	"brokerage/internal/catalog"
	"brokerage/internal/domain"
	"brokerage/internal/lead"
)

func builder() lead.Builder {
	return lead.NewBuilder("", domain.SiteSettings{SellerName: "Silvio Vitória Sobrinho", WhatsAppNumber: "+55 (45) 99020-8888"})
}

func TestFormatPrice(t *testing.T) {
	cases := []struct {
		price float64
		typ   domain.PropertyType
		want  string
	}{
		{450000, domain.TypeSale, "R$ 450.000"},
		{2500, domain.TypeRental, "R$ 2.500/month"},
		{999.6, domain.TypeLand, "R$ 1.000"},
		{1250000, domain.TypeSale, "R$ 1.250.000"},
		{0, domain.TypeSale, "R$ 0"},
	}
	for _, tc := range cases {
		if got := lead.FormatPrice(tc.price, tc.typ); got != tc.want {
			t.Errorf("FormatPrice(%v, %s) = %q, want %q", tc.price, tc.typ, got, tc.want)
		}
	}
}

func TestGeneralLink(t *testing.T) {
	link := builder().GeneralLink()
	if !strings.HasPrefix(link, "https://wa.me/5545990208888?text=") {
		t.Fatalf("unexpected link %q", link)
	}
	if strings.Contains(link, "+") || strings.Contains(link, " ") {
		t.Fatalf("spaces must be %%20-encoded: %q", link)
	}
	u, err := url.Parse(link)
	if err != nil {
		t.Fatal(err)
	}
	if got := u.Query().Get("text"); got != "Hello Silvio! I would like to know more about the available properties." {
		t.Fatalf("decoded message %q", got)
	}
}

func TestPropertyLink(t *testing.T) {
	p := catalog.SeedProperties()[1] // rental in Foz do Iguaçu
	u, err := url.Parse(builder().PropertyLink(p))
	if err != nil {
		t.Fatal(err)
	}
	msg := u.Query().Get("text")
	for _, want := range []string{p.Title, p.City, p.Neighborhood, "R$ 2.500/month", "#" + p.ID} {
		if !strings.Contains(msg, want) {
			t.Errorf("message %q missing %q", msg, want)
		}
	}
}

func TestEscapeKeepsReservedCharsSafe(t *testing.T) {
	got := lead.Escape(`a&b=c+d #1 "x"`)
	if got != "a%26b%3Dc%2Bd%20%231%20%22x%22" {
		t.Fatalf("got %q", got)
	}
}

func TestCustomDomainAndNoSeller(t *testing.T) {
	b := lead.NewBuilder("https://api.whatsapp.com/send/", domain.SiteSettings{WhatsAppNumber: "123"})
	link := b.Link("hi there")
	if link != "https://api.whatsapp.com/send/123?text=hi%20there" {
		t.Fatalf("got %q", link)
	}
	if !strings.Contains(b.GeneralLink(), "Hello%21") {
		t.Fatalf("greeting without seller: %q", b.GeneralLink())
	}
}
