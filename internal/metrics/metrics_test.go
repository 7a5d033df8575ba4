package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"brokerage/internal/metrics"
)

func TestCountersAndHandler(t *testing.T) {
	m := metrics.New()
	m.Logins.WithLabelValues("denied").Inc()
	m.Logins.WithLabelValues("denied").Inc()
	m.LeadLinks.WithLabelValues("property").Inc()

	app := fiber.New()
	app.Get("/metrics", m.Handler())
	resp, err := app.Test(httptest.NewRequest("GET", "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != 200 {
		t.Fatalf("status %d", resp.StatusCode)
	}
	for _, want := range []string{`brokerage_admin_logins_total{outcome="denied"} 2`, `brokerage_lead_links_total{kind="property"} 1`} {
		if !strings.Contains(string(body), want) {
			t.Errorf("missing %q", want)
		}
	}
}

func TestIndependentRegistries(t *testing.T) {
	a, b := metrics.New(), metrics.New()
	a.FavoriteToggles.WithLabelValues("added").Inc()
	families, err := b.Registry.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range families {
		if f.GetName() == "brokerage_favorite_toggles_total" && len(f.GetMetric()) > 0 {
			t.Fatalf("registries leaked: %v", f)
		}
	}
}
