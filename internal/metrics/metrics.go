package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private registry so tests can build as many apps as they
// like without duplicate-registration panics.
type Metrics struct {
	Registry *prometheus.Registry

	PropertyViews   *prometheus.CounterVec
	LeadLinks       *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	FavoriteToggles *prometheus.CounterVec
	StoreFailures   *prometheus.CounterVec
	CacheLookups    *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		PropertyViews: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_property_views_total",
			Help: "Detail page and API views per listing type.",
		}, []string{"type"}),
		LeadLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_lead_links_total",
			Help: "WhatsApp links handed out, general or per listing.",
		}, []string{"kind"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_admin_logins_total",
			Help: "Admin login attempts by outcome.",
		}, []string{"outcome"}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_favorite_toggles_total",
			Help: "Favorite toggles by direction.",
		}, []string{"action"}),
		StoreFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_store_write_failures_total",
			Help: "Catalog or settings writes that failed after retries.",
		}, []string{"op"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "brokerage_api_cache_lookups_total",
			Help: "API list cache lookups by result.",
		}, []string{"result"}),
	}
	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.PropertyViews, m.LeadLinks, m.Logins, m.FavoriteToggles, m.StoreFailures, m.CacheLookups,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
}
