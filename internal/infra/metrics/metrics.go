// Package metrics collects and exposes Prometheus metrics for the
// authentication and catalog flows.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector is the metrics recording interface the use case layer depends on.
type Collector interface {
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordRegistration(role string)
	RecordTokenRefresh()
	RecordAuthzDenial(reason string)
	RecordCatalogSearch()
}

// PrometheusCollector implements Collector on a Prometheus registry.
type PrometheusCollector struct {
	loginSuccess  prometheus.Counter
	loginFailure  prometheus.Counter
	registrations *prometheus.CounterVec
	tokenRefresh  prometheus.Counter
	authzDenials  *prometheus.CounterVec
	searches      prometheus.Counter
}

// NewCollector creates a PrometheusCollector and registers its metrics on
// the given registry.
func NewCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_login_success_total",
			Help: "Total number of successful logins.",
		}),
		loginFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_login_failure_total",
			Help: "Total number of failed login attempts.",
		}),
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_registrations_total",
			Help: "Total number of registrations by role.",
		}, []string{"role"}),
		tokenRefresh: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_token_refresh_total",
			Help: "Total number of session refreshes.",
		}),
		authzDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "marketplace_authz_denials_total",
			Help: "Total number of authorization denials by reason.",
		}, []string{"reason"}),
		searches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "marketplace_catalog_searches_total",
			Help: "Total number of catalog search queries.",
		}),
	}

	reg.MustRegister(
		c.loginSuccess,
		c.loginFailure,
		c.registrations,
		c.tokenRefresh,
		c.authzDenials,
		c.searches,
	)

	return c
}

// RecordLoginSuccess counts a successful login.
func (c *PrometheusCollector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure counts a rejected login attempt.
func (c *PrometheusCollector) RecordLoginFailure() {
	c.loginFailure.Inc()
}

// RecordRegistration counts a completed registration.
func (c *PrometheusCollector) RecordRegistration(role string) {
	c.registrations.WithLabelValues(role).Inc()
}

// RecordTokenRefresh counts a session refresh.
func (c *PrometheusCollector) RecordTokenRefresh() {
	c.tokenRefresh.Inc()
}

// RecordAuthzDenial counts a policy denial by reason.
func (c *PrometheusCollector) RecordAuthzDenial(reason string) {
	c.authzDenials.WithLabelValues(reason).Inc()
}

// RecordCatalogSearch counts a catalog search query.
func (c *PrometheusCollector) RecordCatalogSearch() {
	c.searches.Inc()
}

// Handler returns the HTTP handler Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NoopCollector discards all recordings. It stands in when metrics are
// disabled by configuration.
type NoopCollector struct{}

func (NoopCollector) RecordLoginSuccess()       {}
func (NoopCollector) RecordLoginFailure()       {}
func (NoopCollector) RecordRegistration(string) {}
func (NoopCollector) RecordTokenRefresh()       {}
func (NoopCollector) RecordAuthzDenial(string)  {}
func (NoopCollector) RecordCatalogSearch()      {}
