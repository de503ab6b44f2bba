package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palette_login_attempts_total",
		Help: "Number of login attempts grouped by status.",
	}, []string{"status"})

	registrations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palette_registrations_total",
		Help: "Number of registration attempts grouped by status.",
	}, []string{"status"})

	lockouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "palette_account_lockouts_total",
		Help: "Number of accounts locked after repeated login failures.",
	})

	rateLimitHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palette_rate_limit_hits_total",
		Help: "Rate limiter activations grouped by limiter name.",
	}, []string{"limiter"})

	uploads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "palette_uploads_total",
		Help: "Image uploads grouped by status.",
	}, []string{"status"})
)

// IncLogin increments the login counter.
func IncLogin(status string) {
	loginAttempts.WithLabelValues(status).Inc()
}

// IncRegister increments the registration counter.
func IncRegister(status string) {
	registrations.WithLabelValues(status).Inc()
}

// IncLockout increments the lockout counter.
func IncLockout() {
	lockouts.Inc()
}

// IncRateLimit increments the rate-limit hit counter.
func IncRateLimit(name string) {
	rateLimitHits.WithLabelValues(name).Inc()
}

// IncUpload increments the upload counter.
func IncUpload(status string) {
	uploads.WithLabelValues(status).Inc()
}
