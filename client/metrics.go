package client

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// clientMetrics holds the Prometheus instruments. A nil *clientMetrics is
// valid and records nothing, so metrics stay optional.
type clientMetrics struct {
	requests      *prometheus.CounterVec
	refreshes     prometheus.Counter
	forcedLogouts prometheus.Counter
}

func newClientMetrics(reg prometheus.Registerer) *clientMetrics {
	if reg == nil {
		return nil
	}
	m := &clientMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "erpclient",
			Name:      "requests_total",
			Help:      "API requests by method and status class.",
		}, []string{"method", "class"}),
		refreshes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "erpclient",
			Name:      "token_refreshes_total",
			Help:      "Token refresh calls that reached the network.",
		}),
		forcedLogouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "erpclient",
			Name:      "forced_logouts_total",
			Help:      "Logouts forced by unrecoverable auth failures.",
		}),
	}
	reg.MustRegister(m.requests, m.refreshes, m.forcedLogouts)
	return m
}

func (m *clientMetrics) observe(method string, status int) {
	if m == nil {
		return
	}
	class := "network"
	if status > 0 {
		class = fmt.Sprintf("%dxx", status/100)
	}
	m.requests.WithLabelValues(method, class).Inc()
}

func (m *clientMetrics) refresh() {
	if m == nil {
		return
	}
	m.refreshes.Inc()
}

func (m *clientMetrics) forcedLogout() {
	if m == nil {
		return
	}
	m.forcedLogouts.Inc()
}
