package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics holds the payment subsystem counters. A dedicated registry keeps
// tests free of global-registration conflicts.
type Metrics struct {
	registry *prometheus.Registry

	webhookEvents  *prometheus.CounterVec
	paymentCreates *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		webhookEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_webhook_events_total",
			Help: "Webhook notifications by event kind and reconciliation outcome.",
		}, []string{"kind", "outcome"}),
		paymentCreates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "payment_creates_total",
			Help: "Payment creation attempts by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(m.webhookEvents, m.paymentCreates)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

func (m *Metrics) RecordWebhookEvent(kind, outcome string) {
	if m == nil {
		return
	}
	m.webhookEvents.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) RecordPaymentCreate(outcome string) {
	if m == nil {
		return
	}
	m.paymentCreates.WithLabelValues(outcome).Inc()
}

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)
