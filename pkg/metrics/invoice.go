package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// InvoiceMetrics records invoice generation activity.
type InvoiceMetrics struct {
	renderDuration *prometheus.HistogramVec
	renderFailures prometheus.Counter
	documents      *prometheus.CounterVec
}

// NewInvoiceMetrics registers the invoice metrics on the provided registerer.
func NewInvoiceMetrics(reg prometheus.Registerer) *InvoiceMetrics {
	if reg == nil {
		return &InvoiceMetrics{}
	}
	renderDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "invoice_render_duration_seconds",
		Help:    "Duration of invoice PDF rendering in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	renderFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "invoice_render_failures_total",
		Help: "Invoice renders that failed or timed out.",
	})
	documents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "invoice_documents_total",
		Help: "Invoice documents built, by order source.",
	}, []string{"source"})
	reg.MustRegister(renderDuration, renderFailures, documents)
	return &InvoiceMetrics{
		renderDuration: renderDuration,
		renderFailures: renderFailures,
		documents:      documents,
	}
}

// ObserveRender records one render attempt.
func (m *InvoiceMetrics) ObserveRender(duration time.Duration, ok bool) {
	if m == nil || m.renderDuration == nil {
		return
	}
	outcome := outcomeSuccess
	if !ok {
		outcome = outcomeFailure
		m.renderFailures.Inc()
	}
	m.renderDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

// IncDocuments counts a built document.
func (m *InvoiceMetrics) IncDocuments(source string) {
	if m == nil || m.documents == nil {
		return
	}
	m.documents.WithLabelValues(normalizeLabel(source)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
