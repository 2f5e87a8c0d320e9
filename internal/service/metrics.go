package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Upload result label values.
const (
	uploadResultSuccess     = "success"
	uploadResultFailure     = "failure"
	uploadResultCompensated = "compensated"
)

// Metrics holds the catalog collectors. A nil *Metrics records nothing.
type Metrics struct {
	updateConflicts prometheus.Counter
	imageUploads    *prometheus.CounterVec
}

// NewMetrics registers the catalog collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		updateConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "catalog_update_conflicts_total",
			Help: "Product writes rejected because the stored version had moved on",
		}),
		imageUploads: f.NewCounterVec(prometheus.CounterOpts{
			Name: "image_uploads_total",
			Help: "Image uploads by result",
		}, []string{"result"}),
	}
}

func (m *Metrics) conflict() {
	if m == nil {
		return
	}
	m.updateConflicts.Inc()
}

func (m *Metrics) upload(result string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.imageUploads.WithLabelValues(result).Add(float64(n))
}
