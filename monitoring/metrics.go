package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scanValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scan_validations_total",
			Help: "Total ticket validation attempts per event and result",
		},
		[]string{"event_id", "result"},
	)

	scanDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scan_validation_duration_seconds",
			Help:    "Duration of the validation engine per result",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"result"},
	)

	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Total tickets generated per event",
		},
		[]string{"event_id"},
	)
)

// TrackValidation 記錄一次驗票結果
func TrackValidation(eventID, result string, duration time.Duration) {
	scanValidations.WithLabelValues(eventID, result).Inc()
	scanDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// TrackIssuance 記錄發票數量
func TrackIssuance(eventID string, count int) {
	ticketsIssued.WithLabelValues(eventID).Add(float64(count))
}
