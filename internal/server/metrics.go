package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecal_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecal_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// Calibration metrics
	calibrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sitecal_calibrations_total",
			Help: "Total number of calibration requests",
		},
		[]string{"method", "status"}, // status: ok, invalid_input, degenerate, numerical_error
	)

	calibrationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sitecal_calibration_duration_seconds",
			Help:    "Calibration processing duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"method"},
	)

	controlPointCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sitecal_control_points",
			Help:    "Number of matched control points per calibration",
			Buckets: []float64{3, 4, 5, 8, 12, 20, 50, 100},
		},
	)
)
