package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrcpresence_http_requests_total",
		Help: "Total number of HTTP requests, labelled by route and status.",
	}, []string{"path", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vrcpresence_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds, labelled by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})

	analysesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vrcpresence_analyses_total",
		Help: "Total number of log analyses, labelled by outcome.",
	}, []string{"outcome"})

	eventsParsed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "vrcpresence_events_parsed_total",
		Help: "Total number of events parsed out of uploaded logs.",
	})

	uploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "vrcpresence_upload_bytes",
		Help:    "Size distribution of uploaded log payloads in bytes.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})
)
