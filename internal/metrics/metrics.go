package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationDuration tracks how long content generation takes per type
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "framestorm_generation_duration_seconds",
			Help:    "Duration of content generation runs in seconds",
			Buckets: []float64{0.5, 1, 2, 3, 4, 6, 8, 10, 15, 30, 60},
		},
		[]string{"type", "status"}, // status: success, failure or superseded
	)

	CampaignsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framestorm_campaigns_created_total",
			Help: "Campaigns created, by type",
		},
		[]string{"type"},
	)

	UploadAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "framestorm_upload_attempts_total",
			Help: "Upload attempts against social accounts, by outcome",
		},
		[]string{"platform", "outcome"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "framestorm_http_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
			Buckets: []float64{
				0.001, // 1ms
				0.005, // 5ms
				0.01,  // 10ms
				0.025, // 25ms
				0.05,  // 50ms
				0.1,   // 100ms
				0.25,  // 250ms
				0.5,   // 500ms
				1.0,   // 1s
				2.5,   // 2.5s
				5.0,   // 5s
				10.0,  // 10s
			},
		},
		[]string{"route", "method", "code"},
	)
)

// RecordGeneration records the duration of a finished generation run
func RecordGeneration(contentType, status string, duration float64) {
	GenerationDuration.WithLabelValues(contentType, status).Observe(duration)
}

func RecordCampaignCreated(campaignType string) {
	CampaignsCreated.WithLabelValues(campaignType).Inc()
}

func RecordUploadAttempt(platform, outcome string) {
	UploadAttempts.WithLabelValues(platform, outcome).Inc()
}

func RecordHTTPRequest(route, method, code string, duration float64) {
	HTTPRequestDuration.WithLabelValues(route, method, code).Observe(duration)
}
