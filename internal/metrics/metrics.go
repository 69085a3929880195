package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	queueDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automator_queue_decisions_total", Help: "Domain events offered to trigger queues",
	}, []string{"integration", "endpoint", "result"})

	queueDrained = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automator_queue_drained_entries_total", Help: "Entries handed to automation services",
	}, []string{"integration", "endpoint"})

	queuePruned = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automator_queue_pruned_entries_total", Help: "Entries dropped past retention",
	}, []string{"queue"})

	endpointRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automator_endpoint_requests_total", Help: "REST endpoint requests by outcome",
	}, []string{"integration", "endpoint", "code"})

	ajaxRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "automator_ajax_requests_total", Help: "Admin ajax actions by outcome",
	}, []string{"action", "success"})

	mirrorErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "automator_mirror_errors_total", Help: "Queued entries the mirror failed to publish",
	})
)

// QueueDecision counts one trigger validation outcome.
func QueueDecision(integration, endpoint string, queued bool) {
	result := "rejected"
	if queued {
		result = "queued"
	}
	queueDecisions.WithLabelValues(integration, endpoint, result).Inc()
}

func QueueDrained(integration, endpoint string, n int) {
	queueDrained.WithLabelValues(integration, endpoint).Add(float64(n))
}

func QueuePruned(queue string, n int64) {
	queuePruned.WithLabelValues(queue).Add(float64(n))
}

func EndpointRequest(integration, endpoint string, code int) {
	endpointRequests.WithLabelValues(integration, endpoint, strconv.Itoa(code)).Inc()
}

func AjaxRequest(action string, success bool) {
	ajaxRequests.WithLabelValues(action, strconv.FormatBool(success)).Inc()
}

func MirrorError() {
	mirrorErrors.Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
