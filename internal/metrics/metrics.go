package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/samvad-hq/ltiaas-client/pkg/ltiaas"
)

const (
	NAMESPACE = "ltiaas"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: NAMESPACE,
		Name:      "upstream_requests_total",
		Help:      "number of requests made to the LTIaaS API, by deployment, operation and outcome",
	}, []string{"deployment", "operation", "outcome"})

	UpstreamLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: NAMESPACE,
		Name:      "upstream_request_seconds",
		Help:      "latency of requests made to the LTIaaS API",
		Buckets:   prometheus.DefBuckets,
	}, []string{"deployment", "operation"})

	Launches = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: NAMESPACE,
		Name:      "launches_total",
		Help:      "number of launches handled, by deployment and replay flag",
	}, []string{"deployment", "replay"})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: NAMESPACE,
		Name:      "events_published_total",
		Help:      "number of launch event deliveries, by result",
	}, []string{"result"})
)

// ClientObserver records request metrics for one deployment.
func ClientObserver(deployment string) ltiaas.Observer {
	return ltiaas.ObserverFunc(func(info ltiaas.RequestInfo) {
		op := string(info.Operation)
		UpstreamRequests.WithLabelValues(deployment, op, Outcome(info)).Inc()
		UpstreamLatency.WithLabelValues(deployment, op).Observe(info.Elapsed.Seconds())
	})
}

// Outcome buckets a request result into a low-cardinality label.
func Outcome(info ltiaas.RequestInfo) string {
	switch {
	case info.Err == nil:
		return "ok"
	case info.StatusCode == 0:
		return "transport_error"
	case info.StatusCode >= 200 && info.StatusCode < 300:
		return "decode_error"
	default:
		return "status_" + strconv.Itoa(info.StatusCode/100) + "xx"
	}
}

// RecordLaunch counts a handled launch.
func RecordLaunch(deployment string, replay bool) {
	Launches.WithLabelValues(deployment, strconv.FormatBool(replay)).Inc()
}
