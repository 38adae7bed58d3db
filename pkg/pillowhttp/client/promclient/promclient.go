// Package promclient wires client.Metrics to Prometheus, grounded on the
// teacher's buffer_pool_prometheus.go (per-size CounterVec/GaugeVec
// registered via promauto, a Namespace/Subsystem/Name/Help layout per
// metric). Unlike that file's package-level globals gated by a
// "prometheus" build tag, metrics here are instance-scoped so more than
// one Client's Recorder can be registered against the same process
// without colliding, and the dependency is opt-in via import rather than
// a build tag: importing this package is itself the opt-in.
package promclient

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/3E-972/pillow/pkg/pillowhttp/client"
)

// Recorder implements client.Metrics against a set of Prometheus vectors
// registered into reg (or the default registry if reg is nil).
type Recorder struct {
	requestsStarted  *prometheus.CounterVec
	requestsFinished *prometheus.CounterVec
	connectionsOpened *prometheus.CounterVec
	connectionsReused *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec

	clock func() time.Time
	// inFlight tracks per-(method,host) start times so
	// RequestFinished can report duration without the caller having to
	// plumb a timer through client.Client.
	inFlight map[string]time.Time
}

// NewRecorder registers the client engine's metrics into reg (pass nil
// to use prometheus.DefaultRegisterer) and returns a Recorder ready to
// pass to client.Client.SetMetrics.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		requestsStarted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pillowhttp",
			Subsystem: "client",
			Name:      "requests_started_total",
			Help:      "Total number of requests issued (excludes pipelining refusals).",
		}, []string{"method", "host"}),

		requestsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pillowhttp",
			Subsystem: "client",
			Name:      "requests_finished_total",
			Help:      "Total number of requests that completed or failed, by outcome.",
		}, []string{"method", "host", "status", "error"}),

		connectionsOpened: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pillowhttp",
			Subsystem: "client",
			Name:      "connections_opened_total",
			Help:      "Total number of new Transport connections dialed.",
		}, []string{"host"}),

		connectionsReused: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pillowhttp",
			Subsystem: "client",
			Name:      "connections_reused_total",
			Help:      "Total number of requests that reused an existing connection.",
		}, []string{"host"}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pillowhttp",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Time from request start to completion or failure.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "host"}),

		clock:    time.Now,
		inFlight: make(map[string]time.Time),
	}
}

// RequestStarted implements client.Metrics.
func (r *Recorder) RequestStarted(method, host string) {
	r.requestsStarted.WithLabelValues(method, host).Inc()
	r.inFlight[method+" "+host] = r.clock()
}

// RequestFinished implements client.Metrics.
func (r *Recorder) RequestFinished(method, host string, status int, err client.ErrorKind) {
	key := method + " " + host
	if start, ok := r.inFlight[key]; ok {
		r.requestDuration.WithLabelValues(method, host).Observe(r.clock().Sub(start).Seconds())
		delete(r.inFlight, key)
	}
	r.requestsFinished.WithLabelValues(method, host, strconv.Itoa(status), err.String()).Inc()
}

// ConnectionOpened implements client.Metrics.
func (r *Recorder) ConnectionOpened(host string) {
	r.connectionsOpened.WithLabelValues(host).Inc()
}

// ConnectionReused implements client.Metrics.
func (r *Recorder) ConnectionReused(host string) {
	r.connectionsReused.WithLabelValues(host).Inc()
}
