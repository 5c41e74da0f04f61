// Package metrics exports engine and HTTP metrics to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"zkbattleship/internal/game"
)

const (
	namespace     = "battleship"
	subsystemGame = "game"
	subsystemHTTP = "http"

	LabelOperation = "operation"
	LabelCode      = "code"
	LabelResult    = "result"
	LabelKind      = "kind"
	LabelRoute     = "route"
	LabelStatus    = "status"
)

type Collector struct {
	operations *prometheus.CounterVec
	proofs     *prometheus.HistogramVec
	finished   prometheus.Counter
	requests   *prometheus.HistogramVec
}

var _ game.Metrics = (*Collector)(nil)

// NewCollector registers the collectors with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	f := promauto.With(reg)
	return &Collector{
		operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemGame,
			Name:      "operations_total",
			Help:      "state-changing operations by outcome; code is 0 on success",
		}, []string{LabelOperation, LabelResult, LabelCode}),
		proofs: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemGame,
			Name:      "proof_verification_seconds",
			Help:      "time spent checking zero-knowledge proofs",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{LabelKind, LabelResult}),
		finished: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemGame,
			Name:      "games_finished_total",
			Help:      "games that reached a winner",
		}),
		requests: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystemHTTP,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelRoute, LabelStatus}),
	}
}

func (c *Collector) OperationCompleted(op string, code game.Code, ok bool) {
	result := "accepted"
	if !ok {
		result = "rejected"
	}
	c.operations.With(prometheus.Labels{
		LabelOperation: op,
		LabelResult:    result,
		LabelCode:      strconv.FormatUint(uint64(code), 10),
	}).Inc()
}

func (c *Collector) ProofVerified(kind string, valid bool, d time.Duration) {
	result := "valid"
	if !valid {
		result = "invalid"
	}
	c.proofs.With(prometheus.Labels{LabelKind: kind, LabelResult: result}).Observe(d.Seconds())
}

func (c *Collector) GameFinished() {
	c.finished.Inc()
}

func (c *Collector) RequestServed(route string, status int, d time.Duration) {
	c.requests.With(prometheus.Labels{
		LabelRoute:  route,
		LabelStatus: strconv.Itoa(status),
	}).Observe(d.Seconds())
}
