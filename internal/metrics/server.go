package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// NewServer returns an http server answering /metrics from g. The caller owns
// its lifecycle.
func NewServer(log zerolog.Logger, addr string, g prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	endpoint := "/metrics"
	mux.Handle(endpoint, promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	log.Info().Str("address", addr).Str("endpoint", endpoint).Msg("metrics server configured")
	return &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
}
