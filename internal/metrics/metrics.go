package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otc_orders_created_total",
		Help: "Sell orders accepted into the book.",
	})

	Mints = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otc_mints_total",
		Help: "Faucet mint operations.",
	})

	Contributions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otc_liquidity_contributions_total",
		Help: "Liquidity contributions (creates and increases).",
	})

	Matches = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otc_matches_total",
		Help: "Orders settled against a liquidity pool.",
	})

	MatchFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "otc_match_failures_total",
		Help: "Match attempts rejected by a precondition.",
	})
)

// Handler exposes the standard prometheus endpoint.
func Handler() http.Handler { return promhttp.Handler() }
