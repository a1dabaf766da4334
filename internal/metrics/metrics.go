// Package metrics defines the Prometheus collectors exposed at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tims"

// MovementsTotal counts stock movement attempts.
// Labels:
//   - type: in | out
//   - outcome: recorded | insufficient_stock | not_found | invalid | error
var MovementsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_movements_total",
		Help:      "Stock movements by type and outcome.",
	},
	[]string{"type", "outcome"},
)

// MovedUnitsTotal sums the quantity of recorded movements.
var MovedUnitsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_moved_units_total",
		Help:      "Units moved by recorded movements, by type.",
	},
	[]string{"type"},
)

// ImportRowsTotal counts CSV rows applied by bulk import.
// Label:
//   - action: created | updated
var ImportRowsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "import_rows_total",
		Help:      "Product rows upserted by CSV import.",
	},
	[]string{"action"},
)

// LoginsTotal counts login attempts.
// Label:
//   - result: success | failure
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	},
	[]string{"result"},
)

// AccessDeniedTotal counts gate denials.
// Label:
//   - reason: deny_unauthenticated | deny_forbidden
var AccessDeniedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "access_denied_total",
		Help:      "Requests refused by the access control gate.",
	},
	[]string{"reason"},
)

// FeedClients is the number of connected live-feed websocket clients.
var FeedClients = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Name:      "feed_clients",
	Help:      "Connected live-feed websocket clients.",
})
