package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// OrderMetrics counts checkout outcomes so stock contention is visible
// without reading logs.
type OrderMetrics struct {
	OrdersPlaced    prometheus.Counter
	OrdersRejected  *prometheus.CounterVec
	StockConflicts  prometheus.Counter
	OrdersCancelled prometheus.Counter
}

func NewOrderMetrics() *OrderMetrics {
	placed := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_placed_total",
		Help:      "Total number of successfully placed orders.",
	})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_rejected_total",
		Help:      "Total number of rejected checkout requests.",
	}, []string{"reason"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "stock_conflicts_total",
		Help:      "Total number of checkouts that lost the race for stock.",
	})
	cancelled := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "orders_cancelled_total",
		Help:      "Total number of cancelled orders.",
	})

	prometheus.MustRegister(placed, rejected, conflicts, cancelled)
	return &OrderMetrics{
		OrdersPlaced:    placed,
		OrdersRejected:  rejected,
		StockConflicts:  conflicts,
		OrdersCancelled: cancelled,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
