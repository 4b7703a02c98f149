package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry: счётчики магазина в собственном реестре Prometheus.
type Registry struct {
	reg *prometheus.Registry

	Quotes             *prometheus.CounterVec
	QuotedPrice        prometheus.Histogram
	CartLinesAdded     *prometheus.CounterVec
	ValidationRejected *prometheus.CounterVec
	CartPersistFailed  prometheus.Counter
	OrdersSubmitted    prometheus.Counter
	OrdersFailed       prometheus.Counter
	OrderStatusChanged *prometheus.CounterVec
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	quotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_quotes_total",
		Help: "Price quotes computed, by product family.",
	}, []string{"family"})
	quotedPrice := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "shop_quoted_unit_price_rub",
		Help:    "Quoted unit prices.",
		Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
	})
	linesAdded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_cart_lines_added_total",
		Help: "Lines added to carts, by product family.",
	}, []string{"family"})
	rejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_validation_rejected_total",
		Help: "Cart-add attempts blocked by validation, by field.",
	}, []string{"field"})
	persistFailed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shop_cart_persist_failed_total",
		Help: "Cart changes applied in memory but not persisted.",
	})
	submitted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_submitted_total",
	})
	failed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shop_orders_failed_total",
	})
	statusChanged := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "shop_order_status_changed_total",
	}, []string{"status"})

	r.MustRegister(quotes, quotedPrice, linesAdded, rejected, persistFailed, submitted, failed, statusChanged)
	return &Registry{
		reg:                r,
		Quotes:             quotes,
		QuotedPrice:        quotedPrice,
		CartLinesAdded:     linesAdded,
		ValidationRejected: rejected,
		CartPersistFailed:  persistFailed,
		OrdersSubmitted:    submitted,
		OrdersFailed:       failed,
		OrderStatusChanged: statusChanged,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
