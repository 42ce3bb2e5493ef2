package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics tracks checkout pipeline outcomes.
type CheckoutMetrics struct {
	ordersCreated   prometheus.Counter
	checkoutsFailed *prometheus.CounterVec
	couponsChecked  *prometheus.CounterVec
}

// NewCheckoutMetrics registers the checkout metrics against the default
// registerer.
func NewCheckoutMetrics() *CheckoutMetrics {
	return NewCheckoutMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCheckoutMetricsWithRegisterer is used by tests to register against an
// isolated registry.
func NewCheckoutMetricsWithRegisterer(registerer prometheus.Registerer) *CheckoutMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	m := &CheckoutMetrics{
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "zenbuy_orders_created_total",
			Help: "Total number of orders created successfully",
		}),
		checkoutsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zenbuy_checkouts_failed_total",
			Help: "Total number of failed checkout attempts by reason",
		}, []string{"reason"}),
		couponsChecked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "zenbuy_coupon_validations_total",
			Help: "Total number of coupon validation requests by result",
		}, []string{"result"}),
	}

	registerer.MustRegister(m.ordersCreated, m.checkoutsFailed, m.couponsChecked)

	return m
}

func (m *CheckoutMetrics) OrderCreated() {
	m.ordersCreated.Inc()
}

func (m *CheckoutMetrics) CheckoutFailed(reason string) {
	m.checkoutsFailed.WithLabelValues(reason).Inc()
}

func (m *CheckoutMetrics) CouponChecked(result string) {
	m.couponsChecked.WithLabelValues(result).Inc()
}
