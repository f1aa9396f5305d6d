package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// InventoryMetrics records stock movement outcomes.
type InventoryMetrics struct {
	deductions        *prometheus.CounterVec
	conversions       prometheus.Counter
	insufficientStock *prometheus.CounterVec
	ordersCreated     prometheus.Counter
	orderItems        prometheus.Histogram
}

// NewInventoryMetrics registers the inventory metrics on the provided registerer.
func NewInventoryMetrics(reg prometheus.Registerer) *InventoryMetrics {
	if reg == nil {
		return &InventoryMetrics{}
	}
	deductions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_deductions_total",
		Help: "Successful stock deductions by purchase type.",
	}, []string{"purchase_type"})
	conversions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inventory_bottle_conversions_total",
		Help: "Sealed bottles opened into the decant pool.",
	})
	insufficient := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventory_insufficient_stock_total",
		Help: "Deductions rejected for insufficient stock by purchase type.",
	}, []string{"purchase_type"})
	ordersCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_created_total",
		Help: "Orders persisted after successful inventory deduction.",
	})
	orderItems := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "order_line_items",
		Help:    "Line items per created order.",
		Buckets: []float64{1, 2, 3, 5, 8, 13, 21},
	})
	reg.MustRegister(deductions, conversions, insufficient, ordersCreated, orderItems)
	return &InventoryMetrics{
		deductions:        deductions,
		conversions:       conversions,
		insufficientStock: insufficient,
		ordersCreated:     ordersCreated,
		orderItems:        orderItems,
	}
}

// IncDeduction increments the successful deduction counter.
func (m *InventoryMetrics) IncDeduction(purchaseType string) {
	if m == nil || m.deductions == nil {
		return
	}
	m.deductions.WithLabelValues(normalizeLabel(purchaseType)).Inc()
}

// AddConversions records sealed bottles opened during a deduction.
func (m *InventoryMetrics) AddConversions(count int) {
	if m == nil || m.conversions == nil || count <= 0 {
		return
	}
	m.conversions.Add(float64(count))
}

// IncInsufficientStock increments the rejected deduction counter.
func (m *InventoryMetrics) IncInsufficientStock(purchaseType string) {
	if m == nil || m.insufficientStock == nil {
		return
	}
	m.insufficientStock.WithLabelValues(normalizeLabel(purchaseType)).Inc()
}

// ObserveOrderCreated records a persisted order and its line item count.
func (m *InventoryMetrics) ObserveOrderCreated(itemCount int) {
	if m == nil || m.ordersCreated == nil {
		return
	}
	m.ordersCreated.Inc()
	m.orderItems.Observe(float64(itemCount))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
