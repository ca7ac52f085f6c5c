package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomservice",
			Name:      "orders_created_total",
			Help:      "Orders persisted, by payment method.",
		},
		[]string{"payment_method"},
	)

	orderRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomservice",
			Name:      "order_rejections_total",
			Help:      "Order submissions rejected by validation, by kind.",
		},
		[]string{"kind"},
	)

	statusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomservice",
			Name:      "order_status_changes_total",
			Help:      "Accepted status transitions, by target status.",
		},
		[]string{"status"},
	)

	roomScans = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roomservice",
			Name:      "room_scans_total",
			Help:      "QR scans, by result (granted, rejected).",
		},
		[]string{"result"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(ordersCreated, orderRejections, statusChanges, roomScans)
	})
}

func IncOrderCreated(paymentMethod string) {
	ordersCreated.WithLabelValues(paymentMethod).Inc()
}

func IncOrderRejected(kind string) {
	orderRejections.WithLabelValues(kind).Inc()
}

func IncStatusChange(status string) {
	statusChanges.WithLabelValues(status).Inc()
}

func IncRoomScan(result string) {
	roomScans.WithLabelValues(result).Inc()
}
