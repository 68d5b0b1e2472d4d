// Package metrics holds the Prometheus collectors of the POS service.
//
// Wire it once in cmd/api:
//
//	app.Use(metrics.Middleware())
//	app.Get("/metrics", metrics.Handler())
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pos"

var (
	// RequestDuration tracks HTTP latency by method, route and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// SalesRecorded counts persisted sales by type (individual | bulk_daily).
	SalesRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "recorded_total",
			Help:      "Total sales persisted.",
		},
		[]string{"type"},
	)

	// SalesRevenue accumulates revenue of persisted sales by type.
	SalesRevenue = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "revenue_total",
			Help:      "Revenue of persisted sales.",
		},
		[]string{"type"},
	)

	// OrchestrationStepFailures counts failed steps of checkout, day close and restock.
	OrchestrationStepFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "step_failures_total",
			Help:      "Failed steps of multi-step sale and restock flows.",
		},
		[]string{"flow", "step"},
	)

	// CashMovements counts ledger entries by type.
	CashMovements = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cash",
			Name:      "movements_total",
			Help:      "Total cash movements recorded.",
		},
		[]string{"type"},
	)

	// BarcodeLookups counts lookups by source (cache | openfoodfacts | upcitemdb | none).
	BarcodeLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "barcode",
			Name:      "lookups_total",
			Help:      "Barcode lookups by answering source.",
		},
		[]string{"source"},
	)

	// RealtimeClients is the number of open websocket subscriptions.
	RealtimeClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "realtime",
		Name:      "clients",
		Help:      "Open realtime websocket connections.",
	})

	// MembershipProvisions counts workspaces auto-created for new users.
	MembershipProvisions = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "members",
		Name:      "provisioned_total",
		Help:      "Workspaces auto-provisioned for brand-new users.",
	})
)

// Registry is the registry served on /metrics.
var Registry = prometheus.NewRegistry()

func init() {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	Registry.MustRegister(
		RequestDuration,
		SalesRecorded,
		SalesRevenue,
		OrchestrationStepFailures,
		CashMovements,
		BarcodeLookups,
		RealtimeClients,
		MembershipProvisions,
	)
}

// Middleware records RequestDuration for every request.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		path := c.Route().Path
		RequestDuration.
			WithLabelValues(c.Method(), path, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves Registry in the Prometheus text format.
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(Registry, promhttp.HandlerOpts{}))
}
