package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/lojista-hq/lojista"

// Metrics holds all the OpenTelemetry metric instruments.
type Metrics struct {
	// Sales metrics
	OrdersCreatedTotal  metric.Int64Counter
	OrdersRejectedTotal metric.Int64Counter
	OrderTotalCents     metric.Int64Histogram

	// Session metrics
	SessionsAdmittedTotal metric.Int64Counter
	SessionsDeniedTotal   metric.Int64Counter
	SessionsPrunedTotal   metric.Int64Counter

	// Tenant metrics
	TenantsApprovedTotal metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.OrdersCreatedTotal, _ = meter.Int64Counter(
		"lojista.orders.created.total",
		metric.WithDescription("Total number of sales orders committed"),
		metric.WithUnit("{order}"),
	)

	m.OrdersRejectedTotal, _ = meter.Int64Counter(
		"lojista.orders.rejected.total",
		metric.WithDescription("Total number of sales orders rejected before commit"),
		metric.WithUnit("{order}"),
	)

	m.OrderTotalCents, _ = meter.Int64Histogram(
		"lojista.orders.total_cents",
		metric.WithDescription("Distribution of committed order totals"),
		metric.WithUnit("{cent}"),
	)

	m.SessionsAdmittedTotal, _ = meter.Int64Counter(
		"lojista.sessions.admitted.total",
		metric.WithDescription("Total number of sessions admitted under the license ceiling"),
		metric.WithUnit("{session}"),
	)

	m.SessionsDeniedTotal, _ = meter.Int64Counter(
		"lojista.sessions.denied.total",
		metric.WithDescription("Total number of logins denied by the license ceiling"),
		metric.WithUnit("{session}"),
	)

	m.SessionsPrunedTotal, _ = meter.Int64Counter(
		"lojista.sessions.pruned.total",
		metric.WithDescription("Total number of stale sessions pruned by the janitor"),
		metric.WithUnit("{session}"),
	)

	m.TenantsApprovedTotal, _ = meter.Int64Counter(
		"lojista.tenants.approved.total",
		metric.WithDescription("Total number of tenants approved and provisioned"),
		metric.WithUnit("{tenant}"),
	)

	return m
}
