package server

import (
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/lojista-hq/lojista/internal/apperr"
	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/pipeline"
	"github.com/lojista-hq/lojista/internal/sales"
	"github.com/lojista-hq/lojista/internal/telemetry"
)

func (s *Server) handleCreateOrder(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	ctx := r.Context()

	var in sales.OrderInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	metrics := telemetry.GetMetrics()

	order, err := s.engine.CreateOrder(ctx, pc.Lease, &in)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.Validation, apperr.BusinessRule, apperr.NotFound:
			metrics.OrdersRejectedTotal.Add(ctx, 1,
				metric.WithAttributes(attribute.String("reason", apperr.KindOf(err).String())))
		}
		httpx.WriteError(w, r, err)
		return
	}

	metrics.OrdersCreatedTotal.Add(ctx, 1,
		metric.WithAttributes(attribute.String("payment_method", order.PaymentMethod)))
	metrics.OrderTotalCents.Record(ctx, order.TotalCents)

	httpx.WriteJSON(w, http.StatusCreated, renderOrder(order))
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	order, err := s.orders.Get(r.Context(), pc.Lease, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderOrder(order))
}
