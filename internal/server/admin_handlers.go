package server

import (
	"net/http"

	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/pipeline"
	"github.com/lojista-hq/lojista/internal/telemetry"
)

func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	tenants, err := s.tenants.List(r.Context(), pc.Lease)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderTenantOverviews(tenants))
}

func (s *Server) handleApproveTenant(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tenant, err := s.tenants.Approve(r.Context(), pc.Lease, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	telemetry.GetMetrics().TenantsApprovedTotal.Add(r.Context(), 1)

	httpx.WriteJSON(w, http.StatusOK, renderTenant(tenant))
}

type tenantStatusInput struct {
	Status string `json:"status"`
}

func (s *Server) handleSetTenantStatus(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var in tenantStatusInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := s.tenants.SetStatus(r.Context(), pc.Lease, id, in.Status); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	tenant, err := s.tenants.Get(r.Context(), pc.Lease, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderTenant(tenant))
}

func (s *Server) handleActiveSessions(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	sessions, err := s.sessions.ListActive(r.Context(), pc.Lease, s.cfg.ActiveSessionWindow)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderActiveSessions(sessions))
}
