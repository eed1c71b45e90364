package server

import (
	"net/http"
	"time"

	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/models"
	"github.com/lojista-hq/lojista/internal/pipeline"
)

func (s *Server) handleListCustomers(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	search, limit, offset, err := s.listParams(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	customers, err := s.customers.List(r.Context(), pc.Lease, search, limit, offset)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCustomers(customers))
}

func (s *Server) handleGetCustomer(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	customer, err := s.customers.Get(r.Context(), pc.Lease, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCustomer(customer))
}

func (s *Server) handleCreateCustomer(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	var in CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	id, err := newUUIDv7()
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	customer := &models.Customer{CustomerID: id, CreatedAt: time.Now()}
	in.apply(customer)

	if err := s.customers.Create(r.Context(), pc.Lease, customer); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderCustomer(customer))
}

func (s *Server) handleUpdateCustomer(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var in CustomerInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	customer, err := s.customers.Get(r.Context(), pc.Lease, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	in.apply(customer)

	if err := s.customers.Update(r.Context(), pc.Lease, customer); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderCustomer(customer))
}

func (s *Server) handleDeleteCustomer(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := s.customers.Delete(r.Context(), pc.Lease, id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
