package server

import (
	"net/http"
	"time"

	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/models"
	"github.com/lojista-hq/lojista/internal/pipeline"
)

func (s *Server) handleListProducts(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	search, limit, offset, err := s.listParams(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	products, err := s.products.List(r.Context(), pc.Lease, search, limit, offset)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderProducts(products))
}

func (s *Server) handleGetProduct(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	product, err := s.products.Get(r.Context(), pc.Lease, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderProduct(product))
}

func (s *Server) handleCreateProduct(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	var in ProductInput
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

	product := &models.Product{ProductID: id, CreatedAt: time.Now()}
	in.apply(product)

	if err := s.products.Create(r.Context(), pc.Lease, product); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, renderProduct(product))
}

func (s *Server) handleUpdateProduct(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	var in ProductInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	product, err := s.products.Get(r.Context(), pc.Lease, id)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	in.apply(product)

	if err := s.products.Update(r.Context(), pc.Lease, product); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, renderProduct(product))
}

func (s *Server) handleDeleteProduct(w http.ResponseWriter, r *http.Request, pc *pipeline.Ctx) {
	id, err := pathID(r)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	if err := s.products.Delete(r.Context(), pc.Lease, id); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
