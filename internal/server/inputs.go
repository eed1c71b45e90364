package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/lojista-hq/lojista/internal/apperr"
	httpx "github.com/lojista-hq/lojista/internal/http"
	"github.com/lojista-hq/lojista/internal/models"
)

// pathID parses the {id} path segment as a UUID.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		return uuid.Nil, httpx.FieldError("id", "must be a valid UUID")
	}
	return id, nil
}

// listParams reads the common search/limit/offset query parameters.
func (s *Server) listParams(r *http.Request) (search string, limit, offset int, err error) {
	q := r.URL.Query()
	search = strings.TrimSpace(q.Get("search"))

	limit = s.cfg.ListDefaultLimit
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 500 {
			return "", 0, 0, httpx.FieldError("limit", "must be between 1 and 500")
		}
	}

	if raw := q.Get("offset"); raw != "" {
		offset, err = strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return "", 0, 0, httpx.FieldError("offset", "must be a non-negative integer")
		}
	}

	return search, limit, offset, nil
}

// CustomerInput is the request body for creating or updating a customer.
type CustomerInput struct {
	Name                string `json:"name"`
	Email               string `json:"email,omitempty"`
	Phone               string `json:"phone,omitempty"`
	DocumentType        string `json:"documentType,omitempty"`
	DocumentNumber      string `json:"documentNumber,omitempty"`
	AddressZipCode      string `json:"addressZipCode,omitempty"`
	AddressStreet       string `json:"addressStreet,omitempty"`
	AddressNumber       string `json:"addressNumber,omitempty"`
	AddressComplement   string `json:"addressComplement,omitempty"`
	AddressNeighborhood string `json:"addressNeighborhood,omitempty"`
	AddressCity         string `json:"addressCity,omitempty"`
	AddressState        string `json:"addressState,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

// Validate checks shape-level constraints.
func (in *CustomerInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return httpx.FieldError("name", "is required")
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		return httpx.FieldError("email", "must be a valid email address")
	}
	switch in.DocumentType {
	case "", models.DocumentTypePF, models.DocumentTypePJ:
	default:
		return httpx.FieldError("documentType", "must be PF or PJ")
	}
	if in.DocumentNumber != "" && in.DocumentType == "" {
		return httpx.FieldError("documentType", "is required when documentNumber is set")
	}
	return nil
}

func (in *CustomerInput) apply(c *models.Customer) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = strings.TrimSpace(in.Phone)
	c.DocumentType = in.DocumentType
	c.DocumentNumber = strings.TrimSpace(in.DocumentNumber)
	c.AddressZipCode = in.AddressZipCode
	c.AddressStreet = in.AddressStreet
	c.AddressNumber = in.AddressNumber
	c.AddressComplement = in.AddressComplement
	c.AddressNeighborhood = in.AddressNeighborhood
	c.AddressCity = in.AddressCity
	c.AddressState = in.AddressState
	c.Notes = in.Notes
}

// ProductInput is the request body for creating or updating a product.
type ProductInput struct {
	SKU           string `json:"sku,omitempty"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	UnitOfMeasure string `json:"unitOfMeasure,omitempty"`
	PriceCents    int64  `json:"priceCents"`
	CostCents     int64  `json:"costCents,omitempty"`
	StockQuantity int64  `json:"stockQuantity"`
	Status        string `json:"status,omitempty"`
}

// Validate checks shape-level constraints.
func (in *ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return httpx.FieldError("name", "is required")
	}
	if in.PriceCents < 0 {
		return httpx.FieldError("priceCents", "must not be negative")
	}
	if in.CostCents < 0 {
		return httpx.FieldError("costCents", "must not be negative")
	}
	if in.StockQuantity < 0 {
		return httpx.FieldError("stockQuantity", "must not be negative")
	}
	switch in.Status {
	case "", models.ProductStatusActive, models.ProductStatusInactive:
	default:
		return httpx.FieldError("status", "must be active or inactive")
	}
	return nil
}

func (in *ProductInput) apply(p *models.Product) {
	p.SKU = strings.TrimSpace(in.SKU)
	p.Name = strings.TrimSpace(in.Name)
	p.Category = strings.TrimSpace(in.Category)
	p.UnitOfMeasure = in.UnitOfMeasure
	p.PriceCents = in.PriceCents
	p.CostCents = in.CostCents
	p.StockQuantity = in.StockQuantity
	p.Status = in.Status
	if p.Status == "" {
		p.Status = models.ProductStatusActive
	}
}

// newUUIDv7 wraps uuid.NewV7, mapping the (vanishingly rare) entropy
// failure to an Internal error.
func newUUIDv7() (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, apperr.Wrap(apperr.Internal, "failed to generate ID", err)
	}
	return id, nil
}
