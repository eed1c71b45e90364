package server

import (
	"time"

	"github.com/lojista-hq/lojista/internal/models"
	"github.com/lojista-hq/lojista/internal/store/postgres"
)

// Wire representations. Kept separate from the domain models so the
// JSON surface can stay stable while the internals move.

type customerResponse struct {
	ID                  string    `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email,omitempty"`
	Phone               string    `json:"phone,omitempty"`
	DocumentType        string    `json:"documentType,omitempty"`
	DocumentNumber      string    `json:"documentNumber,omitempty"`
	AddressZipCode      string    `json:"addressZipCode,omitempty"`
	AddressStreet       string    `json:"addressStreet,omitempty"`
	AddressNumber       string    `json:"addressNumber,omitempty"`
	AddressComplement   string    `json:"addressComplement,omitempty"`
	AddressNeighborhood string    `json:"addressNeighborhood,omitempty"`
	AddressCity         string    `json:"addressCity,omitempty"`
	AddressState        string    `json:"addressState,omitempty"`
	Notes               string    `json:"notes,omitempty"`
	CreatedAt           time.Time `json:"createdAt"`
}

func renderCustomer(c *models.Customer) customerResponse {
	return customerResponse{
		ID:                  c.CustomerID.String(),
		Name:                c.Name,
		Email:               c.Email,
		Phone:               c.Phone,
		DocumentType:        c.DocumentType,
		DocumentNumber:      c.DocumentNumber,
		AddressZipCode:      c.AddressZipCode,
		AddressStreet:       c.AddressStreet,
		AddressNumber:       c.AddressNumber,
		AddressComplement:   c.AddressComplement,
		AddressNeighborhood: c.AddressNeighborhood,
		AddressCity:         c.AddressCity,
		AddressState:        c.AddressState,
		Notes:               c.Notes,
		CreatedAt:           c.CreatedAt,
	}
}

func renderCustomers(customers []*models.Customer) []customerResponse {
	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, renderCustomer(c))
	}
	return out
}

type productResponse struct {
	ID            string    `json:"id"`
	SKU           string    `json:"sku,omitempty"`
	Name          string    `json:"name"`
	Category      string    `json:"category,omitempty"`
	UnitOfMeasure string    `json:"unitOfMeasure,omitempty"`
	PriceCents    int64     `json:"priceCents"`
	CostCents     int64     `json:"costCents"`
	StockQuantity int64     `json:"stockQuantity"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

func renderProduct(p *models.Product) productResponse {
	return productResponse{
		ID:            p.ProductID.String(),
		SKU:           p.SKU,
		Name:          p.Name,
		Category:      p.Category,
		UnitOfMeasure: p.UnitOfMeasure,
		PriceCents:    p.PriceCents,
		CostCents:     p.CostCents,
		StockQuantity: p.StockQuantity,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
	}
}

func renderProducts(products []*models.Product) []productResponse {
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, renderProduct(p))
	}
	return out
}

type orderItemResponse struct {
	ProductID      string `json:"productId"`
	ProductName    string `json:"productName"`
	Quantity       int64  `json:"quantity"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	TotalCents     int64  `json:"totalCents"`
}

type paymentResponse struct {
	ID                string     `json:"id"`
	InstallmentNumber int        `json:"installmentNumber"`
	AmountCents       int64      `json:"amountCents"`
	DueDate           time.Time  `json:"dueDate"`
	PaymentDate       *time.Time `json:"paymentDate,omitempty"`
	Status            string     `json:"status"`
	MethodReceived    string     `json:"methodReceived,omitempty"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	CustomerID    string              `json:"customerId"`
	TotalCents    int64               `json:"totalCents"`
	PaymentMethod string              `json:"paymentMethod"`
	Status        string              `json:"status"`
	Notes         string              `json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"createdAt"`
	Items         []orderItemResponse `json:"items"`
	Payments      []paymentResponse   `json:"payments"`
}

func renderOrder(o *models.SalesOrder) orderResponse {
	resp := orderResponse{
		ID:            o.OrderID.String(),
		CustomerID:    o.CustomerID.String(),
		TotalCents:    o.TotalCents,
		PaymentMethod: o.PaymentMethod,
		Status:        o.Status,
		Notes:         o.Notes,
		CreatedAt:     o.CreatedAt,
		Items:         make([]orderItemResponse, 0, len(o.Items)),
		Payments:      make([]paymentResponse, 0, len(o.Payments)),
	}
	for _, item := range o.Items {
		resp.Items = append(resp.Items, orderItemResponse{
			ProductID:      item.ProductID.String(),
			ProductName:    item.ProductName,
			Quantity:       item.Quantity,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}
	for _, p := range o.Payments {
		resp.Payments = append(resp.Payments, paymentResponse{
			ID:                p.PaymentID.String(),
			InstallmentNumber: p.InstallmentNumber,
			AmountCents:       p.AmountCents,
			DueDate:           p.DueDate,
			PaymentDate:       p.PaymentDate,
			Status:            p.Status,
			MethodReceived:    p.MethodReceived,
		})
	}
	return resp
}

type tenantResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	SchemaName  string    `json:"schemaName"`
	Status      string    `json:"status"`
	MaxSessions int       `json:"maxSessions"`
	CreatedAt   time.Time `json:"createdAt"`
	AdminEmail  string    `json:"adminEmail,omitempty"`
	LoginCount  int64     `json:"loginCount,omitempty"`
}

func renderTenant(t *models.Tenant) tenantResponse {
	return tenantResponse{
		ID:          t.TenantID.String(),
		Name:        t.Name,
		SchemaName:  t.SchemaName,
		Status:      t.Status,
		MaxSessions: t.MaxSessions,
		CreatedAt:   t.CreatedAt,
	}
}

func renderTenantOverviews(tenants []*postgres.TenantOverview) []tenantResponse {
	out := make([]tenantResponse, 0, len(tenants))
	for _, t := range tenants {
		resp := renderTenant(&t.Tenant)
		resp.AdminEmail = t.AdminEmail
		resp.LoginCount = t.LoginCount
		out = append(out, resp)
	}
	return out
}

type activeSessionResponse struct {
	SessionID  string    `json:"sessionId"`
	Email      string    `json:"email"`
	TenantName string    `json:"tenantName"`
	LastSeen   time.Time `json:"lastSeen"`
}

func renderActiveSessions(sessions []*models.ActiveSession) []activeSessionResponse {
	out := make([]activeSessionResponse, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, activeSessionResponse{
			SessionID:  s.SessionID.String(),
			Email:      s.Email,
			TenantName: s.TenantName,
			LastSeen:   s.LastSeen,
		})
	}
	return out
}
