package models

import (
	"time"

	"github.com/google/uuid"
)

// Customer document types (natural or legal person).
const (
	DocumentTypePF = "PF"
	DocumentTypePJ = "PJ"
)

// Customer lives in the tenant schema. Plain CRUD entity; referenced by
// sales orders.
type Customer struct {
	CustomerID uuid.UUID // UUIDv7
	Name       string
	Email      string
	Phone      string

	// Document number is unique per type within the tenant when present.
	DocumentType   string
	DocumentNumber string

	AddressZipCode      string
	AddressStreet       string
	AddressNumber       string
	AddressComplement   string
	AddressNeighborhood string
	AddressCity         string
	AddressState        string

	Notes     string
	CreatedAt time.Time
}
