package models

import (
	"time"

	"github.com/google/uuid"
)

// Product statuses.
const (
	ProductStatusActive   = "active"
	ProductStatusInactive = "inactive"
)

// Product lives in the tenant schema. Prices are integer minor currency
// units; stock is decremented atomically by the sales engine and never
// goes negative.
type Product struct {
	ProductID     uuid.UUID // UUIDv7
	SKU           string    // unique within the tenant when present
	Name          string
	Category      string
	UnitOfMeasure string
	PriceCents    int64
	CostCents     int64
	StockQuantity int64
	Status        string
	CreatedAt     time.Time
}
