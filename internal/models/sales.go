package models

import (
	"time"

	"github.com/google/uuid"
)

// Payment methods accepted at order creation. The avista_* methods are
// settled immediately; crediario defers payment across installments.
const (
	PaymentMethodCash      = "avista_dinheiro"
	PaymentMethodPix       = "avista_pix"
	PaymentMethodCard      = "avista_cartao"
	PaymentMethodCrediario = "crediario"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m string) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodPix, PaymentMethodCard, PaymentMethodCrediario:
		return true
	}
	return false
}

// Order statuses.
const (
	OrderStatusPaid    = "paid"
	OrderStatusPending = "pending"
)

// Payment statuses.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
)

// SalesOrder is created atomically with its items and payments and is
// immutable afterwards. TotalCents always equals the sum of its item
// line totals and the sum of its payment amounts.
type SalesOrder struct {
	OrderID       uuid.UUID // UUIDv7
	CustomerID    uuid.UUID
	TotalCents    int64
	PaymentMethod string
	Status        string
	Notes         string
	CreatedAt     time.Time

	Items    []SalesOrderItem
	Payments []Payment
}

// SalesOrderItem snapshots the product name and unit price at order
// time, so later product edits never rewrite historical orders.
type SalesOrderItem struct {
	OrderID        uuid.UUID
	ProductID      uuid.UUID
	ProductName    string
	Quantity       int64
	UnitPriceCents int64
	TotalCents     int64
}

// Payment is one installment of an order. Immediate methods create a
// single installment already paid; crediario creates N pending
// installments with due dates spaced 30 days apart.
type Payment struct {
	PaymentID         uuid.UUID // UUIDv7
	OrderID           uuid.UUID
	InstallmentNumber int
	AmountCents       int64
	DueDate           time.Time
	PaymentDate       *time.Time
	Status            string
	// MethodReceived records how an installment was actually settled,
	// e.g. "dinheiro" for a cash sale. Empty while pending.
	MethodReceived string
}
