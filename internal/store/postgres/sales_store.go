package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
)

// SalesOrderStore reads orders from the tenant schema. Orders are
// written only by the sales engine and immutable afterwards.
type SalesOrderStore struct{}

// NewSalesOrderStore creates a sales order store.
func NewSalesOrderStore() *SalesOrderStore {
	return &SalesOrderStore{}
}

// Get returns an order with its items and payments.
func (s *SalesOrderStore) Get(ctx context.Context, lease *Lease, orderID uuid.UUID) (*models.SalesOrder, error) {
	var order models.SalesOrder
	err := lease.QueryRow(ctx, `
		SELECT id, customer_id, total_amount_cents, payment_method, status, notes, created_at
		FROM sales_orders
		WHERE id = $1
	`, orderID).Scan(
		&order.OrderID,
		&order.CustomerID,
		&order.TotalCents,
		&order.PaymentMethod,
		&order.Status,
		&order.Notes,
		&order.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "order not found")
		}
		return nil, translateError("failed to get order", err)
	}

	rows, err := lease.Query(ctx, `
		SELECT sales_order_id, product_id, product_name, quantity, unit_price_cents, total_price_cents
		FROM sales_order_items
		WHERE sales_order_id = $1
		ORDER BY product_name
	`, orderID)
	if err != nil {
		return nil, translateError("failed to load order items", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.SalesOrderItem
		err := rows.Scan(&item.OrderID, &item.ProductID, &item.ProductName,
			&item.Quantity, &item.UnitPriceCents, &item.TotalCents)
		if err != nil {
			return nil, translateError("failed to scan order item", err)
		}
		order.Items = append(order.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("error iterating order items", err)
	}

	payRows, err := lease.Query(ctx, `
		SELECT id, sales_order_id, installment_number, amount_cents, due_date, payment_date, status, COALESCE(payment_method_received, '')
		FROM payments
		WHERE sales_order_id = $1
		ORDER BY installment_number
	`, orderID)
	if err != nil {
		return nil, translateError("failed to load payments", err)
	}
	defer payRows.Close()

	for payRows.Next() {
		var p models.Payment
		err := payRows.Scan(&p.PaymentID, &p.OrderID, &p.InstallmentNumber,
			&p.AmountCents, &p.DueDate, &p.PaymentDate, &p.Status, &p.MethodReceived)
		if err != nil {
			return nil, translateError("failed to scan payment", err)
		}
		order.Payments = append(order.Payments, p)
	}
	if err := payRows.Err(); err != nil {
		return nil, translateError("error iterating payments", err)
	}

	return &order, nil
}
