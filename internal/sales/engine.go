// Package sales implements the atomic order-creation workflow: stock
// validation under row locks, authoritative pricing, installment
// splitting and the all-or-nothing write of order, items, payments and
// stock decrements.
package sales

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
	"github.com/lojista-hq/lojista/internal/store/postgres"
)

// installmentInterval is the spacing between crediario due dates.
const installmentInterval = 30 * 24 * time.Hour

// OrderItemInput is one requested line of a new order. Quantity only;
// prices always come from the product row, never from the client.
type OrderItemInput struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int64     `json:"quantity"`
}

// OrderInput is the request to create an order.
type OrderInput struct {
	CustomerID    uuid.UUID        `json:"customerId"`
	Items         []OrderItemInput `json:"items"`
	PaymentMethod string           `json:"paymentMethod"`
	Installments  int              `json:"installments,omitempty"`
	Notes         string           `json:"notes,omitempty"`
}

// Validate checks shape-level constraints before any database work.
func (in *OrderInput) Validate() error {
	if in.CustomerID == uuid.Nil {
		return apperr.New(apperr.Validation, "customer ID is required")
	}
	if len(in.Items) == 0 {
		return apperr.New(apperr.Validation, "order needs at least one item")
	}
	if !models.ValidPaymentMethod(in.PaymentMethod) {
		return apperr.New(apperr.Validation, "invalid payment method")
	}
	if in.PaymentMethod == models.PaymentMethodCrediario && in.Installments < 1 {
		return apperr.New(apperr.Validation, "number of installments is required for crediario")
	}

	seen := make(map[uuid.UUID]struct{}, len(in.Items))
	for _, item := range in.Items {
		if item.ProductID == uuid.Nil {
			return apperr.New(apperr.Validation, "item product ID is required")
		}
		if item.Quantity <= 0 {
			return apperr.New(apperr.Validation, "item quantity must be positive")
		}
		if _, dup := seen[item.ProductID]; dup {
			return apperr.New(apperr.Validation, "duplicate product in order")
		}
		seen[item.ProductID] = struct{}{}
	}

	return nil
}

// lockOrder returns a copy of the items sorted ascending by product ID.
// All order transactions lock product rows in this sequence, so two
// orders touching overlapping products cannot lock them in opposite
// directions.
func lockOrder(items []OrderItemInput) []OrderItemInput {
	sorted := make([]OrderItemInput, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})
	return sorted
}

// Engine creates sales orders atomically on a tenant-routed lease.
type Engine struct {
	now func() time.Time
}

// NewEngine creates a sales engine.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// SplitInstallments divides total cents across n installments: each of
// the first n-1 gets the floor share and the final one absorbs the
// remainder, so the amounts always sum exactly to the total.
func SplitInstallments(totalCents int64, n int) []int64 {
	amounts := make([]int64, n)
	share := totalCents / int64(n)
	remaining := totalCents
	for i := 0; i < n-1; i++ {
		amounts[i] = share
		remaining -= share
	}
	amounts[n-1] = remaining
	return amounts
}

// CreateOrder runs the whole order workflow in one transaction on the
// caller's lease: verify the customer, lock and check each product,
// price lines from the stored unit price, insert order, items and
// payments, and decrement stock. Any failure rolls everything back; no
// partial decrement is ever visible.
//
// Product rows are locked in ascending product-id order regardless of
// the order the client submitted items in. That gives all concurrent
// order transactions a total lock order, so two orders touching
// overlapping products in different sequences cannot deadlock.
func (e *Engine) CreateOrder(ctx context.Context, lease *postgres.Lease, in *OrderInput) (*models.SalesOrder, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	items := lockOrder(in.Items)

	tx, err := lease.Begin(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	var customerID uuid.UUID
	err = tx.QueryRow(ctx, `SELECT id FROM customers WHERE id = $1`, in.CustomerID).Scan(&customerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "customer not found")
		}
		return nil, apperr.Wrap(apperr.Internal, "failed to check customer", err)
	}

	now := e.now()
	orderID, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to generate order ID", err)
	}

	var totalCents int64
	orderItems := make([]models.SalesOrderItem, 0, len(items))

	for _, item := range items {
		var (
			name       string
			stock      int64
			priceCents int64
		)
		err := tx.QueryRow(ctx, `
			SELECT name, stock_quantity, price_cents
			FROM products
			WHERE id = $1
			FOR UPDATE
		`, item.ProductID).Scan(&name, &stock, &priceCents)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperr.New(apperr.NotFound, "product not found")
			}
			return nil, apperr.Wrap(apperr.Internal, "failed to lock product", err)
		}

		if stock < item.Quantity {
			return nil, apperr.Newf(apperr.BusinessRule,
				"insufficient stock for %q: %d available, %d requested", name, stock, item.Quantity)
		}

		lineTotal := item.Quantity * priceCents
		totalCents += lineTotal

		orderItems = append(orderItems, models.SalesOrderItem{
			OrderID:        orderID,
			ProductID:      item.ProductID,
			ProductName:    name,
			Quantity:       item.Quantity,
			UnitPriceCents: priceCents,
			TotalCents:     lineTotal,
		})
	}

	status := models.OrderStatusPaid
	if in.PaymentMethod == models.PaymentMethodCrediario {
		status = models.OrderStatusPending
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO sales_orders (id, customer_id, total_amount_cents, payment_method, status, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, orderID, in.CustomerID, totalCents, in.PaymentMethod, status, in.Notes, now)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to insert order", err)
	}

	for _, item := range orderItems {
		_, err = tx.Exec(ctx, `
			INSERT INTO sales_order_items (sales_order_id, product_id, product_name, quantity, unit_price_cents, total_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.UnitPriceCents, item.TotalCents)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to insert order item", err)
		}
	}

	payments, err := e.buildPayments(orderID, totalCents, in, now)
	if err != nil {
		return nil, err
	}

	for _, p := range payments {
		var methodReceived any
		if p.MethodReceived != "" {
			methodReceived = p.MethodReceived
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO payments (id, sales_order_id, installment_number, amount_cents, due_date, payment_date, status, payment_method_received)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		`, p.PaymentID, p.OrderID, p.InstallmentNumber, p.AmountCents, p.DueDate, p.PaymentDate, p.Status, methodReceived)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to insert payment", err)
		}
	}

	// Stock was checked under the row locks taken above, so these
	// decrements cannot race another order on the same products.
	for _, item := range orderItems {
		_, err = tx.Exec(ctx, `
			UPDATE products SET stock_quantity = stock_quantity - $1 WHERE id = $2
		`, item.Quantity, item.ProductID)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "failed to decrement stock", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to commit order", err)
	}

	log.Info().
		Str("order_id", orderID.String()).
		Int64("total_cents", totalCents).
		Str("payment_method", in.PaymentMethod).
		Int("items", len(orderItems)).
		Msg("created sales order")

	return &models.SalesOrder{
		OrderID:       orderID,
		CustomerID:    in.CustomerID,
		TotalCents:    totalCents,
		PaymentMethod: in.PaymentMethod,
		Status:        status,
		Notes:         in.Notes,
		CreatedAt:     now,
		Items:         orderItems,
		Payments:      payments,
	}, nil
}

// buildPayments creates the payment rows for an order: N pending
// installments for crediario, or one already-paid installment for the
// immediate methods, recording how it was settled.
func (e *Engine) buildPayments(orderID uuid.UUID, totalCents int64, in *OrderInput, createdAt time.Time) ([]models.Payment, error) {
	if in.PaymentMethod == models.PaymentMethodCrediario {
		amounts := SplitInstallments(totalCents, in.Installments)
		payments := make([]models.Payment, 0, len(amounts))
		for i, amount := range amounts {
			id, err := uuid.NewV7()
			if err != nil {
				return nil, apperr.Wrap(apperr.Internal, "failed to generate payment ID", err)
			}
			payments = append(payments, models.Payment{
				PaymentID:         id,
				OrderID:           orderID,
				InstallmentNumber: i + 1,
				AmountCents:       amount,
				DueDate:           createdAt.Add(time.Duration(i+1) * installmentInterval),
				Status:            models.PaymentStatusPending,
			})
		}
		return payments, nil
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "failed to generate payment ID", err)
	}
	paid := createdAt
	return []models.Payment{{
		PaymentID:         id,
		OrderID:           orderID,
		InstallmentNumber: 1,
		AmountCents:       totalCents,
		DueDate:           createdAt,
		PaymentDate:       &paid,
		Status:            models.PaymentStatusPaid,
		MethodReceived:    methodReceived(in.PaymentMethod),
	}}, nil
}

// methodReceived strips the avista_ prefix: the settlement channel for
// an immediate sale ("dinheiro", "pix", "cartao").
func methodReceived(paymentMethod string) string {
	const prefix = "avista_"
	if len(paymentMethod) > len(prefix) && paymentMethod[:len(prefix)] == prefix {
		return paymentMethod[len(prefix):]
	}
	return paymentMethod
}
