package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
)

// ProductStore runs product CRUD against whatever tenant schema the
// supplied lease is routed to. Stock decrements do not live here; they
// are owned by the sales engine, which holds the row locks.
type ProductStore struct{}

// NewProductStore creates a product store.
func NewProductStore() *ProductStore {
	return &ProductStore{}
}

const productColumns = `
	id, COALESCE(sku, ''), name, category, unit_of_measure,
	price_cents, cost_price_cents, stock_quantity, status, created_at
`

func scanProduct(row pgx.Row) (*models.Product, error) {
	var p models.Product
	err := row.Scan(
		&p.ProductID,
		&p.SKU,
		&p.Name,
		&p.Category,
		&p.UnitOfMeasure,
		&p.PriceCents,
		&p.CostCents,
		&p.StockQuantity,
		&p.Status,
		&p.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// List returns products ordered by name, optionally filtered by a
// case-insensitive search over name, SKU and category.
func (s *ProductStore) List(ctx context.Context, lease *Lease, search string, limit, offset int) ([]*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR sku ILIKE '%' || $1 || '%' OR category ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := lease.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, translateError("failed to list products", err)
	}
	defer rows.Close()

	var products []*models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, translateError("failed to scan product", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("error iterating products", err)
	}

	return products, nil
}

// Get retrieves a product by ID.
func (s *ProductStore) Get(ctx context.Context, lease *Lease, productID uuid.UUID) (*models.Product, error) {
	row := lease.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, productID)

	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "product not found")
		}
		return nil, translateError("failed to get product", err)
	}

	return p, nil
}

// Create inserts a new product. An empty SKU is stored as NULL so the
// partial unique index only applies to products that have one.
func (s *ProductStore) Create(ctx context.Context, lease *Lease, p *models.Product) error {
	query := `
		INSERT INTO products (
			id, sku, name, category, unit_of_measure,
			price_cents, cost_price_cents, stock_quantity, status, created_at
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := lease.Exec(ctx, query,
		p.ProductID, p.SKU, p.Name, p.Category, p.UnitOfMeasure,
		p.PriceCents, p.CostCents, p.StockQuantity, p.Status, p.CreatedAt,
	)
	if err != nil {
		return translateError("failed to create product", err)
	}

	return nil
}

// Update rewrites all mutable fields of a product. Stock is included:
// this is the manual adjustment path, distinct from the atomic
// decrement the sales engine performs under a row lock.
func (s *ProductStore) Update(ctx context.Context, lease *Lease, p *models.Product) error {
	query := `
		UPDATE products SET
			sku = NULLIF($2, ''), name = $3, category = $4, unit_of_measure = $5,
			price_cents = $6, cost_price_cents = $7, stock_quantity = $8, status = $9
		WHERE id = $1
	`

	result, err := lease.Exec(ctx, query,
		p.ProductID, p.SKU, p.Name, p.Category, p.UnitOfMeasure,
		p.PriceCents, p.CostCents, p.StockQuantity, p.Status,
	)
	if err != nil {
		return translateError("failed to update product", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}

	return nil
}

// Delete removes a product. Products referenced by order items are
// protected by the FK and surface as a Validation error.
func (s *ProductStore) Delete(ctx context.Context, lease *Lease, productID uuid.UUID) error {
	result, err := lease.Exec(ctx, `DELETE FROM products WHERE id = $1`, productID)
	if err != nil {
		return translateError("failed to delete product", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "product not found")
	}

	return nil
}
