package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lojista-hq/lojista/internal/apperr"
	"github.com/lojista-hq/lojista/internal/models"
)

// CustomerStore runs customer CRUD against whatever tenant schema the
// supplied lease is routed to.
type CustomerStore struct{}

// NewCustomerStore creates a customer store.
func NewCustomerStore() *CustomerStore {
	return &CustomerStore{}
}

const customerColumns = `
	id, name, email, phone, document_type, document_number,
	address_zip_code, address_street, address_number, address_complement,
	address_neighborhood, address_city, address_state, notes, created_at
`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.CustomerID,
		&c.Name,
		&c.Email,
		&c.Phone,
		&c.DocumentType,
		&c.DocumentNumber,
		&c.AddressZipCode,
		&c.AddressStreet,
		&c.AddressNumber,
		&c.AddressComplement,
		&c.AddressNeighborhood,
		&c.AddressCity,
		&c.AddressState,
		&c.Notes,
		&c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns customers ordered by name, optionally filtered by a
// case-insensitive search over name, email and document number.
func (s *CustomerStore) List(ctx context.Context, lease *Lease, search string, limit, offset int) ([]*models.Customer, error) {
	query := `
		SELECT ` + customerColumns + `
		FROM customers
		WHERE ($1 = '' OR name ILIKE '%' || $1 || '%' OR email ILIKE '%' || $1 || '%' OR document_number ILIKE '%' || $1 || '%')
		ORDER BY name ASC
		LIMIT $2 OFFSET $3
	`

	rows, err := lease.Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, translateError("failed to list customers", err)
	}
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, translateError("failed to scan customer", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("error iterating customers", err)
	}

	return customers, nil
}

// Get retrieves a customer by ID.
func (s *CustomerStore) Get(ctx context.Context, lease *Lease, customerID uuid.UUID) (*models.Customer, error) {
	row := lease.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, customerID)

	c, err := scanCustomer(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.NotFound, "customer not found")
		}
		return nil, translateError("failed to get customer", err)
	}

	return c, nil
}

// Create inserts a new customer.
func (s *CustomerStore) Create(ctx context.Context, lease *Lease, c *models.Customer) error {
	query := `
		INSERT INTO customers (` + customerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := lease.Exec(ctx, query,
		c.CustomerID, c.Name, c.Email, c.Phone, c.DocumentType, c.DocumentNumber,
		c.AddressZipCode, c.AddressStreet, c.AddressNumber, c.AddressComplement,
		c.AddressNeighborhood, c.AddressCity, c.AddressState, c.Notes, c.CreatedAt,
	)
	if err != nil {
		return translateError("failed to create customer", err)
	}

	return nil
}

// Update rewrites all mutable fields of a customer.
func (s *CustomerStore) Update(ctx context.Context, lease *Lease, c *models.Customer) error {
	query := `
		UPDATE customers SET
			name = $2, email = $3, phone = $4,
			document_type = $5, document_number = $6,
			address_zip_code = $7, address_street = $8, address_number = $9,
			address_complement = $10, address_neighborhood = $11,
			address_city = $12, address_state = $13, notes = $14
		WHERE id = $1
	`

	result, err := lease.Exec(ctx, query,
		c.CustomerID, c.Name, c.Email, c.Phone, c.DocumentType, c.DocumentNumber,
		c.AddressZipCode, c.AddressStreet, c.AddressNumber, c.AddressComplement,
		c.AddressNeighborhood, c.AddressCity, c.AddressState, c.Notes,
	)
	if err != nil {
		return translateError("failed to update customer", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "customer not found")
	}

	return nil
}

// Delete removes a customer. Customers referenced by sales orders are
// protected by the FK and surface as a Validation error.
func (s *CustomerStore) Delete(ctx context.Context, lease *Lease, customerID uuid.UUID) error {
	result, err := lease.Exec(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		return translateError("failed to delete customer", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "customer not found")
	}

	return nil
}
