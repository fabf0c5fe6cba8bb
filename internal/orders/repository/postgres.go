package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sonicpods/internal/orders"

	"github.com/google/uuid"
)

const orderColumns = `id, customer_name, email, phone, address, city, postal_code,
	items, total_amount, status, created_at, updated_at`

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o orders.Order) (orders.Order, error) {
	const query = `
		INSERT INTO orders (id, customer_name, email, phone, address, city, postal_code,
			items, total_amount, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		o.ID, o.CustomerName, o.Email, o.Phone, o.Address, o.City, o.PostalCode,
		o.Items, o.TotalAmount, o.Status, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return orders.Order{}, fmt.Errorf("repo create order: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (orders.Order, error) {
	if uuid.Validate(id) != nil {
		return orders.Order{}, orders.ErrNotFound
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if err != nil {
		return orders.Order{}, fmt.Errorf("repo get order: %w", err)
	}
	return o, nil
}

func (r *PostgresRepository) List(ctx context.Context) ([]orders.Order, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("repo list orders: %w", err)
	}
	defer rows.Close()

	list := make([]orders.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("repo list orders: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo list orders rows: %w", err)
	}
	return list, nil
}

func (r *PostgresRepository) Update(ctx context.Context, o orders.Order) (orders.Order, error) {
	if uuid.Validate(o.ID) != nil {
		return orders.Order{}, orders.ErrNotFound
	}
	const query = `
		UPDATE orders SET status = $2, updated_at = $3
		WHERE id = $1
		RETURNING ` + orderColumns

	updated, err := scanOrder(r.db.QueryRowContext(ctx, query, o.ID, o.Status, o.UpdatedAt))
	if err != nil {
		return orders.Order{}, fmt.Errorf("repo update order: %w", err)
	}
	return updated, nil
}

// Track returns the most recent order matching every non-empty field of q.
func (r *PostgresRepository) Track(ctx context.Context, q orders.TrackQuery) (orders.Order, error) {
	if q.OrderID != "" && uuid.Validate(q.OrderID) != nil {
		return orders.Order{}, orders.ErrNotFound
	}
	const query = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR id::text = $1)
		  AND ($2 = '' OR LOWER(email) = LOWER($2))
		ORDER BY created_at DESC, id
		LIMIT 1`

	o, err := scanOrder(r.db.QueryRowContext(ctx, query, q.OrderID, q.Email))
	if err != nil {
		return orders.Order{}, fmt.Errorf("repo track order: %w", err)
	}
	return o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (orders.Order, error) {
	var o orders.Order
	err := row.Scan(
		&o.ID, &o.CustomerName, &o.Email, &o.Phone, &o.Address, &o.City, &o.PostalCode,
		&o.Items, &o.TotalAmount, &o.Status, &o.CreatedAt, &o.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return orders.Order{}, orders.ErrNotFound
	}
	if err != nil {
		return orders.Order{}, err
	}
	return o, nil
}
