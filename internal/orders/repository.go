package orders

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fence-shop-backend/internal/dbx"
	"fence-shop-backend/internal/domain"
)

// ErrNotFound: заказа с таким id нет.
var ErrNotFound = errors.New("order not found")

// Repository хранит заказы в PostgreSQL (или SQLite для локального запуска,
// запросы совместимы).
type Repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const orderColumns = `id, number, status, customer_name, customer_phone, customer_email,
       customer_address, customer_comment, lines, total, created_at, updated_at`

func (r *Repository) Create(ctx context.Context, o *domain.Order) error {
	lines, err := json.Marshal(o.Lines)
	if err != nil {
		return fmt.Errorf("encode order lines: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
INSERT INTO orders (id, number, status, customer_name, customer_phone, customer_email,
                    customer_address, customer_comment, lines, total, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		o.ID,
		o.Number,
		string(o.Status),
		o.Customer.Name,
		o.Customer.Phone,
		o.Customer.Email,
		o.Customer.Address,
		o.Customer.Comment,
		string(lines),
		o.Total,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (r *Repository) Get(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// List возвращает заказы от новых к старым; пустой status означает все.
func (r *Repository) List(ctx context.Context, status domain.OrderStatus, limit int) ([]*domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}

	var rows *sql.Rows
	var err error
	if status == "" {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2`,
			string(status), limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3`,
		string(status), at, id)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountSince: сколько заказов создано начиная с момента since.
func (r *Repository) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM orders WHERE created_at >= $1`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		o                domain.Order
		status, lines    string
		created, updated dbx.Time
		email, comment   sql.NullString
	)
	if err := s.Scan(
		&o.ID,
		&o.Number,
		&status,
		&o.Customer.Name,
		&o.Customer.Phone,
		&email,
		&o.Customer.Address,
		&comment,
		&lines,
		&o.Total,
		&created,
		&updated,
	); err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	o.Customer.Email = email.String
	o.Customer.Comment = comment.String
	o.CreatedAt = created.Time
	o.UpdatedAt = updated.Time
	if err := json.Unmarshal([]byte(lines), &o.Lines); err != nil {
		return nil, fmt.Errorf("decode order lines: %w", err)
	}
	return &o, nil
}
