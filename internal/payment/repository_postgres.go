package payment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/wichananm65/shop-backend/internal/platform/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	paymentColumns = `id, order_id, user_id, payment_method, payment_status, transaction_id, amount,
		payment_date, version, created_at, updated_at`

	getPaymentQuery          = `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	listPaymentsQuery        = `SELECT ` + paymentColumns + ` FROM payments ORDER BY created_at DESC, id DESC`
	listPaymentsByOrderQuery = `SELECT ` + paymentColumns + ` FROM payments WHERE order_id = $1 ORDER BY created_at DESC, id DESC`

	insertPaymentQuery = `
		INSERT INTO payments (order_id, user_id, payment_method, payment_status, transaction_id, amount)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, version, created_at, updated_at
	`
	updatePaymentQuery = `
		UPDATE payments
		SET payment_status = $2, payment_date = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $4
		RETURNING version, updated_at
	`
	existsPaymentQuery = `SELECT EXISTS (SELECT 1 FROM payments WHERE id = $1)`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create relies on uq_payments_active_order to reject a second active
// payment for the same order.
func (r *PostgresRepository) Create(ctx context.Context, p Payment) (Payment, error) {
	err := r.db.QueryRowContext(ctx, insertPaymentQuery,
		p.OrderID, p.UserID, string(p.PaymentMethod), string(p.PaymentStatus), p.TransactionID, p.Amount,
	).Scan(&p.ID, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Payment{}, ErrActivePayment
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, getPaymentQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Payment{}, ErrNotFound
		}
		return Payment{}, err
	}
	return p, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Payment, error) {
	return r.query(ctx, listPaymentsQuery)
}

func (r *PostgresRepository) ListByOrder(ctx context.Context, orderID int) ([]Payment, error) {
	return r.query(ctx, listPaymentsByOrderQuery, orderID)
}

func (r *PostgresRepository) Update(ctx context.Context, p Payment) (Payment, error) {
	var paidAt sql.NullTime
	if p.PaymentDate != nil {
		paidAt = sql.NullTime{Time: *p.PaymentDate, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, updatePaymentQuery, p.ID, string(p.PaymentStatus), paidAt, p.Version).
		Scan(&p.Version, &p.UpdatedAt)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Payment{}, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, existsPaymentQuery, p.ID).Scan(&exists); err != nil {
		return Payment{}, err
	}
	if !exists {
		return Payment{}, ErrNotFound
	}
	return Payment{}, ErrConflict
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Payment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Payment, 0)
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPayment(scanner rowScanner) (Payment, error) {
	var p Payment
	var method, status string
	var txID sql.NullString
	var paidAt sql.NullTime
	if err := scanner.Scan(&p.ID, &p.OrderID, &p.UserID, &method, &status, &txID, &p.Amount,
		&paidAt, &p.Version, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Payment{}, err
	}
	p.PaymentMethod = Method(method)
	p.PaymentStatus = Status(status)
	p.TransactionID = txID.String
	if paidAt.Valid {
		t := paidAt.Time
		p.PaymentDate = &t
	}
	return p, nil
}
