package order

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/wichananm65/shop-backend/internal/cart"
	"github.com/wichananm65/shop-backend/internal/platform/database"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	orderColumns = `id, user_id, items, shipping_address, payment_method, total_price,
		order_status, payment_status, delivered_at, version, created_at, updated_at`

	getOrderQuery         = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	listOrdersByUserQuery = `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC, id DESC`
	listOrdersQuery       = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC, id DESC`

	insertOrderQuery = `
		INSERT INTO orders (user_id, items, shipping_address, payment_method, total_price, order_status, payment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, version, created_at, updated_at
	`
	updateOrderQuery = `
		UPDATE orders
		SET order_status = $2, payment_status = $3, delivered_at = $4, version = version + 1, updated_at = now()
		WHERE id = $1 AND version = $5
		RETURNING version, updated_at
	`
	existsOrderQuery = `SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)`

	deliveredWithProductQuery = `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE user_id = $1
			  AND order_status = 'delivered'
			  AND items @> jsonb_build_array(jsonb_build_object('productId', $2::int))
		)
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, o Order) (Order, error) {
	return insertOrder(ctx, r.db, o)
}

func (r *PostgresRepository) CreateFromCart(ctx context.Context, o Order, cartVersion int) (Order, error) {
	var created Order
	err := database.InTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx, cart.ResetCartQuery, o.UserID, cartVersion)
		if err != nil {
			return err
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return cart.ErrConflict
		}
		created, err = insertOrder(ctx, tx, o)
		return err
	})
	if err != nil {
		return Order{}, err
	}
	return created, nil
}

func insertOrder(ctx context.Context, q queryRower, o Order) (Order, error) {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return Order{}, err
	}
	shipping, err := json.Marshal(o.ShippingAddress)
	if err != nil {
		return Order{}, err
	}
	err = q.QueryRowContext(ctx, insertOrderQuery,
		o.UserID, items, shipping, o.PaymentMethod, o.TotalPrice, string(o.OrderStatus), string(o.PaymentStatus),
	).Scan(&o.ID, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id int) (Order, error) {
	o, err := scanOrder(r.db.QueryRowContext(ctx, getOrderQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}
	return o, nil
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int) ([]Order, error) {
	return r.query(ctx, listOrdersByUserQuery, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]Order, error) {
	return r.query(ctx, listOrdersQuery)
}

func (r *PostgresRepository) Update(ctx context.Context, o Order) (Order, error) {
	var delivered sql.NullTime
	if o.DeliveredAt != nil {
		delivered = sql.NullTime{Time: *o.DeliveredAt, Valid: true}
	}
	err := r.db.QueryRowContext(ctx, updateOrderQuery,
		o.ID, string(o.OrderStatus), string(o.PaymentStatus), delivered, o.Version,
	).Scan(&o.Version, &o.UpdatedAt)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Order{}, err
	}

	var exists bool
	if err := r.db.QueryRowContext(ctx, existsOrderQuery, o.ID).Scan(&exists); err != nil {
		return Order{}, err
	}
	if !exists {
		return Order{}, ErrNotFound
	}
	return Order{}, ErrConflict
}

func (r *PostgresRepository) HasDeliveredWithProduct(ctx context.Context, userID, productID int) (bool, error) {
	var ok bool
	if err := r.db.QueryRowContext(ctx, deliveredWithProductQuery, userID, productID).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func scanOrder(scanner rowScanner) (Order, error) {
	var o Order
	var items, shipping []byte
	var orderStatus, paymentStatus string
	var delivered sql.NullTime
	if err := scanner.Scan(&o.ID, &o.UserID, &items, &shipping, &o.PaymentMethod, &o.TotalPrice,
		&orderStatus, &paymentStatus, &delivered, &o.Version, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(items, &o.Items); err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(shipping, &o.ShippingAddress); err != nil {
		return Order{}, err
	}
	o.OrderStatus = Status(orderStatus)
	o.PaymentStatus = PaymentStatus(paymentStatus)
	if delivered.Valid {
		t := delivered.Time
		o.DeliveredAt = &t
	}
	return o, nil
}
