package cart

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

const (
	getCartQuery    = `SELECT user_id, items, version, updated_at FROM carts WHERE user_id = $1`
	insertCartQuery = `
		INSERT INTO carts (user_id, items)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
		RETURNING version, updated_at
	`
	updateCartQuery = `
		UPDATE carts
		SET items = $2, version = version + 1, updated_at = now()
		WHERE user_id = $1 AND version = $3
		RETURNING version, updated_at
	`
	// ResetCartQuery is shared with checkout, which runs it inside the order transaction.
	ResetCartQuery = `
		UPDATE carts
		SET items = '[]', version = version + 1, updated_at = now()
		WHERE user_id = $1 AND version = $2
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, userID int) (Cart, error) {
	var c Cart
	var raw []byte
	err := r.db.QueryRowContext(ctx, getCartQuery, userID).Scan(&c.UserID, &raw, &c.Version, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrNotFound
		}
		return Cart{}, err
	}
	if c.Items, err = DecodeItems(raw); err != nil {
		return Cart{}, err
	}
	return c, nil
}

func (r *PostgresRepository) Save(ctx context.Context, c Cart) (Cart, error) {
	items, err := json.Marshal(nonNil(c.Items))
	if err != nil {
		return Cart{}, err
	}

	var row *sql.Row
	if c.Version == 0 {
		row = r.db.QueryRowContext(ctx, insertCartQuery, c.UserID, items)
	} else {
		row = r.db.QueryRowContext(ctx, updateCartQuery, c.UserID, items, c.Version)
	}

	saved := c.clone()
	if err := row.Scan(&saved.Version, &saved.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Cart{}, ErrConflict
		}
		return Cart{}, err
	}
	return saved, nil
}

func (r *PostgresRepository) ResetIfVersion(ctx context.Context, userID, version int) error {
	result, err := r.db.ExecContext(ctx, ResetCartQuery, userID, version)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrConflict
	}
	return nil
}

// DecodeItems reads the jsonb items column.
func DecodeItems(raw []byte) ([]Item, error) {
	items := []Item{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func nonNil(items []Item) []Item {
	if items == nil {
		return []Item{}
	}
	return items
}
