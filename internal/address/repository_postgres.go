package address

import (
	"context"
	"database/sql"
	"errors"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	addressColumns = `id, user_id, address_line, city, state, postal_code, country, created_at`

	listAddressesQuery = `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY id`
	getAddressQuery    = `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	insertAddressQuery = `
		INSERT INTO addresses (user_id, address_line, city, state, postal_code, country)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + addressColumns
	updateAddressQuery = `
		UPDATE addresses
		SET address_line = $3, city = $4, state = $5, postal_code = $6, country = $7
		WHERE id = $1 AND user_id = $2
		RETURNING ` + addressColumns
	deleteAddressQuery = `DELETE FROM addresses WHERE id = $1 AND user_id = $2`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context, userID int) ([]Address, error) {
	rows, err := r.db.QueryContext(ctx, listAddressesQuery, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, userID, addressID int) (Address, error) {
	return one(scanAddress(r.db.QueryRowContext(ctx, getAddressQuery, addressID, userID)))
}

func (r *PostgresRepository) Add(ctx context.Context, userID int, s Shipping) (Address, error) {
	return scanAddress(r.db.QueryRowContext(ctx, insertAddressQuery,
		userID, s.AddressLine, s.City, s.State, s.PostalCode, s.Country))
}

func (r *PostgresRepository) Update(ctx context.Context, userID, addressID int, s Shipping) (Address, error) {
	return one(scanAddress(r.db.QueryRowContext(ctx, updateAddressQuery,
		addressID, userID, s.AddressLine, s.City, s.State, s.PostalCode, s.Country)))
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, addressID int) error {
	result, err := r.db.ExecContext(ctx, deleteAddressQuery, addressID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func one(a Address, err error) (Address, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return Address{}, ErrNotFound
	}
	return a, err
}

func scanAddress(scanner rowScanner) (Address, error) {
	var a Address
	err := scanner.Scan(&a.ID, &a.UserID, &a.AddressLine, &a.City, &a.State, &a.PostalCode, &a.Country, &a.CreatedAt)
	return a, err
}
