package product

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"
)

type PostgresRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

const (
	productColumns = `id, name, description, price, stock, category, brand, tags, colors, sizes, created_at, updated_at`

	listProductsQuery     = `SELECT ` + productColumns + ` FROM products ORDER BY id`
	getProductByIDQuery   = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	getProductsByIDsQuery = `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1::int[])`

	insertProductQuery = `
		INSERT INTO products (name, description, price, stock, category, brand, tags, colors, sizes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	updateProductQuery = `
		UPDATE products
		SET name = $1, description = $2, price = $3, stock = $4, category = $5, brand = $6,
			tags = $7, colors = $8, sizes = $9, updated_at = now()
		WHERE id = $10
		RETURNING created_at, updated_at
	`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) List(ctx context.Context) ([]Product, error) {
	return r.query(ctx, listProductsQuery)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) GetByIDs(ctx context.Context, ids []int) ([]Product, error) {
	if len(ids) == 0 {
		return []Product{}, nil
	}
	return r.query(ctx, getProductsByIDsQuery, pq.Array(ids))
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	args, err := writeArgs(p)
	if err != nil {
		return Product{}, err
	}
	if err := r.db.QueryRowContext(ctx, insertProductQuery, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, id int, p Product) (Product, error) {
	args, err := writeArgs(p)
	if err != nil {
		return Product{}, err
	}
	args = append(args, id)
	if err := r.db.QueryRowContext(ctx, updateProductQuery, args...).Scan(&p.CreatedAt, &p.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	p.ID = id
	return p, nil
}

func (r *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func writeArgs(p Product) ([]any, error) {
	tags, err := json.Marshal(nonNil(p.Tags))
	if err != nil {
		return nil, err
	}
	colors, err := json.Marshal(nonNil(p.Colors))
	if err != nil {
		return nil, err
	}
	sizes, err := json.Marshal(nonNil(p.Sizes))
	if err != nil {
		return nil, err
	}
	return []any{p.Name, p.Description, p.Price, p.Stock, p.Category, p.Brand, tags, colors, sizes}, nil
}

func scanProduct(scanner rowScanner) (Product, error) {
	var p Product
	var tags, colors, sizes []byte
	if err := scanner.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Category, &p.Brand,
		&tags, &colors, &sizes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Product{}, err
	}
	for _, f := range []struct {
		raw []byte
		dst *[]string
	}{{tags, &p.Tags}, {colors, &p.Colors}, {sizes, &p.Sizes}} {
		*f.dst = []string{}
		if len(f.raw) > 0 {
			if err := json.Unmarshal(f.raw, f.dst); err != nil {
				return Product{}, err
			}
		}
	}
	return p, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
