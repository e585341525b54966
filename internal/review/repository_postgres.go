package review

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
	reviewColumns = `id, product_id, user_id, rating, comment, created_at, updated_at`

	getReviewQuery            = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	listReviewsQuery          = `SELECT ` + reviewColumns + ` FROM reviews ORDER BY created_at DESC, id DESC`
	listReviewsByProductQuery = `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = $1 ORDER BY created_at DESC, id DESC`

	insertReviewQuery = `
		INSERT INTO reviews (product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	updateReviewQuery = `
		UPDATE reviews SET rating = $2, comment = $3, updated_at = now()
		WHERE id = $1
		RETURNING ` + reviewColumns
	deleteReviewQuery = `DELETE FROM reviews WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (p *PostgresRepository) Create(ctx context.Context, r Review) (Review, error) {
	err := p.db.QueryRowContext(ctx, insertReviewQuery, r.ProductID, r.UserID, r.Rating, r.Comment).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Review{}, ErrDuplicate
		}
		return Review{}, err
	}
	return r, nil
}

func (p *PostgresRepository) Get(ctx context.Context, id int) (Review, error) {
	return p.one(p.db.QueryRowContext(ctx, getReviewQuery, id))
}

func (p *PostgresRepository) Update(ctx context.Context, r Review) (Review, error) {
	return p.one(p.db.QueryRowContext(ctx, updateReviewQuery, r.ID, r.Rating, r.Comment))
}

func (p *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := p.db.ExecContext(ctx, deleteReviewQuery, id)
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

func (p *PostgresRepository) ListByProduct(ctx context.Context, productID int) ([]Review, error) {
	return p.query(ctx, listReviewsByProductQuery, productID)
}

func (p *PostgresRepository) ListAll(ctx context.Context) ([]Review, error) {
	return p.query(ctx, listReviewsQuery)
}

func (p *PostgresRepository) one(row *sql.Row) (Review, error) {
	r, err := scanReview(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return r, nil
}

func (p *PostgresRepository) query(ctx context.Context, query string, args ...any) ([]Review, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReview(scanner rowScanner) (Review, error) {
	var r Review
	err := scanner.Scan(&r.ID, &r.ProductID, &r.UserID, &r.Rating, &r.Comment, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}
