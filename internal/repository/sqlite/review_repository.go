package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/repository"
)

const createReviewsTable = `
CREATE TABLE IF NOT EXISTS reviews (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	content TEXT NOT NULL,
	rating INTEGER NOT NULL,
	user_id INTEGER NOT NULL DEFAULT 0,
	product_id INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

type ReviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) repository.ReviewRepository {
	return &ReviewRepository{db: db}
}

func (r *ReviewRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createReviewsTable); err != nil {
		return fmt.Errorf("create reviews table: %w", err)
	}
	return nil
}

func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (int64, error) {
	review.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO reviews (title, content, rating, user_id, product_id, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		review.Title,
		review.Content,
		review.Rating,
		review.UserID,
		review.ProductID,
		review.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert review: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("review last insert id: %w", err)
	}
	review.ID = id
	return id, nil
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID int64) ([]domain.Review, error) {
	return r.queryReviews(ctx, `
SELECT id, title, content, rating, user_id, product_id, created_at
FROM reviews
WHERE product_id = ?`, productID)
}

func (r *ReviewRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Review, error) {
	return r.queryReviews(ctx, `
SELECT id, title, content, rating, user_id, product_id, created_at
FROM reviews
WHERE user_id = ?`, userID)
}

func (r *ReviewRepository) AverageForProduct(ctx context.Context, productID int64) (float64, bool, error) {
	var avg sql.NullFloat64
	row := r.db.QueryRowContext(ctx, `SELECT AVG(rating) FROM reviews WHERE product_id = ?`, productID)
	if err := row.Scan(&avg); err != nil {
		return 0, false, fmt.Errorf("average rating: %w", err)
	}
	if !avg.Valid {
		return 0, false, nil
	}
	return avg.Float64, true, nil
}

func (r *ReviewRepository) queryReviews(ctx context.Context, query string, args ...any) ([]domain.Review, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]domain.Review, 0)
	for rows.Next() {
		var rev domain.Review
		if err := rows.Scan(
			&rev.ID,
			&rev.Title,
			&rev.Content,
			&rev.Rating,
			&rev.UserID,
			&rev.ProductID,
			&rev.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return reviews, nil
}
