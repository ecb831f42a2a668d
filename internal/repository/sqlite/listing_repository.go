package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/SamuelFlet/hpdb/internal/domain"
	"github.com/SamuelFlet/hpdb/internal/repository"
)

const createListingsTable = `
CREATE TABLE IF NOT EXISTS listings (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	cost REAL NOT NULL,
	condition TEXT NOT NULL DEFAULT '',
	photo TEXT NOT NULL,
	product_id INTEGER NOT NULL DEFAULT 0,
	posted_by INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL
);
`

const listingColumns = `id, title, description, cost, condition, photo, product_id, posted_by, created_at`

type ListingRepository struct {
	db *sql.DB
}

func NewListingRepository(db *sql.DB) repository.ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createListingsTable); err != nil {
		return fmt.Errorf("create listings table: %w", err)
	}
	return nil
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) (int64, error) {
	listing.CreatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
INSERT INTO listings (title, description, cost, condition, photo, product_id, posted_by, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		listing.Title,
		listing.Description,
		listing.Cost,
		listing.Condition,
		listing.Photo,
		listing.ProductID,
		listing.PostedByID,
		listing.CreatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert listing: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("listing last insert id: %w", err)
	}
	listing.ID = id
	return id, nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+listingColumns+`
FROM listings
WHERE id = ?`,
		id,
	)
	return scanListing(row)
}

func (r *ListingRepository) List(ctx context.Context) ([]domain.Listing, error) {
	return r.queryListings(ctx, `SELECT `+listingColumns+` FROM listings`)
}

func (r *ListingRepository) ListByProduct(ctx context.Context, productID int64, order repository.ListingOrder) ([]domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE product_id = ?`
	switch order {
	case repository.OrderCostAsc:
		query += ` ORDER BY cost ASC`
	case repository.OrderCostDesc:
		query += ` ORDER BY cost DESC`
	}
	return r.queryListings(ctx, query, productID)
}

func (r *ListingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.Listing, error) {
	return r.queryListings(ctx, `SELECT `+listingColumns+` FROM listings WHERE posted_by = ?`, userID)
}

func (r *ListingRepository) queryListings(ctx context.Context, query string, args ...any) ([]domain.Listing, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query listings: %w", err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(
			&l.ID,
			&l.Title,
			&l.Description,
			&l.Cost,
			&l.Condition,
			&l.Photo,
			&l.ProductID,
			&l.PostedByID,
			&l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

func scanListing(row interface {
	Scan(dest ...any) error
}) (*domain.Listing, error) {
	var l domain.Listing
	if err := row.Scan(
		&l.ID,
		&l.Title,
		&l.Description,
		&l.Cost,
		&l.Condition,
		&l.Photo,
		&l.ProductID,
		&l.PostedByID,
		&l.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("listing not found")
		}
		return nil, fmt.Errorf("scan listing: %w", err)
	}
	return &l, nil
}
