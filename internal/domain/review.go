package domain

import "time"

// Review is a rating of a product by a user.
type Review struct {
	ID        int64
	Title     string
	Content   string
	Rating    int
	UserID    int64
	ProductID int64
	CreatedAt time.Time
}
