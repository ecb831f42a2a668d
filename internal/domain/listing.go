package domain

import "time"

// Listing is an offer of a product posted by a user. ProductID and
// PostedByID are 0 when the reference is absent; relation resolution
// short-circuits to null in that case instead of querying.
type Listing struct {
	ID          int64
	Title       string
	Description string
	Cost        float64
	Condition   string
	Photo       string
	ProductID   int64
	PostedByID  int64
	CreatedAt   time.Time
}
