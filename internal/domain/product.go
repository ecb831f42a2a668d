package domain

import "time"

// Product is a catalog entry listings are posted against. Photo holds the
// public object-storage URL produced by media ingestion.
type Product struct {
	ID        int64
	Name      string
	Category  string
	Photo     string
	CreatedAt time.Time
}
