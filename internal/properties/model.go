package properties

import (
	"time"

	"github.com/google/uuid"
)

// Property is a catalog listing that allies refer clients to.
// Prices are stored in cents to avoid float arithmetic on money.
type Property struct {
	ID          uuid.UUID `json:"id"          db:"id"`
	Title       string    `json:"title"       db:"title"`
	Description string    `json:"description" db:"description"`
	PriceCents  int64     `json:"price_cents" db:"price_cents"`
	Currency    string    `json:"currency"    db:"currency"`
	City        string    `json:"city"        db:"city"`
	Active      bool      `json:"active"      db:"active"`
	CreatedAt   time.Time `json:"created_at"  db:"created_at"`
}
