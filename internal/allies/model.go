package allies

import (
	"time"

	"github.com/google/uuid"
)

// Ally is a broker/referrer account, keyed by verified phone number.
// Accounts are created implicitly on first successful phone verification.
type Ally struct {
	ID          uuid.UUID `json:"id"           db:"id"`
	Phone       string    `json:"phone"        db:"phone"`
	DisplayName string    `json:"display_name" db:"display_name"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}
