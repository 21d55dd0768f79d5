package properties

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a property lookup finds no matching record.
var ErrNotFound = errors.New("property not found")

// PropertyRepository provides read access to the property catalog.
// Catalog writes happen out of band (back-office tooling), so the API
// surface here is list/get only.
type PropertyRepository struct {
	db *pgxpool.Pool
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(db *pgxpool.Pool) *PropertyRepository {
	return &PropertyRepository{db: db}
}

const propertyColumns = `id, title, description, price_cents, currency, city, active, created_at`

// ListActive returns all active listings, newest first.
func (r *PropertyRepository) ListActive(ctx context.Context) ([]*Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE active ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list properties: %w", err)
	}
	defer rows.Close()

	var out []*Property
	for rows.Next() {
		var p Property
		if err := scanProperty(rows, &p); err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		out = append(out, &p)
	}
	return out, rows.Err()
}

// GetByID retrieves a property by ID, active or not.
func (r *PropertyRepository) GetByID(ctx context.Context, id uuid.UUID) (*Property, error) {
	q := `SELECT ` + propertyColumns + ` FROM properties WHERE id = $1`
	row := r.db.QueryRow(ctx, q, id)

	var p Property
	if err := scanProperty(row, &p); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get property: %w", err)
	}
	return &p, nil
}

func scanProperty(row pgx.Row, p *Property) error {
	return row.Scan(
		&p.ID, &p.Title, &p.Description, &p.PriceCents, &p.Currency,
		&p.City, &p.Active, &p.CreatedAt,
	)
}
