package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lead lookup finds no matching record.
var ErrNotFound = errors.New("lead not found")

// LeadRepository provides CRUD operations for leads against PostgreSQL.
type LeadRepository struct {
	db *pgxpool.Pool
}

// NewLeadRepository creates a new LeadRepository.
func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, ally_id, property_id, client_name, client_phone, notes,
	status, commission_bps, commission_cents, created_at, updated_at`

// Create inserts a new lead. Sets ID, CreatedAt, UpdatedAt on the lead.
func (r *LeadRepository) Create(ctx context.Context, l *Lead) error {
	l.ID = uuid.New()
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now

	q := `
		INSERT INTO leads (id, ally_id, property_id, client_name, client_phone, notes,
			status, commission_bps, commission_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.Exec(ctx, q,
		l.ID, l.AllyID, l.PropertyID, l.ClientName, l.ClientPhone, l.Notes,
		l.Status, l.CommissionBps, l.CommissionCents, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

// GetByID retrieves a lead by ID.
func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	row := r.db.QueryRow(ctx, q, id)

	var l Lead
	if err := scanLead(row, &l); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get lead: %w", err)
	}
	return &l, nil
}

// ListByAlly returns the ally's leads, newest first.
func (r *LeadRepository) ListByAlly(ctx context.Context, allyID uuid.UUID) ([]*Lead, error) {
	q := `SELECT ` + leadColumns + ` FROM leads WHERE ally_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, q, allyID)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		var l Lead
		if err := scanLead(rows, &l); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, &l)
	}
	return out, rows.Err()
}

// UpdateStatus sets a lead's pipeline status and commission amount.
func (r *LeadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status, commissionCents int64) error {
	q := `UPDATE leads SET status = $2, commission_cents = $3, updated_at = $4 WHERE id = $1`
	tag, err := r.db.Exec(ctx, q, id, status, commissionCents, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanLead(row pgx.Row, l *Lead) error {
	return row.Scan(
		&l.ID, &l.AllyID, &l.PropertyID, &l.ClientName, &l.ClientPhone, &l.Notes,
		&l.Status, &l.CommissionBps, &l.CommissionCents, &l.CreatedAt, &l.UpdatedAt,
	)
}
