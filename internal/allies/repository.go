package allies

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when an ally lookup finds no matching record.
var ErrNotFound = errors.New("ally not found")

// ErrDuplicatePhone is returned when a create races with another create
// for the same phone number.
var ErrDuplicatePhone = errors.New("phone already registered")

// AllyRepository provides CRUD operations for allies against PostgreSQL.
type AllyRepository struct {
	db *pgxpool.Pool
}

// NewAllyRepository creates a new AllyRepository.
func NewAllyRepository(db *pgxpool.Pool) *AllyRepository {
	return &AllyRepository{db: db}
}

// Create inserts a new ally record. Sets ID, CreatedAt, UpdatedAt on the ally.
func (r *AllyRepository) Create(ctx context.Context, a *Ally) error {
	a.ID = uuid.New()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	q := `
		INSERT INTO allies (id, phone, display_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.Exec(ctx, q, a.ID, a.Phone, a.DisplayName, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicatePhone
		}
		return fmt.Errorf("create ally: %w", err)
	}
	return nil
}

// GetByID retrieves an ally by their internal UUID.
func (r *AllyRepository) GetByID(ctx context.Context, id uuid.UUID) (*Ally, error) {
	return r.scanOne(ctx, `SELECT id, phone, display_name, created_at, updated_at FROM allies WHERE id = $1`, id)
}

// GetByPhone retrieves an ally by their verified phone number.
func (r *AllyRepository) GetByPhone(ctx context.Context, phone string) (*Ally, error) {
	return r.scanOne(ctx, `SELECT id, phone, display_name, created_at, updated_at FROM allies WHERE phone = $1`, phone)
}

// UpdateDisplayName sets the ally's display name.
func (r *AllyRepository) UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error {
	q := `UPDATE allies SET display_name = $2, updated_at = $3 WHERE id = $1`
	_, err := r.db.Exec(ctx, q, id, name, time.Now().UTC())
	return err
}

func (r *AllyRepository) scanOne(ctx context.Context, q string, args ...any) (*Ally, error) {
	var a Ally
	err := r.db.QueryRow(ctx, q, args...).Scan(
		&a.ID, &a.Phone, &a.DisplayName, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scan ally: %w", err)
	}
	return &a, nil
}
