package allies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// allyRepo is the storage interface consumed by Service.
type allyRepo interface {
	Create(ctx context.Context, a *Ally) error
	GetByID(ctx context.Context, id uuid.UUID) (*Ally, error)
	GetByPhone(ctx context.Context, phone string) (*Ally, error)
	UpdateDisplayName(ctx context.Context, id uuid.UUID, name string) error
}

// Service implements business logic for ally accounts.
type Service struct {
	repo   allyRepo
	logger *zap.Logger
}

// NewService creates an ally Service.
func NewService(repo allyRepo, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// GetOrCreateByPhone returns the ally for a verified phone number, creating
// the account on first verification. Safe against concurrent creates for
// the same number: the loser of the unique-constraint race re-reads.
func (s *Service) GetOrCreateByPhone(ctx context.Context, phone string) (*Ally, error) {
	a, err := s.repo.GetByPhone(ctx, phone)
	if err == nil {
		return a, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("lookup ally: %w", err)
	}

	a = &Ally{Phone: phone}
	if err := s.repo.Create(ctx, a); err != nil {
		if errors.Is(err, ErrDuplicatePhone) {
			return s.repo.GetByPhone(ctx, phone)
		}
		return nil, fmt.Errorf("create ally: %w", err)
	}

	s.logger.Info("ally account created",
		zap.String("ally_id", a.ID.String()),
		zap.String("phone", phone),
	)
	return a, nil
}

// GetByID retrieves an ally by ID.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Ally, error) {
	return s.repo.GetByID(ctx, id)
}

// Rename sets the ally's display name.
func (s *Service) Rename(ctx context.Context, id uuid.UUID, name string) error {
	if name == "" {
		return fmt.Errorf("display name is required")
	}
	return s.repo.UpdateDisplayName(ctx, id, name)
}
