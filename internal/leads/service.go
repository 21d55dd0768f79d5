package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/habicasa/backend/internal/properties"
	"go.uber.org/zap"
)

// ErrBadTransition is returned when a status change is not allowed by the
// pipeline.
var ErrBadTransition = errors.New("status transition not allowed")

// ErrPropertyUnavailable is returned when a lead targets a missing or
// inactive property.
var ErrPropertyUnavailable = errors.New("property not available")

// leadRepo is the storage interface consumed by Service.
type leadRepo interface {
	Create(ctx context.Context, l *Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*Lead, error)
	ListByAlly(ctx context.Context, allyID uuid.UUID) ([]*Lead, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status, commissionCents int64) error
}

// propertyGetter resolves the property a lead refers to.
type propertyGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*properties.Property, error)
}

// Service implements lead capture and pipeline tracking.
type Service struct {
	repo       leadRepo
	props      propertyGetter
	defaultBps int
	logger     *zap.Logger
}

// NewService creates a lead Service. defaultBps is the referral commission
// in basis points applied to newly captured leads.
func NewService(repo leadRepo, props propertyGetter, defaultBps int, logger *zap.Logger) *Service {
	return &Service{repo: repo, props: props, defaultBps: defaultBps, logger: logger}
}

// Capture registers a new client lead for the ally against a property.
// The property must exist and be active.
func (s *Service) Capture(ctx context.Context, allyID, propertyID uuid.UUID, clientName, clientPhone, notes string) (*Lead, error) {
	if clientName == "" || clientPhone == "" {
		return nil, fmt.Errorf("client name and phone are required")
	}

	p, err := s.props.GetByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, properties.ErrNotFound) {
			return nil, ErrPropertyUnavailable
		}
		return nil, fmt.Errorf("lookup property: %w", err)
	}
	if !p.Active {
		return nil, ErrPropertyUnavailable
	}

	l := &Lead{
		AllyID:        allyID,
		PropertyID:    propertyID,
		ClientName:    clientName,
		ClientPhone:   clientPhone,
		Notes:         notes,
		Status:        StatusNueva,
		CommissionBps: s.defaultBps,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}

	s.logger.Info("lead captured",
		zap.String("lead_id", l.ID.String()),
		zap.String("ally_id", allyID.String()),
		zap.String("property_id", propertyID.String()),
	)
	return l, nil
}

// ListForAlly returns the ally's leads, newest first.
func (s *Service) ListForAlly(ctx context.Context, allyID uuid.UUID) ([]*Lead, error) {
	return s.repo.ListByAlly(ctx, allyID)
}

// ChangeStatus moves a lead through the pipeline. Only the owning ally may
// move it; invalid transitions return ErrBadTransition. Closing a lead as
// "ganada" computes the referral commission from the property price and
// the lead's commission rate.
func (s *Service) ChangeStatus(ctx context.Context, allyID, leadID uuid.UUID, next Status) (*Lead, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown status %q", next)
	}

	l, err := s.repo.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	// A foreign lead is indistinguishable from a missing one.
	if l.AllyID != allyID {
		return nil, ErrNotFound
	}
	if !l.Status.CanTransitionTo(next) {
		return nil, ErrBadTransition
	}

	commission := l.CommissionCents
	if next == StatusGanada {
		p, err := s.props.GetByID(ctx, l.PropertyID)
		if err != nil {
			return nil, fmt.Errorf("lookup property for commission: %w", err)
		}
		commission = p.PriceCents * int64(l.CommissionBps) / 10000
	}

	if err := s.repo.UpdateStatus(ctx, leadID, next, commission); err != nil {
		return nil, err
	}

	l.Status = next
	l.CommissionCents = commission
	s.logger.Info("lead status changed",
		zap.String("lead_id", leadID.String()),
		zap.String("status", string(next)),
	)
	return l, nil
}
