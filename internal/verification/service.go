package verification

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/habicasa/backend/internal/message"
	"github.com/habicasa/backend/internal/whatsapp"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	// CodeTTL is how long an issued code stays valid.
	CodeTTL = 5 * time.Minute
	// RateLimitWindow is the fixed window for issuance throttling.
	RateLimitWindow = 10 * time.Minute
	// MaxCodesPerWindow is the issuance quota per phone number per window.
	MaxCodesPerWindow = 3
	// MaxAttempts is how many verification attempts a single code allows.
	MaxAttempts = 3
)

// record is the outstanding code state for one phone number. At most one
// record exists per number; reissuing replaces it.
type record struct {
	codeHash  []byte
	attempts  int
	createdAt time.Time
	expiresAt time.Time
}

// window tracks code issuance inside the current fixed rate-limit window.
// Windows are never deleted on rollover, only superseded; PruneRateLimits
// bounds the map for long-running processes.
type window struct {
	count   int
	resetAt time.Time
}

// Service issues, rate-limits, and validates one-time numeric codes per
// phone number, gating a WhatsApp dispatch. State is held in process
// memory; a multi-instance deployment would need a shared TTL store.
type Service struct {
	mu     sync.Mutex
	codes  map[string]*record
	limits map[string]*window

	sender whatsapp.Dispatcher
	render message.Renderer
	now    func() time.Time
	logger *zap.Logger
}

// NewService creates a verification Service.
func NewService(sender whatsapp.Dispatcher, render message.Renderer, logger *zap.Logger) *Service {
	return &Service{
		codes:  make(map[string]*record),
		limits: make(map[string]*window),
		sender: sender,
		render: render,
		now:    time.Now,
		logger: logger,
	}
}

// SetClock overrides the time source. Tests use this to drive expiry and
// window boundaries without sleeping.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// IssueCode generates a fresh 6-digit code for the phone number, stores it
// (replacing any prior code), and dispatches it over WhatsApp.
//
// Returns ErrRateLimited when the number exceeded its quota for the current
// window, and ErrDispatchFailed when the provider could not deliver — in
// that case the stored code is rolled back but the rate-limit slot stays
// consumed, so repeated provider failures cannot be used to probe for free.
func (s *Service) IssueCode(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generate code: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash code: %w", err)
	}

	s.mu.Lock()
	now := s.now()
	s.sweepExpiredLocked(now)

	w := s.limits[phone]
	switch {
	case w == nil || !now.Before(w.resetAt):
		s.limits[phone] = &window{count: 1, resetAt: now.Add(RateLimitWindow)}
	case w.count >= MaxCodesPerWindow:
		s.mu.Unlock()
		return ErrRateLimited
	default:
		w.count++
	}

	rec := &record{
		codeHash:  hash,
		createdAt: now,
		expiresAt: now.Add(CodeTTL),
	}
	s.codes[phone] = rec
	s.mu.Unlock()

	// Dispatch happens outside the lock: it is network I/O against the
	// messaging provider and must not block other numbers.
	text := s.render.Verification(ctx, code)
	if err := s.sender.Send(ctx, phone, text); err != nil {
		s.mu.Lock()
		// Only roll back our own record; a concurrent reissue for the same
		// number must not lose its fresh code to this stale failure.
		if s.codes[phone] == rec {
			delete(s.codes, phone)
		}
		s.mu.Unlock()
		s.logger.Warn("verification dispatch failed",
			zap.String("phone", phone),
			zap.Error(err),
		)
		return ErrDispatchFailed
	}

	s.logger.Info("verification code issued", zap.String("phone", phone))
	return nil
}

// VerifyCode checks a submitted code against the outstanding one for the
// phone number.
//
// The attempt counter is incremented before the comparison, so the wrong
// guess that reaches the cap reports ErrTooManyAttempts, and a correct
// code can never be accepted on the attempt past the cap. A successful
// match, expiry, or exhaustion all clear the record.
func (s *Service) VerifyCode(phone, submitted string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.codes[phone]
	if !ok {
		return ErrNoCode
	}

	now := s.now()
	if !now.Before(rec.expiresAt) {
		delete(s.codes, phone)
		return ErrCodeExpired
	}
	if rec.attempts >= MaxAttempts {
		delete(s.codes, phone)
		return ErrTooManyAttempts
	}

	rec.attempts++
	if bcrypt.CompareHashAndPassword(rec.codeHash, []byte(submitted)) != nil {
		if rec.attempts >= MaxAttempts {
			delete(s.codes, phone)
			return ErrTooManyAttempts
		}
		return &MismatchError{Remaining: MaxAttempts - rec.attempts}
	}

	delete(s.codes, phone)
	s.logger.Info("phone verified", zap.String("phone", phone))
	return nil
}

// PruneRateLimits removes rate-limit windows that closed more than
// olderThan ago and returns how many were removed. The limits map is
// otherwise never cleaned; cmd/api runs this on a ticker.
func (s *Service) PruneRateLimits(olderThan time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-olderThan)
	n := 0
	for phone, w := range s.limits {
		if w.resetAt.Before(cutoff) {
			delete(s.limits, phone)
			n++
		}
	}
	return n
}

// sweepExpiredLocked drops every expired code record. O(n) over outstanding
// codes, which is bounded by CodeTTL times the issuance rate.
func (s *Service) sweepExpiredLocked(now time.Time) {
	for phone, rec := range s.codes {
		if !now.Before(rec.expiresAt) {
			delete(s.codes, phone)
		}
	}
}

// generateCode returns a 6-digit code uniform over [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
