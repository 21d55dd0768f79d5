package verification_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/habicasa/backend/internal/verification"
	"go.uber.org/zap"
)

const testPhone = "+50212345678"

// ── Stubs ─────────────────────────────────────────────────────────────────

// stubDispatcher records dispatched texts; with fail set it rejects sends.
type stubDispatcher struct {
	sent []string
	fail bool
}

func (d *stubDispatcher) Send(_ context.Context, _, text string) error {
	if d.fail {
		return errors.New("provider unreachable")
	}
	d.sent = append(d.sent, text)
	return nil
}

func (d *stubDispatcher) lastCode(t *testing.T) string {
	t.Helper()
	if len(d.sent) == 0 {
		t.Fatal("no message was dispatched")
	}
	return d.sent[len(d.sent)-1]
}

// codeOnlyRenderer makes the dispatched text exactly the code, so tests can
// read issued codes back out of the stub dispatcher.
type codeOnlyRenderer struct{}

func (codeOnlyRenderer) Verification(_ context.Context, code string) string { return code }

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(t *testing.T) (*verification.Service, *stubDispatcher, *fakeClock) {
	t.Helper()
	d := &stubDispatcher{}
	clk := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	svc := verification.NewService(d, codeOnlyRenderer{}, zap.NewNop())
	svc.SetClock(clk.now)
	return svc, d, clk
}

// wrongCode returns a 6-digit code guaranteed to differ from code.
func wrongCode(code string) string {
	if code == "999999" {
		return "111111"
	}
	return "999999"
}

// ── Tests ─────────────────────────────────────────────────────────────────

func TestIssueAndVerify_Success(t *testing.T) {
	svc, d, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.IssueCode(ctx, testPhone); err != nil {
		t.Fatalf("IssueCode: %v", err)
	}

	code := d.lastCode(t)
	if len(code) != 6 {
		t.Fatalf("code %q: got %d characters, want 6", code, len(code))
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			t.Fatalf("code %q contains non-digit %q", code, r)
		}
	}
	if code[0] == '0' {
		t.Errorf("code %q outside [100000, 999999]", code)
	}

	if err := svc.VerifyCode(testPhone, code); err != nil {
		t.Fatalf("VerifyCode with correct code: %v", err)
	}

	// Success clears state: the same code is gone.
	if err := svc.VerifyCode(testPhone, code); !errors.Is(err, verification.ErrNoCode) {
		t.Errorf("VerifyCode after success: got %v, want ErrNoCode", err)
	}
}

func TestIssueCode_ReissueInvalidatesPriorCode(t *testing.T) {
	svc, d, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.IssueCode(ctx, testPhone); err != nil {
		t.Fatalf("first IssueCode: %v", err)
	}
	first := d.lastCode(t)

	if err := svc.IssueCode(ctx, testPhone); err != nil {
		t.Fatalf("second IssueCode: %v", err)
	}
	second := d.lastCode(t)

	if first == second {
		t.Skip("collision: both issuances produced the same code")
	}

	var mm *verification.MismatchError
	if err := svc.VerifyCode(testPhone, first); !errors.As(err, &mm) {
		t.Fatalf("VerifyCode with overwritten code: got %v, want MismatchError", err)
	}
	if err := svc.VerifyCode(testPhone, second); err != nil {
		t.Fatalf("VerifyCode with current code: %v", err)
	}
}

func TestIssueCode_RateLimit(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	for i := 0; i < verification.MaxCodesPerWindow; i++ {
		if err := svc.IssueCode(ctx, testPhone); err != nil {
			t.Fatalf("IssueCode %d: %v", i+1, err)
		}
	}

	if err := svc.IssueCode(ctx, testPhone); !errors.Is(err, verification.ErrRateLimited) {
		t.Fatalf("4th IssueCode: got %v, want ErrRateLimited", err)
	}

	// Other numbers are unaffected.
	if err := svc.IssueCode(ctx, "+50287654321"); err != nil {
		t.Errorf("IssueCode for other number while limited: %v", err)
	}

	// The first call after the window elapses succeeds.
	clk.advance(verification.RateLimitWindow + time.Second)
	if err := svc.IssueCode(ctx, testPhone); err != nil {
		t.Errorf("IssueCode after window reset: %v", err)
	}
}

func TestVerifyCode_Expiry(t *testing.T) {
	svc, d, clk := newTestService(t)
	ctx := context.Background()

	if err := svc.IssueCode(ctx, testPhone); err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	code := d.lastCode(t)

	clk.advance(verification.CodeTTL + time.Second)

	if err := svc.VerifyCode(testPhone, code); !errors.Is(err, verification.ErrCodeExpired) {
		t.Fatalf("VerifyCode after TTL: got %v, want ErrCodeExpired", err)
	}

	// Expiry detection deletes the record.
	if err := svc.VerifyCode(testPhone, code); !errors.Is(err, verification.ErrNoCode) {
		t.Errorf("VerifyCode after expiry cleanup: got %v, want ErrNoCode", err)
	}
}

func TestVerifyCode_AttemptExhaustion(t *testing.T) {
	svc, d, _ := newTestService(t)
	ctx := context.Background()

	if err := svc.IssueCode(ctx, testPhone); err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	code := d.lastCode(t)
	wrong := wrongCode(code)

	var mm *verification.MismatchError
	if err := svc.VerifyCode(testPhone, wrong); !errors.As(err, &mm) || mm.Remaining != 2 {
		t.Fatalf("1st wrong attempt: got %v, want MismatchError{Remaining: 2}", err)
	}
	if err := svc.VerifyCode(testPhone, wrong); !errors.As(err, &mm) || mm.Remaining != 1 {
		t.Fatalf("2nd wrong attempt: got %v, want MismatchError{Remaining: 1}", err)
	}
	if err := svc.VerifyCode(testPhone, wrong); !errors.Is(err, verification.ErrTooManyAttempts) {
		t.Fatalf("3rd wrong attempt: got %v, want ErrTooManyAttempts", err)
	}

	// The record was cleared even though we now know the correct code.
	if err := svc.VerifyCode(testPhone, code); !errors.Is(err, verification.ErrNoCode) {
		t.Errorf("correct code after exhaustion: got %v, want ErrNoCode", err)
	}
}

func TestVerifyCode_NoOutstandingCode(t *testing.T) {
	svc, _, _ := newTestService(t)

	if err := svc.VerifyCode(testPhone, "123456"); !errors.Is(err, verification.ErrNoCode) {
		t.Errorf("VerifyCode without issuance: got %v, want ErrNoCode", err)
	}
}

func TestIssueCode_DispatchFailureRollsBack(t *testing.T) {
	svc, d, _ := newTestService(t)
	ctx := context.Background()

	d.fail = true
	if err := svc.IssueCode(ctx, testPhone); !errors.Is(err, verification.ErrDispatchFailed) {
		t.Fatalf("IssueCode with failing dispatcher: got %v, want ErrDispatchFailed", err)
	}

	// The code record was rolled back.
	if err := svc.VerifyCode(testPhone, "123456"); !errors.Is(err, verification.ErrNoCode) {
		t.Errorf("VerifyCode after failed dispatch: got %v, want ErrNoCode", err)
	}

	// But the failed send still consumed a rate-limit slot: two more
	// successful issuances fill the window and the next one is rejected.
	d.fail = false
	for i := 0; i < verification.MaxCodesPerWindow-1; i++ {
		if err := svc.IssueCode(ctx, testPhone); err != nil {
			t.Fatalf("IssueCode %d after recovery: %v", i+1, err)
		}
	}
	if err := svc.IssueCode(ctx, testPhone); !errors.Is(err, verification.ErrRateLimited) {
		t.Errorf("IssueCode on full window: got %v, want ErrRateLimited", err)
	}
}

func TestPruneRateLimits(t *testing.T) {
	svc, _, clk := newTestService(t)
	ctx := context.Background()

	if err := svc.IssueCode(ctx, testPhone); err != nil {
		t.Fatalf("IssueCode: %v", err)
	}

	if n := svc.PruneRateLimits(time.Hour); n != 0 {
		t.Errorf("prune of fresh window removed %d entries, want 0", n)
	}

	clk.advance(2 * time.Hour)
	if n := svc.PruneRateLimits(time.Hour); n != 1 {
		t.Errorf("prune of stale window removed %d entries, want 1", n)
	}
}
