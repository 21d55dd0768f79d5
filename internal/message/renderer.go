package message

import (
	"context"
	"fmt"
)

// Renderer produces the user-facing message body for a verification code.
// Implementations must always return a usable message; degradation to a
// fixed template is handled inside the implementation, never by the caller.
type Renderer interface {
	Verification(ctx context.Context, code string) string
}

// Template renders the fixed Spanish verification message.
type Template struct{}

// Verification returns the templated message embedding the code and the
// expiry notice.
func (Template) Verification(_ context.Context, code string) string {
	return fmt.Sprintf(
		"Tu código de verificación HabiCasa es %s. Vence en 5 minutos. No lo compartas con nadie.",
		code,
	)
}
