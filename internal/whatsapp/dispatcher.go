package whatsapp

import "context"

// Dispatcher delivers a text message to a phone number.
type Dispatcher interface {
	Send(ctx context.Context, phone, text string) error
}
