package whatsapp

import (
	"context"

	"go.uber.org/zap"
)

// NoopSender logs messages to zap instead of delivering them.
// Use in development or when WhatsApp credentials are not configured.
type NoopSender struct {
	logger *zap.Logger
}

// NewNoopSender creates a NoopSender backed by the given logger.
func NewNoopSender(logger *zap.Logger) *NoopSender {
	return &NoopSender{logger: logger}
}

// Send logs the message and returns nil.
func (n *NoopSender) Send(_ context.Context, phone, text string) error {
	n.logger.Info("whatsapp message (noop — not sent)",
		zap.String("to", phone),
		zap.String("text", text),
	)
	return nil
}
