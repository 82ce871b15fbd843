package notifier

import (
	"context"

	"StockLens/internal/logger"
)

// Notifier delivers HTML-formatted text to an operator channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// NoopNotifier discards messages. It is used when no bot token is configured.
type NoopNotifier struct{}

func (NoopNotifier) Send(_ context.Context, text string) error {
	logger.Log.Debugf("notifier disabled, dropping %d-byte message", len(text))
	return nil
}

func (n NoopNotifier) SendWithRetry(ctx context.Context, text string, _ int) error {
	return n.Send(ctx, text)
}
