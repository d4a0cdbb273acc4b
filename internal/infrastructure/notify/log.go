// Package notify delivers order confirmations.
package notify

import (
	"context"

	"github.com/Zhima-Mochi/garmentshop/internal/application/notification"
	"github.com/Zhima-Mochi/garmentshop/internal/observability"
	"github.com/Zhima-Mochi/garmentshop/internal/observability/logctx"
)

// LogNotifier writes each confirmation as an order_confirmation log line.
type LogNotifier struct {
	log observability.Logger
}

func NewLogNotifier(logger observability.Logger) *LogNotifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &LogNotifier{log: logger.With(observability.F("component", "notifier"))}
}

func (n *LogNotifier) Notify(ctx context.Context, c notification.Confirmation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	logctx.FromOr(ctx, n.log).Info("order_confirmation",
		observability.F("order_id", c.OrderID),
		observability.F("username", c.Username),
		observability.F("message", c.Message),
		observability.F("summary", c.Summary),
	)
	return nil
}
