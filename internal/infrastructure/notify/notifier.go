package notify

import (
	"context"
	"errors"

	orderapp "github.com/stockflow/backend/internal/application/order"
	"github.com/stockflow/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// LogNotifier implements orderapp.Notifier by writing notifications to the
// application log. It stands in for a real mail or webhook integration and
// preserves the delivery contract: Send either succeeds or returns an error
// the caller treats as a non-fatal warning.
type LogNotifier struct {
	logger      *zap.Logger
	fromAddress string
	enabled     bool
}

// NewLogNotifier creates a new log-backed notifier
func NewLogNotifier(cfg *config.NotifyConfig, logger *zap.Logger) *LogNotifier {
	return &LogNotifier{
		logger:      logger.Named("notify"),
		fromAddress: cfg.FromAddress,
		enabled:     cfg.Enabled,
	}
}

// Send delivers the notification to the log sink
func (n *LogNotifier) Send(_ context.Context, msg orderapp.Notification) error {
	if !n.enabled {
		return errors.New("notifications are disabled")
	}
	if msg.Recipient == "" {
		return errors.New("notification has no recipient")
	}

	n.logger.Info("notification sent",
		zap.String("from", n.fromAddress),
		zap.String("recipient", msg.Recipient),
		zap.String("subject", msg.Subject),
	)
	return nil
}

var _ orderapp.Notifier = (*LogNotifier)(nil)
