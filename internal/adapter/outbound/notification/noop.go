package notification

import (
	"context"
	"log/slog"

	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// NoopNotifier logs notifications instead of sending them. Used when Slack
// is not configured.
type NoopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier creates a new NoopNotifier.
func NewNoopNotifier(logger *slog.Logger) *NoopNotifier {
	return &NoopNotifier{logger: logger}
}

var _ outbound.Notifier = (*NoopNotifier)(nil)

func (n *NoopNotifier) NotifyRollout(_ context.Context, notification outbound.RolloutNotification) error {
	n.logger.Info("noop: rollout notification",
		"namespace", notification.Namespace,
		"deployment", notification.Deployment,
		"outcome", notification.Outcome,
		"attempts", notification.Attempts,
	)
	return nil
}

func (n *NoopNotifier) NotifyDiagnostic(_ context.Context, notification outbound.DiagnosticNotification) error {
	n.logger.Info("noop: diagnostic notification",
		"namespace", notification.Namespace,
		"deployment", notification.Deployment,
		"verdict", notification.Verdict,
		"reasons", len(notification.Reasons),
	)
	return nil
}
