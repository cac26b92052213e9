package outbound

import (
	"context"
	"time"
)

type RolloutNotification struct {
	Namespace  string
	Deployment string
	Outcome    string
	Attempts   int
	Elapsed    time.Duration
	Replicas   string
}

type DiagnosticNotification struct {
	Namespace  string
	Deployment string
	Verdict    string
	Reasons    []string
}

// Notifier posts engine outcomes to a messaging platform. Implementations
// must be best-effort: a failed notification is logged by the caller and
// never changes the command result.
type Notifier interface {
	NotifyRollout(ctx context.Context, notification RolloutNotification) error
	NotifyDiagnostic(ctx context.Context, notification DiagnosticNotification) error
}
