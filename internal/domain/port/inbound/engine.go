package inbound

import (
	"context"

	"github.com/jonny/kubetriage/internal/domain/model"
)

// DiagnosticPort runs the one-shot fetch and evaluate path.
type DiagnosticPort interface {
	Diagnose(ctx context.Context, ref model.DeploymentRef, includePods bool) (model.HealthReport, error)
}

// RolloutPort triggers a rolling restart and polls it to a terminal outcome.
type RolloutPort interface {
	Rollout(ctx context.Context, ref model.DeploymentRef, cfg model.RolloutConfig) (model.RolloutResult, error)
}
