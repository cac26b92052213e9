package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/port/inbound"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
	"github.com/jonny/kubetriage/pkg/clustererror"
)

// Defaults for the rollout bounds.
const (
	DefaultPollInterval   = 5 * time.Second
	DefaultRolloutTimeout = 5 * time.Minute
)

// failStreakLimit is the number of consecutive Failed verdicts after which
// a rollout is declared failed without waiting for the timeout.
const failStreakLimit = 2

// Driver triggers a rolling restart and polls the cluster through a bounded
// state machine until the rollout converges, fails, or times out. The clock
// and the fetcher are injected so the machine runs in tests with no cluster
// and no real sleeps.
type Driver struct {
	actuator  outbound.WorkloadActuator
	fetcher   outbound.SnapshotFetcher
	evaluator *Evaluator
	clock     Clock
	logger    *slog.Logger
}

// NewDriver creates a Driver. A nil clock selects the system clock.
func NewDriver(
	actuator outbound.WorkloadActuator,
	fetcher outbound.SnapshotFetcher,
	evaluator *Evaluator,
	clock Clock,
	logger *slog.Logger,
) *Driver {
	if clock == nil {
		clock = SystemClock()
	}
	return &Driver{
		actuator:  actuator,
		fetcher:   fetcher,
		evaluator: evaluator,
		clock:     clock,
		logger:    logger,
	}
}

// Ensure Driver satisfies the inbound port at compile time.
var _ inbound.RolloutPort = (*Driver)(nil)

// Rollout implements inbound.RolloutPort.
//
// The restart timestamp is taken once per invocation, so retrying the
// trigger patches the same value and stays a no-op. During polling a
// transport error terminates the run immediately; it never counts toward
// the consecutive-failure streak. A canceled context exits promptly at the
// top of the next iteration with outcome TimedOut.
func (d *Driver) Rollout(ctx context.Context, ref model.DeploymentRef, cfg model.RolloutConfig) (model.RolloutResult, error) {
	if err := ref.Validate(); err != nil {
		return model.RolloutResult{}, clustererror.Invalid(err.Error())
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRolloutTimeout
	}

	start := d.clock.Now()
	result := model.RolloutResult{Ref: ref, Outcome: model.OutcomeFailed}

	restartedAt := start.UTC()
	if err := d.actuator.RestartDeployment(ctx, ref, restartedAt); err != nil {
		result.Elapsed = d.clock.Now().Sub(start)
		return result, fmt.Errorf("triggering restart of %s: %w", ref, err)
	}
	d.logger.Info("rollout triggered",
		"deployment", ref.String(),
		"restartedAt", restartedAt.Format(time.RFC3339),
		"pollInterval", cfg.PollInterval.String(),
		"timeout", cfg.Timeout.String(),
	)

	failStreak := 0
	for {
		if ctx.Err() != nil {
			result.Outcome = model.OutcomeTimedOut
			result.Elapsed = d.clock.Now().Sub(start)
			d.logger.Warn("rollout aborted", "deployment", ref.String(), "cause", ctx.Err())
			return result, nil
		}

		select {
		case <-ctx.Done():
			result.Outcome = model.OutcomeTimedOut
			result.Elapsed = d.clock.Now().Sub(start)
			d.logger.Warn("rollout aborted", "deployment", ref.String(), "cause", ctx.Err())
			return result, nil
		case <-d.clock.After(cfg.PollInterval):
		}

		if elapsed := d.clock.Now().Sub(start); elapsed >= cfg.Timeout {
			result.Outcome = model.OutcomeTimedOut
			result.Elapsed = elapsed
			d.logger.Warn("rollout timed out",
				"deployment", ref.String(),
				"attempts", result.Attempts,
				"elapsed", elapsed.String(),
			)
			return result, nil
		}

		snap, err := d.fetcher.Fetch(ctx, ref, cfg.IncludePods)
		if err != nil {
			result.Elapsed = d.clock.Now().Sub(start)
			return result, fmt.Errorf("polling %s: %w", ref, err)
		}
		result.Attempts++
		result.FinalSnapshot = snap

		report := d.evaluator.Evaluate(snap)
		d.logger.Debug("rollout poll",
			"deployment", ref.String(),
			"attempt", result.Attempts,
			"verdict", string(report.Verdict),
			"desired", snap.DesiredReplicas,
			"updated", snap.UpdatedReplicas,
			"ready", snap.ReadyReplicas,
			"available", snap.AvailableReplicas,
		)

		if snap.Converged() {
			result.Outcome = model.OutcomeConverged
			result.Elapsed = d.clock.Now().Sub(start)
			d.logger.Info("rollout converged",
				"deployment", ref.String(),
				"attempts", result.Attempts,
				"elapsed", result.Elapsed.String(),
			)
			return result, nil
		}

		if report.Verdict == model.VerdictFailed {
			failStreak++
			if failStreak >= failStreakLimit {
				result.Outcome = model.OutcomeFailed
				result.Elapsed = d.clock.Now().Sub(start)
				d.logger.Warn("rollout failed",
					"deployment", ref.String(),
					"attempts", result.Attempts,
					"consecutiveFailures", failStreak,
				)
				return result, nil
			}
		} else {
			failStreak = 0
		}
	}
}
