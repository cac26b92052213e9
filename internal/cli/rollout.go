package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

func newRolloutCmd(a *app) *cobra.Command {
	var (
		timeout     time.Duration
		interval    time.Duration
		includePods bool
	)
	cmd := &cobra.Command{
		Use:   "rollout <deployment>",
		Short: "Trigger a rolling restart and poll it to a terminal outcome",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dependencies()
			if err != nil {
				return err
			}

			ref := model.NewDeploymentRef(a.targetNamespace(), args[0])
			cfg := model.RolloutConfig{
				PollInterval: interval,
				Timeout:      timeout,
				IncludePods:  includePods,
			}
			if cfg.PollInterval == 0 {
				cfg.PollInterval = a.cfg.Rollout.PollInterval
			}
			if cfg.Timeout == 0 {
				cfg.Timeout = a.cfg.Rollout.Timeout
			}

			stopSpinner := a.startSpinner(fmt.Sprintf("Rolling out %s ", ref))
			result, err := d.driver.Rollout(cmd.Context(), ref, cfg)
			stopSpinner()
			if err != nil {
				return err
			}

			a.renderer().RolloutResult(result)
			a.notifyRollout(cmd.Context(), d, result)
			return outcomeExit(result.Outcome)
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "overall rollout deadline (default from config)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "poll interval (default from config)")
	cmd.Flags().BoolVar(&includePods, "pod", false, "collect pod state on each poll")
	return cmd
}

// startSpinner shows a progress spinner while polling, on interactive
// terminals only. The returned stop function is always safe to call.
func (a *app) startSpinner(message string) func() {
	f, ok := a.stderr.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	spin := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(f))
	spin.Prefix = message
	spin.Start()
	return spin.Stop
}

// notifyRollout posts the rollout outcome. Failures are logged and never
// change the command result.
func (a *app) notifyRollout(ctx context.Context, d *deps, result model.RolloutResult) {
	snap := result.FinalSnapshot
	replicas := fmt.Sprintf("%d/%d ready, %d available",
		snap.ReadyReplicas, snap.DesiredReplicas, snap.AvailableReplicas)
	if result.Attempts == 0 {
		replicas = "not polled"
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	err := d.notifier.NotifyRollout(nctx, outbound.RolloutNotification{
		Namespace:  result.Ref.Namespace,
		Deployment: result.Ref.Name,
		Outcome:    string(result.Outcome),
		Attempts:   result.Attempts,
		Elapsed:    result.Elapsed,
		Replicas:   replicas,
	})
	if err != nil {
		a.logger.Warn("rollout notification failed", "error", err)
	}
}

// outcomeExit maps a rollout outcome to the command result.
func outcomeExit(o model.Outcome) error {
	switch o {
	case model.OutcomeConverged:
		return nil
	case model.OutcomeFailed:
		return &exitError{code: 3}
	default:
		return &exitError{code: 4}
	}
}
