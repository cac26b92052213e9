package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// notifyTimeout bounds best-effort notification posts, detached from the
// command context so an aborted run can still report its outcome.
const notifyTimeout = 10 * time.Second

func newDiagnosticCmd(a *app) *cobra.Command {
	var includePods bool
	cmd := &cobra.Command{
		Use:   "diagnostic <deployment>",
		Short: "Evaluate deployment health and report a verdict",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dependencies()
			if err != nil {
				return err
			}

			ref := model.NewDeploymentRef(a.targetNamespace(), args[0])
			report, err := d.diagnoser.Diagnose(cmd.Context(), ref, includePods)
			if err != nil {
				return err
			}

			a.renderer().HealthReport(report)
			a.notifyDiagnostic(cmd.Context(), d, report)
			return verdictExit(report.Verdict)
		},
	}
	cmd.Flags().BoolVar(&includePods, "pod", false, "evaluate the deployment's pods as well")
	return cmd
}

// notifyDiagnostic posts non-Healthy verdicts. Failures are logged and never
// change the command result.
func (a *app) notifyDiagnostic(ctx context.Context, d *deps, report model.HealthReport) {
	if report.Verdict == model.VerdictHealthy {
		return
	}

	reasons := report.Reasons
	if len(reasons) > 5 {
		reasons = reasons[:5]
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	err := d.notifier.NotifyDiagnostic(nctx, outbound.DiagnosticNotification{
		Namespace:  report.Ref.Namespace,
		Deployment: report.Ref.Name,
		Verdict:    string(report.Verdict),
		Reasons:    reasons,
	})
	if err != nil {
		a.logger.Warn("diagnostic notification failed", "error", err)
	}
}

// verdictExit maps a health verdict to the command result: Healthy runs
// exit 0, everything else carries its verdict code.
func verdictExit(v model.Verdict) error {
	switch v {
	case model.VerdictHealthy:
		return nil
	case model.VerdictDegraded:
		return &exitError{code: 2}
	case model.VerdictFailed:
		return &exitError{code: 3}
	default:
		return &exitError{code: 4}
	}
}
