package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/port/inbound"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
	"github.com/jonny/kubetriage/pkg/clustererror"
)

// Diagnoser runs the one-shot diagnostic path: validate the ref, fetch a
// snapshot, evaluate it.
type Diagnoser struct {
	fetcher   outbound.SnapshotFetcher
	evaluator *Evaluator
	logger    *slog.Logger
}

// NewDiagnoser creates a Diagnoser with all required dependencies.
func NewDiagnoser(fetcher outbound.SnapshotFetcher, evaluator *Evaluator, logger *slog.Logger) *Diagnoser {
	return &Diagnoser{fetcher: fetcher, evaluator: evaluator, logger: logger}
}

// Ensure Diagnoser satisfies the inbound port at compile time.
var _ inbound.DiagnosticPort = (*Diagnoser)(nil)

// Diagnose implements inbound.DiagnosticPort. Fetch errors propagate with
// their cluster error kind intact; they never degrade into a verdict.
func (d *Diagnoser) Diagnose(ctx context.Context, ref model.DeploymentRef, includePods bool) (model.HealthReport, error) {
	if err := ref.Validate(); err != nil {
		return model.HealthReport{}, clustererror.Invalid(err.Error())
	}

	snap, err := d.fetcher.Fetch(ctx, ref, includePods)
	if err != nil {
		return model.HealthReport{}, fmt.Errorf("fetching snapshot for %s: %w", ref, err)
	}

	report := d.evaluator.Evaluate(snap)
	d.logger.Info("diagnostic complete",
		"deployment", ref.String(),
		"verdict", string(report.Verdict),
		"reasons", len(report.Reasons),
		"pods", len(report.PodReports),
	)
	return report, nil
}
