package service

import (
	"fmt"
	"time"

	"github.com/jonny/kubetriage/internal/domain/model"
)

// Defaults for the evaluation tunables.
const (
	DefaultCrashLoopRestartThreshold = int32(5)
	DefaultPendingGracePeriod        = 2 * time.Minute
)

// EvaluatorConfig carries the tunables the health rules depend on.
type EvaluatorConfig struct {
	CrashLoopRestartThreshold int32
	PendingGracePeriod        time.Duration
}

// Evaluator applies the deterministic health rules to snapshots. It does no
// I/O and reads no clock: FetchedAt on the snapshot is the only time
// reference, so the same snapshot always yields the same report.
type Evaluator struct {
	cfg EvaluatorConfig
}

// NewEvaluator creates an Evaluator, substituting defaults for zero tunables.
func NewEvaluator(cfg EvaluatorConfig) *Evaluator {
	if cfg.CrashLoopRestartThreshold <= 0 {
		cfg.CrashLoopRestartThreshold = DefaultCrashLoopRestartThreshold
	}
	if cfg.PendingGracePeriod <= 0 {
		cfg.PendingGracePeriod = DefaultPendingGracePeriod
	}
	return &Evaluator{cfg: cfg}
}

// Evaluate produces the health report for a snapshot. The report verdict is
// the worst of the deployment verdict and every pod verdict; pod results
// never improve the deployment verdict.
func (e *Evaluator) Evaluate(snap model.ResourceSnapshot) model.HealthReport {
	verdict, reasons := e.evaluateDeployment(snap)

	report := model.HealthReport{
		Ref:           snap.Ref,
		Summary:       model.NewDeploymentSummary(snap),
		WarningEvents: snap.WarningEvents(),
	}

	if len(snap.Pods) > 0 {
		report.PodReports = make(map[string]model.PodReport, len(snap.Pods))
		for _, pod := range snap.Pods {
			pr := e.evaluatePod(pod, snap)
			report.PodReports[pod.Name] = pr
			if pr.Verdict == model.VerdictHealthy {
				continue
			}
			verdict = model.WorseVerdict(verdict, pr.Verdict)
			for _, r := range pr.Reasons {
				reasons = append(reasons, fmt.Sprintf("pod %s: %s", pod.Name, r))
			}
		}
	}

	report.Verdict = verdict
	report.Reasons = reasons
	return report
}

// evaluateDeployment applies the deployment-level rules in precedence
// order. Anomalous, stale and zero-available snapshots are terminal; the
// remaining rules accumulate reasons into a single Degraded verdict.
func (e *Evaluator) evaluateDeployment(snap model.ResourceSnapshot) (model.Verdict, []string) {
	if anomalies := snapshotAnomalies(snap); len(anomalies) > 0 {
		return model.VerdictUnknown, anomalies
	}
	if !snap.GenerationObserved() {
		return model.VerdictUnknown, []string{"rollout not yet observed by controller"}
	}
	if snap.AvailableReplicas == 0 && snap.DesiredReplicas > 0 {
		return model.VerdictFailed, []string{"no available replicas"}
	}

	var reasons []string
	if snap.ReadyReplicas < snap.DesiredReplicas {
		reasons = append(reasons, fmt.Sprintf("%d of %d replicas ready", snap.ReadyReplicas, snap.DesiredReplicas))
	}
	if snap.UpdatedReplicas < snap.DesiredReplicas {
		reasons = append(reasons, fmt.Sprintf("rollout in progress: %d of %d replicas updated", snap.UpdatedReplicas, snap.DesiredReplicas))
	}
	for _, ev := range snap.WarningEvents() {
		if ev.InvolvedKind != model.InvolvedKindDeployment && ev.InvolvedKind != model.InvolvedKindPod {
			continue
		}
		reasons = append(reasons, fmt.Sprintf("warning event on %s %s: %s: %s", ev.InvolvedKind, ev.InvolvedName, ev.Reason, ev.Message))
	}
	if len(reasons) > 0 {
		return model.VerdictDegraded, reasons
	}
	return model.VerdictHealthy, nil
}

// evaluatePod applies the pod-level rules. Rules that fire return the first
// matching verdict; a pod with no findings is Healthy.
func (e *Evaluator) evaluatePod(pod model.PodView, snap model.ResourceSnapshot) model.PodReport {
	switch {
	case pod.Phase == model.PodPhaseFailed:
		reasons := []string{"pod failed"}
		if pod.LastTerminationReason != "" {
			reasons = append(reasons, fmt.Sprintf("last termination: %s", pod.LastTerminationReason))
		}
		return model.PodReport{Verdict: model.VerdictFailed, Reasons: reasons}

	case pod.RestartCount >= e.cfg.CrashLoopRestartThreshold:
		reasons := []string{fmt.Sprintf("crash looping: %d restarts (threshold %d)", pod.RestartCount, e.cfg.CrashLoopRestartThreshold)}
		if pod.LastTerminationReason != "" {
			reasons = append(reasons, fmt.Sprintf("last termination: %s", pod.LastTerminationReason))
		}
		return model.PodReport{Verdict: model.VerdictFailed, Reasons: reasons}

	case pod.Phase == model.PodPhasePending:
		if age, ok := pendingSince(pod.Name, snap); ok && age > e.cfg.PendingGracePeriod {
			return model.PodReport{
				Verdict: model.VerdictDegraded,
				Reasons: []string{fmt.Sprintf("pending for %s, past grace period %s", age.Round(time.Second), e.cfg.PendingGracePeriod)},
			}
		}
		return model.PodReport{Verdict: model.VerdictHealthy}

	case pod.Phase == model.PodPhaseRunning && !pod.ContainerReady:
		return model.PodReport{Verdict: model.VerdictDegraded, Reasons: []string{"container not ready"}}
	}

	return model.PodReport{Verdict: model.VerdictHealthy}
}

// snapshotAnomalies guards against malformed snapshots. Anomalies yield an
// Unknown verdict with the finding recorded instead of a panic downstream.
func snapshotAnomalies(snap model.ResourceSnapshot) []string {
	var anomalies []string
	if snap.DesiredReplicas < 0 || snap.UpdatedReplicas < 0 || snap.ReadyReplicas < 0 || snap.AvailableReplicas < 0 {
		anomalies = append(anomalies, fmt.Sprintf(
			"snapshot anomaly: negative replica count (desired=%d updated=%d ready=%d available=%d)",
			snap.DesiredReplicas, snap.UpdatedReplicas, snap.ReadyReplicas, snap.AvailableReplicas))
	}
	if snap.RolloutGeneration < 0 || snap.ObservedGeneration < 0 {
		anomalies = append(anomalies, fmt.Sprintf(
			"snapshot anomaly: negative generation (rollout=%d observed=%d)",
			snap.RolloutGeneration, snap.ObservedGeneration))
	}
	return anomalies
}

// pendingSince derives how long a pod has been pending from the earliest
// event referencing it, measured against fetch time. ok is false when no
// event references the pod, which is treated as just-created.
func pendingSince(name string, snap model.ResourceSnapshot) (time.Duration, bool) {
	var earliest time.Time
	for _, ev := range snap.RecentEvents {
		if ev.InvolvedKind != model.InvolvedKindPod || ev.InvolvedName != name {
			continue
		}
		if ev.LastTimestamp.IsZero() {
			continue
		}
		if earliest.IsZero() || ev.LastTimestamp.Before(earliest) {
			earliest = ev.LastTimestamp
		}
	}
	if earliest.IsZero() {
		return 0, false
	}
	return snap.FetchedAt.Sub(earliest), true
}
