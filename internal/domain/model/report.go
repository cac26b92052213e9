package model

import "time"

// Verdict classifies the health of a deployment or a single pod.
type Verdict string

const (
	VerdictHealthy  Verdict = "Healthy"
	VerdictDegraded Verdict = "Degraded"
	VerdictFailed   Verdict = "Failed"
	VerdictUnknown  Verdict = "Unknown"
)

// severityRank orders verdicts for aggregation. Unknown carries Degraded
// severity so that uncertainty never makes a report look healthier.
func severityRank(v Verdict) int {
	switch v {
	case VerdictHealthy:
		return 0
	case VerdictDegraded, VerdictUnknown:
		return 1
	case VerdictFailed:
		return 2
	default:
		return 1
	}
}

// WorseVerdict returns the more severe of two verdicts. On equal severity a
// concrete verdict wins over Unknown.
func WorseVerdict(a, b Verdict) Verdict {
	ra, rb := severityRank(a), severityRank(b)
	switch {
	case ra > rb:
		return a
	case rb > ra:
		return b
	case a == VerdictUnknown && b != VerdictUnknown:
		return b
	default:
		return a
	}
}

// DeploymentSummary carries the replica counters a report was judged on, so
// renderers never need the snapshot itself.
type DeploymentSummary struct {
	DesiredReplicas    int32     `json:"desired_replicas"`
	UpdatedReplicas    int32     `json:"updated_replicas"`
	ReadyReplicas      int32     `json:"ready_replicas"`
	AvailableReplicas  int32     `json:"available_replicas"`
	RolloutGeneration  int64     `json:"rollout_generation"`
	ObservedGeneration int64     `json:"observed_generation"`
	FetchedAt          time.Time `json:"fetched_at"`
}

// NewDeploymentSummary extracts the summary counters from a snapshot.
func NewDeploymentSummary(s ResourceSnapshot) DeploymentSummary {
	return DeploymentSummary{
		DesiredReplicas:    s.DesiredReplicas,
		UpdatedReplicas:    s.UpdatedReplicas,
		ReadyReplicas:      s.ReadyReplicas,
		AvailableReplicas:  s.AvailableReplicas,
		RolloutGeneration:  s.RolloutGeneration,
		ObservedGeneration: s.ObservedGeneration,
		FetchedAt:          s.FetchedAt,
	}
}

// PodReport is the evaluation result for one pod.
type PodReport struct {
	Verdict Verdict  `json:"verdict"`
	Reasons []string `json:"reasons,omitempty"`
}

// HealthReport is the full evaluation result for a deployment. Verdict is
// the aggregate across the deployment rules and every pod report.
// WarningEvents carries the snapshot's warning events verbatim so reports
// stay informative even when a terminal rule cut evaluation short.
type HealthReport struct {
	Ref           DeploymentRef        `json:"ref"`
	Verdict       Verdict              `json:"verdict"`
	Reasons       []string             `json:"reasons,omitempty"`
	Summary       DeploymentSummary    `json:"summary"`
	PodReports    map[string]PodReport `json:"pod_reports,omitempty"`
	WarningEvents []EventView          `json:"warning_events,omitempty"`
}
