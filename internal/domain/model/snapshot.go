package model

import "time"

type PodPhase string

const (
	PodPhasePending   PodPhase = "Pending"
	PodPhaseRunning   PodPhase = "Running"
	PodPhaseSucceeded PodPhase = "Succeeded"
	PodPhaseFailed    PodPhase = "Failed"
	PodPhaseUnknown   PodPhase = "Unknown"
)

type EventType string

const (
	EventTypeNormal  EventType = "Normal"
	EventTypeWarning EventType = "Warning"
)

// Kinds of objects an EventView may reference, as reported by the API.
const (
	InvolvedKindDeployment = "Deployment"
	InvolvedKindReplicaSet = "ReplicaSet"
	InvolvedKindPod        = "Pod"
)

// PodView is the per-pod slice of a snapshot: just the fields the health
// rules read, decoupled from the full core/v1 Pod object.
type PodView struct {
	Name                  string   `json:"name"`
	Phase                 PodPhase `json:"phase"`
	RestartCount          int32    `json:"restart_count"`
	ContainerReady        bool     `json:"container_ready"`
	LastTerminationReason string   `json:"last_termination_reason,omitempty"`
}

// EventView summarizes a namespace Event that references the target
// Deployment, its current ReplicaSet, or one of its active Pods.
type EventView struct {
	Reason        string    `json:"reason"`
	Type          EventType `json:"type"`
	Message       string    `json:"message"`
	InvolvedKind  string    `json:"involved_kind"`
	InvolvedName  string    `json:"involved_name"`
	LastTimestamp time.Time `json:"last_timestamp"`
}

// ResourceSnapshot is a self-contained, immutable view of a Deployment's
// cluster state at fetch time. All health evaluation reads this value and
// nothing else, so the rules stay pure and testable without a cluster.
type ResourceSnapshot struct {
	Ref                DeploymentRef `json:"ref"`
	DesiredReplicas    int32         `json:"desired_replicas"`
	UpdatedReplicas    int32         `json:"updated_replicas"`
	ReadyReplicas      int32         `json:"ready_replicas"`
	AvailableReplicas  int32         `json:"available_replicas"`
	RolloutGeneration  int64         `json:"rollout_generation"`
	ObservedGeneration int64         `json:"observed_generation"`
	Pods               []PodView     `json:"pods,omitempty"`
	StalePods          []PodView     `json:"stale_pods,omitempty"`
	RecentEvents       []EventView   `json:"recent_events,omitempty"`
	FetchedAt          time.Time     `json:"fetched_at"`
}

// GenerationObserved reports whether the controller has seen the latest
// Deployment spec. A false value means every status counter may be stale.
func (s ResourceSnapshot) GenerationObserved() bool {
	return s.ObservedGeneration >= s.RolloutGeneration
}

// Converged reports whether the rollout has fully settled: every replica
// updated, ready and available, and the controller caught up.
func (s ResourceSnapshot) Converged() bool {
	return s.GenerationObserved() &&
		s.UpdatedReplicas == s.DesiredReplicas &&
		s.ReadyReplicas == s.DesiredReplicas &&
		s.AvailableReplicas == s.DesiredReplicas
}

// WarningEvents returns the warning-type events in the snapshot, in order.
func (s ResourceSnapshot) WarningEvents() []EventView {
	var out []EventView
	for _, ev := range s.RecentEvents {
		if ev.Type == EventTypeWarning {
			out = append(out, ev)
		}
	}
	return out
}
