package model

import "testing"

// ---- DeploymentRef tests ----

func TestDeploymentRefValidate(t *testing.T) {
	cases := []struct {
		name    string
		ref     DeploymentRef
		wantErr bool
	}{
		{"valid", NewDeploymentRef("default", "api"), false},
		{"missing namespace", DeploymentRef{Name: "api"}, true},
		{"missing name", DeploymentRef{Namespace: "default"}, true},
		{"empty", DeploymentRef{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.ref.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestDeploymentRefString(t *testing.T) {
	ref := NewDeploymentRef("payments", "gateway")
	if got := ref.String(); got != "payments/gateway" {
		t.Errorf("String() = %q, want %q", got, "payments/gateway")
	}
}

// ---- Verdict tests ----

func TestWorseVerdict(t *testing.T) {
	cases := []struct {
		a, b, want Verdict
	}{
		{VerdictHealthy, VerdictHealthy, VerdictHealthy},
		{VerdictHealthy, VerdictDegraded, VerdictDegraded},
		{VerdictDegraded, VerdictHealthy, VerdictDegraded},
		{VerdictDegraded, VerdictFailed, VerdictFailed},
		{VerdictFailed, VerdictUnknown, VerdictFailed},
		{VerdictUnknown, VerdictHealthy, VerdictUnknown},
		{VerdictUnknown, VerdictDegraded, VerdictDegraded},
		{VerdictDegraded, VerdictUnknown, VerdictDegraded},
		{VerdictUnknown, VerdictUnknown, VerdictUnknown},
		{VerdictFailed, VerdictFailed, VerdictFailed},
	}
	for _, tc := range cases {
		if got := WorseVerdict(tc.a, tc.b); got != tc.want {
			t.Errorf("WorseVerdict(%s, %s) = %s, want %s", tc.a, tc.b, got, tc.want)
		}
	}
}

// ---- ResourceSnapshot tests ----

func TestSnapshotConverged(t *testing.T) {
	base := ResourceSnapshot{
		DesiredReplicas:    3,
		UpdatedReplicas:    3,
		ReadyReplicas:      3,
		AvailableReplicas:  3,
		RolloutGeneration:  7,
		ObservedGeneration: 7,
	}
	if !base.Converged() {
		t.Error("fully settled snapshot must be converged")
	}

	stale := base
	stale.ObservedGeneration = 6
	if stale.Converged() {
		t.Error("stale generation must not be converged")
	}

	rolling := base
	rolling.UpdatedReplicas = 2
	if rolling.Converged() {
		t.Error("partially updated snapshot must not be converged")
	}

	unavailable := base
	unavailable.AvailableReplicas = 2
	if unavailable.Converged() {
		t.Error("partially available snapshot must not be converged")
	}
}

func TestSnapshotGenerationObserved(t *testing.T) {
	snap := ResourceSnapshot{RolloutGeneration: 5, ObservedGeneration: 4}
	if snap.GenerationObserved() {
		t.Error("observed < rollout must report stale")
	}
	snap.ObservedGeneration = 5
	if !snap.GenerationObserved() {
		t.Error("observed == rollout must report fresh")
	}
	snap.ObservedGeneration = 6
	if !snap.GenerationObserved() {
		t.Error("observed > rollout must report fresh")
	}
}

func TestSnapshotWarningEvents(t *testing.T) {
	snap := ResourceSnapshot{RecentEvents: []EventView{
		{Reason: "Scheduled", Type: EventTypeNormal},
		{Reason: "BackOff", Type: EventTypeWarning},
		{Reason: "Pulled", Type: EventTypeNormal},
		{Reason: "FailedMount", Type: EventTypeWarning},
	}}

	warnings := snap.WarningEvents()
	if len(warnings) != 2 {
		t.Fatalf("warnings = %d, want 2", len(warnings))
	}
	if warnings[0].Reason != "BackOff" || warnings[1].Reason != "FailedMount" {
		t.Errorf("warnings out of order: %+v", warnings)
	}
}

func TestNewDeploymentSummary(t *testing.T) {
	snap := ResourceSnapshot{
		DesiredReplicas:    4,
		UpdatedReplicas:    3,
		ReadyReplicas:      2,
		AvailableReplicas:  2,
		RolloutGeneration:  9,
		ObservedGeneration: 9,
	}
	sum := NewDeploymentSummary(snap)
	if sum.DesiredReplicas != 4 || sum.UpdatedReplicas != 3 || sum.ReadyReplicas != 2 || sum.AvailableReplicas != 2 {
		t.Errorf("summary counters = %+v, want snapshot counters", sum)
	}
	if sum.RolloutGeneration != 9 || sum.ObservedGeneration != 9 {
		t.Errorf("summary generations = %+v, want snapshot generations", sum)
	}
}
