package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/service"
	"github.com/jonny/kubetriage/pkg/clustererror"
)

// --- fake clock ---

// fakeClock advances by the requested duration on every After call, so the
// driver's sleeps complete instantly while elapsed time stays observable.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: fetchedAt}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) After(d time.Duration) <-chan time.Time {
	c.now = c.now.Add(d)
	ch := make(chan time.Time, 1)
	ch <- c.now
	return ch
}

var _ service.Clock = (*fakeClock)(nil)

// --- sequenced fetcher ---

// sequencedFetcher returns its snapshots in order, repeating the last one
// once the sequence is exhausted.
type sequencedFetcher struct {
	snapshots []model.ResourceSnapshot
	err       error
	calls     int
}

func (f *sequencedFetcher) Fetch(_ context.Context, ref model.DeploymentRef, _ bool) (model.ResourceSnapshot, error) {
	f.calls++
	if f.err != nil {
		return model.ResourceSnapshot{}, f.err
	}
	i := f.calls - 1
	if i >= len(f.snapshots) {
		i = len(f.snapshots) - 1
	}
	snap := f.snapshots[i]
	snap.Ref = ref
	return snap, nil
}

// --- mock actuator ---

type mockActuator struct {
	restartErr error
	restarts   []time.Time
	scaled     []int32
	scaleErr   error
}

func (m *mockActuator) RestartDeployment(_ context.Context, _ model.DeploymentRef, restartedAt time.Time) error {
	m.restarts = append(m.restarts, restartedAt)
	return m.restartErr
}

func (m *mockActuator) ScaleDeployment(_ context.Context, _ model.DeploymentRef, replicas int32) error {
	m.scaled = append(m.scaled, replicas)
	return m.scaleErr
}

// rollingSnapshot builds a fresh-generation snapshot mid-rollout.
func rollingSnapshot(desired, updated, ready, available int32) model.ResourceSnapshot {
	snap := healthySnapshot(desired)
	snap.UpdatedReplicas = updated
	snap.ReadyReplicas = ready
	snap.AvailableReplicas = available
	return snap
}

func newTestDriver(actuator *mockActuator, fetcher *sequencedFetcher, clock service.Clock) *service.Driver {
	return service.NewDriver(actuator, fetcher, newEvaluator(), clock, slog.Default())
}

var testRef = model.NewDeploymentRef("default", "api")

func TestDriver_ConvergesAfterThreePolls(t *testing.T) {
	fetcher := &sequencedFetcher{snapshots: []model.ResourceSnapshot{
		rollingSnapshot(3, 2, 1, 1),
		rollingSnapshot(3, 3, 2, 2),
		rollingSnapshot(3, 3, 3, 3),
	}}
	actuator := &mockActuator{}
	clock := newFakeClock()
	driver := newTestDriver(actuator, fetcher, clock)

	result, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{
		PollInterval: time.Second,
		Timeout:      time.Minute,
	})
	if err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}

	if result.Outcome != model.OutcomeConverged {
		t.Fatalf("outcome = %s, want %s", result.Outcome, model.OutcomeConverged)
	}
	if result.Attempts != 3 {
		t.Errorf("attempts = %d, want 3", result.Attempts)
	}
	if fetcher.calls != 3 {
		t.Errorf("fetch calls = %d, want 3", fetcher.calls)
	}
	if result.Elapsed != 3*time.Second {
		t.Errorf("elapsed = %s, want 3s", result.Elapsed)
	}
	if !result.FinalSnapshot.Converged() {
		t.Errorf("final snapshot not converged: %+v", result.FinalSnapshot)
	}
}

func TestDriver_TimesOutWithinOnePollInterval(t *testing.T) {
	fetcher := &sequencedFetcher{snapshots: []model.ResourceSnapshot{
		rollingSnapshot(3, 2, 1, 1),
	}}
	actuator := &mockActuator{}
	clock := newFakeClock()
	driver := newTestDriver(actuator, fetcher, clock)

	interval := 10 * time.Second
	timeout := 25 * time.Second
	result, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{
		PollInterval: interval,
		Timeout:      timeout,
	})
	if err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}

	if result.Outcome != model.OutcomeTimedOut {
		t.Fatalf("outcome = %s, want %s", result.Outcome, model.OutcomeTimedOut)
	}
	if result.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", result.Attempts)
	}
	if result.Elapsed > timeout+interval {
		t.Errorf("elapsed = %s, exceeds timeout by more than one interval", result.Elapsed)
	}
	if !result.FinalSnapshot.FetchedAt.IsZero() && result.FinalSnapshot.ReadyReplicas != 1 {
		t.Errorf("final snapshot = %+v, want last polled state", result.FinalSnapshot)
	}
}

func TestDriver_FastFailsAfterTwoFailedVerdicts(t *testing.T) {
	fetcher := &sequencedFetcher{snapshots: []model.ResourceSnapshot{
		rollingSnapshot(3, 3, 0, 0),
	}}
	actuator := &mockActuator{}
	clock := newFakeClock()
	driver := newTestDriver(actuator, fetcher, clock)

	result, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{
		PollInterval: time.Second,
		Timeout:      time.Hour,
	})
	if err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}

	if result.Outcome != model.OutcomeFailed {
		t.Fatalf("outcome = %s, want %s", result.Outcome, model.OutcomeFailed)
	}
	if result.Attempts != 2 {
		t.Errorf("attempts = %d, want 2", result.Attempts)
	}
}

func TestDriver_FailStreakResetsOnRecovery(t *testing.T) {
	fetcher := &sequencedFetcher{snapshots: []model.ResourceSnapshot{
		rollingSnapshot(3, 3, 0, 0),
		rollingSnapshot(3, 3, 1, 1),
		rollingSnapshot(3, 3, 0, 0),
		rollingSnapshot(3, 3, 0, 0),
	}}
	actuator := &mockActuator{}
	clock := newFakeClock()
	driver := newTestDriver(actuator, fetcher, clock)

	result, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{
		PollInterval: time.Second,
		Timeout:      time.Hour,
	})
	if err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}

	if result.Outcome != model.OutcomeFailed {
		t.Fatalf("outcome = %s, want %s", result.Outcome, model.OutcomeFailed)
	}
	if result.Attempts != 4 {
		t.Errorf("attempts = %d, want 4 (streak must reset on recovery)", result.Attempts)
	}
}

func TestDriver_TriggerNotFoundPropagates(t *testing.T) {
	fetcher := &sequencedFetcher{}
	actuator := &mockActuator{restartErr: clustererror.NotFound("deployment default/api")}
	driver := newTestDriver(actuator, fetcher, newFakeClock())

	_, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{
		PollInterval: time.Second,
		Timeout:      time.Minute,
	})
	if err == nil {
		t.Fatal("Rollout() error = nil, want NotFound")
	}
	if !clustererror.IsKind(err, clustererror.KindNotFound) {
		t.Errorf("error kind = %q, want %q (err: %v)", clustererror.KindOf(err), clustererror.KindNotFound, err)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetch calls = %d, want 0 after trigger failure", fetcher.calls)
	}
}

func TestDriver_TransportErrorTerminatesImmediately(t *testing.T) {
	fetcher := &sequencedFetcher{err: clustererror.Unreachable("deployment default/api", context.DeadlineExceeded)}
	actuator := &mockActuator{}
	driver := newTestDriver(actuator, fetcher, newFakeClock())

	result, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{
		PollInterval: time.Second,
		Timeout:      time.Hour,
	})
	if err == nil {
		t.Fatal("Rollout() error = nil, want Unreachable")
	}
	if !clustererror.IsKind(err, clustererror.KindUnreachable) {
		t.Errorf("error kind = %q, want %q", clustererror.KindOf(err), clustererror.KindUnreachable)
	}
	if fetcher.calls != 1 {
		t.Errorf("fetch calls = %d, want 1 (no retries on transport errors)", fetcher.calls)
	}
	if result.Attempts != 0 {
		t.Errorf("attempts = %d, want 0", result.Attempts)
	}
}

func TestDriver_CanceledContextAborts(t *testing.T) {
	fetcher := &sequencedFetcher{snapshots: []model.ResourceSnapshot{
		rollingSnapshot(3, 2, 1, 1),
	}}
	actuator := &mockActuator{}
	driver := newTestDriver(actuator, fetcher, newFakeClock())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := driver.Rollout(ctx, testRef, model.RolloutConfig{
		PollInterval: time.Second,
		Timeout:      time.Minute,
	})
	if err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}

	if result.Outcome != model.OutcomeTimedOut {
		t.Errorf("outcome = %s, want %s", result.Outcome, model.OutcomeTimedOut)
	}
	if fetcher.calls != 0 {
		t.Errorf("fetch calls = %d, want 0 after cancellation", fetcher.calls)
	}
	if len(actuator.restarts) != 1 {
		t.Errorf("restarts = %d, want 1 (trigger precedes polling)", len(actuator.restarts))
	}
}

func TestDriver_RestartTimestampTakenOnce(t *testing.T) {
	fetcher := &sequencedFetcher{snapshots: []model.ResourceSnapshot{
		rollingSnapshot(3, 3, 3, 3),
	}}
	actuator := &mockActuator{}
	clock := newFakeClock()
	start := clock.Now().UTC()
	driver := newTestDriver(actuator, fetcher, clock)

	if _, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{
		PollInterval: time.Second,
		Timeout:      time.Minute,
	}); err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}

	if len(actuator.restarts) != 1 {
		t.Fatalf("restarts = %d, want 1", len(actuator.restarts))
	}
	if !actuator.restarts[0].Equal(start) {
		t.Errorf("restartedAt = %s, want clock start %s", actuator.restarts[0], start)
	}
}

func TestDriver_InvalidRefRejected(t *testing.T) {
	driver := newTestDriver(&mockActuator{}, &sequencedFetcher{}, newFakeClock())

	_, err := driver.Rollout(context.Background(), model.DeploymentRef{Namespace: "default"}, model.RolloutConfig{})
	if !clustererror.IsKind(err, clustererror.KindInvalid) {
		t.Errorf("error kind = %q, want %q", clustererror.KindOf(err), clustererror.KindInvalid)
	}
}

func TestDriver_ZeroConfigUsesDefaults(t *testing.T) {
	fetcher := &sequencedFetcher{snapshots: []model.ResourceSnapshot{
		rollingSnapshot(2, 2, 2, 2),
	}}
	clock := newFakeClock()
	driver := newTestDriver(&mockActuator{}, fetcher, clock)

	result, err := driver.Rollout(context.Background(), testRef, model.RolloutConfig{})
	if err != nil {
		t.Fatalf("Rollout() error = %v", err)
	}

	if result.Outcome != model.OutcomeConverged {
		t.Fatalf("outcome = %s, want %s", result.Outcome, model.OutcomeConverged)
	}
	if result.Elapsed != service.DefaultPollInterval {
		t.Errorf("elapsed = %s, want one default interval %s", result.Elapsed, service.DefaultPollInterval)
	}
}
