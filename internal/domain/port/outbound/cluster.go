package outbound

import (
	"context"
	"time"

	"github.com/jonny/kubetriage/internal/domain/model"
)

// SnapshotFetcher reads a deployment's live cluster state into a typed,
// self-contained snapshot. includePods=false skips pod collection; events
// are always collected.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, ref model.DeploymentRef, includePods bool) (model.ResourceSnapshot, error)
}

// WorkloadActuator performs the cluster writes the engine is allowed to make.
type WorkloadActuator interface {
	// RestartDeployment patches the pod template restart annotation with the
	// given timestamp. Re-issuing the same timestamp is a no-op on the API
	// server, which makes the trigger safe to retry.
	RestartDeployment(ctx context.Context, ref model.DeploymentRef, restartedAt time.Time) error
	ScaleDeployment(ctx context.Context, ref model.DeploymentRef, replicas int32) error
}

// ClusterBrowser serves the read-only inventory commands.
type ClusterBrowser interface {
	// ListDeployments lists deployments in the namespace, or cluster-wide
	// when namespace is empty.
	ListDeployments(ctx context.Context, namespace string) ([]model.DeploymentOverview, error)
	// FindDeployment searches every namespace for deployments with the name.
	FindDeployment(ctx context.Context, name string) ([]model.DeploymentRef, error)
	DeploymentDetails(ctx context.Context, ref model.DeploymentRef) (model.DeploymentDetails, error)
	// TailLogs fetches the last tailLines of each container of each pod of
	// the deployment. A non-empty pod narrows the fetch to that pod.
	TailLogs(ctx context.Context, ref model.DeploymentRef, pod string, tailLines int64) ([]model.PodLogs, error)
}
