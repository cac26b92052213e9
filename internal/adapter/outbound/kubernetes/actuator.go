package kubernetes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// restartedAtAnnotation is the pod template annotation kubectl uses to force
// a rolling restart. Re-applying the same timestamp is a no-op for the
// controller, which keeps retries safe.
const restartedAtAnnotation = "kubectl.kubernetes.io/restartedAt"

// Actuator mutates deployments through the Kubernetes API.
type Actuator struct {
	clientset k8s.Interface
	guard     *Guard
}

// NewActuator creates an Actuator. Every mutation passes through guard
// before any API call is made.
func NewActuator(clientset k8s.Interface, guard *Guard) *Actuator {
	return &Actuator{clientset: clientset, guard: guard}
}

// Ensure Actuator satisfies the outbound port at compile time.
var _ outbound.WorkloadActuator = (*Actuator)(nil)

// RestartDeployment patches the pod template with the caller-supplied
// restart timestamp. The caller fixes the timestamp once per rollout so a
// retried patch re-applies the same value instead of kicking off a second
// rollout.
func (a *Actuator) RestartDeployment(ctx context.Context, ref model.DeploymentRef, restartedAt time.Time) error {
	if err := a.guard.Check(ref.Namespace); err != nil {
		return fmt.Errorf("restart denied: %w", err)
	}

	patch := map[string]any{
		"spec": map[string]any{
			"template": map[string]any{
				"metadata": map[string]any{
					"annotations": map[string]string{
						restartedAtAnnotation: restartedAt.Format(time.RFC3339),
					},
				},
			},
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encoding restart patch: %w", err)
	}

	_, err = a.clientset.AppsV1().Deployments(ref.Namespace).Patch(ctx, ref.Name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	if err != nil {
		return classify("deployment "+ref.String(), err)
	}
	return nil
}

// ScaleDeployment patches spec.replicas to the requested count.
func (a *Actuator) ScaleDeployment(ctx context.Context, ref model.DeploymentRef, replicas int32) error {
	if err := a.guard.Check(ref.Namespace); err != nil {
		return fmt.Errorf("scale denied: %w", err)
	}

	patch := map[string]any{
		"spec": map[string]any{
			"replicas": replicas,
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("encoding scale patch: %w", err)
	}

	_, err = a.clientset.AppsV1().Deployments(ref.Namespace).Patch(ctx, ref.Name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	if err != nil {
		return classify("deployment "+ref.String(), err)
	}
	return nil
}
