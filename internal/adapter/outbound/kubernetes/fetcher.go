package kubernetes

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// revisionAnnotation identifies which ReplicaSet generation a deployment
// currently points at. The deployment and its newest ReplicaSet carry the
// same value.
const revisionAnnotation = "deployment.kubernetes.io/revision"

// Fetcher assembles ResourceSnapshots from live cluster state.
type Fetcher struct {
	clientset     k8s.Interface
	eventLookback time.Duration
}

// NewFetcher creates a Fetcher. eventLookback bounds how far back namespace
// events are collected, measured against fetch time.
func NewFetcher(clientset k8s.Interface, eventLookback time.Duration) *Fetcher {
	if eventLookback <= 0 {
		eventLookback = time.Hour
	}
	return &Fetcher{clientset: clientset, eventLookback: eventLookback}
}

// Ensure Fetcher satisfies the outbound port at compile time.
var _ outbound.SnapshotFetcher = (*Fetcher)(nil)

// Fetch implements outbound.SnapshotFetcher. Only pods whose owner chain
// resolves to the deployment's current ReplicaSet land in Pods; pods of
// superseded ReplicaSets are kept separately as StalePods.
func (f *Fetcher) Fetch(ctx context.Context, ref model.DeploymentRef, includePods bool) (model.ResourceSnapshot, error) {
	dep, err := f.clientset.AppsV1().Deployments(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return model.ResourceSnapshot{}, classify("deployment "+ref.String(), err)
	}

	snap := model.ResourceSnapshot{
		Ref:                ref,
		DesiredReplicas:    desiredReplicas(dep),
		UpdatedReplicas:    dep.Status.UpdatedReplicas,
		ReadyReplicas:      dep.Status.ReadyReplicas,
		AvailableReplicas:  dep.Status.AvailableReplicas,
		RolloutGeneration:  dep.Generation,
		ObservedGeneration: dep.Status.ObservedGeneration,
		FetchedAt:          time.Now().UTC(),
	}

	currentRS, staleRS, err := f.replicaSets(ctx, dep)
	if err != nil {
		return model.ResourceSnapshot{}, err
	}

	if includePods {
		snap.Pods, snap.StalePods, err = f.pods(ctx, dep, currentRS, staleRS)
		if err != nil {
			return model.ResourceSnapshot{}, err
		}
	}

	snap.RecentEvents, err = f.events(ctx, dep, currentRS, snap.Pods, snap.FetchedAt)
	if err != nil {
		return model.ResourceSnapshot{}, err
	}

	return snap, nil
}

// replicaSets splits the deployment's ReplicaSets into the current one and
// the superseded rest. The current ReplicaSet carries the deployment's
// revision annotation; when annotations are missing the highest revision
// wins. current is nil when the deployment owns no ReplicaSet yet.
func (f *Fetcher) replicaSets(ctx context.Context, dep *appsv1.Deployment) (*appsv1.ReplicaSet, []*appsv1.ReplicaSet, error) {
	selector, err := metav1.LabelSelectorAsSelector(dep.Spec.Selector)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing selector of deployment %s/%s: %w", dep.Namespace, dep.Name, err)
	}

	list, err := f.clientset.AppsV1().ReplicaSets(dep.Namespace).List(ctx, metav1.ListOptions{LabelSelector: selector.String()})
	if err != nil {
		return nil, nil, classify(fmt.Sprintf("replicasets of deployment %s/%s", dep.Namespace, dep.Name), err)
	}

	var owned []*appsv1.ReplicaSet
	for i := range list.Items {
		rs := &list.Items[i]
		if metav1.IsControlledBy(rs, dep) {
			owned = append(owned, rs)
		}
	}
	if len(owned) == 0 {
		return nil, nil, nil
	}

	var current *appsv1.ReplicaSet
	if want := dep.Annotations[revisionAnnotation]; want != "" {
		for _, rs := range owned {
			if rs.Annotations[revisionAnnotation] == want {
				current = rs
				break
			}
		}
	}
	if current == nil {
		for _, rs := range owned {
			if current == nil || revisionOf(rs) > revisionOf(current) {
				current = rs
			}
		}
	}

	var stale []*appsv1.ReplicaSet
	for _, rs := range owned {
		if rs.UID != current.UID {
			stale = append(stale, rs)
		}
	}
	return current, stale, nil
}

func revisionOf(rs *appsv1.ReplicaSet) int64 {
	n, err := strconv.ParseInt(rs.Annotations[revisionAnnotation], 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// pods lists the deployment's pods and splits them by owning ReplicaSet.
func (f *Fetcher) pods(ctx context.Context, dep *appsv1.Deployment, currentRS *appsv1.ReplicaSet, staleRS []*appsv1.ReplicaSet) ([]model.PodView, []model.PodView, error) {
	if currentRS == nil {
		return nil, nil, nil
	}

	selector, err := metav1.LabelSelectorAsSelector(dep.Spec.Selector)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing selector of deployment %s/%s: %w", dep.Namespace, dep.Name, err)
	}

	list, err := f.clientset.CoreV1().Pods(dep.Namespace).List(ctx, metav1.ListOptions{LabelSelector: selector.String()})
	if err != nil {
		return nil, nil, classify(fmt.Sprintf("pods of deployment %s/%s", dep.Namespace, dep.Name), err)
	}

	staleUIDs := make(map[types.UID]bool, len(staleRS))
	for _, rs := range staleRS {
		staleUIDs[rs.UID] = true
	}

	var active, stale []model.PodView
	for i := range list.Items {
		pod := &list.Items[i]
		owner := metav1.GetControllerOf(pod)
		if owner == nil || owner.Kind != model.InvolvedKindReplicaSet {
			continue
		}
		switch {
		case owner.UID == currentRS.UID:
			active = append(active, podView(pod))
		case staleUIDs[owner.UID]:
			stale = append(stale, podView(pod))
		}
	}
	sortPodViews(active)
	sortPodViews(stale)
	return active, stale, nil
}

func sortPodViews(views []model.PodView) {
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
}

// podView reduces a pod to the fields the health rules read.
func podView(pod *corev1.Pod) model.PodView {
	view := model.PodView{
		Name:  pod.Name,
		Phase: model.PodPhase(pod.Status.Phase),
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.RestartCount > view.RestartCount {
			view.RestartCount = cs.RestartCount
		}
	}
	view.ContainerReady = allContainersReady(pod)
	view.LastTerminationReason = lastTerminationReason(pod)
	return view
}

func allContainersReady(pod *corev1.Pod) bool {
	if len(pod.Status.ContainerStatuses) == 0 {
		return false
	}
	for _, cs := range pod.Status.ContainerStatuses {
		if !cs.Ready {
			return false
		}
	}
	return true
}

func lastTerminationReason(pod *corev1.Pod) string {
	for _, cs := range pod.Status.ContainerStatuses {
		if t := cs.State.Terminated; t != nil && t.Reason != "" {
			return t.Reason
		}
		if t := cs.LastTerminationState.Terminated; t != nil && t.Reason != "" {
			return t.Reason
		}
	}
	return ""
}

// events collects namespace events that reference the deployment, its
// current ReplicaSet, or its active pods, bounded by the lookback window.
// When pods were not collected, pod events are matched by the current
// ReplicaSet's name prefix instead of an explicit name set.
func (f *Fetcher) events(ctx context.Context, dep *appsv1.Deployment, currentRS *appsv1.ReplicaSet, activePods []model.PodView, fetchedAt time.Time) ([]model.EventView, error) {
	list, err := f.clientset.CoreV1().Events(dep.Namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, classify("events in namespace "+dep.Namespace, err)
	}

	rsName := ""
	if currentRS != nil {
		rsName = currentRS.Name
	}
	podNames := make(map[string]bool, len(activePods))
	for _, p := range activePods {
		podNames[p.Name] = true
	}

	cutoff := fetchedAt.Add(-f.eventLookback)
	var out []model.EventView
	for i := range list.Items {
		ev := &list.Items[i]
		if !referencesTarget(ev, dep.Name, rsName, podNames) {
			continue
		}
		ts := eventTime(ev)
		if ts.IsZero() || ts.Before(cutoff) {
			continue
		}
		out = append(out, model.EventView{
			Reason:        ev.Reason,
			Type:          model.EventType(ev.Type),
			Message:       ev.Message,
			InvolvedKind:  ev.InvolvedObject.Kind,
			InvolvedName:  ev.InvolvedObject.Name,
			LastTimestamp: ts,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastTimestamp.Equal(out[j].LastTimestamp) {
			return out[i].LastTimestamp.Before(out[j].LastTimestamp)
		}
		return out[i].InvolvedName < out[j].InvolvedName
	})
	return out, nil
}

func referencesTarget(ev *corev1.Event, depName, rsName string, podNames map[string]bool) bool {
	obj := ev.InvolvedObject
	switch obj.Kind {
	case model.InvolvedKindDeployment:
		return obj.Name == depName
	case model.InvolvedKindReplicaSet:
		return rsName != "" && obj.Name == rsName
	case model.InvolvedKindPod:
		if len(podNames) > 0 {
			return podNames[obj.Name]
		}
		return rsName != "" && strings.HasPrefix(obj.Name, rsName+"-")
	default:
		return false
	}
}

// eventTime picks the most useful timestamp an Event carries.
func eventTime(ev *corev1.Event) time.Time {
	if !ev.LastTimestamp.IsZero() {
		return ev.LastTimestamp.Time
	}
	if !ev.EventTime.IsZero() {
		return ev.EventTime.Time
	}
	return ev.FirstTimestamp.Time
}

// desiredReplicas reads spec.replicas, defaulting like the API server does.
func desiredReplicas(dep *appsv1.Deployment) int32 {
	if dep.Spec.Replicas != nil {
		return *dep.Spec.Replicas
	}
	return 1
}
