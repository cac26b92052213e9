package kubernetes

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// Browser serves the read-only inspection commands: listing deployments,
// resolving names to namespaces, and pulling details and logs.
type Browser struct {
	clientset k8s.Interface
	tailLines int64
}

// NewBrowser creates a Browser. defaultTailLines applies when TailLogs is
// called with a non-positive line count.
func NewBrowser(clientset k8s.Interface, defaultTailLines int64) *Browser {
	if defaultTailLines <= 0 {
		defaultTailLines = 50
	}
	return &Browser{clientset: clientset, tailLines: defaultTailLines}
}

// Ensure Browser satisfies the outbound port at compile time.
var _ outbound.ClusterBrowser = (*Browser)(nil)

// ListDeployments returns overviews for every deployment in the namespace,
// or across all namespaces when namespace is empty.
func (b *Browser) ListDeployments(ctx context.Context, namespace string) ([]model.DeploymentOverview, error) {
	scope := "namespace " + namespace
	if namespace == "" {
		scope = "all namespaces"
	}
	list, err := b.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, classify("deployments in "+scope, err)
	}

	now := time.Now()
	overviews := make([]model.DeploymentOverview, 0, len(list.Items))
	for i := range list.Items {
		overviews = append(overviews, overview(&list.Items[i], now))
	}
	sort.Slice(overviews, func(i, j int) bool {
		if overviews[i].Ref.Namespace != overviews[j].Ref.Namespace {
			return overviews[i].Ref.Namespace < overviews[j].Ref.Namespace
		}
		return overviews[i].Ref.Name < overviews[j].Ref.Name
	})
	return overviews, nil
}

// FindDeployment locates deployments with the given name across all
// namespaces. Callers decide how to handle zero or multiple matches.
func (b *Browser) FindDeployment(ctx context.Context, name string) ([]model.DeploymentRef, error) {
	list, err := b.clientset.AppsV1().Deployments(metav1.NamespaceAll).List(ctx, metav1.ListOptions{
		FieldSelector: "metadata.name=" + name,
	})
	if err != nil {
		return nil, classify("deployment "+name, err)
	}

	refs := make([]model.DeploymentRef, 0, len(list.Items))
	for i := range list.Items {
		if list.Items[i].Name != name {
			continue
		}
		refs = append(refs, model.NewDeploymentRef(list.Items[i].Namespace, list.Items[i].Name))
	}
	sort.Slice(refs, func(i, j int) bool { return refs[i].Namespace < refs[j].Namespace })
	return refs, nil
}

// DeploymentDetails gathers the deployment's spec summary plus the
// same-named Service and its ready endpoint count when one exists.
func (b *Browser) DeploymentDetails(ctx context.Context, ref model.DeploymentRef) (model.DeploymentDetails, error) {
	dep, err := b.clientset.AppsV1().Deployments(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return model.DeploymentDetails{}, classify("deployment "+ref.String(), err)
	}

	details := model.DeploymentDetails{
		Overview: overview(dep, time.Now()),
		Strategy: string(dep.Spec.Strategy.Type),
		Selector: metav1.FormatLabelSelector(dep.Spec.Selector),
	}
	for _, c := range dep.Spec.Template.Spec.Containers {
		details.Images = append(details.Images, c.Image)
	}

	svc, err := b.service(ctx, ref)
	if err != nil {
		return model.DeploymentDetails{}, err
	}
	details.Service = svc
	return details, nil
}

// service looks up the Service sharing the deployment's name. A missing
// Service is normal and yields nil.
func (b *Browser) service(ctx context.Context, ref model.DeploymentRef) (*model.ServiceView, error) {
	svc, err := b.clientset.CoreV1().Services(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, nil
		}
		return nil, classify("service "+ref.String(), err)
	}

	view := &model.ServiceView{
		Name:      svc.Name,
		Type:      string(svc.Spec.Type),
		ClusterIP: svc.Spec.ClusterIP,
	}
	for _, p := range svc.Spec.Ports {
		view.Ports = append(view.Ports, formatServicePort(p))
	}

	ep, err := b.clientset.CoreV1().Endpoints(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return view, nil
		}
		return nil, classify("endpoints "+ref.String(), err)
	}
	for _, subset := range ep.Subsets {
		view.ReadyEndpoints += len(subset.Addresses)
	}
	return view, nil
}

func formatServicePort(p corev1.ServicePort) string {
	out := fmt.Sprintf("%d", p.Port)
	if target := p.TargetPort.String(); target != "" && target != "0" && target != out {
		out = fmt.Sprintf("%s->%s", out, target)
	}
	return fmt.Sprintf("%s/%s", out, p.Protocol)
}

// TailLogs fetches the trailing log lines of the deployment's pods, one
// entry per container. When pod is non-empty only that pod is read.
// Per-container fetch failures are reported inline so one crashed container
// does not hide the logs of its siblings.
func (b *Browser) TailLogs(ctx context.Context, ref model.DeploymentRef, pod string, tailLines int64) ([]model.PodLogs, error) {
	if tailLines <= 0 {
		tailLines = b.tailLines
	}

	pods, err := b.targetPods(ctx, ref, pod)
	if err != nil {
		return nil, err
	}

	type target struct {
		pod       string
		container string
	}
	var targets []target
	for i := range pods {
		for _, c := range pods[i].Spec.Containers {
			targets = append(targets, target{pod: pods[i].Name, container: c.Name})
		}
	}

	logs := make([]model.PodLogs, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	for i, t := range targets {
		g.Go(func() error {
			entry := model.PodLogs{Pod: t.pod, Container: t.container}
			raw, err := b.clientset.CoreV1().Pods(ref.Namespace).GetLogs(t.pod, &corev1.PodLogOptions{
				Container: t.container,
				TailLines: &tailLines,
			}).DoRaw(gctx)
			if err != nil {
				entry.FetchErr = err.Error()
			} else {
				entry.Logs = string(raw)
			}
			logs[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return logs, nil
}

// targetPods resolves which pods TailLogs reads: a single named pod, or
// every pod matching the deployment's selector. Pods of superseded
// ReplicaSets are included on purpose: mid-rollout, the outgoing pods'
// logs are usually the ones worth reading.
func (b *Browser) targetPods(ctx context.Context, ref model.DeploymentRef, pod string) ([]corev1.Pod, error) {
	if pod != "" {
		p, err := b.clientset.CoreV1().Pods(ref.Namespace).Get(ctx, pod, metav1.GetOptions{})
		if err != nil {
			return nil, classify("pod "+ref.Namespace+"/"+pod, err)
		}
		return []corev1.Pod{*p}, nil
	}

	dep, err := b.clientset.AppsV1().Deployments(ref.Namespace).Get(ctx, ref.Name, metav1.GetOptions{})
	if err != nil {
		return nil, classify("deployment "+ref.String(), err)
	}
	selector, err := metav1.LabelSelectorAsSelector(dep.Spec.Selector)
	if err != nil {
		return nil, fmt.Errorf("parsing selector of deployment %s: %w", ref, err)
	}
	list, err := b.clientset.CoreV1().Pods(ref.Namespace).List(ctx, metav1.ListOptions{LabelSelector: selector.String()})
	if err != nil {
		return nil, classify("pods of deployment "+ref.String(), err)
	}
	sort.Slice(list.Items, func(i, j int) bool { return list.Items[i].Name < list.Items[j].Name })
	return list.Items, nil
}

func overview(dep *appsv1.Deployment, now time.Time) model.DeploymentOverview {
	return model.DeploymentOverview{
		Ref:               model.NewDeploymentRef(dep.Namespace, dep.Name),
		DesiredReplicas:   desiredReplicas(dep),
		ReadyReplicas:     dep.Status.ReadyReplicas,
		UpdatedReplicas:   dep.Status.UpdatedReplicas,
		AvailableReplicas: dep.Status.AvailableReplicas,
		Age:               now.Sub(dep.CreationTimestamp.Time).Truncate(time.Second),
	}
}
