// Package render writes human-readable command output. Renderers hold an
// injected writer and never terminate the process; exit codes belong to the
// caller.
package render

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jonny/kubetriage/internal/domain/model"
)

// Renderer formats domain results as plain text.
type Renderer struct {
	w io.Writer
}

// NewRenderer creates a Renderer writing to w.
func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{w: w}
}

func (r *Renderer) tabbed() *tabwriter.Writer {
	return tabwriter.NewWriter(r.w, 0, 0, 2, ' ', 0)
}

// HealthReport prints the verdict, the replica summary, the reasons, and a
// per-pod table when pods were evaluated.
func (r *Renderer) HealthReport(report model.HealthReport) {
	tw := r.tabbed()
	fmt.Fprintf(tw, "Deployment:\t%s\n", report.Ref)
	fmt.Fprintf(tw, "Verdict:\t%s\n", report.Verdict)
	fmt.Fprintf(tw, "Replicas:\t%s\n", replicaLine(report.Summary))
	fmt.Fprintf(tw, "Generation:\t%d (observed %d)\n", report.Summary.RolloutGeneration, report.Summary.ObservedGeneration)
	fmt.Fprintf(tw, "Checked:\t%s\n", report.Summary.FetchedAt.Format(time.RFC3339))
	_ = tw.Flush()

	if len(report.Reasons) > 0 {
		fmt.Fprintln(r.w, "\nReasons:")
		for _, reason := range report.Reasons {
			fmt.Fprintf(r.w, "  - %s\n", reason)
		}
	}

	if len(report.PodReports) > 0 {
		names := make([]string, 0, len(report.PodReports))
		for name := range report.PodReports {
			names = append(names, name)
		}
		sort.Strings(names)

		fmt.Fprintln(r.w)
		tw = r.tabbed()
		fmt.Fprintln(tw, "POD\tVERDICT\tDETAIL")
		for _, name := range names {
			pr := report.PodReports[name]
			fmt.Fprintf(tw, "%s\t%s\t%s\n", name, pr.Verdict, strings.Join(pr.Reasons, "; "))
		}
		_ = tw.Flush()
	}

	if len(report.WarningEvents) > 0 {
		fmt.Fprintln(r.w)
		tw = r.tabbed()
		fmt.Fprintln(tw, "LAST SEEN\tOBJECT\tREASON\tMESSAGE")
		for _, ev := range report.WarningEvents {
			fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\n",
				ev.LastTimestamp.Format(time.RFC3339), ev.InvolvedKind, ev.InvolvedName, ev.Reason, ev.Message)
		}
		_ = tw.Flush()
	}
}

// RolloutResult prints how a rollout run ended. The replica line is omitted
// when the run terminated before the first successful poll.
func (r *Renderer) RolloutResult(result model.RolloutResult) {
	tw := r.tabbed()
	fmt.Fprintf(tw, "Deployment:\t%s\n", result.Ref)
	fmt.Fprintf(tw, "Outcome:\t%s\n", result.Outcome)
	fmt.Fprintf(tw, "Polls:\t%d\n", result.Attempts)
	fmt.Fprintf(tw, "Elapsed:\t%s\n", result.Elapsed.Round(time.Second))
	if result.Attempts > 0 {
		fmt.Fprintf(tw, "Replicas:\t%s\n", replicaLine(model.NewDeploymentSummary(result.FinalSnapshot)))
	}
	_ = tw.Flush()
}

// Overviews prints the deployment list as a table.
func (r *Renderer) Overviews(overviews []model.DeploymentOverview) {
	if len(overviews) == 0 {
		fmt.Fprintln(r.w, "No deployments found")
		return
	}
	tw := r.tabbed()
	fmt.Fprintln(tw, "NAMESPACE\tNAME\tDESIRED\tUPDATED\tREADY\tAVAILABLE\tAGE")
	for _, o := range overviews {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%d\t%s\n",
			o.Ref.Namespace, o.Ref.Name, o.DesiredReplicas, o.UpdatedReplicas, o.ReadyReplicas, o.AvailableReplicas, formatAge(o.Age))
	}
	_ = tw.Flush()
}

// Details prints a single deployment's spec summary and, when present, its
// Service and endpoint readiness.
func (r *Renderer) Details(details model.DeploymentDetails) {
	o := details.Overview
	tw := r.tabbed()
	fmt.Fprintf(tw, "Name:\t%s\n", o.Ref.Name)
	fmt.Fprintf(tw, "Namespace:\t%s\n", o.Ref.Namespace)
	fmt.Fprintf(tw, "Replicas:\t%d desired, %d updated, %d ready, %d available\n",
		o.DesiredReplicas, o.UpdatedReplicas, o.ReadyReplicas, o.AvailableReplicas)
	fmt.Fprintf(tw, "Strategy:\t%s\n", details.Strategy)
	fmt.Fprintf(tw, "Selector:\t%s\n", details.Selector)
	fmt.Fprintf(tw, "Images:\t%s\n", strings.Join(details.Images, ", "))
	fmt.Fprintf(tw, "Age:\t%s\n", formatAge(o.Age))

	if details.Service == nil {
		fmt.Fprintf(tw, "Service:\t(none)\n")
	} else {
		svc := details.Service
		fmt.Fprintf(tw, "Service:\t%s (%s %s)\n", svc.Name, svc.Type, svc.ClusterIP)
		fmt.Fprintf(tw, "Ports:\t%s\n", strings.Join(svc.Ports, ", "))
		fmt.Fprintf(tw, "Endpoints:\t%d ready\n", svc.ReadyEndpoints)
	}
	_ = tw.Flush()
}

// PodLogs prints each container's log block under a stern-style header.
func (r *Renderer) PodLogs(logs []model.PodLogs) {
	if len(logs) == 0 {
		fmt.Fprintln(r.w, "No pods found")
		return
	}
	for i, l := range logs {
		if i > 0 {
			fmt.Fprintln(r.w)
		}
		fmt.Fprintf(r.w, "==> %s %s <==\n", l.Pod, l.Container)
		if l.FetchErr != "" {
			fmt.Fprintf(r.w, "error fetching logs: %s\n", l.FetchErr)
			continue
		}
		fmt.Fprint(r.w, l.Logs)
		if l.Logs != "" && !strings.HasSuffix(l.Logs, "\n") {
			fmt.Fprintln(r.w)
		}
	}
}

func replicaLine(s model.DeploymentSummary) string {
	return fmt.Sprintf("%d desired, %d updated, %d ready, %d available",
		s.DesiredReplicas, s.UpdatedReplicas, s.ReadyReplicas, s.AvailableReplicas)
}

// formatAge renders durations the way kubectl does: the largest single unit.
func formatAge(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
