package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonny/kubetriage/internal/domain/model"
	"github.com/jonny/kubetriage/pkg/clustererror"
)

func newScaleCmd(a *app) *cobra.Command {
	var replicas int32
	cmd := &cobra.Command{
		Use:   "scale <deployment>",
		Short: "Scale a deployment to a fixed replica count",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if replicas < 1 {
				return clustererror.Invalid(fmt.Sprintf("--replicas must be at least 1, got %d", replicas))
			}

			d, err := a.dependencies()
			if err != nil {
				return err
			}

			ref, err := a.resolveRef(cmd.Context(), d, args[0])
			if err != nil {
				return err
			}

			if err := d.actuator.ScaleDeployment(cmd.Context(), ref, replicas); err != nil {
				return err
			}
			a.logger.Info("deployment scaled", "deployment", ref.String(), "replicas", replicas)
			fmt.Fprintf(a.stdout, "deployment %s scaled to %d replicas\n", ref, replicas)
			return nil
		},
	}
	cmd.Flags().Int32Var(&replicas, "replicas", 0, "target replica count (minimum 1)")
	_ = cmd.MarkFlagRequired("replicas")
	return cmd
}

// resolveRef resolves a deployment name to a full ref. With an explicit
// namespace the pair is used as given; otherwise the cluster is searched and
// the match must be unambiguous.
func (a *app) resolveRef(ctx context.Context, d *deps, name string) (model.DeploymentRef, error) {
	if a.namespace != "" {
		return model.NewDeploymentRef(a.namespace, name), nil
	}

	matches, err := d.browser.FindDeployment(ctx, name)
	if err != nil {
		return model.DeploymentRef{}, err
	}
	switch len(matches) {
	case 0:
		return model.DeploymentRef{}, clustererror.NotFound("deployment " + name)
	case 1:
		return matches[0], nil
	default:
		namespaces := make([]string, 0, len(matches))
		for _, m := range matches {
			namespaces = append(namespaces, m.Namespace)
		}
		return model.DeploymentRef{}, clustererror.Invalid(fmt.Sprintf(
			"deployment %s exists in multiple namespaces (%s); pass --namespace",
			name, strings.Join(namespaces, ", ")))
	}
}
