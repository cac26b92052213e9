package cli

import (
	"github.com/spf13/cobra"

	"github.com/jonny/kubetriage/internal/domain/model"
)

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <deployment>",
		Short: "Show deployment details and its Service endpoints",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dependencies()
			if err != nil {
				return err
			}

			ref := model.NewDeploymentRef(a.targetNamespace(), args[0])
			details, err := d.browser.DeploymentDetails(cmd.Context(), ref)
			if err != nil {
				return err
			}
			a.renderer().Details(details)
			return nil
		},
	}
}
