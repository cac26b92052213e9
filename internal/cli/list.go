package cli

import (
	"github.com/spf13/cobra"
)

func newListCmd(a *app) *cobra.Command {
	var allNamespaces bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List deployments with replica counts and age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := a.dependencies()
			if err != nil {
				return err
			}

			namespace := a.targetNamespace()
			if allNamespaces {
				namespace = ""
			}

			overviews, err := d.browser.ListDeployments(cmd.Context(), namespace)
			if err != nil {
				return err
			}
			a.renderer().Overviews(overviews)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&allNamespaces, "all-namespaces", "A", false, "list deployments across all namespaces")
	return cmd
}
