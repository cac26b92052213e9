package cli

import (
	"github.com/spf13/cobra"

	"github.com/jonny/kubetriage/internal/domain/model"
)

func newLogsCmd(a *app) *cobra.Command {
	var (
		pod  string
		tail int64
	)
	cmd := &cobra.Command{
		Use:   "logs <deployment>",
		Short: "Tail logs from the deployment's pods",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.dependencies()
			if err != nil {
				return err
			}

			ref := model.NewDeploymentRef(a.targetNamespace(), args[0])
			logs, err := d.browser.TailLogs(cmd.Context(), ref, pod, tail)
			if err != nil {
				return err
			}
			a.renderer().PodLogs(logs)
			return nil
		},
	}
	cmd.Flags().StringVar(&pod, "pod", "", "tail a single pod instead of the whole deployment")
	cmd.Flags().Int64Var(&tail, "tail", 0, "lines to tail per container (default from config)")
	return cmd
}
