package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonny/kubetriage/pkg/version"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(a.stdout, "kubetriage %s\n", version.String())
		},
	}
}
