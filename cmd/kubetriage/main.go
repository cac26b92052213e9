package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonny/kubetriage/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	root := cli.NewRootCommand()
	err := root.ExecuteContext(ctx)
	stop()

	if err != nil {
		if !cli.Silent(err) {
			fmt.Fprintln(os.Stderr, "kubetriage: "+err.Error())
		}
		os.Exit(cli.ExitCode(err))
	}
}
