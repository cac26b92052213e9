// Package cli builds the kubetriage command tree. Commands resolve their
// collaborators lazily so that help, completion and usage errors never touch
// the cluster.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/spf13/cobra"

	"github.com/jonny/kubetriage/internal/adapter/outbound/kubernetes"
	"github.com/jonny/kubetriage/internal/adapter/outbound/notification"
	slacknotify "github.com/jonny/kubetriage/internal/adapter/outbound/notification/slack"
	"github.com/jonny/kubetriage/internal/config"
	"github.com/jonny/kubetriage/internal/domain/port/inbound"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
	"github.com/jonny/kubetriage/internal/domain/service"
	"github.com/jonny/kubetriage/internal/render"
	"github.com/jonny/kubetriage/pkg/clustererror"
	"github.com/jonny/kubetriage/pkg/version"
)

// deps bundles the wired collaborators commands run against. Production
// builds it from config on first use; tests inject fakes.
type deps struct {
	diagnoser inbound.DiagnosticPort
	driver    inbound.RolloutPort
	browser   outbound.ClusterBrowser
	actuator  outbound.WorkloadActuator
	notifier  outbound.Notifier
}

type app struct {
	configPath string
	namespace  string
	kubeconfig string
	verbose    bool

	cfg    *config.Config
	logger *slog.Logger

	depsOnce sync.Once
	deps     *deps
	depsErr  error

	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand builds the production command tree.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Stdout, os.Stderr, nil)
}

func newRootCommand(out, errOut io.Writer, injected *deps) *cobra.Command {
	a := &app{
		deps:   injected,
		stdout: out,
		stderr: errOut,
	}

	cmd := &cobra.Command{
		Use:           "kubetriage",
		Short:         "Diagnose and roll out Kubernetes deployments",
		Long:          "kubetriage inspects deployments, evaluates their health with deterministic rules, and drives rolling restarts to a terminal outcome.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Version,
	}

	cmd.PersistentFlags().StringVarP(&a.namespace, "namespace", "n", "", "target namespace (default from config)")
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&a.kubeconfig, "kubeconfig", "", "path to the kubeconfig file")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	cmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		cfg, err := a.loadConfig()
		if err != nil {
			return err
		}
		a.cfg = cfg
		a.logger = buildLogger(a.stderr, cfg.Logging, a.verbose)
		return nil
	}

	cmd.AddCommand(
		newListCmd(a),
		newInfoCmd(a),
		newScaleCmd(a),
		newDiagnosticCmd(a),
		newRolloutCmd(a),
		newLogsCmd(a),
		newVersionCmd(a),
	)

	cmd.SetVersionTemplate(fmt.Sprintf("kubetriage {{.Version}} (commit %s, built %s)\n", version.Commit, version.BuildTime))
	cmd.SetErrPrefix("kubetriage: ")
	cmd.SetOut(a.stdout)
	cmd.SetErr(a.stderr)
	return cmd
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}
	return config.DefaultConfig(), nil
}

// targetNamespace resolves the namespace for namespace-scoped commands: the
// flag when given, the configured default otherwise.
func (a *app) targetNamespace() string {
	if a.namespace != "" {
		return a.namespace
	}
	return a.cfg.Kubernetes.Namespace
}

func (a *app) kubeconfigPath() string {
	if a.kubeconfig != "" {
		return a.kubeconfig
	}
	return a.cfg.Kubernetes.Kubeconfig
}

func (a *app) renderer() *render.Renderer {
	return render.NewRenderer(a.stdout)
}

// dependencies wires the cluster adapters and domain services once per
// invocation. Injected test deps short-circuit the build.
func (a *app) dependencies() (*deps, error) {
	a.depsOnce.Do(func() {
		if a.deps != nil {
			return
		}

		clientset, err := kubernetes.NewClientset(a.cfg.Kubernetes.InCluster, a.kubeconfigPath(), a.cfg.Kubernetes.RequestTimeout)
		if err != nil {
			a.depsErr = fmt.Errorf("building kubernetes client: %w", err)
			return
		}

		guard := kubernetes.NewGuard(a.cfg.Kubernetes.ProtectedNamespaces)
		fetcher := kubernetes.NewFetcher(clientset, a.cfg.Evaluation.EventLookback)
		actuator := kubernetes.NewActuator(clientset, guard)
		browser := kubernetes.NewBrowser(clientset, a.cfg.Kubernetes.LogTailLines)
		evaluator := service.NewEvaluator(service.EvaluatorConfig{
			CrashLoopRestartThreshold: a.cfg.Evaluation.CrashLoopRestartThreshold,
			PendingGracePeriod:        a.cfg.Evaluation.PendingGracePeriod,
		})

		var notifier outbound.Notifier
		if a.cfg.Slack.Enabled {
			notifier = slacknotify.NewNotifier(slacknotify.Config{
				BotToken: a.cfg.Slack.BotToken,
				Channel:  a.cfg.Slack.Channel,
			})
		} else {
			notifier = notification.NewNoopNotifier(a.logger)
		}

		a.deps = &deps{
			diagnoser: service.NewDiagnoser(fetcher, evaluator, a.logger),
			driver:    service.NewDriver(actuator, fetcher, evaluator, service.SystemClock(), a.logger),
			browser:   browser,
			actuator:  actuator,
			notifier:  notifier,
		}
	})
	return a.deps, a.depsErr
}

// buildLogger mirrors the configured level and format, writing to stderr so
// stdout stays clean for rendered reports. --verbose forces debug.
func buildLogger(w io.Writer, cfg config.LoggingConfig, verbose bool) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// exitError carries the process exit code a command decided on. An empty
// message means the command already rendered its output and only the code
// matters.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

// Silent reports whether err carries an exit code without a message.
func Silent(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.msg == ""
}

// ExitCode maps an Execute error to the process exit code: verdict and
// outcome codes ride on exitError, cluster faults map to 5, protected or
// malformed input to 1, anything else is an internal fault.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var ce *clustererror.Error
	if errors.As(err, &ce) {
		if ce.Kind == clustererror.KindInvalid {
			return 1
		}
		return 5
	}
	return 1
}
