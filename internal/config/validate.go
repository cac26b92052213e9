package config

import (
	"fmt"
	"strings"
)

// Validate checks the config for errors.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Kubernetes.Namespace == "" {
		errs = append(errs, "kubernetes.namespace must not be empty")
	}
	if cfg.Kubernetes.RequestTimeout <= 0 {
		errs = append(errs, "kubernetes.requestTimeout must be positive")
	}
	if cfg.Kubernetes.LogTailLines <= 0 {
		errs = append(errs, "kubernetes.logTailLines must be positive")
	}

	if cfg.Evaluation.CrashLoopRestartThreshold < 1 {
		errs = append(errs, "evaluation.crashLoopRestartThreshold must be at least 1")
	}
	if cfg.Evaluation.PendingGracePeriod <= 0 {
		errs = append(errs, "evaluation.pendingGracePeriod must be positive")
	}
	if cfg.Evaluation.EventLookback <= 0 {
		errs = append(errs, "evaluation.eventLookback must be positive")
	}

	if cfg.Rollout.PollInterval <= 0 {
		errs = append(errs, "rollout.pollInterval must be positive")
	}
	if cfg.Rollout.Timeout <= 0 {
		errs = append(errs, "rollout.timeout must be positive")
	}
	if cfg.Rollout.Timeout > 0 && cfg.Rollout.PollInterval > 0 && cfg.Rollout.Timeout <= cfg.Rollout.PollInterval {
		errs = append(errs, "rollout.timeout must exceed rollout.pollInterval")
	}

	if cfg.Slack.Enabled {
		if cfg.Slack.BotToken == "" {
			errs = append(errs, "slack.botToken is required when slack is enabled")
		}
		if cfg.Slack.Channel == "" {
			errs = append(errs, "slack.channel is required when slack is enabled")
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of: debug, info, warn, error (got %q)", cfg.Logging.Level))
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[cfg.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be text or json (got %q)", cfg.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
