package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Kubernetes KubernetesConfig `yaml:"kubernetes"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Rollout    RolloutConfig    `yaml:"rollout"`
	Slack      SlackConfig      `yaml:"slack"`
	Logging    LoggingConfig    `yaml:"logging"`
}

type KubernetesConfig struct {
	InCluster           bool          `yaml:"inCluster"`
	Kubeconfig          string        `yaml:"kubeconfig"`
	Namespace           string        `yaml:"namespace"`
	RequestTimeout      time.Duration `yaml:"requestTimeout"`
	ProtectedNamespaces []string      `yaml:"protectedNamespaces"`
	LogTailLines        int64         `yaml:"logTailLines"`
}

type EvaluationConfig struct {
	CrashLoopRestartThreshold int32         `yaml:"crashLoopRestartThreshold"`
	PendingGracePeriod        time.Duration `yaml:"pendingGracePeriod"`
	EventLookback             time.Duration `yaml:"eventLookback"`
}

type RolloutConfig struct {
	PollInterval time.Duration `yaml:"pollInterval"`
	Timeout      time.Duration `yaml:"timeout"`
}

type SlackConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"botToken"`
	Channel  string `yaml:"channel"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Kubernetes: KubernetesConfig{
			InCluster:           false,
			Namespace:           "default",
			RequestTimeout:      15 * time.Second,
			ProtectedNamespaces: []string{"kube-system", "kube-public", "kube-node-lease"},
			LogTailLines:        50,
		},
		Evaluation: EvaluationConfig{
			CrashLoopRestartThreshold: 5,
			PendingGracePeriod:        2 * time.Minute,
			EventLookback:             time.Hour,
		},
		Rollout: RolloutConfig{
			PollInterval: 5 * time.Second,
			Timeout:      5 * time.Minute,
		},
		Slack: SlackConfig{
			Enabled: false,
			Channel: "#ops-alerts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// expandEnvVars replaces ${VAR} patterns with environment variable values.
func expandEnvVars(s string) string {
	return os.Expand(s, func(key string) string {
		if val, ok := os.LookupEnv(key); ok {
			return val
		}
		return "${" + key + "}"
	})
}
