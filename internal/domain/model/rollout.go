package model

import "time"

// RolloutConfig bounds a rollout run. Zero values are replaced by the
// configured defaults before the driver starts.
type RolloutConfig struct {
	PollInterval time.Duration `json:"poll_interval"`
	Timeout      time.Duration `json:"timeout"`
	IncludePods  bool          `json:"include_pods"`
}

// Outcome is the terminal state of a rollout run.
type Outcome string

const (
	OutcomeConverged Outcome = "Converged"
	OutcomeTimedOut  Outcome = "TimedOut"
	OutcomeFailed    Outcome = "Failed"
)

// RolloutResult records how a triggered rollout ended. FinalSnapshot is the
// last snapshot fetched before termination and may be zero when the run
// ended before the first poll completed.
type RolloutResult struct {
	Ref           DeploymentRef    `json:"ref"`
	Outcome       Outcome          `json:"outcome"`
	FinalSnapshot ResourceSnapshot `json:"final_snapshot"`
	Attempts      int              `json:"attempts"`
	Elapsed       time.Duration    `json:"elapsed"`
}
