package slack_test

import (
	"strings"
	"testing"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/kubetriage/internal/adapter/outbound/notification/slack"
	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// These tests verify block construction only. Actual Slack API calls are
// not made.

func headerText(t *testing.T, blocks []slackapi.Block) string {
	t.Helper()
	if len(blocks) == 0 {
		t.Fatal("expected non-empty blocks")
	}
	section, ok := blocks[0].(*slackapi.SectionBlock)
	if !ok {
		t.Fatalf("expected first block to be SectionBlock, got %T", blocks[0])
	}
	if section.Text == nil || section.Text.Text == "" {
		t.Fatal("expected header text to be non-empty")
	}
	return section.Text.Text
}

// --- rollout blocks ---

func TestBuildRolloutBlocks_Converged(t *testing.T) {
	n := outbound.RolloutNotification{
		Namespace:  "prod",
		Deployment: "api",
		Outcome:    "Converged",
		Attempts:   4,
		Elapsed:    20 * time.Second,
		Replicas:   "3/3 ready",
	}

	blocks := slack.BuildRolloutBlocks(n)
	header := headerText(t, blocks)
	if !strings.Contains(header, "prod/api") {
		t.Errorf("expected deployment ref in header, got: %s", header)
	}
	if !strings.Contains(header, ":large_green_circle:") {
		t.Errorf("expected green emoji for converged, got: %s", header)
	}
}

func TestBuildRolloutBlocks_TimedOut(t *testing.T) {
	n := outbound.RolloutNotification{
		Namespace:  "prod",
		Deployment: "api",
		Outcome:    "TimedOut",
	}

	header := headerText(t, slack.BuildRolloutBlocks(n))
	if !strings.Contains(header, ":large_yellow_circle:") {
		t.Errorf("expected yellow emoji for TimedOut, got: %s", header)
	}
}

func TestBuildRolloutBlocks_Failed(t *testing.T) {
	n := outbound.RolloutNotification{
		Namespace:  "prod",
		Deployment: "api",
		Outcome:    "Failed",
	}

	header := headerText(t, slack.BuildRolloutBlocks(n))
	if !strings.Contains(header, ":red_circle:") {
		t.Errorf("expected red emoji for failed, got: %s", header)
	}
}

// --- diagnostic blocks ---

func TestBuildDiagnosticBlocks_WithReasons(t *testing.T) {
	n := outbound.DiagnosticNotification{
		Namespace:  "prod",
		Deployment: "api",
		Verdict:    "Degraded",
		Reasons:    []string{"1 of 3 replicas ready", "pod api-x: container not ready"},
	}

	blocks := slack.BuildDiagnosticBlocks(n)
	header := headerText(t, blocks)
	if !strings.Contains(header, ":large_yellow_circle:") {
		t.Errorf("expected yellow emoji for degraded, got: %s", header)
	}

	var reasonText string
	for _, b := range blocks[1:] {
		if section, ok := b.(*slackapi.SectionBlock); ok && section.Text != nil {
			reasonText = section.Text.Text
		}
	}
	if !strings.Contains(reasonText, "1 of 3 replicas ready") {
		t.Errorf("expected reasons in blocks, got: %s", reasonText)
	}
}

func TestBuildDiagnosticBlocks_NoReasons(t *testing.T) {
	n := outbound.DiagnosticNotification{
		Namespace:  "prod",
		Deployment: "api",
		Verdict:    "Healthy",
	}

	blocks := slack.BuildDiagnosticBlocks(n)
	if len(blocks) != 2 {
		t.Errorf("expected header and divider only for healthy verdict, got %d blocks", len(blocks))
	}
	header := headerText(t, blocks)
	if !strings.Contains(header, ":large_green_circle:") {
		t.Errorf("expected green emoji for healthy, got: %s", header)
	}
}
