package slack

import (
	"fmt"
	"strings"
	"time"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// outcomeEmoji maps a rollout outcome to an emoji prefix.
func outcomeEmoji(outcome string) string {
	switch strings.ToLower(outcome) {
	case "converged":
		return ":large_green_circle:"
	case "timedout":
		return ":large_yellow_circle:"
	case "failed":
		return ":red_circle:"
	default:
		return ":large_blue_circle:"
	}
}

// verdictEmoji maps a health verdict to an emoji prefix.
func verdictEmoji(verdict string) string {
	switch strings.ToLower(verdict) {
	case "healthy":
		return ":large_green_circle:"
	case "degraded":
		return ":large_yellow_circle:"
	case "failed":
		return ":red_circle:"
	default:
		return ":white_circle:"
	}
}

// BuildRolloutBlocks constructs Block Kit blocks for a rollout outcome.
func BuildRolloutBlocks(n outbound.RolloutNotification) []slackapi.Block {
	emoji := outcomeEmoji(n.Outcome)
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("%s *Rollout %s* `%s/%s`", emoji, n.Outcome, n.Namespace, n.Deployment), false, false),
		nil, nil,
	)

	divider := slackapi.NewDividerBlock()

	fields := []*slackapi.TextBlockObject{
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Outcome*\n%s", strings.ToUpper(n.Outcome)), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Polls*\n%d", n.Attempts), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Elapsed*\n%s", n.Elapsed.Round(time.Second)), false, false),
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("*Replicas*\n%s", n.Replicas), false, false),
	}
	fieldBlock := slackapi.NewSectionBlock(nil, fields, nil)

	return []slackapi.Block{header, divider, fieldBlock}
}

// BuildDiagnosticBlocks constructs Block Kit blocks for a health verdict.
func BuildDiagnosticBlocks(n outbound.DiagnosticNotification) []slackapi.Block {
	emoji := verdictEmoji(n.Verdict)
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("%s *Deployment %s* `%s/%s`", emoji, n.Verdict, n.Namespace, n.Deployment), false, false),
		nil, nil,
	)

	blocks := []slackapi.Block{header, slackapi.NewDividerBlock()}

	if len(n.Reasons) > 0 {
		lines := make([]string, 0, len(n.Reasons))
		for _, r := range n.Reasons {
			lines = append(lines, "• "+r)
		}
		reasonBlock := slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType,
				fmt.Sprintf("*Reasons*\n%s", strings.Join(lines, "\n")), false, false),
			nil, nil,
		)
		blocks = append(blocks, reasonBlock)
	}

	return blocks
}
