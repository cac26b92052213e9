package slack

import (
	"context"
	"fmt"

	slackapi "github.com/slack-go/slack"

	"github.com/jonny/kubetriage/internal/domain/port/outbound"
)

// Config holds Slack notifier configuration.
type Config struct {
	BotToken string
	Channel  string
}

// Notifier implements outbound.Notifier via the Slack API.
type Notifier struct {
	client *slackapi.Client
	config Config
}

// NewNotifier creates a new Slack Notifier.
func NewNotifier(cfg Config) *Notifier {
	return &Notifier{
		client: slackapi.New(cfg.BotToken),
		config: cfg,
	}
}

var _ outbound.Notifier = (*Notifier)(nil)

// NotifyRollout posts a rollout outcome card to the configured channel.
func (n *Notifier) NotifyRollout(ctx context.Context, notification outbound.RolloutNotification) error {
	blocks := BuildRolloutBlocks(notification)

	_, _, err := n.client.PostMessageContext(ctx, n.config.Channel,
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(fmt.Sprintf("Rollout %s: %s/%s", notification.Outcome, notification.Namespace, notification.Deployment), false),
	)
	if err != nil {
		return fmt.Errorf("slack NotifyRollout: %w", err)
	}
	return nil
}

// NotifyDiagnostic posts a health verdict card to the configured channel.
func (n *Notifier) NotifyDiagnostic(ctx context.Context, notification outbound.DiagnosticNotification) error {
	blocks := BuildDiagnosticBlocks(notification)

	_, _, err := n.client.PostMessageContext(ctx, n.config.Channel,
		slackapi.MsgOptionBlocks(blocks...),
		slackapi.MsgOptionText(fmt.Sprintf("Deployment %s: %s/%s", notification.Verdict, notification.Namespace, notification.Deployment), false),
	)
	if err != nil {
		return fmt.Errorf("slack NotifyDiagnostic: %w", err)
	}
	return nil
}
