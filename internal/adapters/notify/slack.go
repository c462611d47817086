package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mikey/support-triage/internal/core"
	"github.com/slack-go/slack"
	"go.uber.org/zap"
)

// SlackNotifier posts the run summary to a Slack channel
type SlackNotifier struct {
	client  *slack.Client
	channel string
	logger  *zap.Logger
}

// NewSlackNotifier creates a Slack notifier. An empty apiURL targets the
// public Slack API.
func NewSlackNotifier(token, channel, apiURL string, logger *zap.Logger) *SlackNotifier {
	var opts []slack.Option
	if apiURL != "" {
		if !strings.HasSuffix(apiURL, "/") {
			apiURL += "/"
		}
		opts = append(opts, slack.OptionAPIURL(apiURL))
	}

	return &SlackNotifier{
		client:  slack.New(token, opts...),
		channel: channel,
		logger:  logger,
	}
}

// Name implements ports.Notifier
func (n *SlackNotifier) Name() string {
	return "slack"
}

// Notify posts one message with the outcome counts and the failed tickets
func (n *SlackNotifier) Notify(ctx context.Context, report *core.RunReport) error {
	channelID, ts, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(FormatSummary(report), false))
	if err != nil {
		return fmt.Errorf("failed to post Slack summary: %w", err)
	}

	n.logger.Debug("Posted Slack summary",
		zap.String("channel", channelID),
		zap.String("ts", ts),
		zap.String("run_id", report.RunID))
	return nil
}

// FormatSummary renders a report as Slack mrkdwn text
func FormatSummary(report *core.RunReport) string {
	counts := report.Counts()

	var b strings.Builder
	fmt.Fprintf(&b, "*Support triage run* `%s`\n", report.RunID)
	fmt.Fprintf(&b, "%d tickets in %s\n", len(report.Results), report.Duration().Round(time.Millisecond))
	fmt.Fprintf(&b, "replied: %d | unhandled: %d | excluded: %d | failed: %d",
		counts[core.OutcomeReplied],
		counts[core.OutcomeUnhandled],
		counts[core.OutcomeExcluded],
		counts[core.OutcomeFailed])

	for _, result := range report.Results {
		if result.Outcome != core.OutcomeFailed || result.Err == nil {
			continue
		}
		fmt.Fprintf(&b, "\n• ticket %d: %s", result.Ticket.ID, result.Err.Error())
	}
	return b.String()
}
