package notify

import (
	"fmt"
	"log"

	"github.com/slack-go/slack"
)

// Notifier posts a batch completion summary to a Slack channel. It is
// optional: with no token or channel configured, New returns nil and every
// call is a no-op.
type Notifier struct {
	api       *slack.Client
	channelID string
}

func New(botToken, channelID string) *Notifier {
	if botToken == "" || channelID == "" {
		return nil
	}
	return &Notifier{
		api:       slack.New(botToken),
		channelID: channelID,
	}
}

// BatchSummary describes a finished batch run.
type BatchSummary struct {
	Input     string
	Total     int
	Generated int
	Templated int
	Skipped   int
	Failed    int
}

func (n *Notifier) PostBatchSummary(s BatchSummary) {
	if n == nil {
		return
	}
	text := fmt.Sprintf(
		"Ticket batch finished: %s\nProcessed: %d | Generated: %d | Templated: %d | Skipped: %d | Failed: %d",
		s.Input, s.Total, s.Generated, s.Templated, s.Skipped, s.Failed,
	)
	_, _, err := n.api.PostMessage(n.channelID, slack.MsgOptionText(text, false))
	if err != nil {
		log.Printf("slack batch summary error: %v", err)
		return
	}
	log.Printf("slack batch summary posted channel=%s", n.channelID)
}
