package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Notifier delivers change messages. A nil or webhook-less Slack notifier
// silently drops everything, so the crawl loop never branches on delivery.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Slack posts messages to an incoming-webhook URL. Delivery failures are
// logged and swallowed: a dead webhook must not stall the crawl.
type Slack struct {
	webhookURL string
	client     *http.Client
	logger     *slog.Logger
}

const (
	// Slack rejects oversized block text, so messages are truncated well
	// under the hard limit.
	maxBlockText   = 2000
	maxMessageText = 2800
)

func NewSlack(webhookURL string, logger *slog.Logger) *Slack {
	return &Slack{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
		logger:     logger.With("component", "notify"),
	}
}

type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks,omitempty"`
}

type slackBlock struct {
	Type string     `json:"type"`
	Text *slackText `json:"text,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify posts one message. Returns nil on every delivery problem after
// logging it; a non-nil return means a programming error (bad payload).
func (s *Slack) Notify(ctx context.Context, text string) error {
	if s == nil || s.webhookURL == "" {
		return nil
	}

	text = truncate(text, maxMessageText)
	payload := slackPayload{
		Text: text,
		Blocks: []slackBlock{{
			Type: "section",
			Text: &slackText{Type: "mrkdwn", Text: truncate(text, maxBlockText)},
		}},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal slack payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Warn("slack delivery failed", "error", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("slack rejected message", "status", resp.StatusCode)
	}
	return nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
