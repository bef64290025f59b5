package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultTeamsThemeColor = "0076D7"

func postJSON(ctx context.Context, client *http.Client, url string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// Slack delivers notifications to an incoming webhook. The recipient value
// is the webhook URL itself.
type Slack struct {
	client *http.Client
}

// NewSlack constructs the Slack channel adapter.
func NewSlack(client *http.Client) *Slack {
	if client == nil {
		client = http.DefaultClient
	}
	return &Slack{client: client}
}

// Send posts the message to the recipient webhook URL.
func (s *Slack) Send(ctx context.Context, req Request) error {
	text := req.Body
	if req.Subject != "" {
		text = "*" + req.Subject + "*\n" + req.Body
	}

	return postJSON(ctx, s.client, req.Recipient, map[string]string{"text": text})
}

// Teams delivers notifications as a MessageCard to an incoming webhook.
// The recipient value is the webhook URL itself.
type Teams struct {
	client *http.Client
}

// NewTeams constructs the Teams channel adapter.
func NewTeams(client *http.Client) *Teams {
	if client == nil {
		client = http.DefaultClient
	}
	return &Teams{client: client}
}

// Send posts a MessageCard to the recipient webhook URL. The card theme
// color can be overridden through the payload metadata key "theme_color".
func (t *Teams) Send(ctx context.Context, req Request) error {
	themeColor := defaultTeamsThemeColor
	if c := req.Metadata.GetString("theme_color"); c != "" {
		themeColor = c
	}

	card := map[string]string{
		"@type":      "MessageCard",
		"@context":   "http://schema.org/extensions",
		"summary":    req.Subject,
		"themeColor": themeColor,
		"title":      req.Subject,
		"text":       req.Body,
	}

	return postJSON(ctx, t.client, req.Recipient, card)
}
