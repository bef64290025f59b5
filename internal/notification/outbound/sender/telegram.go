package sender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Telegram delivers notifications through the Telegram bot API. The
// recipient value is the target chat id.
type Telegram struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewTelegram constructs the Telegram channel adapter. baseURL is normally
// https://api.telegram.org and exists so tests can point at a local server.
func NewTelegram(client *http.Client, baseURL, token string) *Telegram {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	return &Telegram{client: client, baseURL: strings.TrimRight(baseURL, "/"), token: token}
}

// Send posts a sendMessage call for the recipient chat id.
func (t *Telegram) Send(ctx context.Context, req Request) error {
	text := req.Body
	if req.Subject != "" {
		text = req.Subject + "\n\n" + req.Body
	}

	form := url.Values{}
	form.Set("chat_id", req.Recipient)
	form.Set("text", text)

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("telegram api returned status %d", resp.StatusCode)
	}
	return nil
}
