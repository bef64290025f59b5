package sender

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// TwilioConfig configures the Twilio-style messaging adapters.
type TwilioConfig struct {
	// BaseURL is normally https://api.twilio.com and exists so tests can
	// point at a local server.
	BaseURL string
	// AccountSID identifies the Twilio account.
	AccountSID string
	// AuthToken is the API auth token.
	AuthToken string
	// From is the sender phone number.
	From string
}

// Twilio posts messages to the Twilio REST API. It backs both the SMS and
// WhatsApp channels; WhatsApp prefixes addresses per the Twilio convention.
type Twilio struct {
	client   *http.Client
	cfg      TwilioConfig
	whatsapp bool
}

// NewTwilioSMS constructs the SMS channel adapter.
func NewTwilioSMS(client *http.Client, cfg TwilioConfig) *Twilio {
	return newTwilio(client, cfg, false)
}

// NewTwilioWhatsApp constructs the WhatsApp channel adapter.
func NewTwilioWhatsApp(client *http.Client, cfg TwilioConfig) *Twilio {
	return newTwilio(client, cfg, true)
}

func newTwilio(client *http.Client, cfg TwilioConfig, whatsapp bool) *Twilio {
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.twilio.com"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Twilio{client: client, cfg: cfg, whatsapp: whatsapp}
}

// Send posts one message to the recipient phone number.
func (t *Twilio) Send(ctx context.Context, req Request) error {
	from, to := t.cfg.From, req.Recipient
	if t.whatsapp {
		from = "whatsapp:" + from
		to = "whatsapp:" + to
	}

	body := req.Body
	if req.Subject != "" {
		body = req.Subject + "\n" + req.Body
	}

	form := url.Values{}
	form.Set("From", from)
	form.Set("To", to)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.cfg.BaseURL, t.cfg.AccountSID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	httpReq.SetBasicAuth(t.cfg.AccountSID, t.cfg.AuthToken)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<12))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("twilio api returned status %d", resp.StatusCode)
	}
	return nil
}
