package sender

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/fanoutlabs/herald/internal/notification/entity"
	"github.com/fanoutlabs/herald/internal/notification/stream"
	"github.com/fanoutlabs/herald/internal/pkg/valueobject"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time { return c.now }

func TestRegistryResolve(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.Resolve(entity.ChannelEmail); ok {
		t.Fatal("Resolve on empty registry should report not found")
	}

	slack := NewSlack(nil)
	reg.Register(entity.ChannelSlack, slack)

	got, ok := reg.Resolve(entity.ChannelSlack)
	if !ok || got != slack {
		t.Fatalf("Resolve = %v, %v; want registered slack sender", got, ok)
	}

	if got := len(reg.Channels()); got != 1 {
		t.Fatalf("Channels len = %d, want 1", got)
	}
}

func TestSlackSend(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode webhook body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlack(srv.Client())
	err := s.Send(context.Background(), Request{
		Recipient: srv.URL,
		Subject:   "Deploy done",
		Body:      "all good",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if want := "*Deploy done*\nall good"; body["text"] != want {
		t.Fatalf("webhook text = %q, want %q", body["text"], want)
	}
}

func TestSlackSendNon2xxIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := NewSlack(srv.Client())
	if err := s.Send(context.Background(), Request{Recipient: srv.URL, Body: "x"}); err == nil {
		t.Fatal("Send should fail on 500 response")
	}
}

func TestTeamsSendMessageCard(t *testing.T) {
	var card map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
			t.Errorf("decode card: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	teams := NewTeams(srv.Client())
	err := teams.Send(context.Background(), Request{
		Recipient: srv.URL,
		Subject:   "Alert",
		Body:      "disk almost full",
		Metadata:  valueobject.JSONMap{"theme_color": "FF0000"},
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if card["@type"] != "MessageCard" {
		t.Fatalf("card type = %q, want MessageCard", card["@type"])
	}
	if card["themeColor"] != "FF0000" {
		t.Fatalf("themeColor = %q, want FF0000", card["themeColor"])
	}
	if card["title"] != "Alert" || card["text"] != "disk almost full" {
		t.Fatalf("card title/text = %q/%q", card["title"], card["text"])
	}
}

func TestTeamsDefaultThemeColor(t *testing.T) {
	var card map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&card)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	teams := NewTeams(srv.Client())
	if err := teams.Send(context.Background(), Request{Recipient: srv.URL, Subject: "s", Body: "b"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if card["themeColor"] != defaultTeamsThemeColor {
		t.Fatalf("themeColor = %q, want %q", card["themeColor"], defaultTeamsThemeColor)
	}
}

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(raw))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tg := NewTelegram(srv.Client(), srv.URL, "bot-token")
	err := tg.Send(context.Background(), Request{
		Recipient: "12345",
		Subject:   "Hello",
		Body:      "world",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if gotPath != "/botbot-token/sendMessage" {
		t.Fatalf("path = %q, want /botbot-token/sendMessage", gotPath)
	}
	if form.Get("chat_id") != "12345" {
		t.Fatalf("chat_id = %q, want 12345", form.Get("chat_id"))
	}
	if want := "Hello\n\nworld"; form.Get("text") != want {
		t.Fatalf("text = %q, want %q", form.Get("text"), want)
	}
}

func TestTwilioSMSSend(t *testing.T) {
	var gotPath, gotAuthUser string
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuthUser, _, _ = r.BasicAuth()
		raw, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sms := NewTwilioSMS(srv.Client(), TwilioConfig{
		BaseURL:    srv.URL,
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+15550001111",
	})
	err := sms.Send(context.Background(), Request{Recipient: "+15552223333", Body: "ping"})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if !strings.Contains(gotPath, "/Accounts/AC123/Messages.json") {
		t.Fatalf("path = %q, want twilio messages endpoint", gotPath)
	}
	if gotAuthUser != "AC123" {
		t.Fatalf("basic auth user = %q, want AC123", gotAuthUser)
	}
	if form.Get("To") != "+15552223333" || form.Get("From") != "+15550001111" {
		t.Fatalf("To/From = %q/%q", form.Get("To"), form.Get("From"))
	}
}

func TestTwilioWhatsAppPrefixesAddresses(t *testing.T) {
	var form url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		form, _ = url.ParseQuery(string(raw))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	wa := NewTwilioWhatsApp(srv.Client(), TwilioConfig{
		BaseURL:    srv.URL,
		AccountSID: "AC123",
		AuthToken:  "secret",
		From:       "+15550001111",
	})
	if err := wa.Send(context.Background(), Request{Recipient: "+15552223333", Body: "hi"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	if form.Get("To") != "whatsapp:+15552223333" {
		t.Fatalf("To = %q, want whatsapp prefix", form.Get("To"))
	}
	if form.Get("From") != "whatsapp:+15550001111" {
		t.Fatalf("From = %q, want whatsapp prefix", form.Get("From"))
	}
}

func TestRealtimeSendPublishesToHub(t *testing.T) {
	hub := stream.NewHub[entity.RealtimeMessage]()
	clk := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sub := hub.Subscribe(ctx)

	rt := NewRealtime(hub, clk)
	err := rt.Send(context.Background(), Request{
		CorrelationID: "p1",
		Recipient:     "user-9",
		Subject:       "s",
		Body:          "b",
	})
	if err != nil {
		t.Fatalf("Send returned error: %v", err)
	}

	select {
	case msg := <-sub:
		if msg.CorrelationID != "p1" || msg.Recipient != "user-9" {
			t.Fatalf("message = %+v, want p1/user-9", msg)
		}
		if !msg.SentAt.Equal(clk.now) {
			t.Fatalf("SentAt = %v, want %v", msg.SentAt, clk.now)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for realtime message")
	}
}
