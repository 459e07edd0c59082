package discord

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewRequiresToken(t *testing.T) {
	if _, err := New(""); err != ErrTokenRequired {
		t.Fatalf("expected ErrTokenRequired, got %v", err)
	}
}

func TestSendMessage(t *testing.T) {
	var captured createMessageRequest
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels/111222333/messages" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		auth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Write([]byte(`{"id":"999888777","channel_id":"111222333","content":"oi"}`))
	}))
	defer srv.Close()

	bot, err := New("secret", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	msg, err := bot.SendMessage(context.Background(), "111222333", "oi", nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.ID != "999888777" || msg.ChannelID != "111222333" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if auth != "Bot secret" {
		t.Errorf("unexpected Authorization header: %q", auth)
	}
	if captured.Content != "oi" || captured.Components != nil {
		t.Errorf("unexpected request payload: %+v", captured)
	}
}

func TestSendMessageWithButtons(t *testing.T) {
	var captured createMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"id":"1","channel_id":"2","content":"x"}`))
	}))
	defer srv.Close()

	bot, _ := New("t", WithBaseURL(srv.URL))
	buttons := []LinkButton{{Text: "Abrir", URL: "https://example.com/loans/7"}}
	if _, err := bot.SendMessage(context.Background(), "2", "x", buttons); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	if len(captured.Components) != 1 {
		t.Fatalf("expected one action row, got %d", len(captured.Components))
	}
	row := captured.Components[0]
	if row.Type != componentActionRow || len(row.Components) != 1 {
		t.Fatalf("unexpected action row: %+v", row)
	}
	btn := row.Components[0]
	if btn.Type != componentButton || btn.Style != buttonStyleLink {
		t.Errorf("expected link-style button, got %+v", btn)
	}
	if btn.Label != "Abrir" || btn.URL != "https://example.com/loans/7" {
		t.Errorf("unexpected button: %+v", btn)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"Missing Access","code":50001}`))
	}))
	defer srv.Close()

	bot, _ := New("t", WithBaseURL(srv.URL))
	_, err := bot.SendMessage(context.Background(), "2", "x", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != http.StatusForbidden || apiErr.Message != "Missing Access" {
		t.Errorf("unexpected APIError: %+v", apiErr)
	}
	if IsTimeout(err) {
		t.Error("API error must not count as a timeout")
	}
}

func TestSendMessageTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	bot, _ := New("t", WithBaseURL(srv.URL), WithTimeout(50*time.Millisecond))
	_, err := bot.SendMessage(context.Background(), "2", "x", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("expected timeout classification, got %T: %v", err, err)
	}
}

func TestDeleteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("unexpected method: %s", r.Method)
		}
		if r.URL.Path != "/channels/2/messages/9" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	bot, _ := New("t", WithBaseURL(srv.URL))
	if err := bot.DeleteMessage(context.Background(), "2", "9"); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
}
