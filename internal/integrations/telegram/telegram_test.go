package telegram

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
	var captured sendMessageRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bottest-token/sendMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":42,"chat":{"id":123},"text":"oi"}}`))
	}))
	defer srv.Close()

	bot, err := New("test-token", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	msg, err := bot.SendMessage(context.Background(), "123", "oi", nil)
	if err != nil {
		t.Fatalf("SendMessage: %v", err)
	}
	if msg.MessageID != 42 || msg.Chat.ID != 123 || msg.Text != "oi" {
		t.Errorf("unexpected message: %+v", msg)
	}
	if captured.ChatID != "123" || captured.Text != "oi" {
		t.Errorf("unexpected request payload: %+v", captured)
	}
	if captured.ParseMode != "MarkdownV2" {
		t.Errorf("expected MarkdownV2 parse mode, got %q", captured.ParseMode)
	}
	if !captured.DisableWebPagePreview {
		t.Error("expected web page preview disabled by default")
	}
}

func TestSendMessageWithKeyboard(t *testing.T) {
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&captured)
		w.Write([]byte(`{"ok":true,"result":{"message_id":1,"chat":{"id":9}}}`))
	}))
	defer srv.Close()

	bot, _ := New("t", WithBaseURL(srv.URL))
	keyboard := InlineKeyboard([]LinkButton{{Text: "Abrir", URL: "https://example.com/loans/7"}})
	if _, err := bot.SendMessage(context.Background(), "9", "texto", keyboard); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	markup, ok := captured["reply_markup"].(map[string]any)
	if !ok {
		t.Fatalf("reply_markup missing from payload: %v", captured)
	}
	rows, ok := markup["inline_keyboard"].([]any)
	if !ok || len(rows) != 1 {
		t.Fatalf("expected one keyboard row, got %v", markup)
	}
	button := rows[0].([]any)[0].(map[string]any)
	if button["text"] != "Abrir" || button["url"] != "https://example.com/loans/7" {
		t.Errorf("unexpected button: %v", button)
	}
}

func TestSendMessageAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
	}))
	defer srv.Close()

	bot, _ := New("t", WithBaseURL(srv.URL))
	_, err := bot.SendMessage(context.Background(), "0", "x", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	apiErr, ok := err.(*APIError)
	if !ok {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.Code != http.StatusBadRequest || apiErr.Description != "Bad Request: chat not found" {
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
	_, err := bot.SendMessage(context.Background(), "1", "x", nil)
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !IsTimeout(err) {
		t.Errorf("expected timeout classification, got %T: %v", err, err)
	}
}

func TestDeleteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bott/deleteMessage" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"ok":true,"result":true}`))
	}))
	defer srv.Close()

	bot, _ := New("t", WithBaseURL(srv.URL))
	if err := bot.DeleteMessage(context.Background(), "123", 42); err != nil {
		t.Fatalf("DeleteMessage: %v", err)
	}
}
