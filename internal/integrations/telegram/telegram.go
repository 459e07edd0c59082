package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.telegram.org"

// defaultTimeout bounds every Bot API call end to end.
const defaultTimeout = 3 * time.Second

// ErrTokenRequired is returned by New when the bot token is empty.
var ErrTokenRequired = errors.New("telegram: bot token is required")

// TimeoutError reports that a Bot API call exceeded the client timeout.
// It is distinct from APIError so callers can decide whether to retry.
type TimeoutError struct {
	Method string
	Err    error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("telegram: %s timed out: %v", e.Method, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a telegram client timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// APIError is a non-ok response from the Bot API.
type APIError struct {
	Method      string
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("telegram: %s failed: %d %s", e.Method, e.Code, e.Description)
}

// Bot is a minimal Telegram Bot API client for sending and deleting
// chat messages.
type Bot struct {
	token   string
	baseURL string
	client  *http.Client

	parseMode             string
	disableWebPagePreview bool
}

// Option configures a Bot.
type Option func(*Bot)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bot) { b.client.Timeout = d }
}

// WithBaseURL overrides the Bot API base URL, for tests.
func WithBaseURL(url string) Option {
	return func(b *Bot) { b.baseURL = url }
}

// WithParseMode overrides the default MarkdownV2 parse mode. Passing an
// empty string sends plain text.
func WithParseMode(mode string) Option {
	return func(b *Bot) { b.parseMode = mode }
}

// WithWebPagePreview re-enables link previews, disabled by default.
func WithWebPagePreview() Option {
	return func(b *Bot) { b.disableWebPagePreview = false }
}

// New creates a Bot API client for the given token.
func New(token string, opts ...Option) (*Bot, error) {
	if token == "" {
		return nil, ErrTokenRequired
	}
	b := &Bot{
		token:   token,
		baseURL: defaultBaseURL,
		client: &http.Client{
			Timeout: defaultTimeout,
		},
		parseMode:             "MarkdownV2",
		disableWebPagePreview: true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// LinkButton is an inline keyboard button that opens a URL. Only link
// buttons are supported; callback buttons need a long-polling consumer.
type LinkButton struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

// InlineKeyboard lays out link buttons as rows under a message.
func InlineKeyboard(rows ...[]LinkButton) [][]LinkButton {
	return rows
}

// Message is the subset of the Bot API message object the client reads back.
type Message struct {
	MessageID int64 `json:"message_id"`
	Chat      struct {
		ID int64 `json:"id"`
	} `json:"chat"`
	Text string `json:"text"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description"`
	Result      json.RawMessage `json:"result"`
}

func (b *Bot) methodURL(method string) string {
	return fmt.Sprintf("%s/bot%s/%s", b.baseURL, b.token, method)
}

// call posts a JSON payload to a Bot API method and decodes the result
// envelope, normalizing timeouts and API failures into typed errors.
func (b *Bot) call(ctx context.Context, method string, payload any) (json.RawMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("telegram: encode %s payload: %v", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.methodURL(method), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("telegram: create %s request: %v", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Method: method, Err: err}
		}
		return nil, fmt.Errorf("telegram: %s request failed: %v", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("telegram: read %s response: %v", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("telegram: parse %s response: %v", method, err)
	}
	if !envelope.OK {
		return nil, &APIError{Method: method, Code: resp.StatusCode, Description: envelope.Description}
	}
	return envelope.Result, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

type replyMarkup struct {
	InlineKeyboard [][]LinkButton `json:"inline_keyboard"`
}

type sendMessageRequest struct {
	ChatID                string       `json:"chat_id"`
	Text                  string       `json:"text"`
	ParseMode             string       `json:"parse_mode,omitempty"`
	DisableWebPagePreview bool         `json:"disable_web_page_preview,omitempty"`
	ReplyMarkup           *replyMarkup `json:"reply_markup,omitempty"`
}

// SendMessage posts a text message to a chat, optionally with an inline
// keyboard of link buttons, and returns the created message.
func (b *Bot) SendMessage(ctx context.Context, chatID, text string, keyboard [][]LinkButton) (*Message, error) {
	payload := sendMessageRequest{
		ChatID:                chatID,
		Text:                  text,
		ParseMode:             b.parseMode,
		DisableWebPagePreview: b.disableWebPagePreview,
	}
	if len(keyboard) > 0 {
		payload.ReplyMarkup = &replyMarkup{InlineKeyboard: keyboard}
	}

	result, err := b.call(ctx, "sendMessage", payload)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(result, &msg); err != nil {
		return nil, fmt.Errorf("telegram: parse sendMessage result: %v", err)
	}
	return &msg, nil
}

// DeleteMessage removes a previously sent message from a chat.
func (b *Bot) DeleteMessage(ctx context.Context, chatID string, messageID int64) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	_, err := b.call(ctx, "deleteMessage", payload)
	return err
}
