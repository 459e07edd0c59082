package discord

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

const defaultBaseURL = "https://discord.com/api/v10"

// defaultTimeout bounds every Discord API call end to end.
const defaultTimeout = 3 * time.Second

// ErrTokenRequired is returned by New when the bot token is empty.
var ErrTokenRequired = errors.New("discord: bot token is required")

// Component type and button style constants from the Discord message
// components API. Only link-style buttons are supported.
const (
	componentActionRow = 1
	componentButton    = 2
	buttonStyleLink    = 5
)

// TimeoutError reports that a Discord API call exceeded the client timeout.
type TimeoutError struct {
	Op  string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("discord: %s timed out: %v", e.Op, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a discord client timeout.
func IsTimeout(err error) bool {
	var te *TimeoutError
	return errors.As(err, &te)
}

// APIError is a non-2xx response from the Discord API.
type APIError struct {
	Op      string
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("discord: %s failed: %d %s", e.Op, e.Code, e.Message)
}

// Bot is a minimal Discord REST client for posting and deleting
// channel messages with a bot token.
type Bot struct {
	token   string
	baseURL string
	client  *http.Client
}

// Option configures a Bot.
type Option func(*Bot)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(b *Bot) { b.client.Timeout = d }
}

// WithBaseURL overrides the API base URL, for tests.
func WithBaseURL(url string) Option {
	return func(b *Bot) { b.baseURL = url }
}

// New creates a Discord REST client for the given bot token.
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
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// LinkButton is a message component button that opens a URL.
type LinkButton struct {
	Text string
	URL  string
}

// Message is the subset of the Discord message object the client reads back.
// Discord snowflake IDs are decimal strings.
type Message struct {
	ID        string `json:"id"`
	ChannelID string `json:"channel_id"`
	Content   string `json:"content"`
}

type buttonComponent struct {
	Type  int    `json:"type"`
	Style int    `json:"style"`
	Label string `json:"label"`
	URL   string `json:"url"`
}

type actionRow struct {
	Type       int               `json:"type"`
	Components []buttonComponent `json:"components"`
}

type createMessageRequest struct {
	Content    string      `json:"content"`
	Components []actionRow `json:"components,omitempty"`
}

// componentsFor wraps link buttons into a single action row.
func componentsFor(buttons []LinkButton) []actionRow {
	if len(buttons) == 0 {
		return nil
	}
	row := actionRow{Type: componentActionRow}
	for _, btn := range buttons {
		row.Components = append(row.Components, buttonComponent{
			Type:  componentButton,
			Style: buttonStyleLink,
			Label: btn.Text,
			URL:   btn.URL,
		})
	}
	return []actionRow{row}
}

// do issues an authenticated request and normalizes timeouts and API
// failures into typed errors. wantStatus is the one success code.
func (b *Bot) do(ctx context.Context, op, method, path string, payload any, wantStatus int) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("discord: encode %s payload: %v", op, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("discord: create %s request: %v", op, err)
	}
	req.Header.Set("Authorization", "Bot "+b.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, &TimeoutError{Op: op, Err: err}
		}
		return nil, fmt.Errorf("discord: %s request failed: %v", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("discord: read %s response: %v", op, err)
	}

	if resp.StatusCode != wantStatus {
		var apiBody struct {
			Message string `json:"message"`
		}
		json.Unmarshal(raw, &apiBody)
		return nil, &APIError{Op: op, Code: resp.StatusCode, Message: apiBody.Message}
	}
	return raw, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// SendMessage posts a text message to a channel, optionally with link
// buttons, and returns the created message.
func (b *Bot) SendMessage(ctx context.Context, channelID, content string, buttons []LinkButton) (*Message, error) {
	payload := createMessageRequest{
		Content:    content,
		Components: componentsFor(buttons),
	}
	raw, err := b.do(ctx, "sendMessage", http.MethodPost,
		fmt.Sprintf("/channels/%s/messages", channelID), payload, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("discord: parse sendMessage result: %v", err)
	}
	return &msg, nil
}

// DeleteMessage removes a previously sent message from a channel.
func (b *Bot) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	_, err := b.do(ctx, "deleteMessage", http.MethodDelete,
		fmt.Sprintf("/channels/%s/messages/%s", channelID, messageID), nil, http.StatusNoContent)
	return err
}
