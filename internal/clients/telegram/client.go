// Package telegram provides a client for the Telegram Bot API
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avolkov/moex-reporter/internal/common"
	"github.com/avolkov/moex-reporter/internal/interfaces"
)

const (
	DefaultBaseURL = "https://api.telegram.org"
	DefaultTimeout = 15 * time.Second

	// MaxMessageLen is the maximum report length forwarded to Telegram.
	// Longer bodies are cut and suffixed with TruncationMarker. Telegram's
	// own hard limit is 4096 characters, which the marker stays within.
	MaxMessageLen    = 4000
	TruncationMarker = "… [отчет обрезан]"
)

// Client posts messages to a single chat via the Telegram Bot API
type Client struct {
	baseURL    string
	botToken   string
	chatID     string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Telegram Bot API client for one bot and chat
func NewClient(botToken, chatID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:  DefaultBaseURL,
		botToken: botToken,
		chatID:   chatID,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 API response
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Telegram API error: %s (status: %d)", e.Message, e.StatusCode)
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

// Truncate cuts a message to MaxMessageLen runes and appends the truncation
// marker. Messages within the limit are returned unchanged.
func Truncate(text string) string {
	runes := []rune(text)
	if len(runes) <= MaxMessageLen {
		return text
	}
	return string(runes[:MaxMessageLen]) + TruncationMarker
}

// SendReport posts a report body to the configured chat, wrapped in <pre>
// tags so Telegram renders it as monospaced text.
func (c *Client) SendReport(ctx context.Context, report string) error {
	return c.SendMessage(ctx, "<pre>"+Truncate(report)+"</pre>")
}

// SendMessage posts an HTML-formatted message to the configured chat.
// Success is defined as HTTP 200.
func (c *Client) SendMessage(ctx context.Context, text string) error {
	payload := sendMessageRequest{
		ChatID:    c.chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.botToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().Int("chars", len([]rune(text))).Msg("Telegram sendMessage request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	return nil
}

// Ensure Client implements Notifier
var _ interfaces.Notifier = (*Client)(nil)
