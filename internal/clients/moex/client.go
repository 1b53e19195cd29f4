// Package moex provides a client for the MOEX ISS API
package moex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/avolkov/moex-reporter/internal/common"
	"github.com/avolkov/moex-reporter/internal/interfaces"
	"github.com/avolkov/moex-reporter/internal/models"
)

const (
	DefaultBaseURL   = "https://iss.moex.com/iss"
	DefaultBoard     = "TQBR"
	DefaultTimeout   = 10 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// ErrUnavailable signals that the exchange has no usable quote for a symbol:
// unknown ticker, empty securities section, or a non-positive resolved price.
// It is a definitive answer and must not be retried.
var ErrUnavailable = errors.New("moex: quote unavailable")

// Client queries the MOEX ISS securities endpoint for board TQBR quotes
type Client struct {
	baseURL    string
	board      string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithBoard sets the trading board
func WithBoard(board string) ClientOption {
	return func(c *Client) {
		c.board = board
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new MOEX ISS client.
// No API key is required — this is a public endpoint.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		board:   DefaultBoard,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:  common.NewSilentLogger(),
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
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("MOEX ISS error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// issTable is one section of an ISS response: named columns over rows of
// nullable mixed-type cells.
type issTable struct {
	Columns []string            `json:"columns"`
	Data    [][]json.RawMessage `json:"data"`
}

// index returns the position of a column, or -1 if absent.
func (t *issTable) index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// float returns the float value of a cell, or false when the cell is
// missing, null, or not numeric.
func (t *issTable) float(row, column int) (float64, bool) {
	if row >= len(t.Data) || column < 0 || column >= len(t.Data[row]) {
		return 0, false
	}
	var v *float64
	if err := json.Unmarshal(t.Data[row][column], &v); err != nil || v == nil {
		return 0, false
	}
	return *v, true
}

type securitiesResponse struct {
	Securities issTable `json:"securities"`
	Marketdata issTable `json:"marketdata"`
}

// GetQuote retrieves the current quote for a ticker symbol on the configured
// board. The live last-traded price is preferred; when the market has not
// traded yet it falls back to the previous session's admitted quote.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("iss.meta", "off")
	params.Set("securities.columns", "SECID,PREVADMITTEDQUOTE,LOTSIZE")
	params.Set("marketdata.columns", "LAST,OPEN,LOW,HIGH,VALUE")

	path := fmt.Sprintf("/engines/stock/markets/shares/boards/%s/securities/%s.json",
		c.board, strings.ToUpper(symbol))
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("symbol", symbol).Str("url", c.baseURL+path).Msg("MOEX ISS request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	var data securitiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return c.resolveQuote(symbol, &data)
}

// resolveQuote extracts price and lot size from the ISS response sections.
func (c *Client) resolveQuote(symbol string, data *securitiesResponse) (*models.Quote, error) {
	if len(data.Securities.Data) == 0 {
		return nil, fmt.Errorf("%w: %s not found on board %s", ErrUnavailable, symbol, c.board)
	}

	// Live LAST price first, previous session reference price as fallback
	price, ok := data.Marketdata.float(0, data.Marketdata.index("LAST"))
	if !ok || price == 0 {
		price, ok = data.Securities.float(0, data.Securities.index("PREVADMITTEDQUOTE"))
	}
	if !ok || price <= 0 {
		return nil, fmt.Errorf("%w: %s has no positive price", ErrUnavailable, symbol)
	}

	lotSize := 1
	if v, ok := data.Securities.float(0, data.Securities.index("LOTSIZE")); ok && v > 0 {
		lotSize = int(v)
	}

	return &models.Quote{
		Symbol:    symbol,
		Price:     decimal.NewFromFloat(price),
		LotSize:   lotSize,
		Source:    models.QuoteSourceMOEX,
		FetchedAt: time.Now(),
	}, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)
