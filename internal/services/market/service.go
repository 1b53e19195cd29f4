package market

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/avolkov/moex-reporter/internal/clients/moex"
	"github.com/avolkov/moex-reporter/internal/common"
	"github.com/avolkov/moex-reporter/internal/interfaces"
	"github.com/avolkov/moex-reporter/internal/models"
)

const (
	DefaultAttempts   = 3
	DefaultRetryPause = 1 * time.Second
	DefaultRateLimit  = 10 // symbols per second, i.e. 0.1s spacing
)

// Service fetches quotes for portfolio symbols, consulting the cache first
// and retrying transient network failures. It never fails a whole run: a
// symbol that cannot be quoted is simply absent from the result.
type Service struct {
	client     interfaces.MarketDataClient
	cache      *Cache
	logger     *common.Logger
	limiter    *rate.Limiter
	attempts   int
	retryPause time.Duration
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithAttempts sets the total fetch attempts per symbol
func WithAttempts(attempts int) ServiceOption {
	return func(s *Service) {
		if attempts > 0 {
			s.attempts = attempts
		}
	}
}

// WithRetryPause sets the pause between fetch attempts
func WithRetryPause(pause time.Duration) ServiceOption {
	return func(s *Service) {
		s.retryPause = pause
	}
}

// WithRateLimit sets the per-symbol request rate
func WithRateLimit(requestsPerSecond int) ServiceOption {
	return func(s *Service) {
		s.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// NewService creates a market service around a client and a caller-owned cache
func NewService(client interfaces.MarketDataClient, cache *Cache, logger *common.Logger, opts ...ServiceOption) *Service {
	s := &Service{
		client:     client,
		cache:      cache,
		logger:     logger,
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		attempts:   DefaultAttempts,
		retryPause: DefaultRetryPause,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Collect fetches quotes for every portfolio symbol in portfolio order.
// Symbols without a valid quote are absent from the result.
func (s *Service) Collect(ctx context.Context, portfolio *models.Portfolio) map[string]*models.Quote {
	quotes := make(map[string]*models.Quote, portfolio.Len())

	for _, symbol := range portfolio.Symbols() {
		quote, err := s.quote(ctx, symbol)
		if err != nil {
			s.logger.Warn().Err(err).Str("symbol", symbol).Msg("Quote unavailable")
			continue
		}
		quotes[symbol] = quote
	}

	return quotes
}

// quote returns a cached quote when fresh, otherwise fetches with retries.
func (s *Service) quote(ctx context.Context, symbol string) (*models.Quote, error) {
	if quote, ok := s.cache.Get(symbol); ok {
		s.logger.Debug().Str("symbol", symbol).Msg("Quote served from cache")
		return quote, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		quote, err := s.client.GetQuote(ctx, symbol)
		if err == nil {
			s.cache.Put(quote)
			return quote, nil
		}
		lastErr = err

		// A definitive exchange answer is not a transient failure
		if errors.Is(err, moex.ErrUnavailable) {
			return nil, err
		}

		if attempt < s.attempts {
			s.logger.Debug().Err(err).Str("symbol", symbol).Int("attempt", attempt).Msg("Fetch failed, retrying")
			if err := sleep(ctx, s.retryPause); err != nil {
				return nil, err
			}
		}
	}

	return nil, lastErr
}

// sleep waits for d or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Ensure Service implements MarketService
var _ interfaces.MarketService = (*Service)(nil)
