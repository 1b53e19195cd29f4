package market

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/avolkov/moex-reporter/internal/clients/moex"
	"github.com/avolkov/moex-reporter/internal/common"
	"github.com/avolkov/moex-reporter/internal/models"
)

// fakeClient scripts per-symbol responses and counts calls.
type fakeClient struct {
	quotes map[string]*models.Quote
	errs   map[string]error
	calls  map[string]int
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		quotes: make(map[string]*models.Quote),
		errs:   make(map[string]error),
		calls:  make(map[string]int),
	}
}

func (f *fakeClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	f.calls[symbol]++
	if err, ok := f.errs[symbol]; ok {
		return nil, err
	}
	if quote, ok := f.quotes[symbol]; ok {
		return quote, nil
	}
	return nil, fmt.Errorf("%w: %s", moex.ErrUnavailable, symbol)
}

func newTestService(client *fakeClient) (*Service, *Cache) {
	cache := NewCache(300 * time.Second)
	svc := NewService(client, cache, common.NewSilentLogger(),
		WithRetryPause(0),
		WithRateLimit(1000),
	)
	return svc, cache
}

func testPortfolio(symbols ...string) *models.Portfolio {
	p := &models.Portfolio{}
	for _, s := range symbols {
		p.Holdings = append(p.Holdings, models.Holding{Symbol: s, Lots: 1})
	}
	return p
}

func TestCollect_ReturnsQuotesForAllSymbols(t *testing.T) {
	client := newFakeClient()
	client.quotes["SBER"] = testQuote("SBER", 250.0)
	client.quotes["GAZP"] = testQuote("GAZP", 120.0)
	svc, _ := newTestService(client)

	quotes := svc.Collect(context.Background(), testPortfolio("SBER", "GAZP"))

	if len(quotes) != 2 {
		t.Fatalf("got %d quotes, want 2", len(quotes))
	}
}

func TestCollect_CacheHitSkipsNetworkCall(t *testing.T) {
	client := newFakeClient()
	client.quotes["SBER"] = testQuote("SBER", 250.0)
	svc, _ := newTestService(client)

	p := testPortfolio("SBER")
	first := svc.Collect(context.Background(), p)
	second := svc.Collect(context.Background(), p)

	if client.calls["SBER"] != 1 {
		t.Errorf("network calls = %d, want 1 (second collect must hit cache)", client.calls["SBER"])
	}
	if first["SBER"] != second["SBER"] {
		t.Error("cached quote must be reused unchanged")
	}
}

func TestCollect_ExpiredCacheRefetches(t *testing.T) {
	client := newFakeClient()
	client.quotes["SBER"] = testQuote("SBER", 250.0)
	svc, cache := newTestService(client)

	now := time.Now()
	cache.now = func() time.Time { return now }

	p := testPortfolio("SBER")
	svc.Collect(context.Background(), p)

	now = now.Add(301 * time.Second)
	svc.Collect(context.Background(), p)

	if client.calls["SBER"] != 2 {
		t.Errorf("network calls = %d, want 2 after TTL expiry", client.calls["SBER"])
	}
}

func TestCollect_TransportErrorRetriesExactlyThreeTimes(t *testing.T) {
	client := newFakeClient()
	client.errs["GAZP"] = errors.New("connection reset")
	svc, _ := newTestService(client)

	quotes := svc.Collect(context.Background(), testPortfolio("GAZP"))

	if client.calls["GAZP"] != 3 {
		t.Errorf("attempts = %d, want exactly 3", client.calls["GAZP"])
	}
	if _, ok := quotes["GAZP"]; ok {
		t.Error("failed symbol must be absent from result")
	}
}

func TestCollect_UnavailableIsNotRetried(t *testing.T) {
	client := newFakeClient()
	client.errs["NOPE"] = fmt.Errorf("%w: NOPE not found", moex.ErrUnavailable)
	svc, _ := newTestService(client)

	svc.Collect(context.Background(), testPortfolio("NOPE"))

	if client.calls["NOPE"] != 1 {
		t.Errorf("attempts = %d, want 1 (definitive answer must not retry)", client.calls["NOPE"])
	}
}

func TestCollect_PartialFailureKeepsGoodSymbols(t *testing.T) {
	client := newFakeClient()
	client.quotes["SBER"] = testQuote("SBER", 250.0)
	client.errs["GAZP"] = errors.New("timeout")
	svc, _ := newTestService(client)

	quotes := svc.Collect(context.Background(), testPortfolio("SBER", "GAZP"))

	if _, ok := quotes["SBER"]; !ok {
		t.Error("SBER quote missing despite healthy fetch")
	}
	if _, ok := quotes["GAZP"]; ok {
		t.Error("GAZP must be absent after exhausted retries")
	}
}

func TestCollect_FailureIsNotCached(t *testing.T) {
	client := newFakeClient()
	client.errs["GAZP"] = errors.New("timeout")
	svc, _ := newTestService(client)

	p := testPortfolio("GAZP")
	svc.Collect(context.Background(), p)

	// Recovery: the next run should try the network again
	delete(client.errs, "GAZP")
	client.quotes["GAZP"] = testQuote("GAZP", 120.0)

	quotes := svc.Collect(context.Background(), p)
	if _, ok := quotes["GAZP"]; !ok {
		t.Error("symbol must be fetchable after transient failure clears")
	}
}

func TestCollect_ContextCancelStopsRetries(t *testing.T) {
	client := newFakeClient()
	client.errs["SBER"] = errors.New("timeout")

	cache := NewCache(300 * time.Second)
	svc := NewService(client, cache, common.NewSilentLogger(),
		WithRetryPause(10*time.Second),
		WithRateLimit(1000),
	)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		svc.Collect(ctx, testPortfolio("SBER"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Collect did not return promptly after context cancel")
	}
}
