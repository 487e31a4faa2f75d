package service

import (
	"context"
	"sync"
	"time"

	"golang-stock-digest/internal/entity"

	"github.com/stretchr/testify/mock"
)

type fakeFetcher struct {
	name    string
	enabled bool
	byQuery map[string][]entity.HeadlineItem

	mu      sync.Mutex
	queries []entity.SearchQuery
}

func (f *fakeFetcher) Name() string  { return f.name }
func (f *fakeFetcher) Enabled() bool { return f.enabled }

func (f *fakeFetcher) Fetch(_ context.Context, query entity.SearchQuery, _ time.Time) []entity.HeadlineItem {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	src := f.byQuery[query.Ticker]
	out := make([]entity.HeadlineItem, len(src))
	copy(out, src)
	return out
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type mockLLM struct {
	mock.Mock
}

func (m *mockLLM) Enabled() bool { return true }

func (m *mockLLM) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	args := m.Called(ctx, prompt, temperature)
	return args.String(0), args.Error(1)
}

type mockSymbols struct {
	mock.Mock
}

func (m *mockSymbols) LookupNames(ctx context.Context, ticker string) ([]string, error) {
	args := m.Called(ctx, ticker)
	names, _ := args.Get(0).([]string)
	return names, args.Error(1)
}

type mockSentRepo struct {
	mock.Mock
}

func (m *mockSentRepo) HasSent(ctx context.Context, url string) (bool, error) {
	args := m.Called(ctx, url)
	return args.Bool(0), args.Error(1)
}

func (m *mockSentRepo) MarkSent(ctx context.Context, ticker, url, title string) error {
	return m.Called(ctx, ticker, url, title).Error(0)
}

type mockWatchlistRepo struct {
	mock.Mock
}

func (m *mockWatchlistRepo) ListTickers(ctx context.Context, chatID string) ([]string, error) {
	args := m.Called(ctx, chatID)
	tickers, _ := args.Get(0).([]string)
	return tickers, args.Error(1)
}

func (m *mockWatchlistRepo) AddTickers(ctx context.Context, chatID string, tickers []string) (int, error) {
	args := m.Called(ctx, chatID, tickers)
	return args.Int(0), args.Error(1)
}

func (m *mockWatchlistRepo) RemoveTickers(ctx context.Context, chatID string, tickers []string) (int, error) {
	args := m.Called(ctx, chatID, tickers)
	return args.Int(0), args.Error(1)
}

type mockSignalRepo struct {
	mock.Mock
}

func (m *mockSignalRepo) CreateBatch(ctx context.Context, decisions []entity.TickerDecision, headlines map[string][]entity.HeadlineItem) error {
	return m.Called(ctx, decisions, headlines).Error(0)
}

func (m *mockSignalRepo) FindLatest(ctx context.Context, ticker string, limit int) ([]entity.TickerSignal, error) {
	args := m.Called(ctx, ticker, limit)
	signals, _ := args.Get(0).([]entity.TickerSignal)
	return signals, args.Error(1)
}

type mockQuoteRepo struct {
	mock.Mock
}

func (m *mockQuoteRepo) GetQuote(ctx context.Context, ticker string) (*entity.PriceQuote, error) {
	args := m.Called(ctx, ticker)
	q, _ := args.Get(0).(*entity.PriceQuote)
	return q, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendMessage(text string) error {
	return m.Called(text).Error(0)
}

func (m *mockNotifier) SendMessageTo(chatID int64, text string) error {
	return m.Called(chatID, text).Error(0)
}
