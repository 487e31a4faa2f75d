package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type digestFixture struct {
	cfg       *config.Config
	src       *fakeFetcher
	sent      *mockSentRepo
	watchlist *mockWatchlistRepo
	signals   *mockSignalRepo
	quotes    *mockQuoteRepo
	notifier  *mockNotifier
	svc       DigestService
}

func newDigestFixture(byQuery map[string][]entity.HeadlineItem) *digestFixture {
	cfg := &config.Config{}
	cfg.Digest.Watchlist = "TSLA,AAPL"
	cfg.Digest.LookbackHours = 12
	cfg.Telegram.ChatID = 42

	f := &digestFixture{
		cfg:       cfg,
		src:       &fakeFetcher{name: "src", enabled: true, byQuery: byQuery},
		sent:      new(mockSentRepo),
		watchlist: new(mockWatchlistRepo),
		signals:   new(mockSignalRepo),
		quotes:    new(mockQuoteRepo),
		notifier:  new(mockNotifier),
	}
	log := logger.NewNop()
	agg := NewAggregator(NewQueryBuilder(nil, log, 0), []repository.HeadlineFetcher{f.src}, log, 2)
	f.svc = NewDigestService(cfg, log, agg, NewClassifier(nil, log), NewDecisionSynthesizer(nil, log),
		f.sent, f.watchlist, f.signals, f.quotes, f.notifier)
	return f
}

func TestResolveTickers(t *testing.T) {
	f := newDigestFixture(nil)
	ctx := context.Background()

	assert.Equal(t, []string{"NVDA"}, f.svc.ResolveTickers(ctx, "42", []string{"NVDA"}))
	f.watchlist.AssertNotCalled(t, "ListTickers", mock.Anything, mock.Anything)

	f.watchlist.On("ListTickers", ctx, "42").Return([]string{"MSFT"}, nil).Once()
	assert.Equal(t, []string{"MSFT"}, f.svc.ResolveTickers(ctx, "42", nil))

	f.watchlist.On("ListTickers", ctx, "42").Return([]string{}, nil).Once()
	assert.Equal(t, []string{"TSLA", "AAPL"}, f.svc.ResolveTickers(ctx, "42", nil))

	f.watchlist.On("ListTickers", ctx, "7").Return(nil, errors.New("db down")).Once()
	assert.Equal(t, []string{"TSLA", "AAPL"}, f.svc.ResolveTickers(ctx, "7", nil))
}

func TestBuildNewsDigest_FiltersSent(t *testing.T) {
	f := newDigestFixture(map[string][]entity.HeadlineItem{
		"TSLA": {headline("TSLA", "old", "https://t/old"), headline("TSLA", "new", "https://t/new")},
	})
	f.sent.On("HasSent", mock.Anything, "https://t/old").Return(true, nil)
	f.sent.On("HasSent", mock.Anything, "https://t/new").Return(false, errors.New("ignored"))

	digest, err := f.svc.BuildNewsDigest(context.Background(), []string{"TSLA"}, 6)
	require.NoError(t, err)
	require.Len(t, digest.Items, 1)
	assert.Equal(t, "new", digest.Items[0].Title)
	assert.True(t, strings.HasPrefix(digest.Text, "News Digest\n\n[TSLA]\n- P2 Neutral: new (S)"))
}

func TestBuildNewsDigest_NothingFresh(t *testing.T) {
	f := newDigestFixture(nil)

	digest, err := f.svc.BuildNewsDigest(context.Background(), nil, 12)
	require.NoError(t, err)
	assert.Equal(t, "No notable new items in the last 12h.", digest.Text)
	assert.Empty(t, digest.Items)
}

func TestBuildNewsDigest_Cancelled(t *testing.T) {
	f := newDigestFixture(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.BuildNewsDigest(ctx, []string{"TSLA"}, 12)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunIntraday_SendsThenMarks(t *testing.T) {
	f := newDigestFixture(map[string][]entity.HeadlineItem{
		"AAPL": {headline("AAPL", "a1", "https://a/1"), headline("AAPL", "a2", "")},
	})
	f.watchlist.On("ListTickers", mock.Anything, "42").Return([]string{"AAPL"}, nil)
	f.sent.On("HasSent", mock.Anything, mock.Anything).Return(false, nil)
	f.notifier.On("SendMessage", mock.MatchedBy(func(s string) bool { return strings.Contains(s, "[AAPL]") })).Return(nil).Once()
	f.sent.On("MarkSent", mock.Anything, "AAPL", "https://a/1", "a1").Return(nil).Once()

	require.NoError(t, f.svc.RunIntraday(context.Background()))
	f.notifier.AssertExpectations(t)
	f.sent.AssertExpectations(t)
	f.sent.AssertNumberOfCalls(t, "MarkSent", 1)
}

func TestRunIntraday_SendFailureSkipsMark(t *testing.T) {
	f := newDigestFixture(map[string][]entity.HeadlineItem{
		"TSLA": {headline("TSLA", "t1", "https://t/1")},
	})
	f.watchlist.On("ListTickers", mock.Anything, "42").Return(nil, nil)
	f.sent.On("HasSent", mock.Anything, mock.Anything).Return(false, nil)
	f.notifier.On("SendMessage", mock.Anything).Return(errors.New("telegram down"))

	assert.Error(t, f.svc.RunIntraday(context.Background()))
	f.sent.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSignal_RecordsDecisions(t *testing.T) {
	f := newDigestFixture(map[string][]entity.HeadlineItem{
		"TSLA": {headline("TSLA", "t1", "https://t/1")},
		"AAPL": {headline("AAPL", "a1", "https://a/1"), headline("AAPL", "a2", "https://a/2")},
	})
	f.watchlist.On("ListTickers", mock.Anything, "42").Return(nil, nil)
	f.notifier.On("SendMessage", mock.MatchedBy(func(s string) bool {
		return strings.HasPrefix(s, "Signal Digest (12h window)\n- AAPL: Hold | 43% ★★☆☆☆")
	})).Return(nil)
	f.signals.On("CreateBatch", mock.Anything, mock.MatchedBy(func(d []entity.TickerDecision) bool {
		return len(d) == 2 && d[0].Ticker == "TSLA" && d[1].Ticker == "AAPL"
	}), mock.MatchedBy(func(h map[string][]entity.HeadlineItem) bool {
		return len(h["AAPL"]) == 2 && len(h["TSLA"]) == 1
	})).Return(nil).Once()

	require.NoError(t, f.svc.RunSignal(context.Background()))
	f.signals.AssertExpectations(t)
}

func TestRunEOD(t *testing.T) {
	f := newDigestFixture(nil)
	f.watchlist.On("ListTickers", mock.Anything, "42").Return([]string{"AAPL", "ZZZ"}, nil)
	f.quotes.On("GetQuote", mock.Anything, "AAPL").Return(&entity.PriceQuote{Last: 110, PreviousClose: 100, Available: true}, nil)
	f.quotes.On("GetQuote", mock.Anything, "ZZZ").Return(nil, errors.New("404"))
	f.notifier.On("SendMessage", "EOD Prices Summary\n- AAPL: Close 110.00 (+10.00%)\n- ZZZ: error fetching prices").Return(nil).Once()

	require.NoError(t, f.svc.RunEOD(context.Background()))
	f.notifier.AssertExpectations(t)
}
