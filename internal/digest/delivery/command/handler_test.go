package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/telegram"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const owner int64 = 1001

type mockBot struct {
	mock.Mock
}

func (m *mockBot) SendMessage(text string) error {
	return m.Called(text).Error(0)
}

func (m *mockBot) SendMessageTo(chatID int64, text string) error {
	return m.Called(chatID, text).Error(0)
}

func (m *mockBot) GetUpdates(offset int) ([]telegram.Update, error) {
	args := m.Called(offset)
	updates, _ := args.Get(0).([]telegram.Update)
	return updates, args.Error(1)
}

type mockDigest struct {
	mock.Mock
}

func (m *mockDigest) ResolveTickers(ctx context.Context, chatID string, requested []string) []string {
	tickers, _ := m.Called(ctx, chatID, requested).Get(0).([]string)
	return tickers
}

func (m *mockDigest) BuildNewsDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.NewsDigest, error) {
	args := m.Called(ctx, tickers, lookbackHours)
	d, _ := args.Get(0).(*dto.NewsDigest)
	return d, args.Error(1)
}

func (m *mockDigest) MarkDelivered(ctx context.Context, items []entity.ClassifiedItem) {
	m.Called(ctx, items)
}

func (m *mockDigest) BuildSignalDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.SignalDigest, error) {
	args := m.Called(ctx, tickers, lookbackHours)
	d, _ := args.Get(0).(*dto.SignalDigest)
	return d, args.Error(1)
}

func (m *mockDigest) RecordSignals(ctx context.Context, digest *dto.SignalDigest) {
	m.Called(ctx, digest)
}

func (m *mockDigest) BuildEODSummary(ctx context.Context, tickers []string) string {
	return m.Called(ctx, tickers).String(0)
}

func (m *mockDigest) RunIntraday(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockDigest) RunSignal(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *mockDigest) RunEOD(ctx context.Context) error      { return m.Called(ctx).Error(0) }

type mockWatchlist struct {
	mock.Mock
}

func (m *mockWatchlist) ListTickers(ctx context.Context, chatID string) ([]string, error) {
	args := m.Called(ctx, chatID)
	tickers, _ := args.Get(0).([]string)
	return tickers, args.Error(1)
}

func (m *mockWatchlist) AddTickers(ctx context.Context, chatID string, tickers []string) (int, error) {
	args := m.Called(ctx, chatID, tickers)
	return args.Int(0), args.Error(1)
}

func (m *mockWatchlist) RemoveTickers(ctx context.Context, chatID string, tickers []string) (int, error) {
	args := m.Called(ctx, chatID, tickers)
	return args.Int(0), args.Error(1)
}

type fixture struct {
	bot       *mockBot
	digest    *mockDigest
	watchlist *mockWatchlist
	handler   *Handler
}

func newFixture() *fixture {
	cfg := &config.Config{}
	cfg.Telegram.ChatID = owner
	cfg.Digest.LookbackHours = 12
	cfg.Telegram.PollInterval = time.Hour
	f := &fixture{bot: new(mockBot), digest: new(mockDigest), watchlist: new(mockWatchlist)}
	f.handler = NewHandler(cfg, logger.NewNop(), f.bot, f.digest, f.watchlist, repository.NewMemoryCursorRepository())
	return f
}

func TestParseLookback(t *testing.T) {
	tests := []struct {
		token string
		hours int
		ok    bool
	}{
		{"48h", 48, true},
		{"2h", 24, true},
		{"7d", 168, true},
		{"2W", 336, true},
		{"1m", 720, true},
		{"1y", 8760, true},
		{"5y", 8760, true},
		{"99999999999999999999d", 8760, true},
		{"TSLA", 0, false},
		{"7x", 0, false},
		{"d7", 0, false},
	}
	for _, tt := range tests {
		hours, ok := ParseLookback(tt.token)
		assert.Equal(t, tt.ok, ok, tt.token)
		assert.Equal(t, tt.hours, hours, tt.token)
	}
}

func TestParseDigestArgs(t *testing.T) {
	tickers, hours := ParseDigestArgs("", 12)
	assert.Empty(t, tickers)
	assert.Equal(t, 12, hours)

	tickers, hours = ParseDigestArgs("48h", 12)
	assert.Empty(t, tickers)
	assert.Equal(t, 48, hours)

	tickers, hours = ParseDigestArgs("tsla,AAPL 7d", 12)
	assert.Equal(t, []string{"TSLA", "AAPL"}, tickers)
	assert.Equal(t, 168, hours)

	tickers, hours = ParseDigestArgs("2w TSLA,AAPL", 12)
	assert.Equal(t, []string{"TSLA", "AAPL"}, tickers)
	assert.Equal(t, 336, hours)

	tickers, hours = ParseDigestArgs("3d NVDA 2d", 12)
	assert.Equal(t, []string{"3D", "NVDA"}, tickers)
	assert.Equal(t, 48, hours)
}

func TestHandleCommand_Unauthorized(t *testing.T) {
	f := newFixture()
	f.bot.On("SendMessageTo", int64(7), "Unauthorized.").Return(nil).Once()

	f.handler.HandleCommand(context.Background(), 7, "/list")
	f.bot.AssertExpectations(t)
	f.watchlist.AssertNotCalled(t, "ListTickers", mock.Anything, mock.Anything)
}

func TestHandleCommand_Watchlist(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.watchlist.On("AddTickers", ctx, "1001", []string{"TSLA", "AAPL"}).Return(1, nil).Once()
	f.bot.On("SendMessageTo", owner, "Added 1: TSLA, AAPL").Return(nil).Once()
	f.handler.HandleCommand(ctx, owner, "/add tsla, AAPL")

	f.bot.On("SendMessageTo", owner, "Usage: /remove TSLA").Return(nil).Once()
	f.handler.HandleCommand(ctx, owner, "/remove")

	f.watchlist.On("RemoveTickers", ctx, "1001", []string{"TSLA"}).Return(1, nil).Once()
	f.bot.On("SendMessageTo", owner, "Removed 1: TSLA").Return(nil).Once()
	f.handler.HandleCommand(ctx, owner, "/remove@digest_bot TSLA")

	f.watchlist.On("ListTickers", ctx, "1001").Return([]string{"AAPL"}, nil).Once()
	f.bot.On("SendMessageTo", owner, "Watchlist: AAPL").Return(nil).Once()
	f.handler.HandleCommand(ctx, owner, "/list")

	f.watchlist.On("ListTickers", ctx, "1001").Return(nil, nil).Once()
	f.bot.On("SendMessageTo", owner, "Watchlist is empty.").Return(nil).Once()
	f.handler.HandleCommand(ctx, owner, "/list")

	f.bot.AssertExpectations(t)
	f.watchlist.AssertExpectations(t)
}

func TestHandleCommand_News(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.digest.On("ResolveTickers", ctx, "1001", []string{"TSLA"}).Return([]string{"TSLA"}).Once()
	f.digest.On("BuildNewsDigest", ctx, []string{"TSLA"}, 168).Return(&dto.NewsDigest{Text: "News Digest\n..."}, nil).Once()
	f.bot.On("SendMessageTo", owner, "News Digest\n...").Return(nil).Once()

	f.handler.HandleCommand(ctx, owner, "/news TSLA 7d")
	f.digest.AssertExpectations(t)
	f.digest.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything)
	f.bot.AssertExpectations(t)
}

func TestHandleCommand_NewsErrors(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.digest.On("ResolveTickers", ctx, "1001", []string(nil)).Return([]string(nil)).Once()
	f.bot.On("SendMessageTo", owner, "No tickers configured. Use /add or set WATCHLIST.").Return(nil).Once()
	f.handler.HandleCommand(ctx, owner, "/news")

	f.digest.On("ResolveTickers", ctx, "1001", []string(nil)).Return([]string{"AAPL"}).Once()
	f.digest.On("BuildNewsDigest", ctx, []string{"AAPL"}, 12).Return(nil, errors.New("canceled")).Once()
	f.bot.On("SendMessageTo", owner, "Failed to fetch news. Try again later.").Return(nil).Once()
	f.handler.HandleCommand(ctx, owner, "/news")

	f.bot.AssertExpectations(t)
}

func TestHandleCommand_SignalRecordsOnlyWhenDelivered(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	digest := &dto.SignalDigest{Text: "Signal Digest (24h window)"}

	f.digest.On("ResolveTickers", ctx, "1001", []string(nil)).Return([]string{"AAPL"})
	f.digest.On("BuildSignalDigest", ctx, []string{"AAPL"}, 24).Return(digest, nil)
	f.bot.On("SendMessageTo", owner, digest.Text).Return(nil).Once()
	f.digest.On("RecordSignals", ctx, digest).Return().Once()
	f.handler.HandleCommand(ctx, owner, "/signal 1d")

	f.bot.On("SendMessageTo", owner, digest.Text).Return(errors.New("down")).Once()
	f.handler.HandleCommand(ctx, owner, "/signal 1d")

	f.digest.AssertNumberOfCalls(t, "RecordSignals", 1)
}

func TestHandleCommand_Help(t *testing.T) {
	f := newFixture()
	f.bot.On("SendMessageTo", owner, mock.MatchedBy(func(s string) bool {
		return s == msgHelp
	})).Return(nil).Twice()

	f.handler.HandleCommand(context.Background(), owner, "/start")
	f.handler.HandleCommand(context.Background(), owner, "hello")
	f.bot.AssertExpectations(t)
}

func TestPollOnce_AdvancesOffset(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.bot.On("GetUpdates", 10).Return([]telegram.Update{
		{UpdateID: 10, ChatID: owner, Text: "/unknown"},
		{UpdateID: 11},
		{UpdateID: 12, ChatID: owner, Text: ""},
	}, nil).Once()
	f.bot.On("SendMessageTo", owner, msgHelp).Return(nil).Once()

	next, err := f.handler.PollOnce(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 13, next)
	f.bot.AssertExpectations(t)
}

func TestPollOnce_ErrorKeepsOffset(t *testing.T) {
	f := newFixture()
	f.bot.On("GetUpdates", 5).Return(nil, errors.New("network")).Once()

	next, err := f.handler.PollOnce(context.Background(), 5)
	assert.Error(t, err)
	assert.Equal(t, 5, next)
}

func TestRun_StopsOnCancel(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	f.bot.On("GetUpdates", 0).Return([]telegram.Update{{UpdateID: 3}}, nil).Run(func(mock.Arguments) { cancel() }).Once()

	require.NoError(t, f.handler.Run(ctx))
	offset, err := f.handler.cursor.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, offset)
}
