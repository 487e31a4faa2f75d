package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDigestService struct {
	mock.Mock
}

func (m *mockDigestService) ResolveTickers(ctx context.Context, chatID string, requested []string) []string {
	tickers, _ := m.Called(ctx, chatID, requested).Get(0).([]string)
	return tickers
}

func (m *mockDigestService) BuildNewsDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.NewsDigest, error) {
	args := m.Called(ctx, tickers, lookbackHours)
	d, _ := args.Get(0).(*dto.NewsDigest)
	return d, args.Error(1)
}

func (m *mockDigestService) MarkDelivered(ctx context.Context, items []entity.ClassifiedItem) {
	m.Called(ctx, items)
}

func (m *mockDigestService) BuildSignalDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.SignalDigest, error) {
	args := m.Called(ctx, tickers, lookbackHours)
	d, _ := args.Get(0).(*dto.SignalDigest)
	return d, args.Error(1)
}

func (m *mockDigestService) RecordSignals(ctx context.Context, digest *dto.SignalDigest) {
	m.Called(ctx, digest)
}

func (m *mockDigestService) BuildEODSummary(ctx context.Context, tickers []string) string {
	return m.Called(ctx, tickers).String(0)
}

func (m *mockDigestService) RunIntraday(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockDigestService) RunSignal(ctx context.Context) error   { return m.Called(ctx).Error(0) }
func (m *mockDigestService) RunEOD(ctx context.Context) error      { return m.Called(ctx).Error(0) }

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

func newTestServer(svc *mockDigestService, repo *mockSignalRepo) *echo.Echo {
	cfg := &config.Config{}
	cfg.Digest.LookbackHours = 12
	cfg.Telegram.ChatID = 5

	e := echo.New()
	e.GET("/healthz", Healthz)
	NewDigestHandler(svc, repo, cfg, logger.NewNop()).RegisterRoutes(e.Group("/api/v1"))
	return e
}

func serve(e *echo.Echo, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := serve(newTestServer(new(mockDigestService), new(mockSignalRepo)), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestGetNewsDigest(t *testing.T) {
	svc := new(mockDigestService)
	svc.On("ResolveTickers", mock.Anything, "5", []string{"TSLA", "AAPL"}).Return([]string{"TSLA", "AAPL"})
	svc.On("BuildNewsDigest", mock.Anything, []string{"TSLA", "AAPL"}, 6).Return(&dto.NewsDigest{Text: "News Digest"}, nil)

	rec := serve(newTestServer(svc, new(mockSignalRepo)), "/api/v1/digest?tickers=tsla,aapl&hours=6")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "News Digest", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "text/plain")
	svc.AssertNotCalled(t, "MarkDelivered", mock.Anything, mock.Anything)
}

func TestGetNewsDigest_BadHours(t *testing.T) {
	e := newTestServer(new(mockDigestService), new(mockSignalRepo))
	for _, hours := range []string{"abc", "0", "-3", "8761", "3000000", "99999999999999999999"} {
		rec := serve(e, "/api/v1/digest?hours="+hours)
		assert.Equal(t, http.StatusBadRequest, rec.Code, hours)

		rec = serve(e, "/api/v1/signals?hours="+hours)
		assert.Equal(t, http.StatusBadRequest, rec.Code, hours)
	}
}

func TestGetNewsDigest_MaxHours(t *testing.T) {
	svc := new(mockDigestService)
	svc.On("ResolveTickers", mock.Anything, "5", []string(nil)).Return([]string{"TSLA"})
	svc.On("BuildNewsDigest", mock.Anything, []string{"TSLA"}, 8760).Return(&dto.NewsDigest{Text: "News Digest"}, nil)

	rec := serve(newTestServer(svc, new(mockSignalRepo)), "/api/v1/digest?hours=8760")
	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestGetSignalDigest(t *testing.T) {
	svc := new(mockDigestService)
	svc.On("ResolveTickers", mock.Anything, "5", []string(nil)).Return([]string{"NVDA"})
	svc.On("BuildSignalDigest", mock.Anything, []string{"NVDA"}, 12).Return(&dto.SignalDigest{Text: "Signal Digest (12h window)"}, nil)

	rec := serve(newTestServer(svc, new(mockSignalRepo)), "/api/v1/signals")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Signal Digest (12h window)", rec.Body.String())
	svc.AssertNotCalled(t, "RecordSignals", mock.Anything, mock.Anything)
}

func TestGetSignalDigest_Error(t *testing.T) {
	svc := new(mockDigestService)
	svc.On("ResolveTickers", mock.Anything, "5", []string(nil)).Return([]string{"NVDA"})
	svc.On("BuildSignalDigest", mock.Anything, []string{"NVDA"}, 12).Return(nil, errors.New("canceled"))

	rec := serve(newTestServer(svc, new(mockSignalRepo)), "/api/v1/signals")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetSignalHistory(t *testing.T) {
	repo := new(mockSignalRepo)
	repo.On("FindLatest", mock.Anything, "AAPL", 5).Return([]entity.TickerSignal{{ID: 1, Ticker: "AAPL", Action: "Buy", Confidence: 70}}, nil)

	e := newTestServer(new(mockDigestService), repo)
	rec := serve(e, "/api/v1/signals/history?ticker=aapl&limit=5")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ticker":"AAPL"`)

	rec = serve(e, "/api/v1/signals/history?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
