package http

import (
	"net/http"
	"strconv"
	"strings"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/digest/service"
	"golang-stock-digest/pkg/common"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"

	"github.com/labstack/echo/v4"
)

const defaultHistoryLimit = 20

// DigestHandler serves digests over HTTP. Nothing is delivered or marked as sent.
type DigestHandler struct {
	digestService service.DigestService
	signalRepo    repository.TickerSignalRepository
	cfg           *config.Config
	logger        *logger.Logger
}

// NewDigestHandler creates a new DigestHandler.
func NewDigestHandler(digestService service.DigestService, signalRepo repository.TickerSignalRepository, cfg *config.Config, logger *logger.Logger) *DigestHandler {
	return &DigestHandler{digestService: digestService, signalRepo: signalRepo, cfg: cfg, logger: logger}
}

// RegisterRoutes registers the digest routes to the Echo group.
func (h *DigestHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/digest", h.GetNewsDigest)
	g.GET("/signals", h.GetSignalDigest)
	g.GET("/signals/history", h.GetSignalHistory)
}

// Healthz reports liveness.
func Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}

// GetNewsDigest godoc
// @Summary Build a news digest
// @Description Aggregates and classifies recent headlines. Nothing is delivered or marked as sent.
// @Tags digest
// @Produce plain
// @Param   tickers query string false "Comma separated tickers, defaults to the watchlist"
// @Param   hours   query int    false "Lookback window in hours, at most 8760"
// @Success 200 {string} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /digest [get]
func (h *DigestHandler) GetNewsDigest(c echo.Context) error {
	ctx := c.Request().Context()
	hours, ok := h.parseHours(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid hours"})
	}
	tickers := h.tickers(c)

	digest, err := h.digestService.BuildNewsDigest(ctx, tickers, hours)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to build news digest", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to build news digest"})
	}
	return c.String(http.StatusOK, digest.Text)
}

// GetSignalDigest godoc
// @Summary Build a signal digest
// @Description Synthesizes one Buy/Sell/Hold decision per ticker. Nothing is delivered or recorded.
// @Tags signals
// @Produce plain
// @Param   tickers query string false "Comma separated tickers, defaults to the watchlist"
// @Param   hours   query int    false "Lookback window in hours, at most 8760"
// @Success 200 {string} string
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /signals [get]
func (h *DigestHandler) GetSignalDigest(c echo.Context) error {
	ctx := c.Request().Context()
	hours, ok := h.parseHours(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid hours"})
	}
	tickers := h.tickers(c)

	digest, err := h.digestService.BuildSignalDigest(ctx, tickers, hours)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to build signal digest", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to build signal digest"})
	}
	return c.String(http.StatusOK, digest.Text)
}

// GetSignalHistory godoc
// @Summary List recorded signals
// @Description Returns the latest delivered signals, newest first, optionally for one ticker.
// @Tags signals
// @Produce json
// @Param   ticker query string false "Ticker filter"
// @Param   limit  query int    false "Maximum number of rows" default(20)
// @Success 200 {array} entity.TickerSignal
// @Failure 400 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /signals/history [get]
func (h *DigestHandler) GetSignalHistory(c echo.Context) error {
	limit := defaultHistoryLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid limit"})
		}
		limit = n
	}
	ticker := strings.ToUpper(strings.TrimSpace(c.QueryParam("ticker")))

	signals, err := h.signalRepo.FindLatest(c.Request().Context(), ticker, limit)
	if err != nil {
		h.logger.Error("Failed to get signal history", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to get signal history"})
	}
	return c.JSON(http.StatusOK, signals)
}

func (h *DigestHandler) parseHours(c echo.Context) (int, bool) {
	raw := c.QueryParam("hours")
	if raw == "" {
		return h.cfg.Digest.LookbackHours, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > common.MaxLookbackHours {
		return 0, false
	}
	return n, true
}

func (h *DigestHandler) tickers(c echo.Context) []string {
	chatID := strconv.FormatInt(h.cfg.Telegram.ChatID, 10)
	return h.digestService.ResolveTickers(c.Request().Context(), chatID, utils.ParseTickers(c.QueryParam("tickers")))
}
