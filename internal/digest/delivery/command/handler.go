package command

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/digest/service"
	"golang-stock-digest/pkg/common"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/telegram"
	"golang-stock-digest/pkg/utils"
)

const (
	minLookbackHours = 24
	maxLookbackHours = common.MaxLookbackHours

	msgUnauthorized = "Unauthorized."
	msgFetchFailed  = "Failed to fetch news. Try again later."
	msgNoTickers    = "No tickers configured. Use /add or set WATCHLIST."
	msgHelp         = "Commands:\n/add TSLA,AAPL\n/remove TSLA\n/list\n/news [TICKERS] [LOOKBACK] (e.g., /news TSLA,AAPL 7d)\n/signal [TICKERS] [LOOKBACK]"
)

var lookbackPattern = regexp.MustCompile(`(?i)^(\d+)([hdwmy])$`)

var unitHours = map[string]int{"h": 1, "d": 24, "w": 24 * 7, "m": 24 * 30, "y": 24 * 365}

// Handler answers owner commands received through Telegram.
type Handler struct {
	cfg       *config.Config
	log       *logger.Logger
	bot       telegram.Bot
	digest    service.DigestService
	watchlist repository.WatchlistRepository
	cursor    repository.CursorRepository
	ownerID   int64
}

// NewHandler creates a new Handler.
func NewHandler(cfg *config.Config, log *logger.Logger, bot telegram.Bot, digest service.DigestService,
	watchlist repository.WatchlistRepository, cursor repository.CursorRepository) *Handler {
	return &Handler{
		cfg:       cfg,
		log:       log,
		bot:       bot,
		digest:    digest,
		watchlist: watchlist,
		cursor:    cursor,
		ownerID:   cfg.Telegram.ChatID,
	}
}

// Run polls for updates until ctx is done. The offset is loaded from and saved to the cursor
// store so a restart does not replay commands.
func (h *Handler) Run(ctx context.Context) error {
	offset, err := h.cursor.Load(ctx)
	if err != nil {
		h.log.WarnContext(ctx, "Failed to load update offset, starting from 0", logger.ErrorField(err))
	}
	h.log.InfoContext(ctx, "Polling Telegram for commands", logger.IntField("offset", offset))

	for {
		next, err := h.PollOnce(ctx, offset)
		wait := h.cfg.Telegram.PollInterval
		if err != nil {
			h.log.WarnContext(ctx, "Failed to poll updates", logger.ErrorField(err))
			wait += h.cfg.Telegram.ErrorBackoff
		} else if next != offset {
			offset = next
			if err := h.cursor.Save(ctx, offset); err != nil {
				h.log.WarnContext(ctx, "Failed to save update offset", logger.ErrorField(err))
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}
	}
}

// PollOnce fetches the updates at offset, handles each message and returns the next offset.
func (h *Handler) PollOnce(ctx context.Context, offset int) (int, error) {
	updates, err := h.bot.GetUpdates(offset)
	if err != nil {
		return offset, err
	}
	next := offset
	for _, u := range updates {
		if u.UpdateID+1 > next {
			next = u.UpdateID + 1
		}
		if u.ChatID == 0 || u.Text == "" {
			continue
		}
		h.HandleCommand(ctx, u.ChatID, u.Text)
	}
	return next, nil
}

// HandleCommand dispatches one command message.
func (h *Handler) HandleCommand(ctx context.Context, chatID int64, text string) {
	if chatID != h.ownerID {
		h.reply(ctx, chatID, msgUnauthorized)
		return
	}

	fields := strings.Fields(text)
	if len(fields) == 0 {
		return
	}
	cmd := strings.ToLower(fields[0])
	if at := strings.Index(cmd, "@"); at > 0 {
		cmd = cmd[:at]
	}
	arg := strings.Join(fields[1:], " ")
	chat := strconv.FormatInt(chatID, 10)

	h.log.InfoContext(ctx, "Handling command", logger.StringField("command", cmd))

	switch cmd {
	case "/add":
		tickers := utils.ParseTickers(arg)
		if len(tickers) == 0 {
			h.reply(ctx, chatID, "Usage: /add TSLA,AAPL")
			return
		}
		n, err := h.watchlist.AddTickers(ctx, chat, tickers)
		if err != nil {
			h.log.ErrorContext(ctx, "Failed to add tickers", logger.ErrorField(err))
			h.reply(ctx, chatID, "Failed to update watchlist. Try again later.")
			return
		}
		h.reply(ctx, chatID, fmt.Sprintf("Added %d: %s", n, strings.Join(tickers, ", ")))
	case "/remove":
		tickers := utils.ParseTickers(arg)
		if len(tickers) == 0 {
			h.reply(ctx, chatID, "Usage: /remove TSLA")
			return
		}
		n, err := h.watchlist.RemoveTickers(ctx, chat, tickers)
		if err != nil {
			h.log.ErrorContext(ctx, "Failed to remove tickers", logger.ErrorField(err))
			h.reply(ctx, chatID, "Failed to update watchlist. Try again later.")
			return
		}
		h.reply(ctx, chatID, fmt.Sprintf("Removed %d: %s", n, strings.Join(tickers, ", ")))
	case "/list":
		list, err := h.watchlist.ListTickers(ctx, chat)
		if err != nil {
			h.log.ErrorContext(ctx, "Failed to list tickers", logger.ErrorField(err))
		}
		if len(list) == 0 {
			h.reply(ctx, chatID, "Watchlist is empty.")
			return
		}
		h.reply(ctx, chatID, "Watchlist: "+strings.Join(list, ", "))
	case "/news":
		requested, hours := ParseDigestArgs(arg, h.cfg.Digest.LookbackHours)
		tickers := h.digest.ResolveTickers(ctx, chat, requested)
		if len(tickers) == 0 {
			h.reply(ctx, chatID, msgNoTickers)
			return
		}
		digest, err := h.digest.BuildNewsDigest(ctx, tickers, hours)
		if err != nil {
			h.log.ErrorContext(ctx, "Failed to build news digest", logger.ErrorField(err))
			h.reply(ctx, chatID, msgFetchFailed)
			return
		}
		h.reply(ctx, chatID, digest.Text)
	case "/signal":
		requested, hours := ParseDigestArgs(arg, h.cfg.Digest.LookbackHours)
		tickers := h.digest.ResolveTickers(ctx, chat, requested)
		if len(tickers) == 0 {
			h.reply(ctx, chatID, msgNoTickers)
			return
		}
		digest, err := h.digest.BuildSignalDigest(ctx, tickers, hours)
		if err != nil {
			h.log.ErrorContext(ctx, "Failed to build signal digest", logger.ErrorField(err))
			h.reply(ctx, chatID, msgFetchFailed)
			return
		}
		if h.reply(ctx, chatID, digest.Text) {
			h.digest.RecordSignals(ctx, digest)
		}
	default:
		h.reply(ctx, chatID, msgHelp)
	}
}

func (h *Handler) reply(ctx context.Context, chatID int64, text string) bool {
	if err := h.bot.SendMessageTo(chatID, text); err != nil {
		h.log.WarnContext(ctx, "Failed to send reply", logger.ErrorField(err))
		return false
	}
	return true
}

// ParseLookback converts a token such as "48h", "7d" or "2w" into hours clamped to one day..one
// year. ok is false when the token is not a lookback.
func ParseLookback(token string) (hours int, ok bool) {
	m := lookbackPattern.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return maxLookbackHours, true
	}
	unit := unitHours[strings.ToLower(m[2])]
	if n > maxLookbackHours {
		n = maxLookbackHours
	}
	hours = n * unit
	if hours < minLookbackHours {
		hours = minLookbackHours
	}
	if hours > maxLookbackHours {
		hours = maxLookbackHours
	}
	return hours, true
}

// ParseDigestArgs splits "/news" style arguments into tickers and a lookback. The lookback token
// may appear anywhere; when several match the last one wins.
func ParseDigestArgs(arg string, defaultHours int) ([]string, int) {
	hours := defaultHours
	parts := strings.Fields(arg)
	for i := len(parts) - 1; i >= 0; i-- {
		if lb, ok := ParseLookback(parts[i]); ok {
			hours = lb
			parts = append(parts[:i], parts[i+1:]...)
			break
		}
	}
	return utils.ParseTickers(strings.Join(parts, ",")), hours
}
