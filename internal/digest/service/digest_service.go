package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang-stock-digest/internal/digest/config"
	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/telegram"
)

// DigestService runs the headline pipeline end to end for a ticker list.
type DigestService interface {
	ResolveTickers(ctx context.Context, chatID string, requested []string) []string
	BuildNewsDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.NewsDigest, error)
	MarkDelivered(ctx context.Context, items []entity.ClassifiedItem)
	BuildSignalDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.SignalDigest, error)
	RecordSignals(ctx context.Context, digest *dto.SignalDigest)
	BuildEODSummary(ctx context.Context, tickers []string) string

	RunIntraday(ctx context.Context) error
	RunSignal(ctx context.Context) error
	RunEOD(ctx context.Context) error
}

type digestService struct {
	cfg           *config.Config
	log           *logger.Logger
	aggregator    Aggregator
	classifier    Classifier
	decider       DecisionSynthesizer
	sentRepo      repository.SentNewsRepository
	watchlistRepo repository.WatchlistRepository
	signalRepo    repository.TickerSignalRepository
	quoteRepo     repository.QuoteRepository
	notifier      telegram.Notifier
}

func NewDigestService(cfg *config.Config, log *logger.Logger,
	aggregator Aggregator,
	classifier Classifier,
	decider DecisionSynthesizer,
	sentRepo repository.SentNewsRepository,
	watchlistRepo repository.WatchlistRepository,
	signalRepo repository.TickerSignalRepository,
	quoteRepo repository.QuoteRepository,
	notifier telegram.Notifier) DigestService {
	return &digestService{
		cfg:           cfg,
		log:           log,
		aggregator:    aggregator,
		classifier:    classifier,
		decider:       decider,
		sentRepo:      sentRepo,
		watchlistRepo: watchlistRepo,
		signalRepo:    signalRepo,
		quoteRepo:     quoteRepo,
		notifier:      notifier,
	}
}

// ResolveTickers picks explicitly requested tickers, then the chat's stored watchlist, then the
// configured watchlist.
func (s *digestService) ResolveTickers(ctx context.Context, chatID string, requested []string) []string {
	if len(requested) > 0 {
		return requested
	}
	stored, err := s.watchlistRepo.ListTickers(ctx, chatID)
	if err != nil {
		s.log.WarnContext(ctx, "Failed to list watchlist, using configured tickers", logger.ErrorField(err), logger.StringField("chat_id", chatID))
	}
	if len(stored) > 0 {
		return stored
	}
	return s.cfg.Tickers()
}

func (s *digestService) BuildNewsDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.NewsDigest, error) {
	digest := &dto.NewsDigest{Tickers: tickers, LookbackHours: lookbackHours}

	items := s.aggregator.Aggregate(ctx, tickers, time.Duration(lookbackHours)*time.Hour)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to aggregate headlines: %w", err)
	}

	fresh := make([]entity.HeadlineItem, 0, len(items))
	for _, it := range items {
		sent, err := s.sentRepo.HasSent(ctx, it.URL)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to check sent news", logger.ErrorField(err), logger.StringField("url", it.URL))
		}
		if !sent {
			fresh = append(fresh, it)
		}
	}

	s.log.InfoContext(ctx, "Aggregated headlines",
		logger.IntField("tickers", len(tickers)),
		logger.IntField("items", len(items)),
		logger.IntField("fresh", len(fresh)),
	)

	if len(fresh) == 0 {
		digest.Text = telegram.NoItemsMessage(lookbackHours)
		return digest, nil
	}

	digest.Items = s.classifier.Classify(ctx, fresh)
	digest.Text = telegram.FormatNewsDigest(digest.Items, lookbackHours)
	return digest, nil
}

// MarkDelivered records every delivered item so later windows skip it.
func (s *digestService) MarkDelivered(ctx context.Context, items []entity.ClassifiedItem) {
	for _, it := range items {
		if strings.TrimSpace(it.URL) == "" {
			continue
		}
		if err := s.sentRepo.MarkSent(ctx, it.Ticker, it.URL, it.Title); err != nil {
			s.log.WarnContext(ctx, "Failed to mark news as sent", logger.ErrorField(err), logger.StringField("url", it.URL))
		}
	}
}

func (s *digestService) BuildSignalDigest(ctx context.Context, tickers []string, lookbackHours int) (*dto.SignalDigest, error) {
	items := s.aggregator.Aggregate(ctx, tickers, time.Duration(lookbackHours)*time.Hour)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("failed to aggregate headlines: %w", err)
	}

	decisions := s.decider.Decide(ctx, items)
	return &dto.SignalDigest{
		Tickers:       tickers,
		LookbackHours: lookbackHours,
		Text:          telegram.FormatDecisionDigest(decisions, lookbackHours),
		Decisions:     decisions,
		Headlines:     items,
	}, nil
}

// RecordSignals stores delivered decisions with the headlines behind them.
func (s *digestService) RecordSignals(ctx context.Context, digest *dto.SignalDigest) {
	if digest == nil || len(digest.Decisions) == 0 {
		return
	}
	headlines := make(map[string][]entity.HeadlineItem)
	for _, it := range digest.Headlines {
		t := strings.ToUpper(it.Ticker)
		headlines[t] = append(headlines[t], it)
	}
	if err := s.signalRepo.CreateBatch(ctx, digest.Decisions, headlines); err != nil {
		s.log.WarnContext(ctx, "Failed to store ticker signals", logger.ErrorField(err))
	}
}

func (s *digestService) BuildEODSummary(ctx context.Context, tickers []string) string {
	quotes := make([]entity.PriceQuote, 0, len(tickers))
	for _, t := range tickers {
		q, err := s.quoteRepo.GetQuote(ctx, t)
		if err != nil {
			s.log.WarnContext(ctx, "Failed to fetch quote", logger.ErrorField(err), logger.StringField("ticker", t))
			quotes = append(quotes, entity.PriceQuote{Ticker: t})
			continue
		}
		q.Ticker = t
		quotes = append(quotes, *q)
	}
	return telegram.FormatEODSummary(quotes)
}

func (s *digestService) ownerChatID() string {
	return strconv.FormatInt(s.cfg.Telegram.ChatID, 10)
}

// RunIntraday sends the news digest for the owner's tickers and marks the items as sent.
func (s *digestService) RunIntraday(ctx context.Context) error {
	tickers := s.ResolveTickers(ctx, s.ownerChatID(), nil)
	digest, err := s.BuildNewsDigest(ctx, tickers, s.cfg.Digest.LookbackHours)
	if err != nil {
		return err
	}
	if err := s.notifier.SendMessage(digest.Text); err != nil {
		return err
	}
	s.MarkDelivered(ctx, digest.Items)
	s.log.InfoContext(ctx, "Intraday digest sent", logger.IntField("items", len(digest.Items)))
	return nil
}

func (s *digestService) RunSignal(ctx context.Context) error {
	tickers := s.ResolveTickers(ctx, s.ownerChatID(), nil)
	digest, err := s.BuildSignalDigest(ctx, tickers, s.cfg.Digest.LookbackHours)
	if err != nil {
		return err
	}
	if err := s.notifier.SendMessage(digest.Text); err != nil {
		return err
	}
	s.RecordSignals(ctx, digest)
	s.log.InfoContext(ctx, "Signal digest sent", logger.IntField("decisions", len(digest.Decisions)))
	return nil
}

func (s *digestService) RunEOD(ctx context.Context) error {
	tickers := s.ResolveTickers(ctx, s.ownerChatID(), nil)
	if err := s.notifier.SendMessage(s.BuildEODSummary(ctx, tickers)); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "EOD summary sent", logger.IntField("tickers", len(tickers)))
	return nil
}
