package repository

import (
	"context"

	"golang-stock-digest/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WatchlistRepository stores the tickers each chat tracks.
type WatchlistRepository interface {
	ListTickers(ctx context.Context, chatID string) ([]string, error)
	AddTickers(ctx context.Context, chatID string, tickers []string) (int, error)
	RemoveTickers(ctx context.Context, chatID string, tickers []string) (int, error)
}

// NewWatchlistRepository creates a new instance of WatchlistRepository.
func NewWatchlistRepository(db *gorm.DB) WatchlistRepository {
	return &watchlistRepository{
		db: db,
	}
}

type watchlistRepository struct {
	db *gorm.DB
}

func (r *watchlistRepository) ListTickers(ctx context.Context, chatID string) ([]string, error) {
	var tickers []string
	err := r.db.WithContext(ctx).
		Model(&entity.Watchlist{}).
		Where("chat_id = ?", chatID).
		Order("ticker ASC").
		Pluck("ticker", &tickers).Error
	return tickers, err
}

// AddTickers inserts the tickers for the chat and returns how many were new.
func (r *watchlistRepository) AddTickers(ctx context.Context, chatID string, tickers []string) (int, error) {
	if len(tickers) == 0 {
		return 0, nil
	}
	rows := make([]entity.Watchlist, 0, len(tickers))
	for _, t := range tickers {
		rows = append(rows, entity.Watchlist{ChatID: chatID, Ticker: t})
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "chat_id"}, {Name: "ticker"}},
		DoNothing: true,
	}).Create(&rows)
	return int(res.RowsAffected), res.Error
}

func (r *watchlistRepository) RemoveTickers(ctx context.Context, chatID string, tickers []string) (int, error) {
	if len(tickers) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Where("chat_id = ? AND ticker IN ?", chatID, tickers).
		Delete(&entity.Watchlist{})
	return int(res.RowsAffected), res.Error
}
