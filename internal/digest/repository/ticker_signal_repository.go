package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-stock-digest/internal/entity"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TickerSignalRepository keeps a history of delivered ticker decisions.
type TickerSignalRepository interface {
	CreateBatch(ctx context.Context, decisions []entity.TickerDecision, headlines map[string][]entity.HeadlineItem) error
	FindLatest(ctx context.Context, ticker string, limit int) ([]entity.TickerSignal, error)
}

// NewTickerSignalRepository creates a new instance of TickerSignalRepository.
func NewTickerSignalRepository(db *gorm.DB) TickerSignalRepository {
	return &tickerSignalRepository{
		db: db,
	}
}

type tickerSignalRepository struct {
	db *gorm.DB
}

func (r *tickerSignalRepository) CreateBatch(ctx context.Context, decisions []entity.TickerDecision, headlines map[string][]entity.HeadlineItem) error {
	if len(decisions) == 0 {
		return nil
	}
	rows := make([]entity.TickerSignal, 0, len(decisions))
	for _, d := range decisions {
		raw, err := json.Marshal(headlines[d.Ticker])
		if err != nil {
			return fmt.Errorf("failed to marshal headlines for %s: %w", d.Ticker, err)
		}
		rows = append(rows, entity.TickerSignal{
			Ticker:     d.Ticker,
			Action:     string(d.Action),
			Confidence: d.Confidence,
			Rationale:  d.Rationale,
			Headlines:  datatypes.JSON(raw),
		})
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindLatest returns the most recent signals, newest first. An empty ticker matches all.
func (r *tickerSignalRepository) FindLatest(ctx context.Context, ticker string, limit int) ([]entity.TickerSignal, error) {
	var signals []entity.TickerSignal
	q := r.db.WithContext(ctx).Order("created_at DESC")
	if ticker != "" {
		q = q.Where("ticker = ?", ticker)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&signals).Error
	return signals, err
}
