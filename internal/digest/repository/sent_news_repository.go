package repository

import (
	"context"
	"errors"
	"strings"

	"golang-stock-digest/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SentNewsRepository remembers headline URLs that were already delivered.
type SentNewsRepository interface {
	HasSent(ctx context.Context, url string) (bool, error)
	MarkSent(ctx context.Context, ticker, url, title string) error
}

// NewSentNewsRepository creates a new instance of SentNewsRepository.
func NewSentNewsRepository(db *gorm.DB) SentNewsRepository {
	return &sentNewsRepository{
		db: db,
	}
}

type sentNewsRepository struct {
	db *gorm.DB
}

func (r *sentNewsRepository) HasSent(ctx context.Context, url string) (bool, error) {
	if strings.TrimSpace(url) == "" {
		return false, nil
	}
	var row entity.SentNews
	err := r.db.WithContext(ctx).Select("id").Where("url = ?", url).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkSent inserts the URL, ignoring one that is already recorded.
func (r *sentNewsRepository) MarkSent(ctx context.Context, ticker, url, title string) error {
	if strings.TrimSpace(url) == "" {
		return nil
	}
	row := &entity.SentNews{
		Ticker: strings.ToUpper(ticker),
		URL:    url,
		Title:  title,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoNothing: true,
	}).Create(row).Error
}
