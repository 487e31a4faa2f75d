package entity

import "time"

// Watchlist is one ticker tracked for a chat.
type Watchlist struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ChatID    string    `gorm:"not null;uniqueIndex:idx_watchlists_chat_ticker" json:"chat_id"`
	Ticker    string    `gorm:"not null;uniqueIndex:idx_watchlists_chat_ticker" json:"ticker"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Watchlist) TableName() string {
	return "watchlists"
}
