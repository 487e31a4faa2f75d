package entity

import "time"

// SentNews records a headline URL that has already been delivered.
type SentNews struct {
	ID     uint      `gorm:"primaryKey" json:"id"`
	Ticker string    `gorm:"not null" json:"ticker"`
	URL    string    `gorm:"uniqueIndex;not null" json:"url"`
	Title  string    `json:"title"`
	SentAt time.Time `gorm:"autoCreateTime" json:"sent_at"`
}

func (SentNews) TableName() string {
	return "sent_news"
}
