package entity

import (
	"time"

	"gorm.io/datatypes"
)

// TickerSignal is a delivered TickerDecision together with the headlines it was derived from.
type TickerSignal struct {
	ID         int64          `gorm:"primaryKey" json:"id"`
	Ticker     string         `gorm:"not null" json:"ticker"`
	Action     string         `gorm:"not null" json:"action"`
	Confidence int            `json:"confidence"`
	Rationale  string         `json:"rationale"`
	Headlines  datatypes.JSON `gorm:"type:jsonb" json:"headlines"`
	CreatedAt  time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (TickerSignal) TableName() string {
	return "ticker_signals"
}
