package dto

import "golang-stock-digest/internal/entity"

// NewsDigest is a rendered headline digest together with the items it contains.
type NewsDigest struct {
	Tickers       []string                `json:"tickers"`
	LookbackHours int                     `json:"lookback_hours"`
	Text          string                  `json:"text"`
	Items         []entity.ClassifiedItem `json:"items"`
}

// SignalDigest is a rendered decision digest. Headlines are the aggregated items the
// decisions were derived from.
type SignalDigest struct {
	Tickers       []string                `json:"tickers"`
	LookbackHours int                     `json:"lookback_hours"`
	Text          string                  `json:"text"`
	Decisions     []entity.TickerDecision `json:"decisions"`
	Headlines     []entity.HeadlineItem   `json:"-"`
}
