package entity

// PriceQuote is the end-of-day price snapshot for one ticker.
// Available is false when the quote source failed for that ticker.
type PriceQuote struct {
	Ticker        string
	Last          float64
	PreviousClose float64
	PostMarket    float64
	Available     bool
}
