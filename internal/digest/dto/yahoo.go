package dto

// YahooSearchResponse is the symbol search result used to resolve company names.
type YahooSearchResponse struct {
	Quotes []YahooSearchQuote `json:"quotes"`
}

type YahooSearchQuote struct {
	Symbol    string `json:"symbol"`
	ShortName string `json:"shortname"`
	LongName  string `json:"longname"`
	QuoteType string `json:"quoteType"`
}

// YahooChartResponse is the v8 chart payload; only the meta block is used.
type YahooChartResponse struct {
	Chart YahooChart `json:"chart"`
}

type YahooChart struct {
	Result []YahooChartResult `json:"result"`
	Error  *YahooChartError   `json:"error"`
}

type YahooChartResult struct {
	Meta YahooChartMeta `json:"meta"`
}

type YahooChartMeta struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
	PreviousClose      float64 `json:"previousClose"`
	ChartPreviousClose float64 `json:"chartPreviousClose"`
	PostMarketPrice    float64 `json:"postMarketPrice"`
}

type YahooChartError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}
