package telegram

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang-stock-digest/internal/entity"

	"github.com/shopspring/decimal"
)

// FormatNewsDigest renders classified items grouped by ticker, P1 items first.
func FormatNewsDigest(items []entity.ClassifiedItem, hours int) string {
	if len(items) == 0 {
		return NoItemsMessage(hours)
	}

	sorted := make([]entity.ClassifiedItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Priority.Rank() != sorted[j].Priority.Rank() {
			return sorted[i].Priority.Rank() < sorted[j].Priority.Rank()
		}
		return sorted[i].Ticker < sorted[j].Ticker
	})

	lines := []string{"News Digest"}
	current := ""
	for i, it := range sorted {
		if i == 0 || it.Ticker != current {
			lines = append(lines, "", fmt.Sprintf("[%s]", it.Ticker))
			current = it.Ticker
		}
		lines = append(lines, fmt.Sprintf("- %s %s: %s (%s)", it.Priority, it.Label, it.Title, it.Source))
		if it.URL != "" {
			lines = append(lines, "  "+it.URL)
		}
		if it.Why != "" {
			lines = append(lines, "  Why: "+it.Why)
		}
	}
	return strings.Join(lines, "\n")
}

// NoItemsMessage is sent when a window has nothing new.
func NoItemsMessage(hours int) string {
	return fmt.Sprintf("No notable new items in the last %dh.", hours)
}

// FormatDecisionDigest renders one line per ticker with a star rating, followed by the reasons.
func FormatDecisionDigest(decisions []entity.TickerDecision, hours int) string {
	if len(decisions) == 0 {
		return fmt.Sprintf("No tickers to analyze in the last %dh.", hours)
	}

	sorted := make([]entity.TickerDecision, len(decisions))
	copy(sorted, decisions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Ticker < sorted[j].Ticker
	})

	lines := []string{fmt.Sprintf("Signal Digest (%dh window)", hours)}
	for _, d := range sorted {
		lines = append(lines, fmt.Sprintf("- %s: %s | %d%% %s", d.Ticker, d.Action, d.Confidence, Stars(d.Confidence)))
	}
	lines = append(lines, "", "Reasons")
	for _, d := range sorted {
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Ticker, d.Rationale))
	}
	return strings.Join(lines, "\n")
}

// Stars renders confidence as five stars, at least one filled.
func Stars(confidence int) string {
	filled := int(math.Round(float64(confidence) / 20))
	if filled < 1 {
		filled = 1
	}
	if filled > 5 {
		filled = 5
	}
	return strings.Repeat("★", filled) + strings.Repeat("☆", 5-filled)
}

// FormatEODSummary renders close and post-market moves. Quotes that are not Available are
// reported as fetch errors.
func FormatEODSummary(quotes []entity.PriceQuote) string {
	lines := []string{"EOD Prices Summary"}
	for _, q := range quotes {
		if !q.Available {
			lines = append(lines, fmt.Sprintf("- %s: error fetching prices", q.Ticker))
			continue
		}
		last := decimal.NewFromFloat(q.Last)
		prev := q.PreviousClose
		if prev == 0 {
			prev = q.Last
		}
		line := fmt.Sprintf("- %s: Close %s (%s)", q.Ticker, last.StringFixed(2), FormatChange(q.Last, prev))
		post := decimal.NewFromFloat(q.PostMarket)
		if !post.IsZero() && post.Sub(last).Abs().GreaterThanOrEqual(decimal.NewFromFloat(0.005)) {
			line += fmt.Sprintf(" | Post: %s (%s)", post.StringFixed(2), FormatChange(q.PostMarket, q.Last))
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// FormatChange renders the percentage move from prev to curr, e.g. "+1.23%".
func FormatChange(curr, prev float64) string {
	base := decimal.NewFromFloat(prev)
	if base.IsZero() {
		return "(n/a)"
	}
	pct := decimal.NewFromFloat(curr).Sub(base).Div(base).Mul(decimal.NewFromInt(100))
	sign := ""
	if !pct.IsNegative() {
		sign = "+"
	}
	return sign + pct.StringFixed(2) + "%"
}
