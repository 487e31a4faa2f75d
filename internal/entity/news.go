package entity

import "strings"

// Label is the sentiment assigned to a headline.
type Label string

const (
	LabelGood    Label = "Good"
	LabelBad     Label = "Bad"
	LabelNeutral Label = "Neutral"
)

// Priority ranks how market-moving a headline is. P1 sorts before P2.
type Priority string

const (
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// Action is the directional signal derived for a ticker.
type Action string

const (
	ActionBuy  Action = "Buy"
	ActionSell Action = "Sell"
	ActionHold Action = "Hold"
)

// HeadlineItem is one news mention attributed to a ticker.
type HeadlineItem struct {
	Ticker      string `json:"ticker"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at,omitempty"`
}

// ClassifiedItem is a headline annotated with label, priority and a short rationale.
type ClassifiedItem struct {
	HeadlineItem
	Label    Label    `json:"label"`
	Priority Priority `json:"priority"`
	Why      string   `json:"why"`
}

// TickerDecision is the synthesized trading signal for one ticker.
type TickerDecision struct {
	Ticker     string `json:"ticker"`
	Action     Action `json:"action"`
	Confidence int    `json:"confidence"`
	Rationale  string `json:"rationale"`
}

// SearchQuery is the expanded search for one ticker.
type SearchQuery struct {
	Ticker        string
	Query         string
	DisplayTicker string
}

// ParseLabel maps s onto a Label, defaulting to Neutral.
func ParseLabel(s string) Label {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "good":
		return LabelGood
	case "bad":
		return LabelBad
	default:
		return LabelNeutral
	}
}

// ParsePriority maps s onto a Priority, defaulting to P2.
func ParsePriority(s string) Priority {
	if strings.ToUpper(strings.TrimSpace(s)) == string(PriorityP1) {
		return PriorityP1
	}
	return PriorityP2
}

// ParseAction maps s onto an Action, defaulting to Hold.
func ParseAction(s string) Action {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "buy":
		return ActionBuy
	case "sell":
		return ActionSell
	default:
		return ActionHold
	}
}

// Rank orders priorities: P1 before P2.
func (p Priority) Rank() int {
	if p == PriorityP1 {
		return 0
	}
	return 1
}
