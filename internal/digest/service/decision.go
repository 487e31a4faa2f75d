package service

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"

	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/common"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"
)

const (
	decisionTemperature = 0.1
	defaultConfidence   = 50
)

// Heuristic confidence tuning.
const (
	heuristicBase        = 40.0
	heuristicCountWeight = 10.0
	heuristicCountCap    = 90.0
	heuristicScoreWeight = 3.0
	heuristicScoreCap    = 10.0
	heuristicMin         = 10.0
	heuristicMax         = 95.0
)

var boilerplateRationale = regexp.MustCompile(`(?i)generic|no significant|unclear|mixed headlines`)

// DecisionSynthesizer derives one Buy/Sell/Hold decision per ticker from its headlines.
type DecisionSynthesizer interface {
	Decide(ctx context.Context, items []entity.HeadlineItem) []entity.TickerDecision
}

type decisionSynthesizer struct {
	llm repository.LLMRepository
	log *logger.Logger
}

// NewDecisionSynthesizer creates a DecisionSynthesizer. Without an enabled LLM the scoring
// heuristic is used.
func NewDecisionSynthesizer(llm repository.LLMRepository, log *logger.Logger) DecisionSynthesizer {
	return &decisionSynthesizer{llm: llm, log: log}
}

type tickerGroup struct {
	ticker string
	items  []entity.HeadlineItem
}

func (s *decisionSynthesizer) Decide(ctx context.Context, items []entity.HeadlineItem) []entity.TickerDecision {
	groups := groupByTicker(items)
	if len(groups) == 0 {
		return nil
	}
	if s.llm == nil || !s.llm.Enabled() {
		return s.heuristic(groups)
	}

	decided := make(map[string]entity.TickerDecision, len(groups))
	for _, g := range groups {
		got, err := s.decideGroup(ctx, g)
		if err != nil {
			s.log.WarnContext(ctx, "Decision unavailable, using heuristic for all tickers", logger.ErrorField(err), logger.StringField("ticker", g.ticker))
			return s.heuristic(groups)
		}
		for _, d := range got {
			if _, dup := decided[d.Ticker]; !dup {
				decided[d.Ticker] = d
			}
		}
	}
	if len(decided) == 0 {
		s.log.WarnContext(ctx, "Model returned no usable decisions, using heuristic")
		return s.heuristic(groups)
	}

	out := make([]entity.TickerDecision, 0, len(groups))
	for _, g := range groups {
		if d, ok := decided[g.ticker]; ok {
			out = append(out, d)
			continue
		}
		// the model skipped this ticker; keep one decision per ticker
		out = append(out, HeuristicDecisions(FallbackClassify(g.items))...)
	}
	return out
}

func (s *decisionSynthesizer) decideGroup(ctx context.Context, g tickerGroup) ([]entity.TickerDecision, error) {
	prompt, err := repository.BuildDecisionPrompt(g.ticker, g.items)
	if err != nil {
		return nil, err
	}
	raw, err := s.llm.GenerateJSON(ctx, prompt, decisionTemperature)
	if err != nil {
		return nil, fmt.Errorf("failed to generate decision: %w", err)
	}
	entries, err := decodeEntries(raw)
	if err != nil {
		return nil, err
	}

	var out []entity.TickerDecision
	for _, e := range entries {
		ticker := strings.ToUpper(strings.TrimSpace(stringField(e, "ticker")))
		if ticker == "" {
			ticker = g.ticker
		}
		if ticker != g.ticker {
			continue
		}
		out = append(out, entity.TickerDecision{
			Ticker:     ticker,
			Action:     entity.ParseAction(stringField(e, "action")),
			Confidence: confidenceField(e["confidence"]),
			Rationale:  coerceRationale(stringField(e, "rationale"), g.items),
		})
	}
	return out, nil
}

func (s *decisionSynthesizer) heuristic(groups []tickerGroup) []entity.TickerDecision {
	var items []entity.HeadlineItem
	for _, g := range groups {
		items = append(items, g.items...)
	}
	return HeuristicDecisions(FallbackClassify(items))
}

// coerceRationale replaces empty or boilerplate text with the lead headline and bounds the length.
func coerceRationale(rationale string, items []entity.HeadlineItem) string {
	rationale = strings.TrimSpace(rationale)
	if rationale == "" || boilerplateRationale.MatchString(rationale) {
		lead := "news mix"
		if len(items) > 0 && items[0].Title != "" {
			lead = items[0].Title
		}
		rationale = "Key: " + lead
	}
	return utils.Truncate(rationale, common.MaxReasonLength)
}

// HeuristicDecisions scores classified items per ticker: Good adds and Bad subtracts 2 for P1
// and 1 for P2. Tickers keep their first-seen order.
func HeuristicDecisions(items []entity.ClassifiedItem) []entity.TickerDecision {
	var order []string
	byTicker := make(map[string][]entity.ClassifiedItem)
	for _, it := range items {
		t := strings.ToUpper(strings.TrimSpace(it.Ticker))
		if t == "" {
			continue
		}
		if _, ok := byTicker[t]; !ok {
			order = append(order, t)
		}
		byTicker[t] = append(byTicker[t], it)
	}

	out := make([]entity.TickerDecision, 0, len(order))
	for _, t := range order {
		score, good, bad := 0, 0, 0
		for _, it := range byTicker[t] {
			weight := 1
			if it.Priority == entity.PriorityP1 {
				weight = 2
			}
			switch it.Label {
			case entity.LabelGood:
				score += weight
				good++
			case entity.LabelBad:
				score -= weight
				bad++
			}
		}

		action := entity.ActionHold
		if score > 0 {
			action = entity.ActionBuy
		} else if score < 0 {
			action = entity.ActionSell
		}

		rationale := "Mixed/low-signal headlines in window"
		if good > 0 || bad > 0 {
			rationale = fmt.Sprintf("Net %d good vs %d bad (P1 weighted)", good, bad)
		}

		out = append(out, entity.TickerDecision{
			Ticker:     t,
			Action:     action,
			Confidence: heuristicConfidence(len(byTicker[t]), score),
			Rationale:  rationale,
		})
	}
	return out
}

func heuristicConfidence(n, score int) int {
	count := math.Min(heuristicCountCap, heuristicBase+heuristicCountWeight*math.Log10(math.Max(1, float64(n))))
	strength := math.Min(heuristicScoreCap, math.Abs(float64(score))*heuristicScoreWeight)
	return int(math.Round(math.Max(heuristicMin, math.Min(heuristicMax, count+strength))))
}

func groupByTicker(items []entity.HeadlineItem) []tickerGroup {
	var groups []tickerGroup
	index := make(map[string]int)
	for _, it := range items {
		t := strings.ToUpper(strings.TrimSpace(it.Ticker))
		if t == "" {
			continue
		}
		it.Ticker = t
		i, ok := index[t]
		if !ok {
			i = len(groups)
			index[t] = i
			groups = append(groups, tickerGroup{ticker: t})
		}
		groups[i].items = append(groups[i].items, it)
	}
	return groups
}
