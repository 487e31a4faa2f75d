package repository

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang-stock-digest/internal/digest/dto"
	"golang-stock-digest/internal/entity"
)

var classifyInstructions = strings.Join([]string{
	"You are an equity news triage assistant.",
	"Only use the provided fields. No external knowledge.",
	"Return ONLY a JSON array. No extra text.",
	"Schema keys: ticker, label (Good/Bad/Neutral), why (<=140 chars), priority (P1/P2), title, source, url.",
	"P1 if earnings beat/miss, guidance change, recall, investigation, M&A, or explicit >5% price move. Otherwise P2.",
}, "\n")

var decisionInstructions = strings.Join([]string{
	"You are an equity news analyst.",
	"Analyze the directional signal implied by the provided headlines ONLY (no external knowledge).",
	"Weigh P1-style events (earnings beat/miss, guidance changes, recalls, investigations, M&A, explicit >5% move) more heavily.",
	"Consider recency and repeated themes. If signals conflict, prefer Hold with lower confidence.",
	"rationale MUST name the concrete driver behind the chosen action and the confidence level, e.g. 'beat and raised FY guide; multiple bullish P1 items -> higher confidence'. Keep it <=140 chars.",
	"Output ONLY a JSON array of {ticker, action, confidence, rationale} with action in {Buy,Sell,Hold}, confidence an integer 0..100.",
	"Do not expose your reasoning.",
}, "\n")

// BuildClassifyPrompt renders the triage request for a batch of headlines.
func BuildClassifyPrompt(items []entity.HeadlineItem) (string, error) {
	payload := dto.ClassifyPrompt{
		Instructions: classifyInstructions,
		Items:        make([]dto.ClassifyPromptItem, 0, len(items)),
	}
	for _, it := range items {
		payload.Items = append(payload.Items, dto.ClassifyPromptItem{
			Ticker: strings.ToUpper(it.Ticker),
			Title:  it.Title,
			Source: it.Source,
			URL:    it.URL,
		})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal classify prompt: %w", err)
	}
	return "Task: Summarize and classify each headline. Output only JSON array.\n" + string(body), nil
}

// BuildDecisionPrompt renders the decision request for one ticker group.
func BuildDecisionPrompt(ticker string, items []entity.HeadlineItem) (string, error) {
	group := dto.DecisionPromptItem{
		Ticker:    ticker,
		Headlines: make([]dto.DecisionHeadline, 0, len(items)),
	}
	for _, it := range items {
		group.Headlines = append(group.Headlines, dto.DecisionHeadline{Title: it.Title, Source: it.Source})
	}
	payload := dto.DecisionPrompt{
		Instructions: decisionInstructions,
		Items:        []dto.DecisionPromptItem{group},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal decision prompt: %w", err)
	}
	return "Task: Recommend Buy/Sell/Hold with confidence per ticker. Output JSON only.\n" + string(body), nil
}
