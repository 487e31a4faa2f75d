package service

import (
	"context"
	"strings"

	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/common"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"
)

const classifyTemperature = 0.2

// Classifier labels headlines with sentiment and priority.
type Classifier interface {
	Classify(ctx context.Context, items []entity.HeadlineItem) []entity.ClassifiedItem
}

type classifier struct {
	llm repository.LLMRepository
	log *logger.Logger
}

// NewClassifier creates a Classifier. Without an enabled LLM every item gets the neutral fallback.
func NewClassifier(llm repository.LLMRepository, log *logger.Logger) Classifier {
	return &classifier{llm: llm, log: log}
}

func (c *classifier) Classify(ctx context.Context, items []entity.HeadlineItem) []entity.ClassifiedItem {
	if len(items) == 0 {
		return nil
	}
	if c.llm == nil || !c.llm.Enabled() {
		return FallbackClassify(items)
	}

	prompt, err := repository.BuildClassifyPrompt(items)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to build classify prompt", logger.ErrorField(err))
		return FallbackClassify(items)
	}

	raw, err := c.llm.GenerateJSON(ctx, prompt, classifyTemperature)
	if err != nil {
		c.log.WarnContext(ctx, "Classification unavailable, using fallback", logger.ErrorField(err), logger.IntField("items", len(items)))
		return FallbackClassify(items)
	}

	entries, err := decodeEntries(raw)
	if err != nil {
		c.log.WarnContext(ctx, "Failed to parse classification, using fallback", logger.ErrorField(err))
		return FallbackClassify(items)
	}

	out := make([]entity.ClassifiedItem, 0, len(entries))
	for _, e := range entries {
		out = append(out, coerceClassified(e))
	}
	return out
}

// FallbackClassify maps every item to Neutral/P2 with the title as the reason.
func FallbackClassify(items []entity.HeadlineItem) []entity.ClassifiedItem {
	out := make([]entity.ClassifiedItem, 0, len(items))
	for _, it := range items {
		it.Ticker = strings.ToUpper(it.Ticker)
		out = append(out, entity.ClassifiedItem{
			HeadlineItem: it,
			Label:        entity.LabelNeutral,
			Priority:     entity.PriorityP2,
			Why:          utils.Truncate(it.Title, common.MaxReasonLength),
		})
	}
	return out
}

func coerceClassified(m map[string]interface{}) entity.ClassifiedItem {
	return entity.ClassifiedItem{
		HeadlineItem: entity.HeadlineItem{
			Ticker: strings.ToUpper(strings.TrimSpace(stringField(m, "ticker"))),
			Title:  stringField(m, "title"),
			Source: stringField(m, "source"),
			URL:    stringField(m, "url"),
		},
		Label:    entity.ParseLabel(stringField(m, "label")),
		Priority: entity.ParsePriority(stringField(m, "priority")),
		Why:      utils.Truncate(stringField(m, "why"), common.MaxReasonLength),
	}
}
