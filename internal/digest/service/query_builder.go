package service

import (
	"context"
	"strings"
	"time"
	"unicode"

	"golang-stock-digest/internal/digest/repository"
	"golang-stock-digest/internal/entity"
	"golang-stock-digest/pkg/logger"
	"golang-stock-digest/pkg/utils"

	"github.com/patrickmn/go-cache"
)

const nameCacheTTL = time.Hour

// QueryBuilder expands a ticker into a search query that also matches company names.
type QueryBuilder interface {
	Build(ctx context.Context, ticker string) entity.SearchQuery
}

type queryBuilder struct {
	symbols  repository.SymbolRepository
	log      *logger.Logger
	maxNames int
	cache    *cache.Cache
}

// NewQueryBuilder creates a QueryBuilder. A nil symbol repository disables name expansion.
func NewQueryBuilder(symbols repository.SymbolRepository, log *logger.Logger, maxNames int) QueryBuilder {
	return &queryBuilder{
		symbols:  symbols,
		log:      log,
		maxNames: maxNames,
		cache:    cache.New(nameCacheTTL, 2*nameCacheTTL),
	}
}

func (b *queryBuilder) Build(ctx context.Context, ticker string) entity.SearchQuery {
	display := strings.ToUpper(strings.TrimSpace(ticker))
	q := entity.SearchQuery{Ticker: display, Query: display, DisplayTicker: display}
	if display == "" || b.symbols == nil || b.maxNames <= 0 {
		return q
	}

	names := b.lookup(ctx, display)
	parts := []string{display}
	seen := map[string]bool{strings.ToLower(display): true}
	for _, n := range names {
		if len(parts)-1 >= b.maxNames {
			break
		}
		clean := sanitizeName(n)
		key := strings.ToLower(clean)
		if clean == "" || seen[key] {
			continue
		}
		seen[key] = true
		parts = append(parts, `"`+clean+`"`)
	}
	q.Query = strings.Join(parts, " OR ")
	return q
}

func (b *queryBuilder) lookup(ctx context.Context, ticker string) []string {
	if cached, ok := b.cache.Get(ticker); ok {
		return cached.([]string)
	}
	names, err := b.symbols.LookupNames(ctx, ticker)
	if err != nil {
		b.log.DebugContext(ctx, "Failed to resolve company names", logger.ErrorField(err), logger.StringField("ticker", ticker))
		return nil
	}
	b.cache.Set(ticker, names, cache.DefaultExpiration)
	return names
}

// sanitizeName keeps letters, digits, spaces, '.', '&' and '-'.
func sanitizeName(s string) string {
	var sb strings.Builder
	for _, r := range s {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '&', r == '-':
			sb.WriteRune(r)
		case unicode.IsSpace(r):
			sb.WriteRune(' ')
		}
	}
	return utils.CollapseSpaces(sb.String())
}
