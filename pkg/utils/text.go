package utils

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// Truncate cuts s to at most max characters (runes).
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max])
}

// CleanToValidUTF8 drops invalid UTF-8 sequences.
func CleanToValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "")
}

// CollapseSpaces trims s and folds any whitespace run into a single space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// StripHTML returns the text content of an HTML fragment. Plain text is returned unchanged
// apart from entity decoding.
func StripHTML(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

// CleanHeadline normalizes a headline or publisher name coming from an external feed.
func CleanHeadline(s string) string {
	return CollapseSpaces(StripHTML(CleanToValidUTF8(s)))
}

// ParseTickers splits a comma separated list into upper-cased, trimmed, non-empty symbols.
// Duplicates are kept out; order is preserved.
func ParseTickers(raw string) []string {
	seen := make(map[string]bool)
	var tickers []string
	for _, part := range strings.Split(raw, ",") {
		t := strings.ToUpper(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		tickers = append(tickers, t)
	}
	return tickers
}
