package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
)

var errNoEntries = errors.New("no entries in model response")

// decodeEntries parses model output as a JSON array of objects, or an object holding a
// "results" array. Malformed JSON goes through jsonrepair once before giving up.
func decodeEntries(raw string) ([]map[string]interface{}, error) {
	text := stripCodeFence(raw)
	if text == "" {
		return nil, errNoEntries
	}

	var data interface{}
	if err := json.Unmarshal([]byte(text), &data); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(text)
		if rerr != nil {
			return nil, fmt.Errorf("failed to repair model output: %w", rerr)
		}
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, fmt.Errorf("failed to unmarshal model output: %w", err)
		}
	}

	var arr []interface{}
	switch v := data.(type) {
	case []interface{}:
		arr = v
	case map[string]interface{}:
		if results, ok := v["results"].([]interface{}); ok {
			arr = results
		}
	}

	entries := make([]map[string]interface{}, 0, len(arr))
	for _, e := range arr {
		if m, ok := e.(map[string]interface{}); ok {
			entries = append(entries, m)
		}
	}
	if len(entries) == 0 {
		return nil, errNoEntries
	}
	return entries, nil
}

// stripCodeFence removes a surrounding markdown code fence such as "```json ... ```".
func stripCodeFence(raw string) string {
	text := strings.TrimSpace(raw)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if len(text) >= 4 && strings.EqualFold(text[:4], "json") {
		text = text[4:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// stringField renders a scalar JSON value as text; missing and null become "".
func stringField(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// confidenceField rounds and clamps to 0..100. Missing, non-numeric and non-finite values give 50.
func confidenceField(v interface{}) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(n), "%")), 64)
		if err != nil {
			return defaultConfidence
		}
		f = parsed
	default:
		return defaultConfidence
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return defaultConfidence
	}
	return int(math.Max(0, math.Min(100, math.Round(f))))
}
