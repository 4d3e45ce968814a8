package sanitize

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/avoronov/snapledger/internal/common"
	"github.com/avoronov/snapledger/internal/model"
)

// Field length caps applied to extraction output.
const (
	maxMerchantLen    = 128
	maxCategoryLen    = 64
	maxDescriptionLen = 512
)

// ValidateReceiptJSON turns raw AI output into a validated, sanitized JSON
// document. It fails with common.ErrMalformedOutput when the output is not a
// JSON object, lacks a required field, or carries an out-of-range total.
// Recoverable defects are repaired instead: a malformed date is dropped to
// null and invalid positions are silently excluded.
func ValidateReceiptJSON(raw string) (map[string]any, error) {
	content := stripMarkdownFences(raw)

	var v any
	if err := json.Unmarshal([]byte(content), &v); err != nil {
		return nil, common.MalformedOutputf("decode: %v", err)
	}

	m, ok := v.(map[string]any)
	if !ok {
		return nil, common.MalformedOutputf("expected a JSON object, got %T", v)
	}

	if err := validateAgainstSchema(v); err != nil {
		return nil, common.MalformedOutputf("schema: %v", err)
	}

	sanitizeStringField(m, "merchant", maxMerchantLen)
	sanitizeStringField(m, "category", maxCategoryLen)
	sanitizeStringField(m, "description", maxDescriptionLen)
	normalizeDate(m)
	m["positions"] = filterPositions(m["positions"])

	return m, nil
}

func sanitizeStringField(m map[string]any, key string, maxLen int) {
	s, ok := m[key].(string)
	if !ok {
		return
	}
	if clean := Text(s, maxLen); clean != "" {
		m[key] = clean
	} else {
		m[key] = nil
	}
}

// normalizeDate drops a date that does not parse in the expected day-month-year
// layout. Receipts without a usable date are fine; rejected ones are not.
func normalizeDate(m map[string]any) {
	s, ok := m["date"].(string)
	if !ok {
		m["date"] = nil
		return
	}
	s = strings.TrimSpace(s)
	if _, err := time.Parse(model.DateLayout, s); err != nil {
		slog.Debug("dropping malformed receipt date", "date", s)
		m["date"] = nil
		return
	}
	m["date"] = s
}

// filterPositions keeps at most model.MaxPositions individually valid line
// items. A valid item has a non-empty description and a numeric price within
// [0, model.MaxPositionPrice]. Invalid items are excluded, never fatal.
func filterPositions(v any) []any {
	items, ok := v.([]any)
	if !ok {
		return []any{}
	}

	kept := make([]any, 0, len(items))
	for _, item := range items {
		pos, ok := item.(map[string]any)
		if !ok {
			continue
		}

		desc, ok := pos["description"].(string)
		if !ok {
			continue
		}
		desc = Text(desc, maxDescriptionLen)
		if desc == "" {
			continue
		}

		price, ok := numericValue(pos["price"])
		if !ok || price < 0 || price > model.MaxPositionPrice {
			continue
		}

		pos["description"] = desc
		pos["price"] = price
		if c, ok := pos["category"].(string); ok {
			pos["category"] = Text(c, maxCategoryLen)
		}

		kept = append(kept, pos)
		if len(kept) == model.MaxPositions {
			break
		}
	}
	return kept
}

// numericValue accepts a JSON number or a numeric string.
func numericValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
