// Package parse converts validated extraction JSON into canonical domain
// records. It re-checks what the upstream validator promises (defense in
// depth) and applies field defaults.
package parse

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/avoronov/snapledger/internal/common"
	"github.com/avoronov/snapledger/internal/model"
)

// Receipt builds a candidate receipt for userID from a validated JSON
// document. Missing merchant and category fall back to defaults; a missing or
// out-of-range total is a validation error. Malformed positions are skipped
// with a warning rather than failing the whole receipt.
func Receipt(doc map[string]any, userID int64) (*model.Receipt, error) {
	if doc == nil {
		return nil, common.Validationf("receipt document is empty")
	}
	if userID <= 0 || userID > model.MaxUserID {
		return nil, common.Validationf("user id %d out of range", userID)
	}

	total, ok := number(doc["total_amount"])
	if !ok {
		return nil, common.Validationf("total_amount is missing or not numeric")
	}
	if total < 0 || total > model.MaxTotalAmount {
		return nil, common.Validationf("total_amount %.2f out of range", total)
	}

	r := &model.Receipt{
		Merchant:    stringOr(doc["merchant"], model.DefaultMerchant),
		Category:    stringOr(doc["category"], model.DefaultCategory),
		Date:        stringOr(doc["date"], ""),
		Description: stringOr(doc["description"], ""),
		TotalAmount: total,
		UserID:      userID,
	}
	if b, ok := doc["is_income"].(bool); ok {
		r.IsIncome = b
	}

	r.Positions = positions(doc["positions"])
	r.ReferenceReceiptIDs = referenceIDs(doc["reference_receipts_ids"])

	return r, nil
}

func positions(v any) []model.Position {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	out := make([]model.Position, 0, len(items))
	for i, item := range items {
		pos, ok := item.(map[string]any)
		if !ok {
			slog.Warn("skipping malformed position", "index", i)
			continue
		}

		desc := stringOr(pos["description"], "")
		price, priceOK := number(pos["price"])
		if desc == "" || !priceOK || price < 0 || price > model.MaxPositionPrice {
			slog.Warn("skipping invalid position", "index", i, "description", desc)
			continue
		}

		out = append(out, model.Position{
			Description: desc,
			Quantity:    quantityString(pos["quantity"]),
			Category:    stringOr(pos["category"], model.DefaultCategory),
			Price:       price,
		})
	}
	return out
}

// referenceIDs normalizes any of: absent, single int, single digit-string, or
// a list mixing both, into a slice of positive identifiers. Any other shape
// logs a warning and resets to empty.
func referenceIDs(v any) []int64 {
	switch t := v.(type) {
	case nil:
		return []int64{}
	case float64:
		if id, ok := positiveID(t); ok {
			return []int64{id}
		}
	case string:
		if id, err := parseID(t); err == nil {
			return []int64{id}
		}
	case []any:
		out := make([]int64, 0, len(t))
		for _, item := range t {
			switch n := item.(type) {
			case float64:
				if id, ok := positiveID(n); ok {
					out = append(out, id)
					continue
				}
			case string:
				if id, err := parseID(n); err == nil {
					out = append(out, id)
					continue
				}
			}
			slog.Warn("dropping unparseable reference receipt id", "value", item)
		}
		return out
	}

	slog.Warn("resetting reference_receipts_ids of unexpected shape", "type", fmt.Sprintf("%T", v))
	return []int64{}
}

func positiveID(f float64) (int64, bool) {
	id := int64(f)
	if float64(id) != f || id <= 0 {
		return 0, false
	}
	return id, true
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, err
	}
	if id <= 0 {
		return 0, fmt.Errorf("non-positive id %d", id)
	}
	return id, nil
}

func stringOr(v any, fallback string) string {
	if s, ok := v.(string); ok {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
	}
	return fallback
}

// quantityString coerces whatever the model produced for a quantity into a
// display string. "2", 2 and 2.5 all legitimately occur.
func quantityString(v any) string {
	switch t := v.(type) {
	case string:
		return sanitizedQuantity(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func sanitizedQuantity(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 32 {
		s = s[:32]
	}
	return s
}

func number(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
