package ai

import (
	"fmt"
	"strings"

	"github.com/avoronov/snapledger/internal/model"
)

// receiptSystemPrompt constrains the model to emit exactly one JSON object in
// the shape the validator expects.
func receiptSystemPrompt() string {
	return fmt.Sprintf(`You are a receipt extraction engine. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }.

The object has these fields:
- "merchant": string, the shop or payee name
- "category": string, one of: %s (pick the closest)
- "total_amount": number, the total paid, non-negative
- "is_income": boolean, true only for money received (refund, salary)
- "date": string in "%s" format, or null if the date is unknown
- "description": string, short context if any, or null
- "positions": array of {"description": string, "quantity": string, "category": string, "price": number}, or []
- "reference_receipts_ids": array of integers referencing earlier receipt ids mentioned by the user, or []`,
		strings.Join(model.KnownCategories, ", "), model.DateLayout)
}

func extractFromTextPrompt(text string) string {
	return fmt.Sprintf("Extract the receipt described here:\n\n%s", text)
}

func extractFromImagePrompt(caption string) string {
	if caption == "" {
		return "Extract the receipt shown in this photo."
	}
	return fmt.Sprintf("Extract the receipt shown in this photo. The user added this note: %s", caption)
}

func applyCommentPrompt(originalJSON, comment string) string {
	return fmt.Sprintf(`Here is the receipt extracted so far:

%s

Apply this correction from the user and return the full updated JSON object:

%s`, originalJSON, comment)
}
