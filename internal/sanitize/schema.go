package sanitize

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/avoronov/snapledger/internal/model"
)

// receiptSchema is the structural contract AI output must satisfy before any
// field-level normalization runs. It is deliberately loose where the
// normalization layer recovers (date, positions, reference ids) and strict
// where nothing downstream could recover (required fields, total bounds).
func receiptSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"merchant": map[string]any{"type": []string{"string", "null"}},
			"category": map[string]any{"type": []string{"string", "null"}},
			"total_amount": map[string]any{
				"type":    "number",
				"minimum": 0,
				"maximum": model.MaxTotalAmount,
			},
			"is_income":   map[string]any{"type": []string{"boolean", "null"}},
			"date":        map[string]any{"type": []string{"string", "null"}},
			"description": map[string]any{"type": []string{"string", "null"}},
			// item shape is deliberately unconstrained: filterPositions drops
			// invalid entries one by one instead of failing the receipt
			"positions": map[string]any{
				"type": []string{"array", "null"},
			},
			// any shape; normalized (or reset with a warning) by the parser
			"reference_receipts_ids": map[string]any{},
		},
		"required": []string{"merchant", "category", "total_amount"},
	}
}

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// validateAgainstSchema validates a decoded JSON value against the receipt
// schema, compiling it on first use.
func validateAgainstSchema(v any) error {
	schemaOnce.Do(func() {
		b, err := json.Marshal(receiptSchema())
		if err != nil {
			schemaErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("receipt.json", bytes.NewReader(b)); err != nil {
			schemaErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile("receipt.json")
	})
	if schemaErr != nil {
		return schemaErr
	}
	return compiledSchema.Validate(v)
}
