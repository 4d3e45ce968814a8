package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/avoronov/snapledger/internal/model"
)

func TestRenderPreview(t *testing.T) {
	receipt := &model.Receipt{
		Merchant:    "Corner Deli",
		Category:    "food",
		Date:        "15 Mar 2026",
		Description: "lunch",
		TotalAmount: 14.5,
		Positions: []model.Position{
			{Description: "sandwich", Price: 9.5},
			{Description: "coffee", Price: 5},
		},
	}

	preview := model.NewPreview(receipt, "tok-1", "")
	out := RenderPreview(&preview)

	assert.Contains(t, out, "Corner Deli")
	assert.Contains(t, out, "14.50 (Expense)")
	assert.Contains(t, out, "15 Mar 2026")
	assert.Contains(t, out, "lunch")
	assert.Contains(t, out, "2")
	assert.NotContains(t, out, "I heard:")
}

func TestRenderPreview_IncomeWithEcho(t *testing.T) {
	receipt := &model.Receipt{
		Merchant:    "Acme Payroll",
		Category:    "salary",
		TotalAmount: 2500,
		IsIncome:    true,
	}

	preview := model.NewPreview(receipt, "tok-2", "got paid today")
	out := RenderPreview(&preview)

	assert.Contains(t, out, "2500.00 (Income)")
	assert.Contains(t, out, `I heard: "got paid today"`)
	assert.Contains(t, out, "unknown")
}
