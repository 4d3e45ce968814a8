package cli

import (
	"fmt"
	"strings"

	"github.com/avoronov/snapledger/internal/model"
)

// RenderPreview formats a candidate preview as a bordered card.
func RenderPreview(p *model.Preview) string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(LabelStyle.Render(label))
		b.WriteString(value)
		b.WriteByte('\n')
	}

	kind := "Expense"
	if p.IsIncome {
		kind = "Income"
	}

	row("Merchant", p.Merchant)
	row("Category", fmt.Sprintf("%s %s", model.CategoryEmoji(p.Category), p.Category))
	row("Amount", fmt.Sprintf("%.2f (%s)", p.TotalAmount, kind))
	if p.Date != "" {
		row("Date", p.Date)
	} else {
		row("Date", SubtleStyle.Render("unknown"))
	}
	if p.Description != "" {
		row("Note", p.Description)
	}
	row("Items", fmt.Sprintf("%d", p.ItemCount))

	card := BoxStyle.Render(strings.TrimRight(b.String(), "\n"))

	if p.Echo != "" {
		echo := SubtleStyle.Render(fmt.Sprintf("I heard: %q", p.Echo))
		return echo + "\n" + card
	}
	return card
}
