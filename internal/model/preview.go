package model

// Preview is what the transport layer shows the user for confirmation. The
// Token binds the rendered Approve/Reject actions to the exact candidate the
// preview was generated for.
type Preview struct {
	Merchant    string
	Category    string
	Date        string // empty means "no date"
	Description string
	Echo        string // optional echo of the user's own input, e.g. a voice transcript
	Token       string
	TotalAmount float64
	ItemCount   int
	IsIncome    bool
}

// NewPreview builds a preview for a candidate receipt.
func NewPreview(r *Receipt, token, echo string) Preview {
	return Preview{
		Merchant:    r.Merchant,
		Category:    r.Category,
		Date:        r.Date,
		Description: r.Description,
		Echo:        echo,
		Token:       token,
		TotalAmount: r.TotalAmount,
		ItemCount:   len(r.Positions),
		IsIncome:    r.IsIncome,
	}
}
