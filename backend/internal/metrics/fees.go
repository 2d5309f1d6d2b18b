package metrics

import "portal_dashboard/backend/internal/shared"

// FeeLine is one normalized per-term fee record.
type FeeLine struct {
	ID      string  `json:"id,omitempty"`
	Term    string  `json:"term,omitempty"`
	Amount  float64 `json:"amount"`
	Paid    float64 `json:"paid"`
	Due     float64 `json:"due"`
	Status  string  `json:"status,omitempty"`
	DueDate string  `json:"dueDate,omitempty"`
}

// FeeView holds fee totals and the per-term breakdown.
type FeeView struct {
	TotalFee  float64   `json:"totalFee"`
	TotalPaid float64   `json:"totalPaid"`
	TotalDue  float64   `json:"totalDue"`
	Records   []FeeLine `json:"records"`
}

// FeeLines normalizes the summary's records. A missing due amount is
// amount minus paid.
func FeeLines(summary *shared.FeeSummary) []FeeLine {
	if summary == nil {
		return []FeeLine{}
	}
	lines := make([]FeeLine, 0, len(summary.Records.Items))
	for _, r := range summary.Records.Items {
		amount := nonNegative(r.Amount.Or(0))
		paid := nonNegative(r.Paid.Or(0))
		due := nonNegative(amount - paid)
		if r.Due.Valid {
			due = nonNegative(r.Due.Value)
		}
		lines = append(lines, FeeLine{
			ID:      r.Key(),
			Term:    r.Term.String(),
			Amount:  amount,
			Paid:    paid,
			Due:     due,
			Status:  r.Status.String(),
			DueDate: r.DueDate.String(),
		})
	}
	return lines
}

// FeeDue picks the due figure: the summary's totalDue, then kpis.feeDue,
// then 0. Per-term dues are not summed into it; they only appear as lines.
func FeeDue(summary *shared.FeeSummary, kpis shared.KPIs) float64 {
	if summary != nil && summary.TotalDue.Valid {
		return nonNegative(summary.TotalDue.Value)
	}
	if due, ok := kpis.Get(shared.KPIFeeDue); ok {
		return nonNegative(due)
	}
	return 0
}

// Fees builds the fee view. A total fee or paid amount the summary does not
// state is summed from its records; the due figure comes from FeeDue.
func Fees(summary *shared.FeeSummary, kpis shared.KPIs) FeeView {
	lines := FeeLines(summary)

	var fee, paid float64
	for _, l := range lines {
		fee += l.Amount
		paid += l.Paid
	}
	if summary != nil && summary.TotalFee.Valid {
		fee = nonNegative(summary.TotalFee.Value)
	}
	if summary != nil && summary.TotalPaid.Valid {
		paid = nonNegative(summary.TotalPaid.Value)
	}

	return FeeView{
		TotalFee:  fee,
		TotalPaid: paid,
		TotalDue:  FeeDue(summary, kpis),
		Records:   lines,
	}
}
