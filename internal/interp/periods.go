package interp

import "github.com/wch1125/proviso-core/internal/model"

// PeriodCompliance is the full covenant check set for one reporting period.
type PeriodCompliance struct {
	Period    string           `json:"period"`
	PeriodEnd string           `json:"period_end,omitempty"`
	Covenants []CovenantResult `json:"covenants"`
}

// GetComplianceHistory re-runs every covenant check once per loaded period,
// oldest first. Each period sees only the data up to and including itself, so
// TRAILING windows are historically accurate. This produces real trends, not
// interpolated ones.
func (i *Interpreter) GetComplianceHistory() []PeriodCompliance {
	if i.fin == nil || len(i.fin.Periods) == 0 {
		return nil
	}
	saved := i.fin
	defer func() { i.fin = saved }()

	out := make([]PeriodCompliance, 0, len(saved.Periods))
	for k := range saved.Periods {
		i.fin = &model.FinancialData{Periods: saved.Periods[:k+1]}
		out = append(out, PeriodCompliance{
			Period:    saved.Periods[k].Period,
			PeriodEnd: saved.Periods[k].PeriodEnd,
			Covenants: i.CheckAllCovenants(),
		})
	}
	return out
}
