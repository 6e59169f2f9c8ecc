package interp

import "github.com/wch1125/proviso-core/internal/model"

// ReserveDrawAttempt records a shortfall routed to a reserve.
type ReserveDrawAttempt struct {
	Reserve string  `json:"reserve"`
	Amount  float64 `json:"amount"`
	Success bool    `json:"success"`
	Reason  string  `json:"reason,omitempty"`
}

// TierResult is one executed tier.
type TierResult struct {
	Priority      int                 `json:"priority"`
	Name          string              `json:"name"`
	Due           float64             `json:"due"`
	Paid          float64             `json:"paid"`
	Shortfall     float64             `json:"shortfall"`
	Skipped       bool                `json:"skipped,omitempty"`
	ReserveFunded string              `json:"reserve_funded,omitempty"`
	ReserveDraw   *ReserveDrawAttempt `json:"reserve_draw,omitempty"`
}

// WaterfallResult is one full execution pass.
type WaterfallResult struct {
	Success   bool         `json:"success"`
	Reason    string       `json:"reason,omitempty"`
	Name      string       `json:"name"`
	Revenue   float64      `json:"revenue"`
	Tiers     []TierResult `json:"tiers,omitempty"`
	TotalPaid float64      `json:"total_paid"`
	Remaining float64      `json:"remaining"`
	Warnings  []Warning    `json:"warnings,omitempty"`
}

// ExecuteWaterfall runs the named waterfall's tiers strictly in ascending
// declared order against the given revenue. A tier that would both fund and
// draw the same reserve is rejected before any ledger moves, so failure is
// all-or-nothing. Shortfalls are recorded per tier; a configured reserve draw
// that fails leaves that tier short rather than aborting the pass.
func (i *Interpreter) ExecuteWaterfall(name string, revenue float64) WaterfallResult {
	if !i.beginMutation() {
		return WaterfallResult{Name: name, Reason: ReasonConcurrentMutation}
	}
	defer i.endMutation()

	stmt := i.prog.Lookup(model.KindWaterfall, name)
	if stmt == nil {
		return WaterfallResult{Name: name, Reason: ReasonUnknownElement}
	}

	// Guard invariants, checked before any ledger moves: no tier may fund and
	// draw the same reserve in one pass, and a funding target must be a
	// declared reserve. Shortfall draws against unknown reserves are recorded
	// per tier instead, since draw failure never aborts the pass.
	for _, tier := range stmt.Waterfall.Tiers {
		if tier.FundReserve != "" && tier.FundReserve == tier.DrawShortfallFrom {
			return WaterfallResult{Name: name, Reason: ReasonReserveSelfRef}
		}
		if tier.FundReserve != "" {
			if _, ok := i.reserves[tier.FundReserve]; !ok {
				return WaterfallResult{Name: name, Reason: ReasonUnknownElement}
			}
		}
	}

	res := WaterfallResult{Success: true, Name: name, Revenue: revenue}
	remaining := revenue

	for _, tier := range stmt.Waterfall.Tiers {
		tr := TierResult{Priority: tier.Priority, Name: tier.Name}

		if tier.Condition != nil {
			p := i.newPass()
			cv, err := p.eval(tier.Condition)
			res.Warnings = append(res.Warnings, p.warnings...)
			if err != nil || !truthy(cv) {
				tr.Skipped = true
				res.Tiers = append(res.Tiers, tr)
				continue
			}
		}

		var due float64
		if tier.Remainder {
			due = remaining
		} else {
			p := i.newPass()
			dv, err := p.eval(tier.Amount)
			res.Warnings = append(res.Warnings, p.warnings...)
			if err != nil {
				res.Success = false
				res.Reason = err.Error()
				res.Tiers = append(res.Tiers, tr)
				return res
			}
			due, err = asNumber(dv, tier.Amount)
			if err != nil {
				res.Success = false
				res.Reason = err.Error()
				res.Tiers = append(res.Tiers, tr)
				return res
			}
		}

		paid := due
		if paid > remaining {
			paid = remaining
		}
		shortfall := due - paid

		if shortfall > 0 && tier.DrawShortfallFrom != "" {
			draw := i.drawReserveLocked(tier.DrawShortfallFrom, shortfall)
			attempt := &ReserveDrawAttempt{
				Reserve: tier.DrawShortfallFrom,
				Amount:  shortfall,
				Success: draw.Success,
				Reason:  draw.Reason,
			}
			tr.ReserveDraw = attempt
			if draw.Success {
				paid += shortfall
				shortfall = 0
			}
		}

		if tier.FundReserve != "" && paid > 0 {
			if fund := i.fundReserveLocked(tier.FundReserve, paid); fund.Success {
				tr.ReserveFunded = tier.FundReserve
			}
		}

		tr.Due = due
		tr.Paid = paid
		tr.Shortfall = shortfall
		remaining -= cashSpent(paid, tr.ReserveDraw)
		if remaining < 0 {
			remaining = 0
		}
		res.TotalPaid += paid
		res.Tiers = append(res.Tiers, tr)
	}

	res.Remaining = remaining
	return res
}

// cashSpent is the portion of paid that came out of the waterfall's own cash
// rather than a reserve draw.
func cashSpent(paid float64, draw *ReserveDrawAttempt) float64 {
	if draw != nil && draw.Success {
		return paid - draw.Amount
	}
	return paid
}
