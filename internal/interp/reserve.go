package interp

import "github.com/wch1125/proviso-core/internal/model"

// ReserveResult is the outcome of a fund or draw. Failures leave the balance
// unchanged.
type ReserveResult struct {
	Success bool    `json:"success"`
	Reason  string  `json:"reason,omitempty"`
	Balance float64 `json:"balance"`
}

// ReserveStatus is the dashboard view of one reserve.
type ReserveStatus struct {
	Name      string  `json:"name"`
	Balance   float64 `json:"balance"`
	Target    float64 `json:"target,omitempty"`
	FundedPct float64 `json:"funded_pct,omitempty"`
	Err       string  `json:"error,omitempty"`
}

// ReserveBalance returns the current balance; false for an unknown reserve.
func (i *Interpreter) ReserveBalance(name string) (float64, bool) {
	bal, ok := i.reserves[name]
	return bal, ok
}

// FundReserve credits the reserve.
func (i *Interpreter) FundReserve(name string, amount float64) ReserveResult {
	if !i.beginMutation() {
		return ReserveResult{Reason: ReasonConcurrentMutation}
	}
	defer i.endMutation()
	return i.fundReserveLocked(name, amount)
}

// DrawReserve debits the reserve. A draw beyond the balance fails whole; the
// balance never goes below zero.
func (i *Interpreter) DrawReserve(name string, amount float64) ReserveResult {
	if !i.beginMutation() {
		return ReserveResult{Reason: ReasonConcurrentMutation}
	}
	defer i.endMutation()
	return i.drawReserveLocked(name, amount)
}

// fundReserveLocked assumes the mutation guard is held (waterfall execution
// funds reserves inside its own guarded pass).
func (i *Interpreter) fundReserveLocked(name string, amount float64) ReserveResult {
	bal, ok := i.reserves[name]
	if !ok {
		return ReserveResult{Reason: ReasonUnknownElement}
	}
	if amount < 0 {
		return ReserveResult{Reason: ReasonInvalidAmount, Balance: bal}
	}
	i.reserves[name] = bal + amount
	return ReserveResult{Success: true, Balance: bal + amount}
}

func (i *Interpreter) drawReserveLocked(name string, amount float64) ReserveResult {
	bal, ok := i.reserves[name]
	if !ok {
		return ReserveResult{Reason: ReasonUnknownElement}
	}
	if amount < 0 {
		return ReserveResult{Reason: ReasonInvalidAmount, Balance: bal}
	}
	if amount > bal {
		return ReserveResult{Reason: ReasonInsufficientReserve, Balance: bal}
	}
	i.reserves[name] = bal - amount
	return ReserveResult{Success: true, Balance: bal - amount}
}

// AllReserveStatuses reports every reserve in declaration order, with the
// funding target (when declared) re-evaluated against current data.
func (i *Interpreter) AllReserveStatuses() []ReserveStatus {
	stmts := i.prog.ByKind(model.KindReserve)
	out := make([]ReserveStatus, 0, len(stmts))
	for _, s := range stmts {
		st := ReserveStatus{Name: s.Name, Balance: i.reserves[s.Name]}
		if s.Reserve.Target != nil {
			p := i.newPass()
			tv, err := p.eval(s.Reserve.Target)
			if err != nil {
				st.Err = err.Error()
				out = append(out, st)
				continue
			}
			if target, err := asNumber(tv, s.Reserve.Target); err == nil && target > 0 {
				st.Target = target
				st.FundedPct = st.Balance / target * 100
			}
		}
		out = append(out, st)
	}
	return out
}
