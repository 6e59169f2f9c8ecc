package interp

import "github.com/wch1125/proviso-core/internal/model"

// UsageRecord is one draw against a basket.
type UsageRecord struct {
	Date   string  `json:"date,omitempty"`
	Amount float64 `json:"amount"`
	Memo   string  `json:"memo,omitempty"`
}

// BasketLedgerEntry tracks cumulative usage of one basket. Invariant:
// CumulativeUsed equals the sum of History amounts.
type BasketLedgerEntry struct {
	BasketName     string        `json:"basket_name"`
	CumulativeUsed float64       `json:"cumulative_used"`
	History        []UsageRecord `json:"history"`
}

// BasketResult is the outcome of UseBasket.
type BasketResult struct {
	Success   bool    `json:"success"`
	Reason    string  `json:"reason,omitempty"`
	Available float64 `json:"available"`
}

// BasketStatus is the dashboard view of one basket. Capacity is re-evaluated
// on every query, never cached, because grower and builder capacities move
// with the loaded financial data.
type BasketStatus struct {
	Name       string           `json:"name"`
	BasketType model.BasketKind `json:"basket_type"`
	Capacity   float64          `json:"capacity"`
	Used       float64          `json:"used"`
	Available  float64          `json:"available"`
	Overdrawn  bool             `json:"overdrawn"`
	Warnings   []Warning        `json:"warnings,omitempty"`
	Err        string           `json:"error,omitempty"`
}

// BasketAvailable returns capacity minus cumulative usage; negative means
// over-utilized and is the caller's signal of breach, never clamped here.
func (i *Interpreter) BasketAvailable(name string) (float64, []Warning, error) {
	p := i.newPass()
	v, err := p.basketAvailable(name)
	if err != nil {
		return 0, p.warnings, err
	}
	return v.(float64), p.warnings, nil
}

// BasketUsed returns cumulative usage. The second return is false for an
// unknown basket.
func (i *Interpreter) BasketUsed(name string) (float64, bool) {
	if i.prog.Lookup(model.KindBasket, name) == nil {
		return 0, false
	}
	if entry, ok := i.baskets[name]; ok {
		return entry.CumulativeUsed, true
	}
	return 0, true
}

// UseBasket appends a usage record. It never clamps to capacity: overdraft is
// representable and policy belongs to the caller.
func (i *Interpreter) UseBasket(name string, amount float64, memo string) BasketResult {
	if !i.beginMutation() {
		return BasketResult{Reason: ReasonConcurrentMutation}
	}
	defer i.endMutation()

	if i.prog.Lookup(model.KindBasket, name) == nil {
		return BasketResult{Reason: ReasonUnknownElement}
	}
	if amount < 0 {
		return BasketResult{Reason: ReasonInvalidAmount}
	}
	entry, ok := i.baskets[name]
	if !ok {
		entry = &BasketLedgerEntry{BasketName: name}
		i.baskets[name] = entry
	}
	entry.History = append(entry.History, UsageRecord{Date: i.currentDate, Amount: amount, Memo: memo})
	entry.CumulativeUsed += amount

	avail, _, _ := i.BasketAvailable(name)
	return BasketResult{Success: true, Available: avail}
}

// BasketHistory returns the usage records for a basket.
func (i *Interpreter) BasketHistory(name string) ([]UsageRecord, bool) {
	if i.prog.Lookup(model.KindBasket, name) == nil {
		return nil, false
	}
	if entry, ok := i.baskets[name]; ok {
		return entry.History, true
	}
	return nil, true
}

// AllBasketStatuses reports every basket in declaration order. Evaluation
// failures are carried per basket.
func (i *Interpreter) AllBasketStatuses() []BasketStatus {
	stmts := i.prog.ByKind(model.KindBasket)
	out := make([]BasketStatus, 0, len(stmts))
	for _, s := range stmts {
		st := BasketStatus{Name: s.Name, BasketType: s.Basket.BasketType}
		if entry, ok := i.baskets[s.Name]; ok {
			st.Used = entry.CumulativeUsed
		}
		p := i.newPass()
		cv, err := p.eval(s.Basket.Capacity)
		st.Warnings = p.warnings
		if err != nil {
			st.Err = err.Error()
			out = append(out, st)
			continue
		}
		capN, err := asNumber(cv, s.Basket.Capacity)
		if err != nil {
			st.Err = err.Error()
			out = append(out, st)
			continue
		}
		st.Capacity = capN
		st.Available = capN - st.Used
		st.Overdrawn = st.Available < 0
		out = append(out, st)
	}
	return out
}
