package interp

import "github.com/wch1125/proviso-core/internal/model"

// CureLedgerEntry tracks consumption of one cure mechanism. The key is the
// mechanism identity, not the covenant name: covenants sharing a named
// mechanism share consumption. Real credit agreements do sometimes share one
// cure right across covenants, so this coupling is load-bearing and is
// regression-tested, not an accident to be fixed.
type CureLedgerEntry struct {
	Mechanism      string  `json:"mechanism"`
	CureType       string  `json:"cure_type"`
	UsesConsumed   int     `json:"uses_consumed"`
	AmountConsumed float64 `json:"amount_consumed"`
}

// CureResult is the outcome of ApplyCure. Failure leaves every ledger
// unchanged.
type CureResult struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
}

// CovenantCureStatus pairs a compliance check with the state of the
// covenant's cure mechanism.
type CovenantCureStatus struct {
	Covenant        CovenantResult `json:"covenant"`
	Mechanism       string         `json:"mechanism,omitempty"`
	CureType        string         `json:"cure_type,omitempty"`
	CureAvailable   bool           `json:"cure_available"`
	UsesConsumed    int            `json:"uses_consumed"`
	UsesRemaining   int            `json:"uses_remaining"`
	AmountConsumed  float64        `json:"amount_consumed"`
	AmountRemaining float64        `json:"amount_remaining"`
}

// CheckCovenantWithCure runs the compliance check and reports whether the
// covenant's cure mechanism still has capacity.
func (i *Interpreter) CheckCovenantWithCure(name string) (CovenantCureStatus, bool) {
	stmt := i.prog.Lookup(model.KindCovenant, name)
	if stmt == nil {
		return CovenantCureStatus{}, false
	}
	out := CovenantCureStatus{Covenant: i.checkCovenantStmt(stmt)}
	cure := stmt.Covenant.Cure
	if cure == nil {
		return out, true
	}
	out.Mechanism = cure.Mechanism
	out.CureType = cure.CureType
	entry := i.cureEntry(cure)
	out.UsesConsumed = entry.UsesConsumed
	out.AmountConsumed = entry.AmountConsumed
	if cure.MaxUses > 0 {
		out.UsesRemaining = cure.MaxUses - entry.UsesConsumed
	}
	if cure.MaxAmount > 0 {
		out.AmountRemaining = cure.MaxAmount - entry.AmountConsumed
	}
	out.CureAvailable = cureHasCapacity(cure, entry, 0)
	return out, true
}

// CanApplyCure reports whether a cure of the given amount would be accepted.
func (i *Interpreter) CanApplyCure(covenantName string, amount float64) (bool, string) {
	stmt := i.prog.Lookup(model.KindCovenant, covenantName)
	if stmt == nil {
		return false, ReasonUnknownElement
	}
	cure := stmt.Covenant.Cure
	if cure == nil {
		return false, ReasonNoCureMechanism
	}
	if !cureHasCapacity(cure, i.cureEntry(cure), amount) {
		return false, ReasonCureExhausted
	}
	return true, ""
}

// ApplyCure records consumption against the covenant's cure mechanism. It
// does not re-run the covenant check; callers re-check compliance afterward.
// No AST mutation and no basket ledger change occurs here.
func (i *Interpreter) ApplyCure(covenantName string, amount float64) CureResult {
	if !i.beginMutation() {
		return CureResult{Reason: ReasonConcurrentMutation}
	}
	defer i.endMutation()

	if amount < 0 {
		return CureResult{Reason: ReasonInvalidAmount}
	}
	ok, reason := i.CanApplyCure(covenantName, amount)
	if !ok {
		return CureResult{Reason: reason}
	}
	cure := i.prog.Lookup(model.KindCovenant, covenantName).Covenant.Cure
	entry := i.cureEntry(cure)
	entry.UsesConsumed++
	entry.AmountConsumed += amount
	return CureResult{Success: true}
}

func (i *Interpreter) cureEntry(cure *model.CureSpec) *CureLedgerEntry {
	entry, ok := i.cures[cure.Mechanism]
	if !ok {
		entry = &CureLedgerEntry{Mechanism: cure.Mechanism, CureType: cure.CureType}
		i.cures[cure.Mechanism] = entry
	}
	return entry
}

// cureHasCapacity checks MAX_USES and MAX_AMOUNT for one further use of
// the given amount. A zero limit means unlimited.
func cureHasCapacity(cure *model.CureSpec, entry *CureLedgerEntry, amount float64) bool {
	if cure.MaxUses > 0 && entry.UsesConsumed >= cure.MaxUses {
		return false
	}
	if cure.MaxAmount > 0 && entry.AmountConsumed+amount > cure.MaxAmount {
		return false
	}
	return true
}
