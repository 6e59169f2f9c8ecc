package interp

import (
	"github.com/wch1125/proviso-core/internal/amendments"
	"github.com/wch1125/proviso-core/internal/model"
)

// AmendmentResult is the outcome of applying one amendment.
type AmendmentResult struct {
	Success  bool                 `json:"success"`
	Reason   string               `json:"reason,omitempty"`
	Messages []amendments.Message `json:"messages,omitempty"`
}

// ApplyAmendment applies a single amendment statement and reconciles ledger
// state. Replacing a basket or reserve preserves the existing ledger entry
// under the new definition unless the amendment declares a reset: utilization
// history is a compliance fact and generally survives a capacity amendment.
func (i *Interpreter) ApplyAmendment(stmt *model.Statement) AmendmentResult {
	if !i.beginMutation() {
		return AmendmentResult{Reason: ReasonConcurrentMutation}
	}
	defer i.endMutation()

	res := amendments.Run(i.prog, []*model.Statement{stmt})
	if res.Outcome != amendments.OutcomeSuccess {
		reason := "AMENDMENT_FAILED"
		if len(res.Messages) > 0 {
			reason = res.Messages[0].Code
		}
		return AmendmentResult{Reason: reason, Messages: res.Messages}
	}

	i.reconcileLedgers(stmt.Amendment)
	return AmendmentResult{Success: true, Messages: res.Messages}
}

func (i *Interpreter) reconcileLedgers(amd *model.AmendmentDecl) {
	switch amd.Action {
	case model.AmendRemove:
		// A removed element's ledger entry is dropped with it.
		switch amd.TargetKind {
		case model.KindBasket:
			delete(i.baskets, amd.TargetName)
		case model.KindReserve:
			delete(i.reserves, amd.TargetName)
		case model.KindTaxEquityStructure:
			delete(i.structures, amd.TargetName)
		}

	case model.AmendAdd:
		switch amd.NewStatement.Kind {
		case model.KindReserve:
			i.reserves[amd.NewStatement.Name] = amd.NewStatement.Reserve.InitialBalance
		case model.KindTaxEquityStructure:
			i.structures[amd.NewStatement.Name] = &structureState{}
		}

	case model.AmendReplace:
		if !amd.ResetLedger {
			return
		}
		switch amd.TargetKind {
		case model.KindBasket:
			delete(i.baskets, amd.TargetName)
		case model.KindReserve:
			i.reserves[amd.TargetName] = amd.NewStatement.Reserve.InitialBalance
		case model.KindTaxEquityStructure:
			i.structures[amd.TargetName] = &structureState{}
		}
	}
}
