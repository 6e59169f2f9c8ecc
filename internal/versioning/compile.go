package versioning

import (
	"fmt"
	"sort"
	"strings"

	"github.com/wch1125/proviso-core/internal/model"
)

// CanonicalElement is a statement normalized to a flat field map with
// comparable values (string, float64, bool). Expression fields are stored in
// canonical text form so associative reordering is not a spurious diff.
type CanonicalElement map[string]any

// CompiledState is the diff-ready form of one agreement version, keyed by
// element. It is built once per AST and never mutated; it is used purely for
// comparison, never for execution.
type CompiledState map[model.ElementKey]CanonicalElement

// Compile normalizes every statement of the program, discarding source
// formatting and declaration order.
func Compile(prog *model.Program) CompiledState {
	state := make(CompiledState, len(prog.Statements))
	for _, s := range prog.Statements {
		state[model.ElementKey{Kind: s.Kind, Name: s.Name}] = canonicalize(s)
	}
	return state
}

func canonicalize(s *model.Statement) CanonicalElement {
	el := CanonicalElement{}
	switch s.Kind {
	case model.KindDefine:
		el["formula"] = s.Define.Formula.CanonicalText()

	case model.KindCovenant:
		c := s.Covenant
		el["metric"] = c.Metric.CanonicalText()
		el["operator"] = c.Operator
		el["threshold"] = exprField(c.Threshold)
		for idx, step := range c.Steps {
			el[fmt.Sprintf("step_%d_until", idx+1)] = step.Until
			el[fmt.Sprintf("step_%d_threshold", idx+1)] = exprField(step.Threshold)
		}
		if c.Cure != nil {
			el["cure_mechanism"] = c.Cure.Mechanism
			el["cure_type"] = c.Cure.CureType
			el["cure_max_uses"] = float64(c.Cure.MaxUses)
			el["cure_max_amount"] = c.Cure.MaxAmount
		}

	case model.KindBasket:
		el["basket_type"] = string(s.Basket.BasketType)
		el["capacity"] = exprField(s.Basket.Capacity)

	case model.KindReserve:
		el["initial_balance"] = s.Reserve.InitialBalance
		if s.Reserve.Target != nil {
			el["target"] = exprField(s.Reserve.Target)
		}

	case model.KindWaterfall:
		el["tier_count"] = float64(len(s.Waterfall.Tiers))
		for idx, t := range s.Waterfall.Tiers {
			el[fmt.Sprintf("tier_%d", idx+1)] = tierText(t)
		}

	case model.KindPhase:
		suspended := append([]string{}, s.Phase.SuspendedCovenants...)
		sort.Strings(suspended)
		el["suspended_covenants"] = strings.Join(suspended, ", ")

	case model.KindTransition:
		el["to"] = s.Transition.To
		el["when"] = s.Transition.When.CanonicalText()

	case model.KindMilestone:
		el["target_date"] = s.Milestone.TargetDate
		el["longstop_date"] = s.Milestone.LongstopDate
		el["achieved"] = s.Milestone.Achieved

	case model.KindConditionsPrecedent:
		el["item_count"] = float64(len(s.ConditionsPrecedent.Items))
		for idx, item := range s.ConditionsPrecedent.Items {
			el[fmt.Sprintf("item_%d", idx+1)] = item.Name + "|" + item.SectionRef
		}

	case model.KindTaxEquityStructure:
		t := s.TaxEquityStructure
		el["structure_type"] = t.StructureType
		el["pre_flip_share"] = t.PreFlipShare
		el["post_flip_share"] = t.PostFlipShare
		el["target_return"] = t.TargetReturn
		el["target_flip_date"] = t.TargetFlipDate

	case model.KindTaxCredit:
		t := s.TaxCredit
		el["credit_type"] = t.CreditType
		el["rate"] = t.Rate
		el["per_kwh"] = t.PerKWh
		if t.Basis != nil {
			el["basis"] = t.Basis.CanonicalText()
		}

	case model.KindDepreciationSchedule:
		el["method"] = s.DepreciationSchedule.Method
		el["basis"] = s.DepreciationSchedule.Basis
		el["years"] = float64(s.DepreciationSchedule.Years)

	case model.KindFlipEvent:
		f := s.FlipEvent
		el["structure"] = f.Structure
		el["trigger_type"] = f.TriggerType
		el["target_value"] = f.TargetValue
		el["target_date"] = f.TargetDate

	case model.KindPerformanceGuarantee:
		el["metric"] = s.PerformanceGuarantee.Metric.CanonicalText()
		el["guaranteed"] = s.PerformanceGuarantee.Guaranteed
		el["floor"] = s.PerformanceGuarantee.Floor

	case model.KindTechnicalMilestone:
		el["target_date"] = s.TechnicalMilestone.TargetDate
		el["longstop_date"] = s.TechnicalMilestone.LongstopDate
		el["achieved"] = s.TechnicalMilestone.Achieved
		el["criteria"] = s.TechnicalMilestone.Criteria

	case model.KindRegulatoryRequirement:
		el["authority"] = s.RegulatoryRequirement.Authority
		el["deadline"] = s.RegulatoryRequirement.Deadline
		el["obtained"] = s.RegulatoryRequirement.Obtained

	case model.KindDegradationSchedule:
		el["annual_rate"] = s.DegradationSchedule.AnnualRate

	case model.KindSeasonalAdjustment:
		for q, f := range s.SeasonalAdjustment.Factors {
			el[fmt.Sprintf("q%d_factor", q+1)] = f
		}

	case model.KindProhibit:
		el["action"] = s.Prohibit.Action
		if s.Prohibit.Unless != nil {
			el["unless"] = s.Prohibit.Unless.CanonicalText()
		}

	case model.KindEvent:
		el["event_type"] = s.Event.EventType
		el["when"] = s.Event.When.CanonicalText()

	case model.KindCondition:
		el["when"] = s.Condition.When.CanonicalText()

	case model.KindAmendment:
		a := s.Amendment
		el["action"] = string(a.Action)
		el["target"] = string(a.TargetKind) + ":" + a.TargetName
		el["reset_ledger"] = a.ResetLedger
	}
	return el
}

// exprField keeps bare numeric thresholds as numbers so the classifier can
// judge direction; anything richer becomes canonical text.
func exprField(e *model.Expr) any {
	if n, ok := e.ConstNumber(); ok {
		return n
	}
	return e.CanonicalText()
}

func tierText(t model.TierDecl) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d:%s", t.Priority, t.Name)
	if t.Remainder {
		b.WriteString(":remainder")
	} else if t.Amount != nil {
		b.WriteString(":" + t.Amount.CanonicalText())
	}
	if t.Condition != nil {
		b.WriteString(":if " + t.Condition.CanonicalText())
	}
	if t.FundReserve != "" {
		b.WriteString(":fund " + t.FundReserve)
	}
	if t.DrawShortfallFrom != "" {
		b.WriteString(":draw " + t.DrawShortfallFrom)
	}
	return b.String()
}
