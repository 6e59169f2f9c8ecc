package interp

import (
	"math"

	"github.com/wch1125/proviso-core/internal/model"
)

// structureState is the mutable side of one tax-equity structure.
type structureState struct {
	hasFlipped bool
	flipDate   string
	flipValue  float64
	flipEvent  string
}

// StructureStatus is the dashboard view of one tax-equity structure.
type StructureStatus struct {
	Name          string  `json:"name"`
	StructureType string  `json:"structure_type"`
	HasFlipped    bool    `json:"has_flipped"`
	InvestorShare float64 `json:"investor_share"`
	FlipDate      string  `json:"flip_date,omitempty"`
	FlipValue     float64 `json:"flip_value,omitempty"`
	FlipEvent     string  `json:"flip_event,omitempty"`
}

// FlipEventStatus is the state of one flip event.
type FlipEventStatus struct {
	Name         string  `json:"name"`
	Structure    string  `json:"structure"`
	TriggerType  string  `json:"trigger_type"`
	TargetValue  float64 `json:"target_value,omitempty"`
	TargetDate   string  `json:"target_date,omitempty"`
	Triggered    bool    `json:"triggered"`
	TriggerDate  string  `json:"trigger_date,omitempty"`
	TriggerValue float64 `json:"trigger_value,omitempty"`
}

// FlipResult is the outcome of TriggerFlip.
type FlipResult struct {
	Success   bool   `json:"success"`
	Reason    string `json:"reason,omitempty"`
	Structure string `json:"structure,omitempty"`
}

// flipEpsilon absorbs float noise when an achieved return is compared to the
// flip target; this is the one place the language defines a tolerance.
const flipEpsilon = 1e-9

// TriggerFlip fires the named flip event. The flip applies only to the single
// structure the event names; every other structure's state is untouched.
func (i *Interpreter) TriggerFlip(eventName, date string, value float64) FlipResult {
	if !i.beginMutation() {
		return FlipResult{Reason: ReasonConcurrentMutation}
	}
	defer i.endMutation()

	stmt := i.prog.Lookup(model.KindFlipEvent, eventName)
	if stmt == nil {
		return FlipResult{Reason: ReasonUnknownElement}
	}
	ev := stmt.FlipEvent
	state, ok := i.structures[ev.Structure]
	if !ok {
		return FlipResult{Reason: ReasonUnknownElement}
	}
	if state.hasFlipped {
		return FlipResult{Reason: ReasonAlreadyFlipped, Structure: ev.Structure}
	}

	switch ev.TriggerType {
	case "irr_target":
		if value < ev.TargetValue-flipEpsilon {
			return FlipResult{Reason: ReasonNotTriggered, Structure: ev.Structure}
		}
	case "date":
		if ev.TargetDate == "" || date < ev.TargetDate {
			return FlipResult{Reason: ReasonNotTriggered, Structure: ev.Structure}
		}
	default:
		return FlipResult{Reason: ReasonUnknownElement, Structure: ev.Structure}
	}

	state.hasFlipped = true
	state.flipDate = date
	state.flipValue = value
	state.flipEvent = eventName
	return FlipResult{Success: true, Structure: ev.Structure}
}

// GetTaxEquityStructureStatus reports one structure; false when unknown.
func (i *Interpreter) GetTaxEquityStructureStatus(name string) (StructureStatus, bool) {
	stmt := i.prog.Lookup(model.KindTaxEquityStructure, name)
	if stmt == nil {
		return StructureStatus{}, false
	}
	decl := stmt.TaxEquityStructure
	state := i.structures[name]
	share := decl.PreFlipShare
	if state.hasFlipped {
		share = decl.PostFlipShare
	}
	return StructureStatus{
		Name:          name,
		StructureType: decl.StructureType,
		HasFlipped:    state.hasFlipped,
		InvestorShare: share,
		FlipDate:      state.flipDate,
		FlipValue:     state.flipValue,
		FlipEvent:     state.flipEvent,
	}, true
}

// GetFlipEventStatus reports one flip event; false when unknown.
func (i *Interpreter) GetFlipEventStatus(name string) (FlipEventStatus, bool) {
	stmt := i.prog.Lookup(model.KindFlipEvent, name)
	if stmt == nil {
		return FlipEventStatus{}, false
	}
	ev := stmt.FlipEvent
	out := FlipEventStatus{
		Name:        name,
		Structure:   ev.Structure,
		TriggerType: ev.TriggerType,
		TargetValue: ev.TargetValue,
		TargetDate:  ev.TargetDate,
	}
	if state, ok := i.structures[ev.Structure]; ok && state.flipEvent == name {
		out.Triggered = true
		out.TriggerDate = state.flipDate
		out.TriggerValue = state.flipValue
	}
	return out, true
}

// TaxCreditStatus is the computed value of one credit.
type TaxCreditStatus struct {
	Name       string    `json:"name"`
	CreditType string    `json:"credit_type"`
	Amount     float64   `json:"amount"`
	Warnings   []Warning `json:"warnings,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// GetTaxCreditStatus computes the credit value from its basis expression: ITC
// as rate x basis, PTC as $/kWh x annual production.
func (i *Interpreter) GetTaxCreditStatus(name string) (TaxCreditStatus, bool) {
	stmt := i.prog.Lookup(model.KindTaxCredit, name)
	if stmt == nil {
		return TaxCreditStatus{}, false
	}
	decl := stmt.TaxCredit
	out := TaxCreditStatus{Name: name, CreditType: decl.CreditType}

	var basis float64
	if decl.Basis != nil {
		p := i.newPass()
		bv, err := p.eval(decl.Basis)
		out.Warnings = p.warnings
		if err != nil {
			out.Err = err.Error()
			return out, true
		}
		basis, err = asNumber(bv, decl.Basis)
		if err != nil {
			out.Err = err.Error()
			return out, true
		}
	}

	switch decl.CreditType {
	case "itc":
		out.Amount = decl.Rate * basis
	case "ptc":
		out.Amount = decl.PerKWh * basis
	}
	return out, true
}

// MACRS percentage tables (half-year convention).
var macrsTables = map[string][]float64{
	"macrs_5": {0.2000, 0.3200, 0.1920, 0.1152, 0.1152, 0.0576},
	"macrs_7": {0.1429, 0.2449, 0.1749, 0.1249, 0.0893, 0.0892, 0.0893, 0.0446},
}

// GetDepreciationForYear returns the depreciation amount for the 1-based
// year of the named schedule. Years past the table end are zero. Schedules
// are pure per-year calculators with no cross-structure state.
func (i *Interpreter) GetDepreciationForYear(name string, year int) (float64, bool) {
	stmt := i.prog.Lookup(model.KindDepreciationSchedule, name)
	if stmt == nil || year < 1 {
		return 0, stmt != nil
	}
	decl := stmt.DepreciationSchedule
	if table, ok := macrsTables[decl.Method]; ok {
		if year > len(table) {
			return 0, true
		}
		return decl.Basis * table[year-1], true
	}
	if decl.Method == "straight_line" && decl.Years > 0 {
		if year > decl.Years {
			return 0, true
		}
		return decl.Basis / float64(decl.Years), true
	}
	return 0, true
}

// DegradationFactor gives the expected output factor for the 1-based
// operating year under the named degradation schedule.
func (i *Interpreter) DegradationFactor(name string, year int) (float64, bool) {
	stmt := i.prog.Lookup(model.KindDegradationSchedule, name)
	if stmt == nil {
		return 0, false
	}
	if year < 1 {
		year = 1
	}
	return math.Pow(1-stmt.DegradationSchedule.AnnualRate, float64(year-1)), true
}

// SeasonalFactor gives the adjustment factor for quarter 1..4.
func (i *Interpreter) SeasonalFactor(name string, quarter int) (float64, bool) {
	stmt := i.prog.Lookup(model.KindSeasonalAdjustment, name)
	if stmt == nil {
		return 0, false
	}
	if quarter < 1 || quarter > 4 {
		return 0, true
	}
	return stmt.SeasonalAdjustment.Factors[quarter-1], true
}

// PerformanceGuaranteeStatus is the measured-vs-guaranteed state of one
// guarantee.
type PerformanceGuaranteeStatus struct {
	Name       string  `json:"name"`
	Actual     float64 `json:"actual"`
	Guaranteed float64 `json:"guaranteed"`
	Ratio      float64 `json:"ratio"`
	Breached   bool    `json:"breached"`
	Err        string  `json:"error,omitempty"`
}

// CheckPerformanceGuarantee evaluates the guarantee metric and compares the
// achieved ratio against the floor.
func (i *Interpreter) CheckPerformanceGuarantee(name string) (PerformanceGuaranteeStatus, bool) {
	stmt := i.prog.Lookup(model.KindPerformanceGuarantee, name)
	if stmt == nil {
		return PerformanceGuaranteeStatus{}, false
	}
	decl := stmt.PerformanceGuarantee
	out := PerformanceGuaranteeStatus{Name: name, Guaranteed: decl.Guaranteed}
	p := i.newPass()
	av, err := p.eval(decl.Metric)
	if err != nil {
		out.Err = err.Error()
		return out, true
	}
	actual, err := asNumber(av, decl.Metric)
	if err != nil {
		out.Err = err.Error()
		return out, true
	}
	out.Actual = actual
	if decl.Guaranteed != 0 {
		out.Ratio = actual / decl.Guaranteed
	}
	floor := decl.Floor
	if floor == 0 {
		floor = 1
	}
	out.Breached = out.Ratio < floor
	return out, true
}
