package model

// StatementKind tags the top-level statement union. Every consumer (evaluator,
// compiler, differ, classifier) switches over this closed set.
type StatementKind string

const (
	KindDefine                StatementKind = "define"
	KindCovenant              StatementKind = "covenant"
	KindBasket                StatementKind = "basket"
	KindReserve               StatementKind = "reserve"
	KindWaterfall             StatementKind = "waterfall"
	KindPhase                 StatementKind = "phase"
	KindTransition            StatementKind = "transition"
	KindMilestone             StatementKind = "milestone"
	KindConditionsPrecedent   StatementKind = "conditions_precedent"
	KindTaxEquityStructure    StatementKind = "tax_equity_structure"
	KindTaxCredit             StatementKind = "tax_credit"
	KindDepreciationSchedule  StatementKind = "depreciation_schedule"
	KindFlipEvent             StatementKind = "flip_event"
	KindPerformanceGuarantee  StatementKind = "performance_guarantee"
	KindTechnicalMilestone    StatementKind = "technical_milestone"
	KindRegulatoryRequirement StatementKind = "regulatory_requirement"
	KindDegradationSchedule   StatementKind = "degradation_schedule"
	KindSeasonalAdjustment    StatementKind = "seasonal_adjustment"
	KindProhibit              StatementKind = "prohibit"
	KindEvent                 StatementKind = "event"
	KindCondition             StatementKind = "condition"
	KindAmendment             StatementKind = "amendment"
)

// Statement is one top-level declaration of an agreement. Name is unique
// within Kind and is the join key for amendments and diffing. Exactly one
// payload pointer is non-nil, matching Kind.
type Statement struct {
	Kind StatementKind `json:"kind"`
	Name string        `json:"name"`

	Define                *DefineDecl                `json:"define,omitempty"`
	Covenant              *CovenantDecl              `json:"covenant,omitempty"`
	Basket                *BasketDecl                `json:"basket,omitempty"`
	Reserve               *ReserveDecl               `json:"reserve,omitempty"`
	Waterfall             *WaterfallDecl             `json:"waterfall,omitempty"`
	Phase                 *PhaseDecl                 `json:"phase,omitempty"`
	Transition            *TransitionDecl            `json:"transition,omitempty"`
	Milestone             *MilestoneDecl             `json:"milestone,omitempty"`
	ConditionsPrecedent   *ConditionsPrecedentDecl   `json:"conditions_precedent,omitempty"`
	TaxEquityStructure    *TaxEquityStructureDecl    `json:"tax_equity_structure,omitempty"`
	TaxCredit             *TaxCreditDecl             `json:"tax_credit,omitempty"`
	DepreciationSchedule  *DepreciationScheduleDecl  `json:"depreciation_schedule,omitempty"`
	FlipEvent             *FlipEventDecl             `json:"flip_event,omitempty"`
	PerformanceGuarantee  *PerformanceGuaranteeDecl  `json:"performance_guarantee,omitempty"`
	TechnicalMilestone    *TechnicalMilestoneDecl    `json:"technical_milestone,omitempty"`
	RegulatoryRequirement *RegulatoryRequirementDecl `json:"regulatory_requirement,omitempty"`
	DegradationSchedule   *DegradationScheduleDecl   `json:"degradation_schedule,omitempty"`
	SeasonalAdjustment    *SeasonalAdjustmentDecl    `json:"seasonal_adjustment,omitempty"`
	Prohibit              *ProhibitDecl              `json:"prohibit,omitempty"`
	Event                 *EventDecl                 `json:"event,omitempty"`
	Condition             *ConditionDecl             `json:"condition,omitempty"`
	Amendment             *AmendmentDecl             `json:"amendment,omitempty"`
}

// DefineDecl binds a name to a formula usable from any other expression.
type DefineDecl struct {
	Formula *Expr `json:"formula"`
}

// ThresholdStep is one leg of a date-gated step schedule: the threshold
// applies until (inclusive) the Until date.
type ThresholdStep struct {
	Until     string `json:"until"` // YYYY-MM-DD
	Threshold *Expr  `json:"threshold"`
}

// CureSpec describes a cure mechanism. Mechanism is the ledger identity:
// covenants naming the same mechanism share consumption.
type CureSpec struct {
	Mechanism string  `json:"mechanism"`
	CureType  string  `json:"cure_type"` // e.g. "equity_cure"
	MaxUses   int     `json:"max_uses,omitempty"`
	MaxAmount float64 `json:"max_amount,omitempty"`
}

// CovenantDecl is a tested ratio constraint: Metric Operator Threshold.
// Steps, when present, gate the threshold by date; Threshold is the terminal
// value after the last step.
type CovenantDecl struct {
	Metric    *Expr           `json:"metric"`
	Operator  string          `json:"operator"` // <=, >=, <, >, =
	Threshold *Expr           `json:"threshold"`
	Steps     []ThresholdStep `json:"steps,omitempty"`
	Cure      *CureSpec       `json:"cure,omitempty"`
}

// BasketKind distinguishes how capacity is determined.
type BasketKind string

const (
	BasketFixed   BasketKind = "fixed"
	BasketGrower  BasketKind = "grower"
	BasketBuilder BasketKind = "builder"
)

// BasketDecl declares a usage basket. Capacity is re-evaluated against current
// financial data on every availability query, never cached.
type BasketDecl struct {
	BasketType BasketKind `json:"basket_type"`
	Capacity   *Expr      `json:"capacity"`
}

// ReserveDecl declares a tracked cash reserve with an optional funding target.
type ReserveDecl struct {
	Target         *Expr   `json:"target,omitempty"`
	InitialBalance float64 `json:"initial_balance,omitempty"`
}

// TierDecl is one tier of a waterfall, executed in ascending Priority order.
type TierDecl struct {
	Priority  int    `json:"priority"`
	Name      string `json:"name"`
	Amount    *Expr  `json:"amount,omitempty"`
	Remainder bool   `json:"remainder,omitempty"`
	Condition *Expr  `json:"condition,omitempty"`
	// FundReserve credits the paid amount to the named reserve.
	FundReserve string `json:"fund_reserve,omitempty"`
	// DrawShortfallFrom attempts to cover a shortfall from the named reserve.
	DrawShortfallFrom string `json:"draw_shortfall_from,omitempty"`
}

type WaterfallDecl struct {
	Tiers []TierDecl `json:"tiers"`
}

// PhaseDecl names a project phase and the covenants suspended while active.
type PhaseDecl struct {
	SuspendedCovenants []string `json:"suspended_covenants,omitempty"`
}

// TransitionDecl moves the machine to phase To when When becomes true.
type TransitionDecl struct {
	To   string `json:"to"`
	When *Expr  `json:"when"`
}

type MilestoneDecl struct {
	TargetDate   string `json:"target_date"`
	LongstopDate string `json:"longstop_date"`
	Achieved     bool   `json:"achieved,omitempty"`
	AchievedDate string `json:"achieved_date,omitempty"`
}

// CPItem is one entry of a conditions-precedent checklist. SectionRef points
// into the agreement ("4.01(a)(iii)" style).
type CPItem struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SectionRef  string `json:"section_ref,omitempty"`
	Category    string `json:"category,omitempty"`
	Satisfied   bool   `json:"satisfied,omitempty"`
	Waived      bool   `json:"waived,omitempty"`
}

type ConditionsPrecedentDecl struct {
	Items []CPItem `json:"items"`
}

// TaxEquityStructureDecl models a partnership-flip allocation. Shares are the
// tax investor's allocation before and after the flip point.
type TaxEquityStructureDecl struct {
	StructureType  string  `json:"structure_type"` // partnership_flip, sale_leaseback, inverted_lease
	PreFlipShare   float64 `json:"pre_flip_share"`
	PostFlipShare  float64 `json:"post_flip_share"`
	TargetReturn   float64 `json:"target_return,omitempty"`
	TargetFlipDate string  `json:"target_flip_date,omitempty"`
}

type TaxCreditDecl struct {
	CreditType string  `json:"credit_type"`       // itc, ptc
	Rate       float64 `json:"rate,omitempty"`    // itc: fraction of basis
	PerKWh     float64 `json:"per_kwh,omitempty"` // ptc: $ per kWh
	Basis      *Expr   `json:"basis,omitempty"`
	Years      int     `json:"years,omitempty"`
}

type DepreciationScheduleDecl struct {
	Method string  `json:"method"` // macrs_5, macrs_7, straight_line
	Basis  float64 `json:"basis"`
	Years  int     `json:"years,omitempty"` // straight_line only
}

// FlipEventDecl references exactly one structure by name. A trigger flips that
// structure and no other.
type FlipEventDecl struct {
	Structure   string  `json:"structure"`
	TriggerType string  `json:"trigger_type"` // irr_target, date
	TargetValue float64 `json:"target_value,omitempty"`
	TargetDate  string  `json:"target_date,omitempty"`
}

type PerformanceGuaranteeDecl struct {
	Metric     *Expr   `json:"metric"`
	Guaranteed float64 `json:"guaranteed"`
	// Measured as a fraction of guaranteed output, e.g. 0.95.
	Floor float64 `json:"floor,omitempty"`
}

type TechnicalMilestoneDecl struct {
	TargetDate   string `json:"target_date"`
	LongstopDate string `json:"longstop_date,omitempty"`
	Achieved     bool   `json:"achieved,omitempty"`
	Criteria     string `json:"criteria,omitempty"`
}

type RegulatoryRequirementDecl struct {
	Authority string `json:"authority,omitempty"`
	Deadline  string `json:"deadline"`
	Obtained  bool   `json:"obtained,omitempty"`
}

// DegradationScheduleDecl gives the expected annual output decay of the asset.
type DegradationScheduleDecl struct {
	AnnualRate float64 `json:"annual_rate"` // e.g. 0.005 for 0.5%/yr
}

// SeasonalAdjustmentDecl scales expectations per quarter (Q1..Q4 factors).
type SeasonalAdjustmentDecl struct {
	Factors [4]float64 `json:"factors"`
}

type ProhibitDecl struct {
	Action string `json:"action"`
	// Unless permits the action when true (often an AVAILABLE() check).
	Unless *Expr `json:"unless,omitempty"`
}

type EventDecl struct {
	// EventType distinguishes default, mandatory prepayment, sweep triggers.
	EventType string `json:"event_type,omitempty"`
	When      *Expr  `json:"when"`
}

type ConditionDecl struct {
	When *Expr `json:"when"`
}

// AmendmentAction selects how an amendment statement edits the program.
type AmendmentAction string

const (
	AmendReplace AmendmentAction = "replace"
	AmendAdd     AmendmentAction = "add"
	AmendRemove  AmendmentAction = "remove"
)

// AmendmentDecl edits one statement by key. ResetLedger zeroes any basket or
// reserve ledger entry for the target; without it, utilization history
// survives the amendment.
type AmendmentDecl struct {
	Action      AmendmentAction `json:"action"`
	TargetKind  StatementKind   `json:"target_kind"`
	TargetName  string          `json:"target_name"`
	NewStatement *Statement     `json:"new_statement,omitempty"`
	ResetLedger bool            `json:"reset_ledger,omitempty"`
}
