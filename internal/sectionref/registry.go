// Package sectionref maps agreement element kinds to the customary credit
// agreement article where such terms live. Classified changes and CP
// checklists carry these references so a reader can find the governing text.
package sectionref

import "github.com/wch1125/proviso-core/internal/model"

const defaultRef = "General Provisions"

var refs = map[model.StatementKind]string{
	model.KindDefine:                "Section 1.01 (Defined Terms)",
	model.KindCovenant:              "Section 7.01 (Financial Covenants)",
	model.KindBasket:                "Section 7.02 (Negative Covenants; Baskets)",
	model.KindReserve:               "Section 6.12 (Reserve Accounts)",
	model.KindWaterfall:             "Section 2.18 (Application of Funds)",
	model.KindPhase:                 "Section 5.14 (Project Phases)",
	model.KindTransition:            "Section 5.14 (Project Phases)",
	model.KindMilestone:             "Schedule 5.14 (Construction Milestones)",
	model.KindConditionsPrecedent:   "Article IV (Conditions Precedent)",
	model.KindTaxEquityStructure:    "Schedule 9.01 (Tax Equity)",
	model.KindTaxCredit:             "Schedule 9.02 (Tax Credits)",
	model.KindDepreciationSchedule:  "Schedule 9.03 (Depreciation)",
	model.KindFlipEvent:             "Schedule 9.01 (Tax Equity)",
	model.KindPerformanceGuarantee:  "Section 5.20 (Performance Guarantees)",
	model.KindTechnicalMilestone:    "Schedule 5.14 (Construction Milestones)",
	model.KindRegulatoryRequirement: "Section 5.09 (Regulatory Approvals)",
	model.KindDegradationSchedule:   "Schedule 5.20 (Output Assumptions)",
	model.KindSeasonalAdjustment:    "Schedule 5.20 (Output Assumptions)",
	model.KindProhibit:              "Section 7.02 (Negative Covenants)",
	model.KindEvent:                 "Article VIII (Events of Default)",
	model.KindCondition:             "Article IV (Conditions Precedent)",
	model.KindAmendment:             "Section 10.01 (Amendments)",
}

// Lookup returns the customary section reference for an element kind.
func Lookup(kind model.StatementKind) string {
	if ref, ok := refs[kind]; ok {
		return ref
	}
	return defaultRef
}
