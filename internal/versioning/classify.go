package versioning

import (
	"fmt"
	"strings"

	"github.com/wch1125/proviso-core/internal/model"
	"github.com/wch1125/proviso-core/internal/sectionref"
)

// Impact labels the negotiation direction of a change.
type Impact string

const (
	BorrowerFavorable Impact = "borrower_favorable"
	LenderFavorable   Impact = "lender_favorable"
	Neutral           Impact = "neutral"
	Unclear           Impact = "unclear"
)

// Change is one classified diff entry.
type Change struct {
	Impact           Impact           `json:"impact"`
	Key              model.ElementKey `json:"key"`
	Field            string           `json:"field,omitempty"`
	Title            string           `json:"title"`
	Description      string           `json:"description"`
	BeforeValue      any              `json:"before_value,omitempty"`
	AfterValue       any              `json:"after_value,omitempty"`
	SectionReference string           `json:"section_reference"`
	SourceForm       string           `json:"source_form,omitempty"`
}

// addImpact gives the direction of introducing a brand-new element of a kind;
// removal is the mirror image. Restrictive terms favor the lender when added.
var addImpact = map[model.StatementKind]Impact{
	model.KindCovenant:              LenderFavorable,
	model.KindProhibit:              LenderFavorable,
	model.KindEvent:                 LenderFavorable,
	model.KindReserve:               LenderFavorable,
	model.KindPerformanceGuarantee:  LenderFavorable,
	model.KindRegulatoryRequirement: LenderFavorable,
	model.KindMilestone:             LenderFavorable,
	model.KindTechnicalMilestone:    LenderFavorable,
	model.KindBasket:                BorrowerFavorable,
	model.KindDefine:                Neutral,
	model.KindSeasonalAdjustment:    Neutral,
	model.KindDegradationSchedule:   Neutral,
}

// ClassifyDiff turns element diffs into classified changes, one per added or
// removed element and one per modified field.
func ClassifyDiff(diffs []ElementDiff, from, to CompiledState) []Change {
	var out []Change
	for _, d := range diffs {
		switch d.Kind {
		case DiffAdded:
			out = append(out, classifyAdded(d, to))
		case DiffRemoved:
			out = append(out, classifyRemoved(d, from))
		case DiffModified:
			for _, fc := range d.FieldChanges {
				out = append(out, classifyField(d.Key, fc, to[d.Key]))
			}
		}
	}
	return out
}

func classifyAdded(d ElementDiff, to CompiledState) Change {
	impact, ok := addImpact[d.Key.Kind]
	if !ok {
		impact = Unclear
	}
	return Change{
		Impact:           impact,
		Key:              d.Key,
		Title:            fmt.Sprintf("New %s: %s", kindLabel(d.Key.Kind), d.Key.Name),
		Description:      fmt.Sprintf("A %s named %s was added to the agreement.", kindLabel(d.Key.Kind), d.Key.Name),
		AfterValue:       elementSummary(to[d.Key]),
		SectionReference: sectionref.Lookup(d.Key.Kind),
	}
}

func classifyRemoved(d ElementDiff, from CompiledState) Change {
	impact := Unclear
	if added, ok := addImpact[d.Key.Kind]; ok {
		impact = mirror(added)
	}
	return Change{
		Impact:           impact,
		Key:              d.Key,
		Title:            fmt.Sprintf("Removed %s: %s", kindLabel(d.Key.Kind), d.Key.Name),
		Description:      fmt.Sprintf("The %s named %s was deleted from the agreement.", kindLabel(d.Key.Kind), d.Key.Name),
		BeforeValue:      elementSummary(from[d.Key]),
		SectionReference: sectionref.Lookup(d.Key.Kind),
	}
}

func classifyField(key model.ElementKey, fc FieldChange, after CanonicalElement) Change {
	ch := Change{
		Impact:           Unclear,
		Key:              key,
		Field:            fc.Field,
		Title:            fmt.Sprintf("%s %s: %s changed", kindLabel(key.Kind), key.Name, fc.Field),
		Description:      fmt.Sprintf("%s changed from %v to %v.", fc.Field, fc.Before, fc.After),
		BeforeValue:      fc.Before,
		AfterValue:       fc.After,
		SectionReference: sectionref.Lookup(key.Kind),
	}

	switch key.Kind {
	case model.KindCovenant:
		ch.Impact = classifyCovenantField(fc, after)
	case model.KindBasket:
		if fc.Field == "capacity" {
			// A bigger basket is always borrower favorable.
			ch.Impact = numericDirection(fc, BorrowerFavorable, LenderFavorable)
		}
	case model.KindReserve:
		if fc.Field == "target" || fc.Field == "initial_balance" {
			// A larger required reserve traps more borrower cash.
			ch.Impact = numericDirection(fc, LenderFavorable, BorrowerFavorable)
		}
	case model.KindMilestone, model.KindTechnicalMilestone:
		if fc.Field == "longstop_date" {
			ch.Impact = dateDirection(fc, BorrowerFavorable, LenderFavorable)
		}
		if fc.Field == "achieved" {
			ch.Impact = Neutral
		}
	case model.KindRegulatoryRequirement:
		if fc.Field == "deadline" {
			ch.Impact = dateDirection(fc, BorrowerFavorable, LenderFavorable)
		}
	case model.KindPerformanceGuarantee:
		if fc.Field == "guaranteed" || fc.Field == "floor" {
			ch.Impact = numericDirection(fc, LenderFavorable, BorrowerFavorable)
		}
	}
	return ch
}

// classifyCovenantField judges threshold moves relative to the inequality
// operator: loosening favors the borrower, tightening the lender. Step dates
// shifting earlier tighten the schedule.
func classifyCovenantField(fc FieldChange, after CanonicalElement) Impact {
	switch {
	case fc.Field == "threshold" || strings.HasSuffix(fc.Field, "_threshold"):
		op, _ := after["operator"].(string)
		switch op {
		case model.OpLte, model.OpLt:
			// Ceiling covenant: a higher ceiling is looser.
			return numericDirection(fc, BorrowerFavorable, LenderFavorable)
		case model.OpGte, model.OpGt:
			// Floor covenant: a higher floor is tighter.
			return numericDirection(fc, LenderFavorable, BorrowerFavorable)
		}
		return Unclear
	case strings.HasSuffix(fc.Field, "_until"):
		return dateDirection(fc, BorrowerFavorable, LenderFavorable)
	case fc.Field == "cure_max_uses" || fc.Field == "cure_max_amount":
		return numericDirection(fc, BorrowerFavorable, LenderFavorable)
	}
	return Unclear
}

// numericDirection maps an increase to up and a decrease to down; non-numeric
// pairs are unclear.
func numericDirection(fc FieldChange, up, down Impact) Impact {
	before, bok := fc.Before.(float64)
	after, aok := fc.After.(float64)
	if !bok || !aok {
		return Unclear
	}
	switch {
	case after > before:
		return up
	case after < before:
		return down
	}
	return Neutral
}

// dateDirection maps a later date to later and an earlier date to earlier.
func dateDirection(fc FieldChange, later, earlier Impact) Impact {
	before, bok := fc.Before.(string)
	after, aok := fc.After.(string)
	if !bok || !aok || before == "" || after == "" {
		return Unclear
	}
	switch {
	case after > before:
		return later
	case after < before:
		return earlier
	}
	return Neutral
}

func mirror(i Impact) Impact {
	switch i {
	case BorrowerFavorable:
		return LenderFavorable
	case LenderFavorable:
		return BorrowerFavorable
	}
	return i
}

func kindLabel(kind model.StatementKind) string {
	return strings.ReplaceAll(string(kind), "_", " ")
}

func elementSummary(el CanonicalElement) string {
	if len(el) == 0 {
		return ""
	}
	parts := make([]string, 0, len(el))
	for _, fc := range diffFields(CanonicalElement{}, el) {
		parts = append(parts, fmt.Sprintf("%s=%v", fc.Field, fc.After))
	}
	return strings.Join(parts, ", ")
}
