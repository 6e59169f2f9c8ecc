package versioning

import (
	"fmt"
	"sort"
	"strings"
)

// Changelog formats. The renderer is a pure formatter: no business logic.
const (
	FormatDetailed  = "detailed"
	FormatSummary   = "summary"
	FormatExecutive = "executive"
)

// ChangeLogOptions selects the rendering preset.
type ChangeLogOptions struct {
	Format string `json:"format"`
}

// ChangeLogValidation reports internal consistency of a summary: the counts
// must reconcile with the change list.
type ChangeLogValidation struct {
	OK       bool     `json:"ok"`
	Problems []string `json:"problems,omitempty"`
}

// ChangeLog is a rendered summary.
type ChangeLog struct {
	Text       string              `json:"text"`
	Format     string              `json:"format"`
	Validation ChangeLogValidation `json:"validation"`
}

// GenerateChangeLog renders a ChangeSummary as text in one of three presets.
func GenerateChangeLog(sum *ChangeSummary, opts ChangeLogOptions) (ChangeLog, error) {
	format := opts.Format
	if format == "" {
		format = FormatDetailed
	}

	var text string
	switch format {
	case FormatDetailed:
		text = renderDetailed(sum)
	case FormatSummary:
		text = renderSummary(sum)
	case FormatExecutive:
		text = renderExecutive(sum)
	default:
		return ChangeLog{}, fmt.Errorf("unknown changelog format %q", opts.Format)
	}

	return ChangeLog{Text: text, Format: format, Validation: validate(sum)}, nil
}

func validate(sum *ChangeSummary) ChangeLogValidation {
	v := ChangeLogValidation{OK: true}
	if sum.Total != len(sum.Changes) {
		v.OK = false
		v.Problems = append(v.Problems,
			fmt.Sprintf("total %d does not match %d changes", sum.Total, len(sum.Changes)))
	}
	var byImpact int
	for _, n := range sum.CountsByImpact {
		byImpact += n
	}
	if byImpact != len(sum.Changes) {
		v.OK = false
		v.Problems = append(v.Problems,
			fmt.Sprintf("impact counts sum to %d, expected %d", byImpact, len(sum.Changes)))
	}
	return v
}

func header(sum *ChangeSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Amendment Comparison: v%d -> v%d\n", sum.FromVersionNo, sum.ToVersionNo)
	if sum.Author != "" {
		fmt.Fprintf(&b, "Prepared by: %s\n", sum.Author)
	}
	fmt.Fprintf(&b, "Generated: %s\n", sum.GeneratedAt)
	fmt.Fprintf(&b, "Changes: %d\n", sum.Total)
	return b.String()
}

func renderDetailed(sum *ChangeSummary) string {
	var b strings.Builder
	b.WriteString(header(sum))
	b.WriteString("\n")
	for idx, c := range sum.Changes {
		fmt.Fprintf(&b, "%d. %s [%s]\n", idx+1, c.Title, c.Impact)
		fmt.Fprintf(&b, "   %s\n", c.Description)
		if c.BeforeValue != nil || c.AfterValue != nil {
			fmt.Fprintf(&b, "   Before: %v\n   After:  %v\n", c.BeforeValue, c.AfterValue)
		}
		fmt.Fprintf(&b, "   Reference: %s\n", c.SectionReference)
	}
	return b.String()
}

func renderSummary(sum *ChangeSummary) string {
	var b strings.Builder
	b.WriteString(header(sum))
	b.WriteString("\nBy impact:\n")
	for _, impact := range sortedKeys(sum.CountsByImpact) {
		fmt.Fprintf(&b, "  %s: %d\n", impact, sum.CountsByImpact[impact])
	}
	b.WriteString("By element:\n")
	for _, kind := range sortedKeys(sum.CountsByKind) {
		fmt.Fprintf(&b, "  %s: %d\n", kind, sum.CountsByKind[kind])
	}
	b.WriteString("\n")
	for _, c := range sum.Changes {
		fmt.Fprintf(&b, "- %s [%s]\n", c.Title, c.Impact)
	}
	return b.String()
}

func renderExecutive(sum *ChangeSummary) string {
	var b strings.Builder
	b.WriteString(header(sum))
	borrower := sum.CountsByImpact[string(BorrowerFavorable)]
	lender := sum.CountsByImpact[string(LenderFavorable)]
	unclear := sum.CountsByImpact[string(Unclear)]
	b.WriteString("\n")
	switch {
	case sum.Total == 0:
		b.WriteString("The compared versions are substantively identical.\n")
	case borrower > lender:
		fmt.Fprintf(&b, "On balance this amendment moves terms in the borrower's favor "+
			"(%d borrower-favorable vs %d lender-favorable changes).\n", borrower, lender)
	case lender > borrower:
		fmt.Fprintf(&b, "On balance this amendment tightens terms in the lender's favor "+
			"(%d lender-favorable vs %d borrower-favorable changes).\n", lender, borrower)
	default:
		fmt.Fprintf(&b, "The amendment is balanced: %d borrower-favorable and %d "+
			"lender-favorable changes.\n", borrower, lender)
	}
	if unclear > 0 {
		fmt.Fprintf(&b, "%d change(s) could not be classified and warrant review.\n", unclear)
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
