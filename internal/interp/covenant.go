package interp

import (
	"math"

	"github.com/wch1125/proviso-core/internal/model"
)

// CovenantResult is one compliance check. Headroom is a percentage of the
// threshold, signed consistently with Compliant. Suspended covenants report
// Compliant true but are tagged so callers do not treat them as passing on
// the merits. Err carries an evaluator failure for this covenant only;
// one bad Define never blocks unrelated covenants.
type CovenantResult struct {
	Name        string    `json:"name"`
	Actual      float64   `json:"actual"`
	Threshold   float64   `json:"threshold"`
	Operator    string    `json:"operator"`
	Compliant   bool      `json:"compliant"`
	HeadroomPct float64   `json:"headroom_pct"`
	Suspended   bool      `json:"suspended"`
	Warnings    []Warning `json:"warnings,omitempty"`
	Err         string    `json:"error,omitempty"`
}

// CheckCovenant runs one covenant. The second return is false when no
// covenant carries that name; probing optional elements is routine, so this
// is a result, not an error.
func (i *Interpreter) CheckCovenant(name string) (CovenantResult, bool) {
	stmt := i.prog.Lookup(model.KindCovenant, name)
	if stmt == nil {
		return CovenantResult{}, false
	}
	return i.checkCovenantStmt(stmt), true
}

// CheckAllCovenants checks every covenant in declaration order. Evaluation
// failures are carried per result.
func (i *Interpreter) CheckAllCovenants() []CovenantResult {
	stmts := i.prog.ByKind(model.KindCovenant)
	out := make([]CovenantResult, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, i.checkCovenantStmt(s))
	}
	return out
}

func (i *Interpreter) checkCovenantStmt(stmt *model.Statement) CovenantResult {
	res := CovenantResult{Name: stmt.Name, Operator: stmt.Covenant.Operator}

	if i.suspendedSet()[stmt.Name] {
		res.Suspended = true
		res.Compliant = true
		// Best-effort actuals for display; a failing metric does not break a
		// suspended covenant.
		p := i.newPass()
		if _, actual, threshold, err := i.covenantTest(p, stmt); err == nil {
			res.Actual = actual
			res.Threshold = threshold
			res.HeadroomPct = headroomPct(stmt.Covenant.Operator, actual, threshold)
		}
		return res
	}

	p := i.newPass()
	ok, actual, threshold, err := i.covenantTest(p, stmt)
	res.Warnings = p.warnings
	if err != nil {
		res.Err = err.Error()
		return res
	}
	res.Actual = actual
	res.Threshold = threshold
	res.Compliant = ok
	res.HeadroomPct = headroomPct(stmt.Covenant.Operator, actual, threshold)
	return res
}

// covenantTest evaluates metric and the date-selected threshold and applies
// the operator exactly (no epsilon).
func (i *Interpreter) covenantTest(p *evalPass, stmt *model.Statement) (ok bool, actual, threshold float64, err error) {
	cov := stmt.Covenant
	av, err := p.eval(cov.Metric)
	if err != nil {
		return false, 0, 0, err
	}
	actual, err = asNumber(av, cov.Metric)
	if err != nil {
		return false, 0, 0, err
	}
	thExpr := i.selectThreshold(cov)
	tv, err := p.eval(thExpr)
	if err != nil {
		return false, 0, 0, err
	}
	threshold, err = asNumber(tv, thExpr)
	if err != nil {
		return false, 0, 0, err
	}
	switch cov.Operator {
	case model.OpLte:
		ok = actual <= threshold
	case model.OpGte:
		ok = actual >= threshold
	case model.OpLt:
		ok = actual < threshold
	case model.OpGt:
		ok = actual > threshold
	case model.OpEq:
		ok = actual == threshold
	default:
		return false, 0, 0, &EvalError{Code: CodeTypeMismatch, Msg: "unknown covenant operator " + cov.Operator}
	}
	return ok, actual, threshold, nil
}

// selectThreshold picks the step whose Until date has not passed, in declared
// order, falling back to the terminal threshold. Selection is a pure function
// of the injected current date.
func (i *Interpreter) selectThreshold(cov *model.CovenantDecl) *model.Expr {
	for _, step := range cov.Steps {
		if i.currentDate != "" && i.currentDate <= step.Until {
			return step.Threshold
		}
	}
	return cov.Threshold
}

func headroomPct(op string, actual, threshold float64) float64 {
	if threshold == 0 {
		return 0
	}
	switch op {
	case model.OpLte, model.OpLt:
		return (threshold - actual) / math.Abs(threshold) * 100
	case model.OpGte, model.OpGt:
		return (actual - threshold) / math.Abs(threshold) * 100
	case model.OpEq:
		return -math.Abs(actual-threshold) / math.Abs(threshold) * 100
	}
	return 0
}
