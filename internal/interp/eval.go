package interp

import (
	"fmt"
	"math"

	"github.com/wch1125/proviso-core/internal/model"
)

// evalPass carries the state of one top-level evaluation: the resolving set
// for cycle detection, per-pass memoization of Define results, collected
// warnings, and an optional period override used by TRAILING.
type evalPass struct {
	i         *Interpreter
	resolving map[string]bool
	order     []string
	memo      map[string]any
	warnings  []Warning
	period    map[string]float64 // nil means resolve against the current period
}

func (i *Interpreter) newPass() *evalPass {
	return &evalPass{
		i:         i,
		resolving: make(map[string]bool),
		memo:      make(map[string]any),
	}
}

// EvaluateExpr evaluates an expression against the loaded environment and
// returns the value plus any warnings raised during the pass.
func (i *Interpreter) EvaluateExpr(e *model.Expr) (any, []Warning, error) {
	p := i.newPass()
	v, err := p.eval(e)
	return v, p.warnings, err
}

// EvaluateDefine resolves a named Define.
func (i *Interpreter) EvaluateDefine(name string) (any, []Warning, error) {
	p := i.newPass()
	v, err := p.resolveDefine(name)
	return v, p.warnings, err
}

func (p *evalPass) eval(e *model.Expr) (any, error) {
	if e == nil {
		return nil, &EvalError{Code: CodeTypeMismatch, Msg: "empty expression"}
	}
	switch e.Kind {
	case model.ExprNumber:
		return e.Num, nil
	case model.ExprString:
		return e.Str, nil
	case model.ExprIdentifier:
		return p.resolveIdent(e.Name)
	case model.ExprBinary:
		return p.evalBinary(e)
	case model.ExprCall:
		return p.evalCall(e)
	}
	return nil, &EvalError{Code: CodeTypeMismatch, Msg: "unknown expression kind " + string(e.Kind)}
}

// resolveIdent looks up a name: period override first (TRAILING), then
// Defines, then current-period metrics.
func (p *evalPass) resolveIdent(name string) (any, error) {
	if p.period != nil {
		if v, ok := p.period[name]; ok {
			return v, nil
		}
	}
	if p.i.prog.Lookup(model.KindDefine, name) != nil {
		return p.resolveDefine(name)
	}
	if p.period == nil {
		if v, ok := p.i.fin.Current()[name]; ok {
			return v, nil
		}
	}
	return nil, undefinedIdentifier(name)
}

// resolveDefine evaluates a Define with memoization and cycle detection. A
// name already in the resolving set means the definition graph is cyclic; the
// error names the cycle instead of recursing to stack exhaustion.
func (p *evalPass) resolveDefine(name string) (any, error) {
	// The memo holds current-period values only; under a TRAILING period
	// override it must be bypassed on read as well as write, or a Define
	// resolved earlier in the pass leaks into every historical period.
	if p.period == nil {
		if v, ok := p.memo[name]; ok {
			return v, nil
		}
	}
	if p.resolving[name] {
		cycle := append(append([]string{}, p.order...), name)
		return nil, circularDefinition(cycle)
	}
	stmt := p.i.prog.Lookup(model.KindDefine, name)
	if stmt == nil {
		return nil, undefinedIdentifier(name)
	}
	p.resolving[name] = true
	p.order = append(p.order, name)
	v, err := p.eval(stmt.Define.Formula)
	delete(p.resolving, name)
	p.order = p.order[:len(p.order)-1]
	if err != nil {
		return nil, err
	}
	// Memoize only when resolving against the current period; TRAILING
	// re-evaluates defines per historical period.
	if p.period == nil {
		p.memo[name] = v
	}
	return v, nil
}

func (p *evalPass) evalBinary(e *model.Expr) (any, error) {
	lv, err := p.eval(e.Lhs)
	if err != nil {
		return nil, err
	}

	// Short-circuit boolean operators.
	switch e.Op {
	case model.OpAnd:
		if !truthy(lv) {
			return false, nil
		}
		rv, err := p.eval(e.Rhs)
		if err != nil {
			return nil, err
		}
		return truthy(rv), nil
	case model.OpOr:
		if truthy(lv) {
			return true, nil
		}
		rv, err := p.eval(e.Rhs)
		if err != nil {
			return nil, err
		}
		return truthy(rv), nil
	}

	rv, err := p.eval(e.Rhs)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case model.OpEq:
		return looseEqual(lv, rv), nil
	case model.OpNeq:
		return !looseEqual(lv, rv), nil
	}

	ln, err := asNumber(lv, e.Lhs)
	if err != nil {
		return nil, err
	}
	rn, err := asNumber(rv, e.Rhs)
	if err != nil {
		return nil, err
	}

	switch e.Op {
	case model.OpAdd:
		return ln + rn, nil
	case model.OpSub:
		return ln - rn, nil
	case model.OpMul:
		return ln * rn, nil
	case model.OpDiv:
		if rn == 0 {
			return nil, divisionByZero(e.Text())
		}
		return ln / rn, nil
	// Comparisons are exact; the language defines tolerance only for flip
	// targets, at that call site.
	case model.OpLt:
		return ln < rn, nil
	case model.OpGt:
		return ln > rn, nil
	case model.OpLte:
		return ln <= rn, nil
	case model.OpGte:
		return ln >= rn, nil
	}
	return nil, &EvalError{Code: CodeTypeMismatch, Msg: "unknown operator " + e.Op}
}

func (p *evalPass) evalCall(e *model.Expr) (any, error) {
	switch e.Fn {
	case model.FnAvailable:
		name, err := argName(e, 0)
		if err != nil {
			return nil, err
		}
		return p.basketAvailable(name)

	case model.FnCompliant:
		name, err := argName(e, 0)
		if err != nil {
			return nil, err
		}
		return p.covenantCompliant(name)

	case model.FnExists:
		name, err := argName(e, 0)
		if err != nil {
			return nil, err
		}
		return p.exists(name), nil

	case model.FnTrailing:
		return p.evalTrailing(e)

	case model.FnGreaterOf, model.FnLesserOf:
		return p.evalExtremum(e)

	case model.FnAllOf, model.FnAnyOf:
		return p.evalMilestoneSet(e)

	case model.FnAbs:
		if len(e.Args) != 1 {
			return nil, &EvalError{Code: CodeTypeMismatch, Msg: "ABS takes one argument"}
		}
		v, err := p.eval(e.Args[0])
		if err != nil {
			return nil, err
		}
		n, err := asNumber(v, e.Args[0])
		if err != nil {
			return nil, err
		}
		return math.Abs(n), nil
	}
	return nil, &EvalError{Code: CodeTypeMismatch, Msg: "unknown function " + e.Fn}
}

// evalTrailing evaluates the inner expression against each of the last n
// periods and sums. Fewer than n available periods is a reportable condition,
// not a silent zero: the sum over the available periods is returned with an
// INSUFFICIENT_PERIODS warning so callers can distinguish "compliant" from
// "insufficient data".
func (p *evalPass) evalTrailing(e *model.Expr) (any, error) {
	// Periods arrives unvalidated from the wire.
	if e.Periods < 1 {
		return nil, &EvalError{
			Code: CodeTypeMismatch,
			Msg:  fmt.Sprintf("TRAILING window must be at least one period, got %d", e.Periods),
		}
	}
	periods, have := p.i.fin.Trailing(e.Periods)
	if have < e.Periods {
		p.warnings = append(p.warnings, Warning{
			Code: CodeInsufficientPeriods,
			Message: fmt.Sprintf("TRAILING %d requested but only %d period(s) loaded",
				e.Periods, have),
		})
	}
	saved := p.period
	defer func() { p.period = saved }()
	var sum float64
	for _, pd := range periods {
		p.period = pd.Data
		v, err := p.eval(e.Args[0])
		if err != nil {
			return nil, err
		}
		n, err := asNumber(v, e.Args[0])
		if err != nil {
			return nil, err
		}
		sum += n
	}
	return sum, nil
}

func (p *evalPass) evalExtremum(e *model.Expr) (any, error) {
	if len(e.Args) == 0 {
		return nil, &EvalError{Code: CodeTypeMismatch, Msg: e.Fn + " takes at least one argument"}
	}
	var best float64
	for idx, a := range e.Args {
		v, err := p.eval(a)
		if err != nil {
			return nil, err
		}
		n, err := asNumber(v, a)
		if err != nil {
			return nil, err
		}
		if idx == 0 {
			best = n
			continue
		}
		if e.Fn == model.FnGreaterOf && n > best {
			best = n
		}
		if e.Fn == model.FnLesserOf && n < best {
			best = n
		}
	}
	return best, nil
}

// evalMilestoneSet handles ALL_OF / ANY_OF. Bare identifiers naming a
// milestone resolve to its achieved flag; anything else evaluates normally
// and is tested for truthiness.
func (p *evalPass) evalMilestoneSet(e *model.Expr) (any, error) {
	all := e.Fn == model.FnAllOf
	for _, a := range e.Args {
		var ok bool
		if a.Kind == model.ExprIdentifier {
			if achieved, found := p.i.milestoneAchieved(a.Name); found {
				ok = achieved
			} else {
				v, err := p.eval(a)
				if err != nil {
					return nil, err
				}
				ok = truthy(v)
			}
		} else {
			v, err := p.eval(a)
			if err != nil {
				return nil, err
			}
			ok = truthy(v)
		}
		if all && !ok {
			return false, nil
		}
		if !all && ok {
			return true, nil
		}
	}
	return all, nil
}

// basketAvailable is the AVAILABLE builtin: capacity re-evaluated against
// current data minus cumulative usage. May be negative.
func (p *evalPass) basketAvailable(name string) (any, error) {
	stmt := p.i.prog.Lookup(model.KindBasket, name)
	if stmt == nil {
		return nil, &EvalError{Code: CodeUndefinedIdentifier, Name: name, Msg: "no such basket"}
	}
	cv, err := p.eval(stmt.Basket.Capacity)
	if err != nil {
		return nil, err
	}
	capN, err := asNumber(cv, stmt.Basket.Capacity)
	if err != nil {
		return nil, err
	}
	var used float64
	if entry, ok := p.i.baskets[name]; ok {
		used = entry.CumulativeUsed
	}
	return capN - used, nil
}

// covenantCompliant is the COMPLIANT builtin. The covenant's guard key joins
// the resolving set so a covenant whose metric references its own compliance
// reports a cycle instead of recursing.
func (p *evalPass) covenantCompliant(name string) (any, error) {
	stmt := p.i.prog.Lookup(model.KindCovenant, name)
	if stmt == nil {
		return nil, &EvalError{Code: CodeUndefinedIdentifier, Name: name, Msg: "no such covenant"}
	}
	guard := "covenant:" + name
	if p.resolving[guard] {
		cycle := append(append([]string{}, p.order...), guard)
		return nil, circularDefinition(cycle)
	}
	p.resolving[guard] = true
	p.order = append(p.order, guard)
	defer func() {
		delete(p.resolving, guard)
		p.order = p.order[:len(p.order)-1]
	}()
	ok, _, _, err := p.i.covenantTest(p, stmt)
	if err != nil {
		return nil, err
	}
	return ok, nil
}

func (p *evalPass) exists(name string) bool {
	for _, s := range p.i.prog.Statements {
		if s.Name == name {
			return true
		}
	}
	_, ok := p.i.fin.Current()[name]
	return ok
}

func argName(e *model.Expr, idx int) (string, error) {
	if idx >= len(e.Args) {
		return "", &EvalError{Code: CodeTypeMismatch, Msg: e.Fn + " is missing its argument"}
	}
	a := e.Args[idx]
	switch a.Kind {
	case model.ExprIdentifier:
		return a.Name, nil
	case model.ExprString:
		return a.Str, nil
	}
	return "", &EvalError{Code: CodeTypeMismatch, Msg: e.Fn + " takes a name argument"}
}

func asNumber(v any, e *model.Expr) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	}
	return 0, &EvalError{Code: CodeTypeMismatch, Msg: fmt.Sprintf("%s is not numeric", e.Text())}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case nil:
		return false
	}
	return true
}

func looseEqual(a, b any) bool {
	an, aok := a.(float64)
	bn, bok := b.(float64)
	if aok && bok {
		return an == bn
	}
	return a == b
}
