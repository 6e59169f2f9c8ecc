package interp

import "github.com/wch1125/proviso-core/internal/model"

// CalcNode is one node of a calculation tree: the expression in source form,
// its value against current data, and its children. Defines expand
// recursively so the dashboard can show how a ratio was built up from raw
// metrics.
type CalcNode struct {
	Label    string      `json:"label,omitempty"`
	Expr     string      `json:"expr"`
	Value    any         `json:"value,omitempty"`
	Err      string      `json:"error,omitempty"`
	Children []*CalcNode `json:"children,omitempty"`
}

// GetCalculationTree builds the calculation tree for a named Define; false
// when no Define carries that name. A cyclic definition yields an error node
// rather than unbounded expansion.
func (i *Interpreter) GetCalculationTree(name string) (*CalcNode, bool) {
	stmt := i.prog.Lookup(model.KindDefine, name)
	if stmt == nil {
		return nil, false
	}
	seen := map[string]bool{name: true}
	node := i.buildCalcNode(stmt.Define.Formula, seen)
	node.Label = name
	return node, true
}

func (i *Interpreter) buildCalcNode(e *model.Expr, seen map[string]bool) *CalcNode {
	node := &CalcNode{Expr: e.Text()}
	v, _, err := i.EvaluateExpr(e)
	if err != nil {
		node.Err = err.Error()
	} else {
		node.Value = v
	}

	switch e.Kind {
	case model.ExprIdentifier:
		def := i.prog.Lookup(model.KindDefine, e.Name)
		if def == nil {
			return node
		}
		if seen[e.Name] {
			node.Err = circularDefinition([]string{e.Name}).Error()
			return node
		}
		seen[e.Name] = true
		child := i.buildCalcNode(def.Define.Formula, seen)
		child.Label = e.Name
		node.Children = append(node.Children, child)
		delete(seen, e.Name)
	case model.ExprBinary:
		node.Children = append(node.Children,
			i.buildCalcNode(e.Lhs, seen),
			i.buildCalcNode(e.Rhs, seen))
	case model.ExprCall:
		for _, a := range e.Args {
			node.Children = append(node.Children, i.buildCalcNode(a, seen))
		}
	}
	return node
}
