package versioning

import (
	"testing"

	"github.com/wch1125/proviso-core/internal/model"
)

func mustProgram(t *testing.T, stmts ...*model.Statement) *model.Program {
	t.Helper()
	prog, err := model.NewProgram(stmts)
	if err != nil {
		t.Fatalf("program: %v", err)
	}
	return prog
}

func covenantStmt(name string, metric *model.Expr, op string, threshold *model.Expr) *model.Statement {
	return &model.Statement{Kind: model.KindCovenant, Name: name, Covenant: &model.CovenantDecl{
		Metric: metric, Operator: op, Threshold: threshold,
	}}
}

func leverage() *model.Expr {
	return model.Binary(model.OpDiv, model.Ident("total_debt"), model.Ident("ebitda"))
}

func TestIdenticalProgramsDiffEmpty(t *testing.T) {
	build := func() *model.Program {
		return mustProgram(t,
			covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50)),
			&model.Statement{Kind: model.KindBasket, Name: "GeneralBasket", Basket: &model.BasketDecl{
				BasketType: model.BasketFixed, Capacity: model.Num(25_000_000),
			}},
		)
	}
	diffs := DiffStates(Compile(build()), Compile(build()))
	if diffs != nil {
		t.Fatalf("identical programs must diff empty, got %+v", diffs)
	}
}

func TestAssociativeReorderingIsNotAChange(t *testing.T) {
	// a + b vs b + a, and GreaterOf argument order.
	a := mustProgram(t,
		&model.Statement{Kind: model.KindDefine, Name: "TotalDebt", Define: &model.DefineDecl{
			Formula: model.Binary(model.OpAdd, model.Ident("senior_debt"), model.Ident("sub_debt")),
		}},
		&model.Statement{Kind: model.KindBasket, Name: "RPBasket", Basket: &model.BasketDecl{
			BasketType: model.BasketGrower,
			Capacity:   model.Call(model.FnGreaterOf, model.Num(50), model.Binary(model.OpMul, model.Ident("ebitda"), model.Num(0.1))),
		}},
	)
	b := mustProgram(t,
		&model.Statement{Kind: model.KindDefine, Name: "TotalDebt", Define: &model.DefineDecl{
			Formula: model.Binary(model.OpAdd, model.Ident("sub_debt"), model.Ident("senior_debt")),
		}},
		&model.Statement{Kind: model.KindBasket, Name: "RPBasket", Basket: &model.BasketDecl{
			BasketType: model.BasketGrower,
			Capacity:   model.Call(model.FnGreaterOf, model.Binary(model.OpMul, model.Num(0.1), model.Ident("ebitda")), model.Num(50)),
		}},
	)
	if diffs := DiffStates(Compile(a), Compile(b)); diffs != nil {
		t.Fatalf("reordered commutative operands must not diff, got %+v", diffs)
	}
}

func TestAddedRemovedModified(t *testing.T) {
	from := mustProgram(t,
		covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50)),
		covenantStmt("MinDSCR", model.Ident("dscr"), model.OpGte, model.Num(1.20)),
	)
	to := mustProgram(t,
		covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.75)),
		&model.Statement{Kind: model.KindReserve, Name: "DSRA", Reserve: &model.ReserveDecl{InitialBalance: 5_000_000}},
	)

	diffs := DiffStates(Compile(from), Compile(to))
	if len(diffs) != 3 {
		t.Fatalf("expected 3 diffs, got %+v", diffs)
	}

	byKey := map[model.ElementKey]ElementDiff{}
	for _, d := range diffs {
		byKey[d.Key] = d
	}
	mod := byKey[model.ElementKey{Kind: model.KindCovenant, Name: "MaxLeverage"}]
	if mod.Kind != DiffModified || len(mod.FieldChanges) != 1 {
		t.Fatalf("MaxLeverage: %+v", mod)
	}
	fc := mod.FieldChanges[0]
	if fc.Field != "threshold" || fc.Before != 4.50 || fc.After != 4.75 {
		t.Fatalf("threshold change: %+v", fc)
	}
	if byKey[model.ElementKey{Kind: model.KindCovenant, Name: "MinDSCR"}].Kind != DiffRemoved {
		t.Fatal("MinDSCR must be removed")
	}
	if byKey[model.ElementKey{Kind: model.KindReserve, Name: "DSRA"}].Kind != DiffAdded {
		t.Fatal("DSRA must be added")
	}
}

func TestDeclarationOrderIgnored(t *testing.T) {
	a := mustProgram(t,
		covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50)),
		covenantStmt("MinDSCR", model.Ident("dscr"), model.OpGte, model.Num(1.20)),
	)
	b := mustProgram(t,
		covenantStmt("MinDSCR", model.Ident("dscr"), model.OpGte, model.Num(1.20)),
		covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50)),
	)
	if diffs := DiffStates(Compile(a), Compile(b)); diffs != nil {
		t.Fatalf("declaration order must not matter, got %+v", diffs)
	}
}

func TestStepScheduleFieldsSurface(t *testing.T) {
	step := func(until string, thr float64) model.ThresholdStep {
		return model.ThresholdStep{Until: until, Threshold: model.Num(thr)}
	}
	from := mustProgram(t, &model.Statement{Kind: model.KindCovenant, Name: "MaxLeverage", Covenant: &model.CovenantDecl{
		Metric: leverage(), Operator: model.OpLte, Threshold: model.Num(4.00),
		Steps: []model.ThresholdStep{step("2026-12-31", 5.00), step("2027-12-31", 4.50)},
	}})
	to := mustProgram(t, &model.Statement{Kind: model.KindCovenant, Name: "MaxLeverage", Covenant: &model.CovenantDecl{
		Metric: leverage(), Operator: model.OpLte, Threshold: model.Num(4.00),
		Steps: []model.ThresholdStep{step("2026-06-30", 5.00), step("2027-12-31", 4.50)},
	}})

	diffs := DiffStates(Compile(from), Compile(to))
	if len(diffs) != 1 || len(diffs[0].FieldChanges) != 1 {
		t.Fatalf("expected one field change, got %+v", diffs)
	}
	if diffs[0].FieldChanges[0].Field != "step_1_until" {
		t.Fatalf("field: %+v", diffs[0].FieldChanges[0])
	}
}
