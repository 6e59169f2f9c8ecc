package versioning

import (
	"testing"

	"github.com/wch1125/proviso-core/internal/model"
)

func classifyBetween(t *testing.T, from, to *model.Program) []Change {
	t.Helper()
	fromState := Compile(from)
	toState := Compile(to)
	return ClassifyDiff(DiffStates(fromState, toState), fromState, toState)
}

func singleChange(t *testing.T, changes []Change) Change {
	t.Helper()
	if len(changes) != 1 {
		t.Fatalf("expected exactly one change, got %+v", changes)
	}
	return changes[0]
}

func TestCeilingCovenantLoosenedIsBorrowerFavorable(t *testing.T) {
	ch := singleChange(t, classifyBetween(t,
		mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50))),
		mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.75))),
	))
	if ch.Impact != BorrowerFavorable {
		t.Fatalf("raising a leverage ceiling favors the borrower, got %s", ch.Impact)
	}
	if ch.Field != "threshold" || ch.BeforeValue != 4.50 || ch.AfterValue != 4.75 {
		t.Fatalf("change detail: %+v", ch)
	}
}

func TestCeilingCovenantTightenedIsLenderFavorable(t *testing.T) {
	ch := singleChange(t, classifyBetween(t,
		mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50))),
		mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.25))),
	))
	if ch.Impact != LenderFavorable {
		t.Fatalf("lowering a leverage ceiling favors the lender, got %s", ch.Impact)
	}
}

func TestFloorCovenantDirectionInverts(t *testing.T) {
	// For a >= covenant a higher floor is tighter.
	ch := singleChange(t, classifyBetween(t,
		mustProgram(t, covenantStmt("MinDSCR", model.Ident("dscr"), model.OpGte, model.Num(1.20))),
		mustProgram(t, covenantStmt("MinDSCR", model.Ident("dscr"), model.OpGte, model.Num(1.30))),
	))
	if ch.Impact != LenderFavorable {
		t.Fatalf("raising a DSCR floor favors the lender, got %s", ch.Impact)
	}

	ch = singleChange(t, classifyBetween(t,
		mustProgram(t, covenantStmt("MinDSCR", model.Ident("dscr"), model.OpGte, model.Num(1.20))),
		mustProgram(t, covenantStmt("MinDSCR", model.Ident("dscr"), model.OpGte, model.Num(1.10))),
	))
	if ch.Impact != BorrowerFavorable {
		t.Fatalf("lowering a DSCR floor favors the borrower, got %s", ch.Impact)
	}
}

func TestBasketCapacityIncreaseIsBorrowerFavorable(t *testing.T) {
	basketAt := func(cap float64) *model.Program {
		return mustProgram(t, &model.Statement{Kind: model.KindBasket, Name: "RPBasket", Basket: &model.BasketDecl{
			BasketType: model.BasketFixed, Capacity: model.Num(cap),
		}})
	}
	ch := singleChange(t, classifyBetween(t, basketAt(25_000_000), basketAt(40_000_000)))
	if ch.Impact != BorrowerFavorable {
		t.Fatalf("a bigger basket favors the borrower, got %s", ch.Impact)
	}
	ch = singleChange(t, classifyBetween(t, basketAt(25_000_000), basketAt(10_000_000)))
	if ch.Impact != LenderFavorable {
		t.Fatalf("a smaller basket favors the lender, got %s", ch.Impact)
	}
}

func TestReserveTargetIncreaseIsLenderFavorable(t *testing.T) {
	reserveAt := func(target float64) *model.Program {
		return mustProgram(t, &model.Statement{Kind: model.KindReserve, Name: "DSRA", Reserve: &model.ReserveDecl{
			Target: model.Num(target),
		}})
	}
	ch := singleChange(t, classifyBetween(t, reserveAt(5_000_000), reserveAt(7_500_000)))
	if ch.Impact != LenderFavorable {
		t.Fatalf("a larger required reserve favors the lender, got %s", ch.Impact)
	}
}

func TestStepDatePulledEarlierIsLenderFavorable(t *testing.T) {
	withStep := func(until string) *model.Program {
		return mustProgram(t, &model.Statement{Kind: model.KindCovenant, Name: "MaxLeverage", Covenant: &model.CovenantDecl{
			Metric: leverage(), Operator: model.OpLte, Threshold: model.Num(4.00),
			Steps: []model.ThresholdStep{{Until: until, Threshold: model.Num(5.00)}},
		}})
	}
	ch := singleChange(t, classifyBetween(t, withStep("2026-12-31"), withStep("2026-06-30")))
	if ch.Impact != LenderFavorable {
		t.Fatalf("ending a looser step earlier favors the lender, got %s", ch.Impact)
	}
}

func TestAddedAndRemovedElements(t *testing.T) {
	empty := mustProgram(t)
	withCovenant := mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50)))
	withBasket := mustProgram(t, &model.Statement{Kind: model.KindBasket, Name: "RPBasket", Basket: &model.BasketDecl{
		BasketType: model.BasketFixed, Capacity: model.Num(25_000_000),
	}})

	if ch := singleChange(t, classifyBetween(t, empty, withCovenant)); ch.Impact != LenderFavorable {
		t.Fatalf("a new covenant favors the lender, got %s", ch.Impact)
	}
	if ch := singleChange(t, classifyBetween(t, withCovenant, empty)); ch.Impact != BorrowerFavorable {
		t.Fatalf("removing a covenant favors the borrower, got %s", ch.Impact)
	}
	if ch := singleChange(t, classifyBetween(t, empty, withBasket)); ch.Impact != BorrowerFavorable {
		t.Fatalf("a new basket favors the borrower, got %s", ch.Impact)
	}
	if ch := singleChange(t, classifyBetween(t, withBasket, empty)); ch.Impact != LenderFavorable {
		t.Fatalf("removing a basket favors the lender, got %s", ch.Impact)
	}
}

func TestMetricRewriteIsUnclear(t *testing.T) {
	ch := singleChange(t, classifyBetween(t,
		mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50))),
		mustProgram(t, covenantStmt("MaxLeverage",
			model.Binary(model.OpDiv, model.Ident("net_debt"), model.Ident("ebitda")), model.OpLte, model.Num(4.50))),
	))
	if ch.Impact != Unclear {
		t.Fatalf("a metric definition rewrite needs human review, got %s", ch.Impact)
	}
}

func TestChangesCarrySectionReferences(t *testing.T) {
	ch := singleChange(t, classifyBetween(t,
		mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.50))),
		mustProgram(t, covenantStmt("MaxLeverage", leverage(), model.OpLte, model.Num(4.75))),
	))
	if ch.SectionReference == "" {
		t.Fatal("every change carries a section reference")
	}
}
