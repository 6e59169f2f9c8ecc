package interp

import (
	"testing"

	"github.com/wch1125/proviso-core/internal/model"
)

func basket(name string, kind model.BasketKind, capacity *model.Expr) *model.Statement {
	return &model.Statement{Kind: model.KindBasket, Name: name, Basket: &model.BasketDecl{
		BasketType: kind, Capacity: capacity,
	}}
}

func TestAvailableIsCapacityMinusUsed(t *testing.T) {
	in := New(mustProgram(t, basket("Capex", model.BasketFixed, model.Num(100))))
	loadFlat(t, in, map[string]float64{})

	in.UseBasket("Capex", 30, "")
	in.UseBasket("Capex", 25, "")

	avail, _, err := in.BasketAvailable("Capex")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if avail != 45 {
		t.Fatalf("expected 45, got %v", avail)
	}
}

func TestOverdraftIsRepresentableNotClamped(t *testing.T) {
	in := New(mustProgram(t, basket("Capex", model.BasketFixed, model.Num(100))))
	loadFlat(t, in, map[string]float64{})

	res := in.UseBasket("Capex", 150, "over the top")
	if !res.Success {
		t.Fatalf("overdraft draw must be recorded: %s", res.Reason)
	}
	avail, _, _ := in.BasketAvailable("Capex")
	if avail != -50 {
		t.Fatalf("expected -50, got %v", avail)
	}
	statuses := in.AllBasketStatuses()
	if len(statuses) != 1 || !statuses[0].Overdrawn {
		t.Fatalf("status must flag overdraft: %+v", statuses)
	}
}

func TestGrowerCapacityTracksFinancials(t *testing.T) {
	in := New(mustProgram(t,
		define("EBITDA", model.Ident("ebitda")),
		basket("GeneralBasket", model.BasketGrower,
			model.Call(model.FnGreaterOf,
				model.Num(50),
				model.Binary(model.OpMul, model.Ident("EBITDA"), model.Num(0.1)))),
	))
	loadFlat(t, in, map[string]float64{"ebitda": 400})

	avail, _, err := in.BasketAvailable("GeneralBasket")
	if err != nil {
		t.Fatalf("available: %v", err)
	}
	if avail != 50 {
		t.Fatalf("expected GreaterOf(50, 40) = 50, got %v", avail)
	}

	// Capacity is re-evaluated per query, never cached.
	loadFlat(t, in, map[string]float64{"ebitda": 900})
	avail, _, _ = in.BasketAvailable("GeneralBasket")
	if avail != 90 {
		t.Fatalf("expected 90 after reload, got %v", avail)
	}
}

func TestLedgerInvariantUsedEqualsHistorySum(t *testing.T) {
	in := New(mustProgram(t, basket("Capex", model.BasketFixed, model.Num(1000))))
	loadFlat(t, in, map[string]float64{})

	for _, amt := range []float64{10, 20, 30, 40} {
		in.UseBasket("Capex", amt, "")
	}
	history, _ := in.BasketHistory("Capex")
	var sum float64
	for _, rec := range history {
		sum += rec.Amount
	}
	used, _ := in.BasketUsed("Capex")
	if used != sum || used != 100 {
		t.Fatalf("cumulative %v must equal history sum %v", used, sum)
	}
}

func TestAmendmentPreservesBasketUsage(t *testing.T) {
	in := New(mustProgram(t, basket("Capex", model.BasketFixed, model.Num(100))))
	loadFlat(t, in, map[string]float64{})
	in.UseBasket("Capex", 60, "pre-amendment draw")

	res := in.ApplyAmendment(&model.Statement{
		Kind: model.KindAmendment, Name: "FirstAmendment",
		Amendment: &model.AmendmentDecl{
			Action:       model.AmendReplace,
			TargetKind:   model.KindBasket,
			TargetName:   "Capex",
			NewStatement: basket("Capex", model.BasketFixed, model.Num(200)),
		},
	})
	if !res.Success {
		t.Fatalf("amendment failed: %s", res.Reason)
	}

	used, _ := in.BasketUsed("Capex")
	if used != 60 {
		t.Fatalf("utilization history must survive a capacity amendment, got %v", used)
	}
	avail, _, _ := in.BasketAvailable("Capex")
	if avail != 140 {
		t.Fatalf("expected 200 - 60 = 140, got %v", avail)
	}
}

func TestAmendmentWithExplicitResetZeroesUsage(t *testing.T) {
	in := New(mustProgram(t, basket("Capex", model.BasketFixed, model.Num(100))))
	loadFlat(t, in, map[string]float64{})
	in.UseBasket("Capex", 60, "")

	res := in.ApplyAmendment(&model.Statement{
		Kind: model.KindAmendment, Name: "ResetAmendment",
		Amendment: &model.AmendmentDecl{
			Action:       model.AmendReplace,
			TargetKind:   model.KindBasket,
			TargetName:   "Capex",
			NewStatement: basket("Capex", model.BasketFixed, model.Num(200)),
			ResetLedger:  true,
		},
	})
	if !res.Success {
		t.Fatalf("amendment failed: %s", res.Reason)
	}
	used, _ := in.BasketUsed("Capex")
	if used != 0 {
		t.Fatalf("explicit reset must zero usage, got %v", used)
	}
}

func TestUseBasketUnknownElement(t *testing.T) {
	in := New(mustProgram(t))
	loadFlat(t, in, map[string]float64{})

	res := in.UseBasket("Ghost", 10, "")
	if res.Success || res.Reason != ReasonUnknownElement {
		t.Fatalf("expected UNKNOWN_ELEMENT, got %+v", res)
	}
}

func TestDivisionByZeroInBasketCapacity(t *testing.T) {
	in := New(mustProgram(t,
		basket("Ratio", model.BasketGrower,
			model.Binary(model.OpDiv, model.Ident("a"), model.Ident("b"))),
	))
	loadFlat(t, in, map[string]float64{"a": 10, "b": 0})

	_, _, err := in.BasketAvailable("Ratio")
	if err == nil {
		t.Fatal("expected DIVISION_BY_ZERO from capacity expression")
	}
}
