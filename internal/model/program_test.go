package model

import "testing"

func stmt(kind StatementKind, name string) *Statement {
	s := &Statement{Kind: kind, Name: name}
	switch kind {
	case KindCovenant:
		s.Covenant = &CovenantDecl{Metric: Ident("x"), Operator: OpLte, Threshold: Num(1)}
	case KindBasket:
		s.Basket = &BasketDecl{BasketType: BasketFixed, Capacity: Num(1)}
	case KindDefine:
		s.Define = &DefineDecl{Formula: Num(1)}
	}
	return s
}

func TestNewProgramRejectsDuplicateKeys(t *testing.T) {
	_, err := NewProgram([]*Statement{
		stmt(KindCovenant, "MaxLeverage"),
		stmt(KindCovenant, "MaxLeverage"),
	})
	if err == nil {
		t.Fatal("duplicate (kind, name) must be rejected")
	}

	// The same name under different kinds is two distinct elements.
	prog, err := NewProgram([]*Statement{
		stmt(KindCovenant, "Liquidity"),
		stmt(KindDefine, "Liquidity"),
	})
	if err != nil {
		t.Fatalf("cross-kind name reuse is legal: %v", err)
	}
	if prog.Lookup(KindCovenant, "Liquidity") == nil || prog.Lookup(KindDefine, "Liquidity") == nil {
		t.Fatal("both elements must resolve")
	}
}

func TestReplaceRequiresMatchingKey(t *testing.T) {
	prog, _ := NewProgram([]*Statement{stmt(KindCovenant, "MaxLeverage")})

	if err := prog.Replace(KindCovenant, "MaxLeverage", stmt(KindCovenant, "Renamed")); err == nil {
		t.Fatal("replacement with a different name must fail")
	}
	if err := prog.Replace(KindCovenant, "NoSuch", stmt(KindCovenant, "NoSuch")); err == nil {
		t.Fatal("replacing a missing target must fail")
	}

	repl := stmt(KindCovenant, "MaxLeverage")
	repl.Covenant.Threshold = Num(9)
	if err := prog.Replace(KindCovenant, "MaxLeverage", repl); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if v, _ := prog.Lookup(KindCovenant, "MaxLeverage").Covenant.Threshold.ConstNumber(); v != 9 {
		t.Fatal("replacement not visible through lookup")
	}
}

func TestAddAndRemoveKeepIndexConsistent(t *testing.T) {
	prog, _ := NewProgram([]*Statement{
		stmt(KindCovenant, "A"),
		stmt(KindCovenant, "B"),
		stmt(KindBasket, "C"),
	})

	if err := prog.Add(stmt(KindCovenant, "A")); err == nil {
		t.Fatal("adding a duplicate key must fail")
	}
	if err := prog.Add(stmt(KindCovenant, "D")); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := prog.Remove(KindCovenant, "A"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := prog.Remove(KindCovenant, "A"); err == nil {
		t.Fatal("removing twice must fail")
	}

	// Index stays valid after the slice shifted.
	if prog.Lookup(KindCovenant, "D") == nil || prog.Lookup(KindBasket, "C") == nil {
		t.Fatal("surviving statements must still resolve")
	}
	if got := len(prog.ByKind(KindCovenant)); got != 2 {
		t.Fatalf("expected 2 covenants, got %d", got)
	}
}

func TestByKindPreservesDeclarationOrder(t *testing.T) {
	prog, _ := NewProgram([]*Statement{
		stmt(KindCovenant, "First"),
		stmt(KindBasket, "Middle"),
		stmt(KindCovenant, "Second"),
	})
	covs := prog.ByKind(KindCovenant)
	if len(covs) != 2 || covs[0].Name != "First" || covs[1].Name != "Second" {
		t.Fatalf("order: %+v", covs)
	}
}
