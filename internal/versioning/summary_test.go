package versioning

import (
	"context"
	"testing"

	json "github.com/goccy/go-json"

	"github.com/wch1125/proviso-core/internal/interp"
	"github.com/wch1125/proviso-core/internal/model"
)

// jsonParse decodes the wire form of a program, the same shape the HTTP
// handler accepts.
var jsonParse interp.ParseFunc = func(source string) (*model.Program, error) {
	var stmts []*model.Statement
	if err := json.Unmarshal([]byte(source), &stmts); err != nil {
		return nil, err
	}
	return model.NewProgram(stmts)
}

const covenantV1 = `[
	{"kind": "covenant", "name": "MaxLeverage", "covenant": {
		"metric": {"kind": "binary", "op": "/",
			"lhs": {"kind": "identifier", "name": "total_debt"},
			"rhs": {"kind": "identifier", "name": "ebitda"}},
		"operator": "<=",
		"threshold": {"kind": "number", "num": 4.50}
	}}
]`

const covenantV2 = `[
	{"kind": "covenant", "name": "MaxLeverage", "covenant": {
		"metric": {"kind": "binary", "op": "/",
			"lhs": {"kind": "identifier", "name": "total_debt"},
			"rhs": {"kind": "identifier", "name": "ebitda"}},
		"operator": "<=",
		"threshold": {"kind": "number", "num": 4.75}
	}}
]`

func TestComputeChangeSummary(t *testing.T) {
	sum, err := ComputeChangeSummary(context.Background(), jsonParse, covenantV1, covenantV2, 1, 2, "M. Okafor")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if sum.ComparisonID == "" {
		t.Fatal("comparison id must be assigned")
	}
	if sum.FromVersionNo != 1 || sum.ToVersionNo != 2 || sum.Author != "M. Okafor" {
		t.Fatalf("header fields: %+v", sum)
	}
	if sum.Total != 1 || len(sum.Changes) != 1 {
		t.Fatalf("expected one change, got %+v", sum.Changes)
	}
	if sum.Changes[0].Impact != BorrowerFavorable {
		t.Fatalf("impact: %s", sum.Changes[0].Impact)
	}
	if sum.CountsByImpact[string(BorrowerFavorable)] != 1 || sum.CountsByKind["covenant"] != 1 {
		t.Fatalf("counts: %+v %+v", sum.CountsByImpact, sum.CountsByKind)
	}
}

func TestComputeChangeSummaryParseError(t *testing.T) {
	if _, err := ComputeChangeSummary(context.Background(), jsonParse, "not json", covenantV2, 1, 2, ""); err == nil {
		t.Fatal("bad source must surface the parse error")
	}
}

func TestComputeChangeSummaryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ComputeChangeSummary(ctx, jsonParse, covenantV1, covenantV2, 1, 2, ""); err == nil {
		t.Fatal("cancelled context must abort before parsing")
	}
}

func TestSummaryIDsAreUnique(t *testing.T) {
	a, _ := ComputeChangeSummary(context.Background(), jsonParse, covenantV1, covenantV2, 1, 2, "")
	b, _ := ComputeChangeSummary(context.Background(), jsonParse, covenantV1, covenantV2, 1, 2, "")
	if a.ComparisonID == b.ComparisonID {
		t.Fatal("each comparison gets its own id")
	}
}
