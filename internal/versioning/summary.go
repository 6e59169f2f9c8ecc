package versioning

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wch1125/proviso-core/internal/interp"
	"github.com/wch1125/proviso-core/internal/model"
)

// ChangeSummary aggregates a classified comparison of two agreement versions.
// Produced fresh per comparison and never persisted inside the interpreter.
type ChangeSummary struct {
	ComparisonID  string         `json:"comparison_id"`
	FromVersionNo int            `json:"from_version_no"`
	ToVersionNo   int            `json:"to_version_no"`
	Author        string         `json:"author,omitempty"`
	GeneratedAt   string         `json:"generated_at"`
	DurationMs    int64          `json:"duration_ms"`
	Changes       []Change       `json:"changes"`
	CountsByKind  map[string]int `json:"counts_by_kind"`
	CountsByImpact map[string]int `json:"counts_by_impact"`
	Total         int            `json:"total"`
}

// ComputeChangeSummary parses both versions with the supplied parser, compiles
// and diffs them, and classifies every change. The parse step is the only
// boundary that honors ctx; diffing itself is synchronous and CPU-bound.
func ComputeChangeSummary(ctx context.Context, parse interp.ParseFunc,
	fromCode, toCode string, fromVer, toVer int, author string) (*ChangeSummary, error) {

	start := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fromProg, err := parse(fromCode)
	if err != nil {
		return nil, fmt.Errorf("parse version %d: %w", fromVer, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	toProg, err := parse(toCode)
	if err != nil {
		return nil, fmt.Errorf("parse version %d: %w", toVer, err)
	}

	return SummarizePrograms(fromProg, toProg, fromVer, toVer, author, start), nil
}

// SummarizePrograms compares two already-parsed programs.
func SummarizePrograms(fromProg, toProg *model.Program, fromVer, toVer int,
	author string, start time.Time) *ChangeSummary {

	fromState := Compile(fromProg)
	toState := Compile(toProg)
	changes := ClassifyDiff(DiffStates(fromState, toState), fromState, toState)

	sum := &ChangeSummary{
		ComparisonID:   uuid.New().String(),
		FromVersionNo:  fromVer,
		ToVersionNo:    toVer,
		Author:         author,
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		DurationMs:     time.Since(start).Milliseconds(),
		Changes:        changes,
		CountsByKind:   make(map[string]int),
		CountsByImpact: make(map[string]int),
		Total:          len(changes),
	}
	for _, c := range changes {
		sum.CountsByKind[string(c.Key.Kind)]++
		sum.CountsByImpact[string(c.Impact)]++
	}
	return sum
}
