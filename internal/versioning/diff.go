package versioning

import (
	"sort"

	"github.com/wch1125/proviso-core/internal/model"
)

// DiffKind labels how an element differs between two versions.
type DiffKind string

const (
	DiffAdded    DiffKind = "added"
	DiffRemoved  DiffKind = "removed"
	DiffModified DiffKind = "modified"
)

// FieldChange is one differing canonical field.
type FieldChange struct {
	Field  string `json:"field"`
	Before any    `json:"before,omitempty"`
	After  any    `json:"after,omitempty"`
}

// ElementDiff records how one element changed between versions.
type ElementDiff struct {
	Kind         DiffKind         `json:"kind"`
	Key          model.ElementKey `json:"key"`
	FieldChanges []FieldChange    `json:"field_changes,omitempty"`
}

// DiffStates compares two compiled states over the union of their keys.
// Present-in-both elements produce per-field changes only where canonical
// values differ; identical states yield a nil slice. Output order is
// deterministic: by kind, then name.
func DiffStates(a, b CompiledState) []ElementDiff {
	keys := make(map[model.ElementKey]bool, len(a)+len(b))
	for k := range a {
		keys[k] = true
	}
	for k := range b {
		keys[k] = true
	}
	ordered := make([]model.ElementKey, 0, len(keys))
	for k := range keys {
		ordered = append(ordered, k)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Kind != ordered[j].Kind {
			return ordered[i].Kind < ordered[j].Kind
		}
		return ordered[i].Name < ordered[j].Name
	})

	var diffs []ElementDiff
	for _, key := range ordered {
		av, inA := a[key]
		bv, inB := b[key]
		switch {
		case !inA:
			diffs = append(diffs, ElementDiff{Kind: DiffAdded, Key: key})
		case !inB:
			diffs = append(diffs, ElementDiff{Kind: DiffRemoved, Key: key})
		default:
			if changes := diffFields(av, bv); len(changes) > 0 {
				diffs = append(diffs, ElementDiff{Kind: DiffModified, Key: key, FieldChanges: changes})
			}
		}
	}
	return diffs
}

func diffFields(a, b CanonicalElement) []FieldChange {
	fields := make(map[string]bool, len(a)+len(b))
	for f := range a {
		fields[f] = true
	}
	for f := range b {
		fields[f] = true
	}
	ordered := make([]string, 0, len(fields))
	for f := range fields {
		ordered = append(ordered, f)
	}
	sort.Strings(ordered)

	var changes []FieldChange
	for _, f := range ordered {
		av, inA := a[f]
		bv, inB := b[f]
		if inA && inB && av == bv {
			continue
		}
		changes = append(changes, FieldChange{Field: f, Before: av, After: bv})
	}
	return changes
}
