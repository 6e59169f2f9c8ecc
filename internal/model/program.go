package model

import "fmt"

// ElementKey identifies a statement by kind and name. It is the join key for
// amendments and for version diffing.
type ElementKey struct {
	Kind StatementKind `json:"kind"`
	Name string        `json:"name"`
}

func (k ElementKey) String() string {
	return string(k.Kind) + ":" + k.Name
}

// Program is an ordered arena of statements indexed by key. Edits swap whole
// *Statement pointers; statements themselves are never mutated in place, so
// compiled snapshots taken before an edit stay valid.
type Program struct {
	Statements []*Statement `json:"statements"`

	index map[ElementKey]int
}

// NewProgram builds a program and its key index. A duplicate (kind, name)
// pair is a parse-level defect and is rejected here.
func NewProgram(stmts []*Statement) (*Program, error) {
	p := &Program{Statements: stmts, index: make(map[ElementKey]int, len(stmts))}
	for i, s := range stmts {
		key := ElementKey{Kind: s.Kind, Name: s.Name}
		if _, dup := p.index[key]; dup {
			return nil, fmt.Errorf("duplicate statement %s", key)
		}
		p.index[key] = i
	}
	return p, nil
}

// reindex rebuilds the key index after a structural edit.
func (p *Program) reindex() {
	p.index = make(map[ElementKey]int, len(p.Statements))
	for i, s := range p.Statements {
		p.index[ElementKey{Kind: s.Kind, Name: s.Name}] = i
	}
}

// Lookup returns the statement for key, or nil.
func (p *Program) Lookup(kind StatementKind, name string) *Statement {
	if p.index == nil {
		p.reindex()
	}
	if i, ok := p.index[ElementKey{Kind: kind, Name: name}]; ok {
		return p.Statements[i]
	}
	return nil
}

// ByKind returns statements of one kind in declaration order.
func (p *Program) ByKind(kind StatementKind) []*Statement {
	var out []*Statement
	for _, s := range p.Statements {
		if s.Kind == kind {
			out = append(out, s)
		}
	}
	return out
}

// Replace swaps the statement under (kind, name) for stmt. The replacement
// must carry the same key.
func (p *Program) Replace(kind StatementKind, name string, stmt *Statement) error {
	if p.index == nil {
		p.reindex()
	}
	i, ok := p.index[ElementKey{Kind: kind, Name: name}]
	if !ok {
		return fmt.Errorf("no statement %s:%s", kind, name)
	}
	if stmt.Kind != kind || stmt.Name != name {
		return fmt.Errorf("replacement key %s:%s does not match target %s:%s",
			stmt.Kind, stmt.Name, kind, name)
	}
	p.Statements[i] = stmt
	return nil
}

// Add appends a new statement; the key must be unused.
func (p *Program) Add(stmt *Statement) error {
	if p.index == nil {
		p.reindex()
	}
	key := ElementKey{Kind: stmt.Kind, Name: stmt.Name}
	if _, dup := p.index[key]; dup {
		return fmt.Errorf("statement %s already exists", key)
	}
	p.Statements = append(p.Statements, stmt)
	p.index[key] = len(p.Statements) - 1
	return nil
}

// Remove deletes the statement under (kind, name).
func (p *Program) Remove(kind StatementKind, name string) error {
	if p.index == nil {
		p.reindex()
	}
	i, ok := p.index[ElementKey{Kind: kind, Name: name}]
	if !ok {
		return fmt.Errorf("no statement %s:%s", kind, name)
	}
	p.Statements = append(p.Statements[:i], p.Statements[i+1:]...)
	p.reindex()
	return nil
}
