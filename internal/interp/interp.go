package interp

import (
	"fmt"
	"sync/atomic"

	"github.com/wch1125/proviso-core/internal/model"
)

// ParseFunc is the external parser collaborator: source text in, program out.
type ParseFunc func(source string) (*model.Program, error)

// Interpreter evaluates one agreement against loaded financial data. Each
// loaded agreement owns its own Interpreter with its own ledgers; there are no
// module-level singletons. The instance is single-threaded by design: mutating
// operations are protected by a re-entrancy guard that fails fast rather than
// corrupting ledger state, and read-only queries may be issued freely between
// mutations.
type Interpreter struct {
	prog *model.Program
	fin  *model.FinancialData

	// currentDate is injected, never wall-clock, so historical evaluation is
	// deterministic. ISO YYYY-MM-DD; empty means no date-gated logic applies.
	currentDate string

	// warnWindowDays is the at-risk window before a milestone longstop.
	warnWindowDays int

	baskets    map[string]*BasketLedgerEntry
	cures      map[string]*CureLedgerEntry // keyed by mechanism, not covenant
	reserves   map[string]float64
	structures map[string]*structureState

	mutating atomic.Bool
}

// New builds an interpreter over a parsed program with empty ledgers. Reserve
// balances start at their declared initial values.
func New(prog *model.Program) *Interpreter {
	i := &Interpreter{
		prog:           prog,
		warnWindowDays: 90,
		baskets:        make(map[string]*BasketLedgerEntry),
		cures:          make(map[string]*CureLedgerEntry),
		reserves:       make(map[string]float64),
		structures:     make(map[string]*structureState),
	}
	for _, s := range prog.ByKind(model.KindReserve) {
		i.reserves[s.Name] = s.Reserve.InitialBalance
	}
	for _, s := range prog.ByKind(model.KindTaxEquityStructure) {
		i.structures[s.Name] = &structureState{}
	}
	return i
}

// LoadFromCode parses source with the supplied parser and constructs a fresh
// interpreter. Ledgers of any prior instance are discarded, not migrated.
func LoadFromCode(source string, parse ParseFunc) (*Interpreter, error) {
	prog, err := parse(source)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	return New(prog), nil
}

// Program exposes the live AST (for the amendment applier and compiler).
func (i *Interpreter) Program() *model.Program { return i.prog }

// SetCurrentDate injects the evaluation date (YYYY-MM-DD).
func (i *Interpreter) SetCurrentDate(date string) { i.currentDate = date }

// CurrentDate returns the injected evaluation date.
func (i *Interpreter) CurrentDate() string { return i.currentDate }

// SetWarningWindowDays configures the milestone at-risk window.
func (i *Interpreter) SetWarningWindowDays(days int) { i.warnWindowDays = days }

// LoadFinancials replaces the loaded financial data wholesale.
func (i *Interpreter) LoadFinancials(fd *model.FinancialData) error {
	if !i.beginMutation() {
		return fmt.Errorf("%s: financials load while another mutation is in flight", ReasonConcurrentMutation)
	}
	defer i.endMutation()
	i.fin = fd
	return nil
}

// LoadFinancialsJSON accepts either a flat metric map or a multi-period
// payload.
func (i *Interpreter) LoadFinancialsJSON(raw []byte) error {
	fd, err := model.ParseFinancials(raw)
	if err != nil {
		return err
	}
	return i.LoadFinancials(fd)
}

// HasMultiPeriodData reports whether more than one period is loaded.
func (i *Interpreter) HasMultiPeriodData() bool {
	return i.fin.MultiPeriod()
}

// beginMutation acquires the re-entrancy guard. Callers of mutating
// operations must not overlap; a false return means another mutation is
// mid-flight and the caller should fail with ReasonConcurrentMutation.
func (i *Interpreter) beginMutation() bool {
	return i.mutating.CompareAndSwap(false, true)
}

func (i *Interpreter) endMutation() {
	i.mutating.Store(false)
}
