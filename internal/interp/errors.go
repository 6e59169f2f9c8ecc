package interp

import "fmt"

// Evaluator error codes. These abort a single evaluate call and propagate to
// the immediate caller; they never corrupt ledgers or other covenants'
// results.
const (
	CodeDivisionByZero      = "DIVISION_BY_ZERO"
	CodeCircularDefinition  = "CIRCULAR_DEFINITION"
	CodeUndefinedIdentifier = "UNDEFINED_IDENTIFIER"
	CodeTypeMismatch        = "TYPE_MISMATCH"
)

// Business failure reasons. Mutating operations return these in a
// {Success: false, Reason} result; they are expected outcomes, not defects,
// and always leave ledgers unchanged.
const (
	ReasonUnknownElement      = "UNKNOWN_ELEMENT"
	ReasonCureExhausted       = "CURE_EXHAUSTED"
	ReasonNoCureMechanism     = "NO_CURE_MECHANISM"
	ReasonInsufficientReserve = "INSUFFICIENT_RESERVE_BALANCE"
	ReasonReserveSelfRef      = "RESERVE_SELF_REFERENCE"
	ReasonConcurrentMutation  = "CONCURRENT_MUTATION"
	ReasonNotTriggered        = "NOT_TRIGGERED"
	ReasonAlreadyFlipped      = "ALREADY_FLIPPED"
	ReasonInvalidAmount       = "INVALID_AMOUNT"
)

// Warning codes attached to results without failing them.
const (
	CodeInsufficientPeriods = "INSUFFICIENT_PERIODS"
)

// EvalError is a typed evaluation failure.
type EvalError struct {
	Code string
	Name string // offending identifier, basket, covenant, ...
	Msg  string
}

func (e *EvalError) Error() string {
	if e.Name != "" {
		return e.Code + ": " + e.Name + ": " + e.Msg
	}
	return e.Code + ": " + e.Msg
}

func divisionByZero(context string) *EvalError {
	return &EvalError{Code: CodeDivisionByZero, Msg: "division by zero in " + context}
}

func circularDefinition(cycle []string) *EvalError {
	return &EvalError{
		Code: CodeCircularDefinition,
		Name: cycle[0],
		Msg:  fmt.Sprintf("definition cycle %v", cycle),
	}
}

func undefinedIdentifier(name string) *EvalError {
	return &EvalError{Code: CodeUndefinedIdentifier, Name: name, Msg: "not a metric, define, or element"}
}

// Warning is a non-fatal condition carried on a result.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
