package amendments

import (
	"fmt"

	"github.com/wch1125/proviso-core/internal/model"
)

const (
	OutcomeSuccess = "SUCCESS"
	OutcomeFailure = "FAILURE"
)

// ProcessedAmendment pairs an amendment with the messages it produced.
type ProcessedAmendment struct {
	Target         model.ElementKey `json:"target"`
	Action         model.AmendmentAction `json:"action"`
	MessageIndexes []int            `json:"message_indexes,omitempty"`
}

// Result is the outcome of running an ordered amendment list.
type Result struct {
	Outcome    string               `json:"outcome"`
	Messages   []Message            `json:"messages"`
	Amendments []ProcessedAmendment `json:"amendments"`
}

// Run applies amendments in order against the program, accumulating messages.
// A critical message stops the run; earlier edits stay applied, matching how
// an amendment list is executed clause by clause.
func Run(prog *model.Program, amds []*model.Statement) *Result {
	res := &Result{Outcome: OutcomeSuccess, Messages: []Message{}}

	for _, stmt := range amds {
		if stmt.Kind != model.KindAmendment || stmt.Amendment == nil {
			msg := Message{
				ID:      len(res.Messages),
				Level:   LevelCritical,
				Code:    "NOT_AN_AMENDMENT",
				Message: fmt.Sprintf("statement %s is not an amendment", stmt.Name),
			}
			res.Messages = append(res.Messages, msg)
			res.Outcome = OutcomeFailure
			break
		}
		amd := stmt.Amendment

		handler, ok := Get(amd.Action)
		if !ok {
			msg := Message{
				ID:      len(res.Messages),
				Level:   LevelCritical,
				Code:    "UNKNOWN_ACTION",
				Message: fmt.Sprintf("unknown amendment action: %s", amd.Action),
			}
			res.Messages = append(res.Messages, msg)
			res.Outcome = OutcomeFailure
			break
		}

		processed := ProcessedAmendment{
			Target: model.ElementKey{Kind: amd.TargetKind, Name: amd.TargetName},
			Action: amd.Action,
		}

		hasCritical := false
		for _, m := range handler.Validate(prog, amd) {
			m.ID = len(res.Messages)
			res.Messages = append(res.Messages, m)
			processed.MessageIndexes = append(processed.MessageIndexes, m.ID)
			if m.Level == LevelCritical {
				hasCritical = true
			}
		}
		if hasCritical {
			res.Amendments = append(res.Amendments, processed)
			res.Outcome = OutcomeFailure
			break
		}

		for _, m := range handler.Apply(prog, amd) {
			m.ID = len(res.Messages)
			res.Messages = append(res.Messages, m)
			processed.MessageIndexes = append(processed.MessageIndexes, m.ID)
			if m.Level == LevelCritical {
				hasCritical = true
			}
		}
		res.Amendments = append(res.Amendments, processed)
		if hasCritical {
			res.Outcome = OutcomeFailure
			break
		}
	}

	return res
}
