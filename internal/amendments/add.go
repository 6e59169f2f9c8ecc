package amendments

import (
	"fmt"

	"github.com/wch1125/proviso-core/internal/model"
)

type AddHandler struct{}

func (h *AddHandler) Validate(prog *model.Program, amd *model.AmendmentDecl) []Message {
	if amd.NewStatement == nil {
		return []Message{{
			Level:   LevelCritical,
			Code:    "MISSING_STATEMENT",
			Message: "add amendment carries no statement",
		}}
	}
	if prog.Lookup(amd.NewStatement.Kind, amd.NewStatement.Name) != nil {
		return []Message{{
			Level:   LevelCritical,
			Code:    "ALREADY_EXISTS",
			Message: fmt.Sprintf("%s named %s already exists", amd.NewStatement.Kind, amd.NewStatement.Name),
		}}
	}
	return nil
}

func (h *AddHandler) Apply(prog *model.Program, amd *model.AmendmentDecl) []Message {
	if err := prog.Add(amd.NewStatement); err != nil {
		return []Message{{Level: LevelCritical, Code: "ADD_FAILED", Message: err.Error()}}
	}
	return nil
}
