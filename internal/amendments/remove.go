package amendments

import (
	"fmt"

	"github.com/wch1125/proviso-core/internal/model"
)

type RemoveHandler struct{}

func (h *RemoveHandler) Validate(prog *model.Program, amd *model.AmendmentDecl) []Message {
	if prog.Lookup(amd.TargetKind, amd.TargetName) == nil {
		return []Message{{
			Level:   LevelCritical,
			Code:    "TARGET_NOT_FOUND",
			Message: fmt.Sprintf("no %s named %s", amd.TargetKind, amd.TargetName),
		}}
	}
	return nil
}

func (h *RemoveHandler) Apply(prog *model.Program, amd *model.AmendmentDecl) []Message {
	if err := prog.Remove(amd.TargetKind, amd.TargetName); err != nil {
		return []Message{{Level: LevelCritical, Code: "REMOVE_FAILED", Message: err.Error()}}
	}
	return nil
}
