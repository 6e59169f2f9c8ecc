package amendments

import (
	"fmt"

	"github.com/wch1125/proviso-core/internal/model"
)

type ReplaceHandler struct{}

func (h *ReplaceHandler) Validate(prog *model.Program, amd *model.AmendmentDecl) []Message {
	var msgs []Message
	if amd.NewStatement == nil {
		return append(msgs, Message{
			Level:   LevelCritical,
			Code:    "MISSING_STATEMENT",
			Message: "replace amendment carries no replacement statement",
		})
	}
	if prog.Lookup(amd.TargetKind, amd.TargetName) == nil {
		msgs = append(msgs, Message{
			Level:   LevelCritical,
			Code:    "TARGET_NOT_FOUND",
			Message: fmt.Sprintf("no %s named %s", amd.TargetKind, amd.TargetName),
		})
	}
	if amd.NewStatement.Kind != amd.TargetKind || amd.NewStatement.Name != amd.TargetName {
		msgs = append(msgs, Message{
			Level:   LevelCritical,
			Code:    "KEY_MISMATCH",
			Message: fmt.Sprintf("replacement is %s:%s, target is %s:%s",
				amd.NewStatement.Kind, amd.NewStatement.Name, amd.TargetKind, amd.TargetName),
		})
	}
	return msgs
}

func (h *ReplaceHandler) Apply(prog *model.Program, amd *model.AmendmentDecl) []Message {
	if err := prog.Replace(amd.TargetKind, amd.TargetName, amd.NewStatement); err != nil {
		return []Message{{Level: LevelCritical, Code: "REPLACE_FAILED", Message: err.Error()}}
	}
	return nil
}
