package amendments

import "github.com/wch1125/proviso-core/internal/model"

// Message is one validation or application note produced while processing an
// amendment.
type Message struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

// Handler is the contract for amendment actions. Validate checks business
// rules without touching the program; Apply performs the whole-statement
// edit. Statements are swapped, never mutated in place, so compiled
// snapshots taken before the amendment stay valid.
type Handler interface {
	Validate(prog *model.Program, amd *model.AmendmentDecl) []Message
	Apply(prog *model.Program, amd *model.AmendmentDecl) []Message
}
