package interp

import (
	"time"

	"github.com/wch1125/proviso-core/internal/model"
)

// PhaseStatus names the active phase and the covenants it suspends.
type PhaseStatus struct {
	Name               string   `json:"name"`
	SuspendedCovenants []string `json:"suspended_covenants,omitempty"`
}

// Milestone status values.
const (
	MilestonePending  = "pending"
	MilestoneAtRisk   = "at_risk"
	MilestoneBreached = "breached"
	MilestoneAchieved = "achieved"
)

// MilestoneStatus is the derived state of one milestone.
type MilestoneStatus struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"` // milestone or technical_milestone
	Status       string `json:"status"`
	TargetDate   string `json:"target_date,omitempty"`
	LongstopDate string `json:"longstop_date,omitempty"`
	AchievedDate string `json:"achieved_date,omitempty"`
}

// CurrentPhase recomputes the active phase: transitions are evaluated in
// declaration order and the first whose predicate holds wins; the default is
// the first-declared phase. A failing predicate is treated as not taken.
func (i *Interpreter) CurrentPhase() PhaseStatus {
	phases := i.prog.ByKind(model.KindPhase)
	if len(phases) == 0 {
		return PhaseStatus{}
	}
	active := phases[0]
	for _, t := range i.prog.ByKind(model.KindTransition) {
		p := i.newPass()
		v, err := p.eval(t.Transition.When)
		if err != nil || !truthy(v) {
			continue
		}
		if target := i.prog.Lookup(model.KindPhase, t.Transition.To); target != nil {
			active = target
		}
		break
	}
	return PhaseStatus{
		Name:               active.Name,
		SuspendedCovenants: active.Phase.SuspendedCovenants,
	}
}

func (i *Interpreter) suspendedSet() map[string]bool {
	out := make(map[string]bool)
	for _, name := range i.CurrentPhase().SuspendedCovenants {
		out[name] = true
	}
	return out
}

// milestoneAchieved resolves a name against milestones and technical
// milestones for ALL_OF / ANY_OF predicates.
func (i *Interpreter) milestoneAchieved(name string) (achieved, found bool) {
	if s := i.prog.Lookup(model.KindMilestone, name); s != nil {
		return s.Milestone.Achieved, true
	}
	if s := i.prog.Lookup(model.KindTechnicalMilestone, name); s != nil {
		return s.TechnicalMilestone.Achieved, true
	}
	return false, false
}

// AllMilestoneStatuses derives the status of every milestone, construction and
// technical, from the injected current date.
func (i *Interpreter) AllMilestoneStatuses() []MilestoneStatus {
	var out []MilestoneStatus
	for _, s := range i.prog.ByKind(model.KindMilestone) {
		m := s.Milestone
		out = append(out, MilestoneStatus{
			Name:         s.Name,
			Kind:         string(model.KindMilestone),
			Status:       i.milestoneState(m.Achieved, m.LongstopDate),
			TargetDate:   m.TargetDate,
			LongstopDate: m.LongstopDate,
			AchievedDate: m.AchievedDate,
		})
	}
	for _, s := range i.prog.ByKind(model.KindTechnicalMilestone) {
		m := s.TechnicalMilestone
		out = append(out, MilestoneStatus{
			Name:         s.Name,
			Kind:         string(model.KindTechnicalMilestone),
			Status:       i.milestoneState(m.Achieved, m.LongstopDate),
			TargetDate:   m.TargetDate,
			LongstopDate: m.LongstopDate,
		})
	}
	return out
}

// milestoneState: achieved if flagged; breached past longstop; at_risk inside
// the warning window before longstop; otherwise pending.
func (i *Interpreter) milestoneState(achieved bool, longstop string) string {
	if achieved {
		return MilestoneAchieved
	}
	if longstop == "" || i.currentDate == "" {
		return MilestonePending
	}
	if i.currentDate > longstop {
		return MilestoneBreached
	}
	ls, err1 := time.Parse("2006-01-02", longstop)
	cur, err2 := time.Parse("2006-01-02", i.currentDate)
	if err1 == nil && err2 == nil {
		if ls.Sub(cur) <= time.Duration(i.warnWindowDays)*24*time.Hour {
			return MilestoneAtRisk
		}
	}
	return MilestonePending
}

// CPItemStatus is one checklist entry with its derived state.
type CPItemStatus struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	SectionRef  string `json:"section_ref,omitempty"`
	Category    string `json:"category,omitempty"`
	Status      string `json:"status"` // satisfied, waived, pending
}

// CPChecklist is the state of one conditions-precedent block.
type CPChecklist struct {
	Name      string         `json:"name"`
	Items     []CPItemStatus `json:"items"`
	Satisfied int            `json:"satisfied"`
	Waived    int            `json:"waived"`
	Pending   int            `json:"pending"`
	Complete  bool           `json:"complete"`
}

// GetCPChecklist reports the named conditions-precedent block; false when no
// block carries that name.
func (i *Interpreter) GetCPChecklist(name string) (CPChecklist, bool) {
	stmt := i.prog.Lookup(model.KindConditionsPrecedent, name)
	if stmt == nil {
		return CPChecklist{}, false
	}
	out := CPChecklist{Name: name}
	for _, item := range stmt.ConditionsPrecedent.Items {
		st := CPItemStatus{
			Name:        item.Name,
			Description: item.Description,
			SectionRef:  item.SectionRef,
			Category:    item.Category,
		}
		switch {
		case item.Waived:
			st.Status = "waived"
			out.Waived++
		case item.Satisfied:
			st.Status = "satisfied"
			out.Satisfied++
		default:
			st.Status = "pending"
			out.Pending++
		}
		out.Items = append(out.Items, st)
	}
	out.Complete = out.Pending == 0
	return out, true
}

// RegulatoryStatus is the derived state of one regulatory requirement.
type RegulatoryStatus struct {
	Name      string `json:"name"`
	Authority string `json:"authority,omitempty"`
	Deadline  string `json:"deadline"`
	Status    string `json:"status"` // obtained, overdue, pending
}

// AllRegulatoryStatuses derives each requirement's state from the injected
// current date.
func (i *Interpreter) AllRegulatoryStatuses() []RegulatoryStatus {
	var out []RegulatoryStatus
	for _, s := range i.prog.ByKind(model.KindRegulatoryRequirement) {
		r := s.RegulatoryRequirement
		st := RegulatoryStatus{Name: s.Name, Authority: r.Authority, Deadline: r.Deadline}
		switch {
		case r.Obtained:
			st.Status = "obtained"
		case i.currentDate != "" && r.Deadline != "" && i.currentDate > r.Deadline:
			st.Status = "overdue"
		default:
			st.Status = "pending"
		}
		out = append(out, st)
	}
	return out
}
