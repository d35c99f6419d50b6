package stack

import (
	"fmt"
	"maps"
	"time"
)

// Record is the state of one stack within a Run.
type Record struct {
	Role      Role
	Name      string
	State     State
	Outputs   map[string]string
	Reason    string
	UpdatedAt time.Time
}

// Transition is a single recorded state change.
type Transition struct {
	Role   Role
	Name   string
	From   State
	To     State
	Reason string
	At     time.Time
}

var allowed = map[State][]State{
	NotApplied: {Applying, Applied, Deleted, Failed},
	Applying:   {Applied, Failed},
	Applied:    {Deleting},
	Deleting:   {Deleted, Failed},
	Failed:     {Deleting},
}

// Run tracks the stacks of one plan during a single invocation. It starts
// with every stack NOT_APPLIED and is discarded afterwards.
type Run struct {
	plan     *Plan
	records  map[Role]*Record
	history  []Transition
	watchers []func(Transition)
	now      func() time.Time
}

// NewRun starts a Run for plan.
func NewRun(plan *Plan) *Run {
	r := &Run{
		plan:    plan,
		records: make(map[Role]*Record, len(plan.Stacks)),
		now:     time.Now,
	}
	for _, s := range plan.Stacks {
		r.records[s.Role] = &Record{Role: s.Role, Name: s.Name, State: NotApplied}
	}
	return r
}

// Plan returns the plan the run was started for.
func (r *Run) Plan() *Plan {
	return r.plan
}

// Watch registers fn to be called on every transition.
func (r *Run) Watch(fn func(Transition)) {
	r.watchers = append(r.watchers, fn)
}

// State returns the state of role. Roles outside the plan are NOT_APPLIED.
func (r *Run) State(role Role) State {
	rec, ok := r.records[role]
	if !ok {
		return NotApplied
	}
	return rec.State
}

// Output returns a harvested output of role.
func (r *Run) Output(role Role, key string) (string, bool) {
	rec, ok := r.records[role]
	if !ok {
		return "", false
	}
	v, ok := rec.Outputs[key]
	return v, ok && v != ""
}

// Record returns a copy of the record of role.
func (r *Run) Record(role Role) (Record, bool) {
	rec, ok := r.records[role]
	if !ok {
		return Record{}, false
	}
	out := *rec
	out.Outputs = maps.Clone(rec.Outputs)
	return out, true
}

// Records returns copies of all records in plan order.
func (r *Run) Records() []Record {
	out := make([]Record, 0, len(r.plan.Stacks))
	for _, s := range r.plan.Stacks {
		rec, _ := r.Record(s.Role)
		out = append(out, rec)
	}
	return out
}

// History returns every transition in the order it happened.
func (r *Run) History() []Transition {
	return append([]Transition(nil), r.history...)
}

// InState returns the stack names currently in one of states, in plan order.
func (r *Run) InState(states ...State) []string {
	var names []string
	for _, s := range r.plan.Stacks {
		for _, st := range states {
			if r.records[s.Role].State == st {
				names = append(names, s.Name)
				break
			}
		}
	}
	return names
}

func (r *Run) transition(role Role, to State, reason string) error {
	rec, ok := r.records[role]
	if !ok {
		return fmt.Errorf("stack role %s is not part of the run", role)
	}
	valid := false
	for _, s := range allowed[rec.State] {
		if s == to {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("stack %s: invalid transition %s -> %s", rec.Name, rec.State, to)
	}

	t := Transition{Role: role, Name: rec.Name, From: rec.State, To: to, Reason: reason, At: r.now()}
	rec.State = to
	rec.Reason = reason
	rec.UpdatedAt = t.At
	r.history = append(r.history, t)
	for _, fn := range r.watchers {
		fn(t)
	}
	return nil
}

func (r *Run) setOutputs(role Role, outputs map[string]string) {
	if rec, ok := r.records[role]; ok {
		rec.Outputs = maps.Clone(outputs)
	}
}

func (r *Run) setReason(role Role, reason string) {
	if rec, ok := r.records[role]; ok {
		rec.Reason = reason
	}
}
