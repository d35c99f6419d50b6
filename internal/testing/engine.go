package testing

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// Engine operations recorded by FakeEngine.
const (
	OpApply    = "apply"
	OpDestroy  = "destroy"
	OpDescribe = "describe"
)

// Call is one recorded engine call.
type Call struct {
	Op   string
	Name string
}

// RemoteStack is the fake remote view of a stack.
type RemoteStack struct {
	Status     string
	Outputs    map[string]string
	Parameters []stack.Parameter
	Tags       map[string]string
}

// FakeEngine is an in-memory stack.Engine. Stacks that apply successfully
// exist with status CREATE_COMPLETE (or UPDATE_COMPLETE), failed applies
// leave a ROLLBACK_COMPLETE stack, deletes remove the entry.
type FakeEngine struct {
	mu sync.Mutex

	stacks         map[string]*RemoteStack
	outputs        map[string]map[string]string
	applyFailures  map[string]string
	applyErrors    map[string]error
	destroyFailure map[string]string
	destroyErrors  map[string]error
	describeErrors map[string]error
	calls          []Call
}

// NewFakeEngine returns an empty FakeEngine.
func NewFakeEngine() *FakeEngine {
	return &FakeEngine{
		stacks:         map[string]*RemoteStack{},
		outputs:        map[string]map[string]string{},
		applyFailures:  map[string]string{},
		applyErrors:    map[string]error{},
		destroyFailure: map[string]string{},
		destroyErrors:  map[string]error{},
		describeErrors: map[string]error{},
	}
}

// WithOutputs sets the outputs a successful apply of name produces.
func (f *FakeEngine) WithOutputs(name string, outputs map[string]string) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outputs[name] = maps.Clone(outputs)
	return f
}

// FailApply makes the apply of name end in FAILED with reason.
func (f *FakeEngine) FailApply(name, reason string) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyFailures[name] = reason
	return f
}

// ErrApply makes the apply wait of name return err.
func (f *FakeEngine) ErrApply(name string, err error) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applyErrors[name] = err
	return f
}

// FailDestroy makes the delete of name end in FAILED with reason.
func (f *FakeEngine) FailDestroy(name, reason string) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyFailure[name] = reason
	return f
}

// ErrDestroy makes the delete wait of name return err.
func (f *FakeEngine) ErrDestroy(name string, err error) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyErrors[name] = err
	return f
}

// ErrDescribe makes describing name return err.
func (f *FakeEngine) ErrDescribe(name string, err error) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describeErrors[name] = err
	return f
}

// Seed creates name remotely as if an earlier invocation had applied it.
func (f *FakeEngine) Seed(name string, outputs map[string]string) *FakeEngine {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stacks[name] = &RemoteStack{Status: "CREATE_COMPLETE", Outputs: maps.Clone(outputs)}
	return f
}

// Apply implements stack.Engine.
func (f *FakeEngine) Apply(_ context.Context, in stack.ApplyInput) (stack.ApplyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: OpApply, Name: in.Name})

	status := "CREATE_COMPLETE"
	if _, ok := f.stacks[in.Name]; ok {
		status = "UPDATE_COMPLETE"
	}
	remote := &RemoteStack{
		Parameters: slices.Clone(in.Parameters),
		Tags:       maps.Clone(in.Tags),
	}
	f.stacks[in.Name] = remote

	if err, ok := f.applyErrors[in.Name]; ok {
		remote.Status = "CREATE_IN_PROGRESS"
		return stack.ApplyResult{}, err
	}
	if reason, ok := f.applyFailures[in.Name]; ok {
		remote.Status = "ROLLBACK_COMPLETE"
		return stack.ApplyResult{State: stack.Failed, Reason: reason}, nil
	}

	remote.Status = status
	remote.Outputs = maps.Clone(f.outputs[in.Name])
	return stack.ApplyResult{State: stack.Applied, Outputs: maps.Clone(remote.Outputs)}, nil
}

// Destroy implements stack.Engine.
func (f *FakeEngine) Destroy(_ context.Context, name string) (stack.DestroyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: OpDestroy, Name: name})

	if err, ok := f.destroyErrors[name]; ok {
		if s, exists := f.stacks[name]; exists {
			s.Status = "DELETE_IN_PROGRESS"
		}
		return stack.DestroyResult{}, err
	}
	if reason, ok := f.destroyFailure[name]; ok {
		if s, exists := f.stacks[name]; exists {
			s.Status = "DELETE_FAILED"
		}
		return stack.DestroyResult{State: stack.Failed, Reason: reason}, nil
	}
	delete(f.stacks, name)
	return stack.DestroyResult{State: stack.Deleted}, nil
}

// Describe implements stack.Engine.
func (f *FakeEngine) Describe(_ context.Context, name string) (stack.Description, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Call{Op: OpDescribe, Name: name})

	if err, ok := f.describeErrors[name]; ok {
		return stack.Description{}, err
	}
	s, ok := f.stacks[name]
	if !ok {
		return stack.Description{Name: name}, nil
	}
	return stack.Description{Name: name, Exists: true, Status: s.Status, Outputs: maps.Clone(s.Outputs)}, nil
}

// Exists reports whether name exists remotely.
func (f *FakeEngine) Exists(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.stacks[name]
	return ok
}

// Stack returns a copy of the remote view of name.
func (f *FakeEngine) Stack(name string) (RemoteStack, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.stacks[name]
	if !ok {
		return RemoteStack{}, false
	}
	return RemoteStack{
		Status:     s.Status,
		Outputs:    maps.Clone(s.Outputs),
		Parameters: slices.Clone(s.Parameters),
		Tags:       maps.Clone(s.Tags),
	}, true
}

// Names returns the names of all existing stacks, sorted.
func (f *FakeEngine) Names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Sorted(maps.Keys(f.stacks))
}

// Calls returns every recorded call.
func (f *FakeEngine) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallsFor returns the stack names passed to op, in call order.
func (f *FakeEngine) CallsFor(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, c := range f.calls {
		if c.Op == op {
			names = append(names, c.Name)
		}
	}
	return names
}

// Parameters returns the parameters of the last apply of name as a map.
func (f *FakeEngine) Parameters(name string) map[string]string {
	s, ok := f.Stack(name)
	if !ok {
		return nil
	}
	out := make(map[string]string, len(s.Parameters))
	for _, p := range s.Parameters {
		out[p.Key] = p.Value
	}
	return out
}
