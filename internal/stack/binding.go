package stack

import (
	"fmt"
)

// SourceKind tells where a parameter value comes from.
type SourceKind string

// Binding sources.
const (
	// SourceValue reads Inputs.Values[Key].
	SourceValue SourceKind = "value"
	// SourceSecret reads the secret reference Inputs.Secrets[Key].
	SourceSecret SourceKind = "secret"
	// SourceStackName is the stack name of Role in the current zone.
	SourceStackName SourceKind = "stack-name"
	// SourceOutput is output Key of the APPLIED stack of Role.
	SourceOutput SourceKind = "output"
)

// Input value keys understood by Value bindings.
const (
	ValueZone        = "zone"
	ValueVPCCIDR     = "vpc-cidr"
	ValueSubnet1CIDR = "subnet1-cidr"
	ValueSubnet2CIDR = "subnet2-cidr"
	ValueKDSAddress  = "kds-address"
	ValueCPID        = "cp-id"
)

// Binding maps one template parameter to its source.
type Binding struct {
	Parameter string
	Kind      SourceKind
	Key       string
	Role      Role
	Optional  bool
}

// Value binds parameter to a request value.
func Value(parameter, key string) Binding {
	return Binding{Parameter: parameter, Kind: SourceValue, Key: key}
}

// Secret binds parameter to the reference of a zone secret.
func Secret(parameter, purpose string) Binding {
	return Binding{Parameter: parameter, Kind: SourceSecret, Key: purpose}
}

// StackName binds parameter to the stack name of role.
func StackName(parameter string, role Role) Binding {
	return Binding{Parameter: parameter, Kind: SourceStackName, Role: role}
}

// Output binds parameter to an output of the stack of role.
func Output(parameter string, role Role, output string) Binding {
	return Binding{Parameter: parameter, Kind: SourceOutput, Role: role, Key: output}
}

// AsOptional returns a copy of b that is omitted when its value is empty.
func (b Binding) AsOptional() Binding {
	b.Optional = true
	return b
}

func (b Binding) describe() string {
	switch b.Kind {
	case SourceStackName:
		return fmt.Sprintf("stack name of %s", b.Role)
	case SourceOutput:
		return fmt.Sprintf("output %s of %s", b.Key, b.Role)
	default:
		return fmt.Sprintf("%s %q", b.Kind, b.Key)
	}
}

// Inputs carries the request values and secret references bindings read from.
type Inputs struct {
	Values  map[string]string
	Secrets map[string]string
}

// Parameter is a resolved template parameter.
type Parameter struct {
	Key   string
	Value string
}

// MissingInputError is returned when a required binding has no value.
type MissingInputError struct {
	Stack     string
	Parameter string
	Source    string
}

func (e *MissingInputError) Error() string {
	return fmt.Sprintf("stack %s: parameter %s has no value (%s)", e.Stack, e.Parameter, e.Source)
}

// Resolve computes the ordered parameter list of a planned stack.
// Optional bindings without a value are left out so the template default
// applies.
func Resolve(p Planned, plan *Plan, run *Run, in Inputs) ([]Parameter, error) {
	params := make([]Parameter, 0, len(p.Node.Bindings))
	for _, b := range p.Node.Bindings {
		var v string
		switch b.Kind {
		case SourceValue:
			v = in.Values[b.Key]
		case SourceSecret:
			v = in.Secrets[b.Key]
		case SourceStackName:
			v = plan.StackName(b.Role)
		case SourceOutput:
			if run.State(b.Role) == Applied {
				v, _ = run.Output(b.Role, b.Key)
			}
		default:
			return nil, fmt.Errorf("stack %s: parameter %s has unknown source kind %q", p.Name, b.Parameter, b.Kind)
		}

		if v == "" {
			if b.Optional {
				continue
			}
			return nil, &MissingInputError{Stack: p.Name, Parameter: b.Parameter, Source: b.describe()}
		}
		params = append(params, Parameter{Key: b.Parameter, Value: v})
	}
	return params, nil
}
