package stack

// Role is a stack role within a zone.
type Role string

// Known roles, in declared order.
const (
	RoleVPC          Role = "vpc"
	RoleControlPlane Role = "control-plane"
	RoleIngress      Role = "ingress"
	RoleRedis        Role = "redis"
	RoleDemoApp      Role = "demo-app"
)

func (r Role) String() string {
	return string(r)
}

// State is the lifecycle state of a stack within a Run.
type State string

// Stack lifecycle states.
const (
	NotApplied State = "NOT_APPLIED"
	Applying   State = "APPLYING"
	Applied    State = "APPLIED"
	Failed     State = "FAILED"
	Deleting   State = "DELETING"
	Deleted    State = "DELETED"
)

func (s State) String() string {
	return string(s)
}

// InFlight reports whether an operation was started but never resolved.
func (s State) InFlight() bool {
	return s == Applying || s == Deleting
}

// Outputs of the vpc stack consumed elsewhere.
const (
	// OutputExternalCPAddress is the DNS name of the control plane load
	// balancer. It is the certificate's primary hostname and the CPAddress
	// parameter of every workload stack.
	OutputExternalCPAddress = "ExternalCPAddress"
)

// IAM capabilities acknowledged when applying a template.
const (
	CapabilityIAM      = "CAPABILITY_IAM"
	CapabilityNamedIAM = "CAPABILITY_NAMED_IAM"
)
