package testing

import (
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// ControlPlaneAddress is the load balancer name the fake vpc stack reports.
const ControlPlaneAddress = "z1-cp-1234567890.us-east-1.elb.amazonaws.com"

// VPCOutputs returns the outputs of a successfully applied vpc stack.
func VPCOutputs() map[string]string {
	return map[string]string{
		stack.OutputExternalCPAddress: ControlPlaneAddress,
		"VPC":                         "vpc-0abc",
		"PublicSubnet1":               "subnet-01",
		"PublicSubnet2":               "subnet-02",
	}
}

// ZoneEngine returns a FakeEngine whose vpc stack for zone reports VPCOutputs.
func ZoneEngine(zone string) *FakeEngine {
	return NewFakeEngine().WithOutputs(zone+"-vpc", VPCOutputs())
}
