// Package testing provides in-memory fakes, builders and fixtures shared by tests.
//
// The fakes stand in for the remote collaborators of a deployment:
//   - FakeEngine: stack engine keeping remote stacks in a map
//   - MemoryStore: secret store keeping entries in a map
//   - FakeCertTool: certificate tool recording the requested hostnames
//
// Usage:
//
//	engine := testing.NewFakeEngine().
//	    WithOutputs("z1-vpc", testing.VPCOutputs())
//	store := testing.NewMemoryStore()
//	req := testing.NewDeployRequestBuilder().WithZone("z1").Build()
package testing
