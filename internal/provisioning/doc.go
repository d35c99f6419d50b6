// Package provisioning runs the deploy, teardown and status flows of a zone.
//
// # Subpackages
//
//   - destroy/: confirmation-gated teardown of stacks and secrets
//
// # Core Types
//
// Context carries the plan, the per-invocation run, the secret manager and
// the observer. Phase defines a pipeline step with Name() and Provision()
// methods. State accumulates what earlier phases produced (secret
// references, the generated key pair) for the phases after them.
//
// Deploy phases run in this order and stop at the first error:
//
//	prerequisites → validation → secrets → network → certificate →
//	certificate-secrets → stacks
//
// Nothing is persisted between invocations. Status re-derives the zone
// from the remote stores every time it is called.
package provisioning
