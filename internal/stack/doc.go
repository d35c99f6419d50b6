// Package stack orders, applies and tears down the CloudFormation stacks of a zone.
//
// The static dependency Graph declares each stack role, its template, the
// roles whose outputs it consumes and how its parameters are bound. A Plan
// is the graph's topological order for one zone, filtered by skip flags;
// teardown walks the same plan in reverse.
//
// The two traversals are separate types with separate policies:
//
//   - Applier is fail-fast. The first stack that fails (or whose wait
//     cannot be resolved) aborts the rest of the plan. Stacks applied
//     before it are left in place.
//   - Destroyer continues on error. A stack that fails to delete is
//     recorded and the walk moves on, except that stacks still needed by a
//     surviving dependent are left alone.
//
// Both record per-stack transitions in a Run, which lives for a single
// invocation only. Every decision about remote state goes through the
// Engine.
package stack
