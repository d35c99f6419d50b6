// Package destroy handles zone teardown.
//
// The stacks of a zone are deleted in reverse plan order, keeping going
// when one of them fails, and the zone secrets are removed afterwards
// unless they are kept for a redeploy. Nothing is touched until the
// confirmation gate has approved the exact list of resources.
package destroy
