// Package cloudformation is the stack.Engine backed by AWS CloudFormation.
//
// Apply creates a stack that does not exist and updates one that does,
// then blocks on the SDK waiter until the stack settles. Destroy deletes
// and waits the same way. After a waiter error the stack is described
// once more: a terminal failure status is reported as FAILED, anything
// else is returned as an error because the outcome is not known.
package cloudformation
