package cloudformation

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
)

// appliedStatus reports whether a stack finished an apply successfully.
func appliedStatus(s types.StackStatus) bool {
	switch s {
	case types.StackStatusCreateComplete,
		types.StackStatusUpdateComplete,
		types.StackStatusImportComplete:
		return true
	}
	return false
}

// failedStatus reports whether a stack settled in a state that an apply
// cannot recover from by waiting longer.
func failedStatus(s types.StackStatus) bool {
	switch s {
	case types.StackStatusCreateFailed,
		types.StackStatusRollbackComplete,
		types.StackStatusRollbackFailed,
		types.StackStatusDeleteFailed,
		types.StackStatusDeleteComplete,
		types.StackStatusUpdateFailed,
		types.StackStatusUpdateRollbackComplete,
		types.StackStatusUpdateRollbackFailed,
		types.StackStatusImportRollbackComplete,
		types.StackStatusImportRollbackFailed:
		return true
	}
	return false
}

func inProgressStatus(s types.StackStatus) bool {
	return strings.HasSuffix(string(s), "_IN_PROGRESS")
}

func failedResourceStatus(s types.ResourceStatus) bool {
	return strings.HasSuffix(string(s), "_FAILED")
}
