package cloudformation

import (
	"errors"
	"strings"

	"github.com/aws/smithy-go"
)

// CloudFormation error codes.
const (
	codeValidationError = "ValidationError"
	codeThrottling      = "Throttling"
)

func apiError(err error) (smithy.APIError, bool) {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// isNotExist matches the ValidationError DescribeStacks returns for an
// unknown stack name.
func isNotExist(err error) bool {
	apiErr, ok := apiError(err)
	return ok && apiErr.ErrorCode() == codeValidationError &&
		strings.Contains(apiErr.ErrorMessage(), "does not exist")
}

func isNoUpdates(err error) bool {
	apiErr, ok := apiError(err)
	return ok && apiErr.ErrorCode() == codeValidationError &&
		strings.Contains(apiErr.ErrorMessage(), "No updates are to be performed")
}

func isThrottle(err error) bool {
	apiErr, ok := apiError(err)
	if !ok {
		return false
	}
	switch apiErr.ErrorCode() {
	case codeThrottling, "ThrottlingException", "RequestLimitExceeded", "TooManyRequestsException":
		return true
	}
	return false
}

// rejection returns the service message when CloudFormation refused a
// request outright, so the stack was never touched.
func rejection(err error) (string, bool) {
	apiErr, ok := apiError(err)
	if !ok || isThrottle(err) {
		return "", false
	}
	msg := apiErr.ErrorMessage()
	if msg == "" {
		msg = apiErr.ErrorCode()
	}
	return msg, true
}
