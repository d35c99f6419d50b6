package cloudformation

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/naming"
)

// Destroy deletes a stack and waits until it is gone.
func (e *Engine) Destroy(ctx context.Context, name string) (stack.DestroyResult, error) {
	_, err := e.api.DeleteStack(ctx, &cloudformation.DeleteStackInput{
		StackName:          aws.String(name),
		ClientRequestToken: aws.String(naming.RequestToken("delete", e.newToken())),
	})
	if err != nil {
		if msg, ok := rejection(err); ok {
			return stack.DestroyResult{State: stack.Failed, Reason: msg}, nil
		}
		return stack.DestroyResult{}, fmt.Errorf("delete stack %s: %w", name, err)
	}

	waitErr := e.deleteWaiter().Wait(ctx, describeInput(name), e.maxWait)
	if waitErr == nil {
		return stack.DestroyResult{State: stack.Deleted}, nil
	}

	desc, err := e.Describe(ctx, name)
	if err != nil {
		return stack.DestroyResult{}, fmt.Errorf("wait for stack %s deletion: %w", name, errors.Join(waitErr, err))
	}
	if !desc.Exists {
		return stack.DestroyResult{State: stack.Deleted}, nil
	}
	if types.StackStatus(desc.Status) == types.StackStatusDeleteFailed {
		return stack.DestroyResult{State: stack.Failed, Reason: e.failureReason(ctx, desc)}, nil
	}
	return stack.DestroyResult{}, fmt.Errorf("wait for stack %s deletion: %w", name, waitErr)
}
