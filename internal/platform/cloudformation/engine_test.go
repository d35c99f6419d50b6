package cloudformation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/labels"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/retry"
)

const vpcTemplate = "AWSTemplateFormatVersion: '2010-09-09'\nResources: {}\n"

func templatesDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
	return dir
}

func newTestEngine(t *testing.T, api *fakeAPI, opts ...Option) *Engine {
	t.Helper()
	dir := templatesDir(t, map[string]string{"vpc.yaml": vpcTemplate})
	base := []Option{
		WithWaiterDelay(time.Millisecond, time.Millisecond),
		WithRetry(retry.WithInitialDelay(time.Millisecond), retry.WithMaxDelay(time.Millisecond)),
		WithTokenGenerator(func() string { return "00000000-0000-0000-0000-000000000001" }),
		WithMaxWait(5 * time.Second),
	}
	return New(api, dir, append(base, opts...)...)
}

func vpcInput() stack.ApplyInput {
	return stack.ApplyInput{
		Name:     "z1-vpc",
		Role:     stack.RoleVPC,
		Template: "vpc.yaml",
		Parameters: []stack.Parameter{
			{Key: "Zone", Value: "z1"},
			{Key: "VPCCIDR", Value: "10.0.0.0/16"},
		},
		Tags: labels.NewLabelBuilder("z1").WithRole("vpc").Build(),
	}
}

func TestApply_CreatesAbsentStack(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.createOutputs = map[string]string{stack.OutputExternalCPAddress: "cp.elb.amazonaws.com"}
	engine := newTestEngine(t, api)

	in := vpcInput()
	in.Capabilities = []string{stack.CapabilityIAM}
	res, err := engine.Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, stack.Applied, res.State)
	assert.Equal(t, "cp.elb.amazonaws.com", res.Outputs[stack.OutputExternalCPAddress])

	require.Len(t, api.creates, 1)
	create := api.creates[0]
	assert.Equal(t, "z1-vpc", aws.ToString(create.StackName))
	assert.Equal(t, vpcTemplate, aws.ToString(create.TemplateBody))
	assert.Nil(t, create.TemplateURL)
	assert.Equal(t, []types.Capability{types.CapabilityCapabilityIam}, create.Capabilities)
	assert.Equal(t, "kmecs-create-00000000-0000-0000-0000-000000000001", aws.ToString(create.ClientRequestToken))
	require.Len(t, create.Parameters, 2)
	assert.Equal(t, "Zone", aws.ToString(create.Parameters[0].ParameterKey))
	assert.Equal(t, "10.0.0.0/16", aws.ToString(create.Parameters[1].ParameterValue))
	require.Len(t, create.Tags, 3)
	assert.Equal(t, labels.KeyManagedBy, aws.ToString(create.Tags[0].Key))
	assert.Empty(t, api.updates)
}

func TestApply_CreateRollsBack(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.createStatuses = []types.StackStatus{
		types.StackStatusCreateInProgress,
		types.StackStatusRollbackInProgress,
		types.StackStatusRollbackComplete,
	}
	api.createReason = "The following resource(s) failed to create: [VPC]."
	api.createEvents = []types.StackEvent{
		{LogicalResourceId: aws.String("z1-vpc"), ResourceStatus: types.ResourceStatusRollbackComplete},
		{LogicalResourceId: aws.String("PublicSubnet"), ResourceStatus: types.ResourceStatusCreateFailed, ResourceStatusReason: aws.String("Resource creation cancelled")},
		{LogicalResourceId: aws.String("VPC"), ResourceStatus: types.ResourceStatusCreateFailed, ResourceStatusReason: aws.String("CIDR overlaps")},
		{LogicalResourceId: aws.String("z1-vpc"), ResourceStatus: types.ResourceStatusCreateInProgress, ResourceStatusReason: aws.String(userInitiated)},
		{LogicalResourceId: aws.String("OldResource"), ResourceStatus: types.ResourceStatusDeleteFailed, ResourceStatusReason: aws.String("from an older run")},
	}
	engine := newTestEngine(t, api)

	res, err := engine.Apply(context.Background(), vpcInput())
	require.NoError(t, err)
	assert.Equal(t, stack.Failed, res.State)
	assert.Equal(t, "VPC: CIDR overlaps", res.Reason)
}

func TestApply_FailureReasonFallsBackToStatusReason(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.createStatuses = []types.StackStatus{types.StackStatusCreateFailed}
	api.createReason = "Template error"
	api.eventsErr = errors.New("denied")
	engine := newTestEngine(t, api)

	res, err := engine.Apply(context.Background(), vpcInput())
	require.NoError(t, err)
	assert.Equal(t, stack.Failed, res.State)
	assert.Equal(t, "Template error", res.Reason)
}

func TestApply_UpdatesPresentStack(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.seed("z1-vpc", types.StackStatusCreateComplete, map[string]string{"VpcId": "vpc-1"})
	engine := newTestEngine(t, api)

	res, err := engine.Apply(context.Background(), vpcInput())
	require.NoError(t, err)
	assert.Equal(t, stack.Applied, res.State)
	assert.Equal(t, "vpc-1", res.Outputs["VpcId"])
	assert.Empty(t, api.creates)
	require.Len(t, api.updates, 1)
	assert.True(t, strings.HasPrefix(aws.ToString(api.updates[0].ClientRequestToken), "kmecs-update-"))
}

func TestApply_NoUpdatesIsSuccess(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.seed("z1-vpc", types.StackStatusUpdateComplete, map[string]string{"VpcId": "vpc-1"})
	api.updateErr = &smithy.GenericAPIError{Code: codeValidationError, Message: "No updates are to be performed."}
	engine := newTestEngine(t, api)

	res, err := engine.Apply(context.Background(), vpcInput())
	require.NoError(t, err)
	assert.Equal(t, stack.Applied, res.State)
	assert.Equal(t, "vpc-1", res.Outputs["VpcId"])
}

func TestApply_RollbackCompleteMustBeTornDown(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.seed("z1-vpc", types.StackStatusRollbackComplete, nil)
	engine := newTestEngine(t, api)

	res, err := engine.Apply(context.Background(), vpcInput())
	require.NoError(t, err)
	assert.Equal(t, stack.Failed, res.State)
	assert.Contains(t, res.Reason, "ROLLBACK_COMPLETE")
	assert.Empty(t, api.creates)
	assert.Empty(t, api.updates)
}

func TestApply_BusyStack(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.seed("z1-vpc", types.StackStatusUpdateInProgress, nil)
	engine := newTestEngine(t, api)

	res, err := engine.Apply(context.Background(), vpcInput())
	require.NoError(t, err)
	assert.Equal(t, stack.Failed, res.State)
	assert.Contains(t, res.Reason, "busy")
}

func TestApply_RejectedRequest(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.createErr = &smithy.GenericAPIError{Code: codeValidationError, Message: "Parameters: [KDSAddress] must have values"}
	engine := newTestEngine(t, api)

	res, err := engine.Apply(context.Background(), vpcInput())
	require.NoError(t, err)
	assert.Equal(t, stack.Failed, res.State)
	assert.Equal(t, "Parameters: [KDSAddress] must have values", res.Reason)
}

func TestApply_TransportErrorIsIndeterminate(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.createErr = errors.New("connection reset by peer")
	engine := newTestEngine(t, api)

	_, err := engine.Apply(context.Background(), vpcInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create stack z1-vpc")
}

func TestApply_WaitTimeoutIsIndeterminate(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	api.createStatuses = []types.StackStatus{types.StackStatusCreateInProgress}
	engine := newTestEngine(t, api, WithMaxWait(20*time.Millisecond))

	_, err := engine.Apply(context.Background(), vpcInput())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wait for stack z1-vpc")
}

func TestApply_MissingTemplate(t *testing.T) {
	t.Parallel()

	api := newFakeAPI()
	engine := newTestEngine(t, api)

	in := vpcInput()
	in.Template = "missing.yaml"
	res, err := engine.Apply(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, stack.Failed, res.State)
	assert.Contains(t, res.Reason, "missing.yaml")
	assert.Zero(t, api.describes)
}

func TestApply_LargeTemplate(t *testing.T) {
	t.Parallel()

	large := vpcTemplate + "# " + strings.Repeat("x", MaxTemplateBodySize) + "\n"

	t.Run("rejected without bucket", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		dir := templatesDir(t, map[string]string{"controlplane.yaml": large})
		engine := New(api, dir, WithWaiterDelay(time.Millisecond, time.Millisecond))

		in := vpcInput()
		in.Template = "controlplane.yaml"
		res, err := engine.Apply(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, stack.Failed, res.State)
		assert.Contains(t, res.Reason, "--template-bucket")
		assert.Empty(t, api.creates)
	})

	t.Run("uploaded with bucket", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		uploader := &fakeUploader{}
		dir := templatesDir(t, map[string]string{"controlplane.yaml": large})
		engine := New(api, dir,
			WithWaiterDelay(time.Millisecond, time.Millisecond),
			WithUploader(uploader, "tpl-bucket"))

		in := vpcInput()
		in.Name = "z1-control-plane"
		in.Role = stack.RoleControlPlane
		in.Template = "controlplane.yaml"
		res, err := engine.Apply(context.Background(), in)
		require.NoError(t, err)
		assert.Equal(t, stack.Applied, res.State)

		require.Len(t, uploader.puts, 1)
		put := uploader.puts[0]
		assert.Equal(t, "tpl-bucket", put.bucket)
		assert.True(t, strings.HasPrefix(put.key, "kmecs/z1/control-plane-"), put.key)
		assert.Equal(t, []byte(large), put.body)

		require.Len(t, api.creates, 1)
		assert.Nil(t, api.creates[0].TemplateBody)
		assert.Equal(t, "https://tpl-bucket.s3.us-east-1.amazonaws.com/"+put.key, aws.ToString(api.creates[0].TemplateURL))
		assert.Equal(t, []string{"tpl-bucket/" + put.key}, uploader.deletes)
	})

	t.Run("upload failure", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		uploader := &fakeUploader{putErr: errors.New("access denied")}
		engine := newTestEngine(t, api, WithUploader(uploader, "tpl-bucket"))

		res, err := engine.Apply(context.Background(), vpcInput())
		require.NoError(t, err)
		assert.Equal(t, stack.Failed, res.State)
		assert.Contains(t, res.Reason, "upload template vpc.yaml")
		assert.Empty(t, api.creates)
	})
}

func TestDescribe(t *testing.T) {
	t.Parallel()

	t.Run("absent", func(t *testing.T) {
		t.Parallel()
		engine := newTestEngine(t, newFakeAPI())
		desc, err := engine.Describe(context.Background(), "z1-vpc")
		require.NoError(t, err)
		assert.False(t, desc.Exists)
		assert.Equal(t, "z1-vpc", desc.Name)
	})

	t.Run("present with outputs", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		api.seed("z1-vpc", types.StackStatusCreateComplete, map[string]string{"ExternalCPAddress": "cp"})
		engine := newTestEngine(t, api)

		desc, err := engine.Describe(context.Background(), "z1-vpc")
		require.NoError(t, err)
		assert.True(t, desc.Exists)
		assert.Equal(t, "CREATE_COMPLETE", desc.Status)
		assert.Equal(t, map[string]string{"ExternalCPAddress": "cp"}, desc.Outputs)
	})

	t.Run("retries throttling", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		api.seed("z1-vpc", types.StackStatusCreateComplete, nil)
		api.describeErrs = []error{
			&smithy.GenericAPIError{Code: codeThrottling, Message: "Rate exceeded"},
			&smithy.GenericAPIError{Code: codeThrottling, Message: "Rate exceeded"},
		}
		engine := newTestEngine(t, api)

		desc, err := engine.Describe(context.Background(), "z1-vpc")
		require.NoError(t, err)
		assert.True(t, desc.Exists)
		assert.Equal(t, 3, api.describes)
	})

	t.Run("other errors are not retried", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		api.describeErrs = []error{&smithy.GenericAPIError{Code: "AccessDenied", Message: "nope"}}
		engine := newTestEngine(t, api)

		_, err := engine.Describe(context.Background(), "z1-vpc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "describe stack z1-vpc")
		assert.Equal(t, 1, api.describes)
	})
}

func TestDestroy(t *testing.T) {
	t.Parallel()

	t.Run("deletes and waits", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		api.seed("z1-vpc", types.StackStatusCreateComplete, nil)
		engine := newTestEngine(t, api)

		res, err := engine.Destroy(context.Background(), "z1-vpc")
		require.NoError(t, err)
		assert.Equal(t, stack.Deleted, res.State)
		require.Len(t, api.deletes, 1)
		assert.Equal(t, "kmecs-delete-00000000-0000-0000-0000-000000000001", aws.ToString(api.deletes[0].ClientRequestToken))

		desc, err := engine.Describe(context.Background(), "z1-vpc")
		require.NoError(t, err)
		assert.False(t, desc.Exists)
	})

	t.Run("delete failed", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		api.deleteStatuses = []types.StackStatus{types.StackStatusDeleteInProgress, types.StackStatusDeleteFailed}
		s := api.seed("z1-vpc", types.StackStatusCreateComplete, nil)
		s.reason = "The following resource(s) failed to delete: [VPC]."
		engine := newTestEngine(t, api)

		res, err := engine.Destroy(context.Background(), "z1-vpc")
		require.NoError(t, err)
		assert.Equal(t, stack.Failed, res.State)
		assert.Contains(t, res.Reason, "failed to delete")
	})

	t.Run("rejected", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		api.deleteErr = &smithy.GenericAPIError{Code: "TokenAlreadyExistsException", Message: "token in use"}
		engine := newTestEngine(t, api)

		res, err := engine.Destroy(context.Background(), "z1-vpc")
		require.NoError(t, err)
		assert.Equal(t, stack.Failed, res.State)
		assert.Equal(t, "token in use", res.Reason)
	})

	t.Run("wait timeout", func(t *testing.T) {
		t.Parallel()
		api := newFakeAPI()
		api.deleteStatuses = []types.StackStatus{types.StackStatusDeleteInProgress}
		api.seed("z1-vpc", types.StackStatusCreateComplete, nil)
		engine := newTestEngine(t, api, WithMaxWait(20*time.Millisecond))

		_, err := engine.Destroy(context.Background(), "z1-vpc")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "wait for stack z1-vpc deletion")
	})
}

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	assert.True(t, isNotExist(notExist("z1-vpc")))
	assert.False(t, isNotExist(&smithy.GenericAPIError{Code: codeValidationError, Message: "Template format error"}))
	assert.True(t, isThrottle(&smithy.GenericAPIError{Code: "ThrottlingException"}))
	assert.False(t, isThrottle(errors.New("Throttling")))

	_, ok := rejection(&smithy.GenericAPIError{Code: codeThrottling})
	assert.False(t, ok)
	msg, ok := rejection(&smithy.GenericAPIError{Code: "InsufficientCapabilitiesException"})
	assert.True(t, ok)
	assert.Equal(t, "InsufficientCapabilitiesException", msg)
}
