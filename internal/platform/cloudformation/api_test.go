package cloudformation

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/aws/smithy-go"
)

// fakeStack is a remote stack whose status advances one step per describe.
type fakeStack struct {
	statuses []types.StackStatus
	reason   string
	outputs  map[string]string
	events   []types.StackEvent
}

func (s *fakeStack) current() types.StackStatus {
	return s.statuses[0]
}

func (s *fakeStack) advance() {
	if len(s.statuses) > 1 {
		s.statuses = s.statuses[1:]
	}
}

// fakeAPI implements API for testing.
type fakeAPI struct {
	mu     sync.Mutex
	stacks map[string]*fakeStack

	// statuses a stack walks through after each call, the last one sticks
	createStatuses []types.StackStatus
	updateStatuses []types.StackStatus
	deleteStatuses []types.StackStatus
	createOutputs  map[string]string
	createReason   string
	createEvents   []types.StackEvent

	createErr    error
	updateErr    error
	deleteErr    error
	eventsErr    error
	describeErrs []error

	creates   []*cloudformation.CreateStackInput
	updates   []*cloudformation.UpdateStackInput
	deletes   []*cloudformation.DeleteStackInput
	describes int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		stacks:         map[string]*fakeStack{},
		createStatuses: []types.StackStatus{types.StackStatusCreateInProgress, types.StackStatusCreateComplete},
		updateStatuses: []types.StackStatus{types.StackStatusUpdateInProgress, types.StackStatusUpdateComplete},
		deleteStatuses: []types.StackStatus{types.StackStatusDeleteInProgress, types.StackStatusDeleteComplete},
	}
}

func (f *fakeAPI) seed(name string, status types.StackStatus, outputs map[string]string) *fakeStack {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := &fakeStack{statuses: []types.StackStatus{status}, outputs: outputs}
	f.stacks[name] = s
	return s
}

func notExist(name string) error {
	return &smithy.GenericAPIError{
		Code:    codeValidationError,
		Message: fmt.Sprintf("Stack with id %s does not exist", name),
	}
}

func (f *fakeAPI) CreateStack(_ context.Context, params *cloudformation.CreateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, params)
	if f.createErr != nil {
		return nil, f.createErr
	}
	name := aws.ToString(params.StackName)
	if _, ok := f.stacks[name]; ok {
		return nil, &smithy.GenericAPIError{Code: "AlreadyExistsException", Message: "Stack [" + name + "] already exists"}
	}
	f.stacks[name] = &fakeStack{
		statuses: append([]types.StackStatus(nil), f.createStatuses...),
		reason:   f.createReason,
		outputs:  f.createOutputs,
		events:   f.createEvents,
	}
	return &cloudformation.CreateStackOutput{StackId: aws.String("arn:aws:cloudformation:us-east-1:1:stack/" + name)}, nil
}

func (f *fakeAPI) UpdateStack(_ context.Context, params *cloudformation.UpdateStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, params)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	name := aws.ToString(params.StackName)
	s, ok := f.stacks[name]
	if !ok {
		return nil, notExist(name)
	}
	s.statuses = append([]types.StackStatus(nil), f.updateStatuses...)
	return &cloudformation.UpdateStackOutput{StackId: aws.String("arn:aws:cloudformation:us-east-1:1:stack/" + name)}, nil
}

func (f *fakeAPI) DeleteStack(_ context.Context, params *cloudformation.DeleteStackInput, _ ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, params)
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	if s, ok := f.stacks[aws.ToString(params.StackName)]; ok {
		s.statuses = append([]types.StackStatus(nil), f.deleteStatuses...)
	}
	return &cloudformation.DeleteStackOutput{}, nil
}

func (f *fakeAPI) DescribeStacks(_ context.Context, params *cloudformation.DescribeStacksInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.describes++
	if len(f.describeErrs) > 0 {
		err := f.describeErrs[0]
		f.describeErrs = f.describeErrs[1:]
		return nil, err
	}

	name := aws.ToString(params.StackName)
	s, ok := f.stacks[name]
	if !ok {
		return nil, notExist(name)
	}
	status := s.current()
	if status == types.StackStatusDeleteComplete {
		delete(f.stacks, name)
	} else {
		s.advance()
	}

	out := types.Stack{
		StackName:   aws.String(name),
		StackStatus: status,
	}
	if s.reason != "" {
		out.StackStatusReason = aws.String(s.reason)
	}
	for k, v := range s.outputs {
		out.Outputs = append(out.Outputs, types.Output{OutputKey: aws.String(k), OutputValue: aws.String(v)})
	}
	return &cloudformation.DescribeStacksOutput{Stacks: []types.Stack{out}}, nil
}

func (f *fakeAPI) DescribeStackEvents(_ context.Context, params *cloudformation.DescribeStackEventsInput, _ ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	var events []types.StackEvent
	if s, ok := f.stacks[aws.ToString(params.StackName)]; ok {
		events = s.events
	}
	return &cloudformation.DescribeStackEventsOutput{StackEvents: events}, nil
}

// uploadedObject records one PutTemplate call.
type uploadedObject struct {
	bucket string
	key    string
	body   []byte
}

// fakeUploader implements TemplateUploader for testing.
type fakeUploader struct {
	mu      sync.Mutex
	puts    []uploadedObject
	deletes []string
	putErr  error
}

func (u *fakeUploader) PutTemplate(_ context.Context, bucket, key string, body []byte) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.putErr != nil {
		return "", u.putErr
	}
	u.puts = append(u.puts, uploadedObject{bucket: bucket, key: key, body: body})
	return "https://" + bucket + ".s3.us-east-1.amazonaws.com/" + key, nil
}

func (u *fakeUploader) DeleteObject(_ context.Context, bucket, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.deletes = append(u.deletes, bucket+"/"+key)
	return nil
}
