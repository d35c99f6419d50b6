package cloudformation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"
	"github.com/google/uuid"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/retry"
)

// DefaultMaxWait bounds a single create, update or delete wait.
const DefaultMaxWait = 60 * time.Minute

const userInitiated = "User Initiated"

// describeBackoff is the delay growth between throttled DescribeStacks calls.
const describeBackoff = 1.5

// API is the subset of the CloudFormation client used by Engine.
type API interface {
	CreateStack(ctx context.Context, params *cloudformation.CreateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.CreateStackOutput, error)
	UpdateStack(ctx context.Context, params *cloudformation.UpdateStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.UpdateStackOutput, error)
	DeleteStack(ctx context.Context, params *cloudformation.DeleteStackInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DeleteStackOutput, error)
	DescribeStacks(ctx context.Context, params *cloudformation.DescribeStacksInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStacksOutput, error)
	DescribeStackEvents(ctx context.Context, params *cloudformation.DescribeStackEventsInput, optFns ...func(*cloudformation.Options)) (*cloudformation.DescribeStackEventsOutput, error)
}

// TemplateUploader stores templates that are passed by URL.
type TemplateUploader interface {
	PutTemplate(ctx context.Context, bucket, key string, body []byte) (string, error)
	DeleteObject(ctx context.Context, bucket, key string) error
}

// Engine drives CloudFormation stacks.
type Engine struct {
	api          API
	templatesDir string
	uploader     TemplateUploader
	bucket       string
	maxWait      time.Duration
	minDelay     time.Duration
	maxDelay     time.Duration
	retryOpts    []retry.Option
	newToken     func() string
	logger       *slog.Logger
}

var _ stack.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithUploader enables TemplateURL uploads. With a bucket every template
// is uploaded; without one no template can exceed the inline limit.
func WithUploader(uploader TemplateUploader, bucket string) Option {
	return func(e *Engine) {
		e.uploader = uploader
		e.bucket = bucket
	}
}

// WithMaxWait bounds each waiter call.
func WithMaxWait(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.maxWait = d
		}
	}
}

// WithWaiterDelay overrides the waiter polling interval range.
func WithWaiterDelay(minDelay, maxDelay time.Duration) Option {
	return func(e *Engine) {
		e.minDelay = minDelay
		e.maxDelay = maxDelay
	}
}

// WithRetry adds options to the throttling retry around DescribeStacks.
func WithRetry(opts ...retry.Option) Option {
	return func(e *Engine) {
		e.retryOpts = append(e.retryOpts, opts...)
	}
}

// WithTokenGenerator overrides the client request token source.
func WithTokenGenerator(fn func() string) Option {
	return func(e *Engine) {
		e.newToken = fn
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// New returns an Engine reading templates from templatesDir.
func New(api API, templatesDir string, opts ...Option) *Engine {
	e := &Engine{
		api:          api,
		templatesDir: templatesDir,
		maxWait:      DefaultMaxWait,
		newToken:     uuid.NewString,
		logger:       slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig builds an Engine from a loaded AWS config.
func NewFromConfig(cfg aws.Config, templatesDir string, opts ...Option) *Engine {
	return New(cloudformation.NewFromConfig(cfg), templatesDir, opts...)
}

// Describe returns the live view of a stack. Unknown and fully deleted
// stacks are reported with Exists false.
func (e *Engine) Describe(ctx context.Context, name string) (stack.Description, error) {
	var out *cloudformation.DescribeStacksOutput
	opts := append([]retry.Option{retry.WithRetryIf(isThrottle), retry.WithMultiplier(describeBackoff)}, e.retryOpts...)
	err := retry.Do(ctx, func(ctx context.Context) error {
		var err error
		out, err = e.api.DescribeStacks(ctx, &cloudformation.DescribeStacksInput{
			StackName: aws.String(name),
		})
		return err
	}, opts...)
	if err != nil {
		if isNotExist(err) {
			return stack.Description{Name: name}, nil
		}
		return stack.Description{}, fmt.Errorf("describe stack %s: %w", name, err)
	}

	for _, s := range out.Stacks {
		if s.StackStatus == types.StackStatusDeleteComplete {
			continue
		}
		return describe(name, s), nil
	}
	return stack.Description{Name: name}, nil
}

func describe(name string, s types.Stack) stack.Description {
	outputs := make(map[string]string, len(s.Outputs))
	for _, o := range s.Outputs {
		if o.OutputKey != nil {
			outputs[*o.OutputKey] = aws.ToString(o.OutputValue)
		}
	}
	return stack.Description{
		Name:    name,
		Exists:  true,
		Status:  string(s.StackStatus),
		Reason:  aws.ToString(s.StackStatusReason),
		Outputs: outputs,
	}
}

// failureReason returns the first resource failure of the latest stack
// operation, falling back to the stack status reason.
func (e *Engine) failureReason(ctx context.Context, desc stack.Description) string {
	fallback := desc.Reason
	if fallback == "" {
		fallback = "stack is " + desc.Status
	}

	out, err := e.api.DescribeStackEvents(ctx, &cloudformation.DescribeStackEventsInput{
		StackName: aws.String(desc.Name),
	})
	if err != nil {
		e.logger.Debug("could not read stack events", "stack", desc.Name, "error", err)
		return fallback
	}

	// Events are newest first; the operation began at the stack's own
	// user-initiated event.
	reason := ""
	for _, ev := range out.StackEvents {
		if aws.ToString(ev.LogicalResourceId) == desc.Name {
			if aws.ToString(ev.ResourceStatusReason) == userInitiated {
				break
			}
			continue
		}
		if failedResourceStatus(ev.ResourceStatus) && aws.ToString(ev.ResourceStatusReason) != "" {
			reason = fmt.Sprintf("%s: %s", aws.ToString(ev.LogicalResourceId), aws.ToString(ev.ResourceStatusReason))
		}
	}
	if reason == "" {
		return fallback
	}
	return reason
}

func (e *Engine) createWaiter() *cloudformation.StackCreateCompleteWaiter {
	return cloudformation.NewStackCreateCompleteWaiter(e.api, func(o *cloudformation.StackCreateCompleteWaiterOptions) {
		if e.minDelay > 0 {
			o.MinDelay, o.MaxDelay = e.minDelay, e.maxDelay
		}
	})
}

func (e *Engine) updateWaiter() *cloudformation.StackUpdateCompleteWaiter {
	return cloudformation.NewStackUpdateCompleteWaiter(e.api, func(o *cloudformation.StackUpdateCompleteWaiterOptions) {
		if e.minDelay > 0 {
			o.MinDelay, o.MaxDelay = e.minDelay, e.maxDelay
		}
	})
}

func (e *Engine) deleteWaiter() *cloudformation.StackDeleteCompleteWaiter {
	return cloudformation.NewStackDeleteCompleteWaiter(e.api, func(o *cloudformation.StackDeleteCompleteWaiterOptions) {
		if e.minDelay > 0 {
			o.MinDelay, o.MaxDelay = e.minDelay, e.maxDelay
		}
	})
}
