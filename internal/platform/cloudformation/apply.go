package cloudformation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation"
	"github.com/aws/aws-sdk-go-v2/service/cloudformation/types"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/labels"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/naming"
)

// MaxTemplateBodySize is the largest template CloudFormation accepts inline.
const MaxTemplateBodySize = 51200

// template is either an inline body or an uploaded object URL.
type template struct {
	body string
	url  string
}

// Apply creates or updates a stack and waits for it to settle.
func (e *Engine) Apply(ctx context.Context, in stack.ApplyInput) (stack.ApplyResult, error) {
	log := e.logger.With("stack", in.Name)

	raw, err := os.ReadFile(filepath.Join(e.templatesDir, in.Template))
	if err != nil {
		return failed(fmt.Sprintf("read template %s: %v", in.Template, err)), nil
	}

	current, err := e.Describe(ctx, in.Name)
	if err != nil {
		return stack.ApplyResult{}, err
	}
	if current.Exists {
		status := types.StackStatus(current.Status)
		switch {
		case status == types.StackStatusRollbackComplete:
			return failed("stack is in ROLLBACK_COMPLETE; tear the zone down before deploying again"), nil
		case inProgressStatus(status):
			return failed(fmt.Sprintf("stack is busy (%s)", status)), nil
		}
	}

	tpl, cleanup, err := e.prepareTemplate(ctx, in, raw)
	if err != nil {
		return failed(err.Error()), nil
	}
	defer cleanup()

	if current.Exists {
		log.Debug("updating stack", "status", current.Status)
		return e.update(ctx, in, tpl, current)
	}
	log.Debug("creating stack")
	return e.create(ctx, in, tpl)
}

func (e *Engine) create(ctx context.Context, in stack.ApplyInput, tpl template) (stack.ApplyResult, error) {
	input := &cloudformation.CreateStackInput{
		StackName:          aws.String(in.Name),
		Parameters:         toParameters(in.Parameters),
		Capabilities:       toCapabilities(in.Capabilities),
		Tags:               toTags(in.Tags),
		ClientRequestToken: aws.String(naming.RequestToken("create", e.newToken())),
	}
	if tpl.url != "" {
		input.TemplateURL = aws.String(tpl.url)
	} else {
		input.TemplateBody = aws.String(tpl.body)
	}

	if _, err := e.api.CreateStack(ctx, input); err != nil {
		if msg, ok := rejection(err); ok {
			return failed(msg), nil
		}
		return stack.ApplyResult{}, fmt.Errorf("create stack %s: %w", in.Name, err)
	}

	waitErr := e.createWaiter().Wait(ctx, describeInput(in.Name), e.maxWait)
	return e.settleApply(ctx, in.Name, waitErr)
}

func (e *Engine) update(ctx context.Context, in stack.ApplyInput, tpl template, current stack.Description) (stack.ApplyResult, error) {
	input := &cloudformation.UpdateStackInput{
		StackName:          aws.String(in.Name),
		Parameters:         toParameters(in.Parameters),
		Capabilities:       toCapabilities(in.Capabilities),
		Tags:               toTags(in.Tags),
		ClientRequestToken: aws.String(naming.RequestToken("update", e.newToken())),
	}
	if tpl.url != "" {
		input.TemplateURL = aws.String(tpl.url)
	} else {
		input.TemplateBody = aws.String(tpl.body)
	}

	if _, err := e.api.UpdateStack(ctx, input); err != nil {
		if isNoUpdates(err) {
			e.logger.Debug("stack up to date", "stack", in.Name)
			return stack.ApplyResult{State: stack.Applied, Outputs: current.Outputs}, nil
		}
		if msg, ok := rejection(err); ok {
			return failed(msg), nil
		}
		return stack.ApplyResult{}, fmt.Errorf("update stack %s: %w", in.Name, err)
	}

	waitErr := e.updateWaiter().Wait(ctx, describeInput(in.Name), e.maxWait)
	return e.settleApply(ctx, in.Name, waitErr)
}

// settleApply maps the state after a wait onto a terminal result.
func (e *Engine) settleApply(ctx context.Context, name string, waitErr error) (stack.ApplyResult, error) {
	desc, err := e.Describe(ctx, name)
	if err != nil {
		if waitErr != nil {
			return stack.ApplyResult{}, fmt.Errorf("wait for stack %s: %w", name, errors.Join(waitErr, err))
		}
		return stack.ApplyResult{}, err
	}
	if !desc.Exists {
		return failed("stack no longer exists"), nil
	}

	status := types.StackStatus(desc.Status)
	switch {
	case appliedStatus(status):
		return stack.ApplyResult{State: stack.Applied, Outputs: desc.Outputs}, nil
	case failedStatus(status):
		return failed(e.failureReason(ctx, desc)), nil
	}

	if waitErr == nil {
		waitErr = fmt.Errorf("unexpected status %s", status)
	}
	return stack.ApplyResult{}, fmt.Errorf("wait for stack %s: %w", name, waitErr)
}

// prepareTemplate decides between TemplateBody and TemplateURL. The
// returned cleanup removes an uploaded object.
func (e *Engine) prepareTemplate(ctx context.Context, in stack.ApplyInput, raw []byte) (template, func(), error) {
	noop := func() {}
	if e.bucket == "" && len(raw) <= MaxTemplateBodySize {
		return template{body: string(raw)}, noop, nil
	}
	if e.uploader == nil || e.bucket == "" {
		return template{}, noop, fmt.Errorf("template %s is %d bytes, over the %d byte inline limit; set --template-bucket",
			in.Template, len(raw), MaxTemplateBodySize)
	}

	sum := sha256.Sum256(raw)
	key := naming.TemplateObjectKey(in.Tags[labels.KeyZone], string(in.Role), hex.EncodeToString(sum[:])[:12])
	url, err := e.uploader.PutTemplate(ctx, e.bucket, key, raw)
	if err != nil {
		return template{}, noop, fmt.Errorf("upload template %s: %w", in.Template, err)
	}
	e.logger.Debug("template uploaded", "stack", in.Name, "key", key)

	cleanup := func() {
		if err := e.uploader.DeleteObject(context.WithoutCancel(ctx), e.bucket, key); err != nil {
			e.logger.Warn("could not remove uploaded template", "key", key, "error", err)
		}
	}
	return template{url: url}, cleanup, nil
}

func failed(reason string) stack.ApplyResult {
	return stack.ApplyResult{State: stack.Failed, Reason: reason}
}

func describeInput(name string) *cloudformation.DescribeStacksInput {
	return &cloudformation.DescribeStacksInput{StackName: aws.String(name)}
}

func toParameters(params []stack.Parameter) []types.Parameter {
	out := make([]types.Parameter, 0, len(params))
	for _, p := range params {
		out = append(out, types.Parameter{
			ParameterKey:   aws.String(p.Key),
			ParameterValue: aws.String(p.Value),
		})
	}
	return out
}

func toCapabilities(caps []string) []types.Capability {
	out := make([]types.Capability, 0, len(caps))
	for _, c := range caps {
		out = append(out, types.Capability(c))
	}
	return out
}

func toTags(m map[string]string) []types.Tag {
	tags := make([]types.Tag, 0, len(m))
	for _, k := range labels.SortedKeys(m) {
		tags = append(tags, types.Tag{Key: aws.String(k), Value: aws.String(m[k])})
	}
	return tags
}
