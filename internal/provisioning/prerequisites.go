package provisioning

import (
	"fmt"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// PrerequisitesPhase checks the external tools and the template bucket.
// It runs before anything is created.
type PrerequisitesPhase struct {
	req config.DeployRequest
}

// NewPrerequisitesPhase creates a new prerequisites phase.
func NewPrerequisitesPhase(req config.DeployRequest) *PrerequisitesPhase {
	return &PrerequisitesPhase{req: req}
}

// Name implements the Phase interface.
func (p *PrerequisitesPhase) Name() string {
	return "prerequisites"
}

// Provision implements the Phase interface.
func (p *PrerequisitesPhase) Provision(ctx *Context) error {
	if ctx.Tools != nil {
		if err := ctx.Tools(p.req); err != nil {
			return err
		}
	}

	bucket := p.req.TemplateBucket
	if bucket == "" {
		return nil
	}
	if ctx.Buckets == nil {
		return fmt.Errorf("template bucket %s is set but no S3 client is configured", bucket)
	}
	ok, err := ctx.Buckets.BucketExists(ctx, bucket)
	if err != nil {
		return fmt.Errorf("failed to check template bucket %s: %w", bucket, err)
	}
	if !ok {
		return fmt.Errorf("template bucket %s does not exist", bucket)
	}
	ctx.Logger.Debug("template bucket found", "bucket", bucket)
	return nil
}
