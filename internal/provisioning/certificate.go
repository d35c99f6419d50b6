package provisioning

import (
	"fmt"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/certs"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
)

// CertificatePhase generates the control plane key pair for the load
// balancer address reported by the network stack.
type CertificatePhase struct {
	req config.DeployRequest
}

// NewCertificatePhase creates a new certificate phase.
func NewCertificatePhase(req config.DeployRequest) *CertificatePhase {
	return &CertificatePhase{req: req}
}

// Name implements the Phase interface.
func (p *CertificatePhase) Name() string {
	return "certificate"
}

// Provision implements the Phase interface.
func (p *CertificatePhase) Provision(ctx *Context) error {
	addr, ok := ctx.Run.Output(stack.RoleVPC, stack.OutputExternalCPAddress)
	if !ok {
		return fmt.Errorf("stack %s did not report output %s", ctx.Plan.StackName(stack.RoleVPC), stack.OutputExternalCPAddress)
	}

	if p.req.ReuseSecrets {
		reuse, err := existingTLS(ctx)
		if err != nil {
			return err
		}
		if reuse {
			ctx.State.ReuseTLS = true
			LogResourceExists(ctx.Observer, ctx.phase, ResourceCertificate, addr, "")
			return nil
		}
	}

	if ctx.Certs == nil {
		return fmt.Errorf("no certificate generator configured")
	}
	LogResourceCreating(ctx.Observer, ctx.phase, ResourceCertificate, addr)
	pair, err := ctx.Certs.Generate(ctx, addr, certs.InternalHostname)
	if err != nil {
		LogResourceFailed(ctx.Observer, ctx.phase, ResourceCertificate, addr, err.Error())
		return err
	}
	ctx.State.KeyPair = &pair
	LogResourceCreated(ctx.Observer, ctx.phase, ResourceCertificate, addr, "")
	return nil
}

// existingTLS reports whether both TLS secrets exist. Exactly one of them
// existing is an error: a new certificate would not match the kept half.
func existingTLS(ctx *Context) (bool, error) {
	keyOK, err := ctx.Secrets.Exists(ctx, secrets.TLSKey)
	if err != nil {
		return false, err
	}
	certOK, err := ctx.Secrets.Exists(ctx, secrets.TLSCert)
	if err != nil {
		return false, err
	}
	if keyOK != certOK {
		present, absent := ctx.Secrets.Key(secrets.TLSKey), ctx.Secrets.Key(secrets.TLSCert)
		if certOK {
			present, absent = absent, present
		}
		return false, fmt.Errorf("secret %s exists but %s does not; delete %s or tear the zone down first", present, absent, present)
	}
	return keyOK, nil
}
