package provisioning

import (
	"fmt"
	"os"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/metrics"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
)

const opCreate = "create"

// SecretsPhase stores the license (when one is supplied) and the global
// connectivity token.
type SecretsPhase struct {
	req      config.DeployRequest
	readFile func(string) ([]byte, error)
}

// NewSecretsPhase creates a new secrets phase.
func NewSecretsPhase(req config.DeployRequest) *SecretsPhase {
	return &SecretsPhase{req: req, readFile: os.ReadFile}
}

// Name implements the Phase interface.
func (p *SecretsPhase) Name() string {
	return "secrets"
}

// Provision implements the Phase interface.
func (p *SecretsPhase) Provision(ctx *Context) error {
	if ctx.Secrets == nil {
		return fmt.Errorf("no secret store configured")
	}

	if p.req.HasLicense() {
		err := storeSecret(ctx, secrets.License, p.req.ReuseSecrets, func() ([]byte, error) {
			data, err := p.readFile(p.req.LicenseFile)
			if err != nil {
				return nil, fmt.Errorf("failed to read license file: %w", err)
			}
			return data, nil
		})
		if err != nil {
			return err
		}
	}

	return storeSecret(ctx, secrets.GlobalToken, p.req.ReuseSecrets, func() ([]byte, error) {
		return []byte(p.req.ConnectivityToken), nil
	})
}

// CertificateSecretsPhase stores the generated key pair, or looks up the
// TLS secrets the certificate phase decided to reuse.
type CertificateSecretsPhase struct{}

// NewCertificateSecretsPhase creates a new certificate secrets phase.
func NewCertificateSecretsPhase() *CertificateSecretsPhase {
	return &CertificateSecretsPhase{}
}

// Name implements the Phase interface.
func (p *CertificateSecretsPhase) Name() string {
	return "certificate-secrets"
}

// Provision implements the Phase interface.
func (p *CertificateSecretsPhase) Provision(ctx *Context) error {
	if ctx.State.ReuseTLS {
		for _, purpose := range []secrets.Purpose{secrets.TLSKey, secrets.TLSCert} {
			ref, found, err := ctx.Secrets.Lookup(ctx, purpose)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("secret %s disappeared during the deploy", ctx.Secrets.Key(purpose))
			}
			ctx.State.SetSecret(purpose, ref, report.SecretReused, "")
			ctx.Metrics.SecretOp(opCreate, string(purpose), metrics.ResultReused)
			LogResourceExists(ctx.Observer, ctx.phase, ResourceSecret, ctx.Secrets.Key(purpose), ref.String())
		}
		return nil
	}

	pair := ctx.State.KeyPair
	if pair == nil {
		return fmt.Errorf("no certificate was generated")
	}
	if err := storeSecret(ctx, secrets.TLSKey, false, func() ([]byte, error) { return pair.Key, nil }); err != nil {
		return err
	}
	return storeSecret(ctx, secrets.TLSCert, false, func() ([]byte, error) { return pair.Cert, nil })
}

// storeSecret creates the purpose entry. With reuse an existing entry is
// kept and its reference used instead; without it an existing entry is a
// conflict.
func storeSecret(ctx *Context, purpose secrets.Purpose, reuse bool, load func() ([]byte, error)) error {
	key := ctx.Secrets.Key(purpose)
	LogResourceCreating(ctx.Observer, ctx.phase, ResourceSecret, key)

	var (
		ref    secrets.Reference
		reused bool
		err    error
	)
	if reuse {
		ref, reused, err = ctx.Secrets.Ensure(ctx, purpose, load)
	} else {
		var payload []byte
		if payload, err = load(); err == nil {
			ref, err = ctx.Secrets.Create(ctx, purpose, payload)
		}
	}

	if err != nil {
		ctx.State.SetSecret(purpose, "", report.SecretPending, err.Error())
		ctx.Metrics.SecretOp(opCreate, string(purpose), metrics.ResultFailed)
		LogResourceFailed(ctx.Observer, ctx.phase, ResourceSecret, key, err.Error())
		return err
	}

	if reused {
		ctx.State.SetSecret(purpose, ref, report.SecretReused, "")
		ctx.Metrics.SecretOp(opCreate, string(purpose), metrics.ResultReused)
		LogResourceExists(ctx.Observer, ctx.phase, ResourceSecret, key, ref.String())
		return nil
	}
	ctx.State.SetSecret(purpose, ref, report.SecretCreated, "")
	ctx.Metrics.SecretOp(opCreate, string(purpose), metrics.ResultSuccess)
	LogResourceCreated(ctx.Observer, ctx.phase, ResourceSecret, key, ref.String())
	return nil
}
