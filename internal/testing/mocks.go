package testing

import (
	"context"
	"slices"
	"sync"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/certs"
)

// FakeCertTool is a certs.Tool that records its calls and produces real
// self-signed certificates, or fails with Err.
type FakeCertTool struct {
	mu    sync.Mutex
	Err   error
	calls [][]string
}

// GenerateServerCert implements certs.Tool.
func (f *FakeCertTool) GenerateServerCert(ctx context.Context, hostnames []string) (certs.KeyPair, error) {
	f.mu.Lock()
	f.calls = append(f.calls, slices.Clone(hostnames))
	err := f.Err
	f.mu.Unlock()

	if err != nil {
		return certs.KeyPair{}, err
	}
	return certs.BuiltinTool{}.GenerateServerCert(ctx, hostnames)
}

// Calls returns the hostnames of every call.
func (f *FakeCertTool) Calls() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}
