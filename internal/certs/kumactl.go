package certs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// KumactlTool shells out to `kumactl generate tls-certificate`.
type KumactlTool struct {
	// Binary is the kumactl name or path. Empty means "kumactl".
	Binary string
}

// GenerateServerCert implements Tool.
func (k KumactlTool) GenerateServerCert(ctx context.Context, hostnames []string) (KeyPair, error) {
	if len(hostnames) == 0 {
		return KeyPair{}, fmt.Errorf("at least one hostname is required")
	}
	bin := k.Binary
	if bin == "" {
		bin = "kumactl"
	}

	dir, err := os.MkdirTemp("", "kmecs-cert-*")
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	keyFile := filepath.Join(dir, "key.pem")
	certFile := filepath.Join(dir, "cert.pem")
	args := []string{
		"generate", "tls-certificate",
		"--type=server",
		"--key-file=" + keyFile,
		"--cert-file=" + certFile,
	}
	for _, h := range hostnames {
		args = append(args, "--hostname="+h)
	}

	// #nosec G204 - binary is an explicit setting, arguments are built here
	cmd := exec.CommandContext(ctx, bin, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return KeyPair{}, fmt.Errorf("%w: %s: %v", ErrToolUnavailable, bin, err)
		}
		return KeyPair{}, fmt.Errorf("%s generate tls-certificate failed: %w: %s", bin, err, strings.TrimSpace(string(output)))
	}

	key, err := os.ReadFile(keyFile) // #nosec G304 - path inside our temp dir
	if err != nil {
		return KeyPair{}, fmt.Errorf("kumactl did not write the key file: %w", err)
	}
	cert, err := os.ReadFile(certFile) // #nosec G304 - path inside our temp dir
	if err != nil {
		return KeyPair{}, fmt.Errorf("kumactl did not write the certificate file: %w", err)
	}
	return KeyPair{Key: key, Cert: cert}, nil
}

// NewTool returns the Tool selected by generator.
func NewTool(generator config.CertGenerator, kumactl string) Tool {
	if generator == config.CertGeneratorBuiltin {
		return BuiltinTool{}
	}
	return KumactlTool{Binary: kumactl}
}
