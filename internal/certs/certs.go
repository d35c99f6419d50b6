package certs

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
)

// InternalHostname is the service discovery name of the zone control plane.
const InternalHostname = "controlplane.kongmesh"

// ErrToolUnavailable is returned when the certificate tool cannot be run.
var ErrToolUnavailable = errors.New("certificate tool unavailable")

// KeyPair is a PEM encoded private key and certificate.
type KeyPair struct {
	Key  []byte
	Cert []byte
}

// Tool generates a server certificate for hostnames.
type Tool interface {
	GenerateServerCert(ctx context.Context, hostnames []string) (KeyPair, error)
}

// Provisioner generates and verifies the control plane key pair.
type Provisioner struct {
	tool Tool
}

// NewProvisioner returns a Provisioner using tool.
func NewProvisioner(tool Tool) *Provisioner {
	return &Provisioner{tool: tool}
}

// Generate returns a key pair whose certificate covers primary (the
// address discovered from the network stack) and secondary (the internal
// name).
func (p *Provisioner) Generate(ctx context.Context, primary, secondary string) (KeyPair, error) {
	primary = strings.TrimSpace(primary)
	secondary = strings.TrimSpace(secondary)
	if primary == "" {
		return KeyPair{}, fmt.Errorf("certificate requires a primary hostname")
	}
	hostnames := []string{primary}
	if secondary != "" && secondary != primary {
		hostnames = append(hostnames, secondary)
	}

	pair, err := p.tool.GenerateServerCert(ctx, hostnames)
	if err != nil {
		return KeyPair{}, fmt.Errorf("failed to generate certificate: %w", err)
	}
	if err := Verify(pair, hostnames...); err != nil {
		return KeyPair{}, err
	}
	return pair, nil
}

// Verify checks that pair holds a matching key and certificate and that
// the certificate names every hostname.
func Verify(pair KeyPair, hostnames ...string) error {
	if _, err := tls.X509KeyPair(pair.Cert, pair.Key); err != nil {
		return fmt.Errorf("invalid key pair: %w", err)
	}
	cert, err := ParseCertificate(pair.Cert)
	if err != nil {
		return err
	}
	for _, h := range hostnames {
		if err := cert.VerifyHostname(h); err != nil {
			return fmt.Errorf("certificate does not cover %s: %w", h, err)
		}
	}
	return nil
}

// ParseCertificate decodes the first PEM certificate block of data.
func ParseCertificate(data []byte) (*x509.Certificate, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, fmt.Errorf("no PEM certificate found")
		}
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		return cert, nil
	}
}
