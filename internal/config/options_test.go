package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hostedArgs(extra ...string) []string {
	args := []string{
		"--zone-name", "z1",
		"--kds-address", "grpcs://x:443",
		"--cp-id", "c1",
		"--connectivity-token", "t",
	}
	return append(args, extra...)
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseDeploy_HostedDefaults(t *testing.T) {
	t.Parallel()
	req, err := ParseDeploy(hostedArgs())
	require.NoError(t, err)

	assert.Equal(t, DeployRequest{
		Zone:              "z1",
		Region:            DefaultRegion,
		Mode:              ModeHosted,
		KDSAddress:        "grpcs://x:443",
		CPID:              "c1",
		ConnectivityToken: "t",
		VPCCIDR:           "10.0.0.0/16",
		Subnet1CIDR:       "10.0.0.0/24",
		Subnet2CIDR:       "10.0.1.0/24",
		TemplatesDir:      DefaultTemplatesDir,
		CertGenerator:     CertGeneratorKumactl,
	}, req)
	assert.False(t, req.HasLicense())
}

func TestParseDeploy_MissingRequired(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		args   []string
		fields []string
	}{
		{
			name:   "nothing",
			args:   nil,
			fields: []string{"--zone-name", "--kds-address", "--cp-id", "--connectivity-token"},
		},
		{
			name:   "token only missing",
			args:   []string{"--zone-name", "z1", "--kds-address", "grpcs://x:443", "--cp-id", "c1"},
			fields: []string{"--connectivity-token"},
		},
		{
			name:   "hosted without cp id",
			args:   []string{"--zone-name", "z1", "--kds-address", "grpcs://x:443", "--connectivity-token", "t"},
			fields: []string{"--cp-id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDeploy(tt.args)
			require.Error(t, err)
			assert.Equal(t, MissingRequiredParameter, KindOf(err))

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.fields, ve.Fields)
		})
	}
}

func TestParseDeploy_SelfHosted(t *testing.T) {
	t.Parallel()
	license := writeFile(t, "license.json", `{"license":"x"}`)

	req, err := ParseDeploy([]string{"--zone-name", "z1", "--connectivity-token", "t", "--license-file", license})
	require.NoError(t, err)
	assert.Equal(t, ModeSelfHosted, req.Mode)
	assert.True(t, req.HasLicense())
	assert.Empty(t, req.KDSAddress)
}

func TestParseDeploy_LicenseFileMissing(t *testing.T) {
	t.Parallel()
	_, err := ParseDeploy(append(hostedArgs(), "--license-file", filepath.Join(t.TempDir(), "nope.json")))
	require.Error(t, err)
	assert.Equal(t, InvalidPath, KindOf(err))
}

func TestParseDeploy_LicenseFileIsDirectory(t *testing.T) {
	t.Parallel()
	_, err := ParseDeploy(append(hostedArgs(), "--license-file", t.TempDir()))
	assert.Equal(t, InvalidPath, KindOf(err))
}

func TestParseDeploy_UnknownOption(t *testing.T) {
	t.Parallel()
	_, err := ParseDeploy(hostedArgs("--bogus"))
	assert.Equal(t, UnknownOption, KindOf(err))

	_, err = ParseDeploy(hostedArgs("stray"))
	assert.Equal(t, UnknownOption, KindOf(err))
}

func TestParseDeploy_InvalidValues(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		args []string
	}{
		{"zone starts with digit", []string{"--zone-name", "1z"}},
		{"zone with underscore", []string{"--zone-name", "z_1"}},
		{"zone too long", []string{"--zone-name", "z123456789012345678901234567890123"}},
		{"bad vpc", []string{"--vpc-cidr", "10.0.0.0/33"}},
		{"subnet outside vpc", []string{"--subnet1-cidr", "10.1.0.0/24"}},
		{"overlapping subnets", []string{"--subnet1-cidr", "10.0.0.0/23", "--subnet2-cidr", "10.0.1.0/24"}},
		{"bad generator", []string{"--cert-generator", "openssl"}},
		{"bad kds address", []string{"--kds-address", "just-a-host"}},
		{"bad bool", []string{"--skip-demo=maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseDeploy(append(hostedArgs(), tt.args...))
			require.Error(t, err)
			assert.Equal(t, InvalidValue, KindOf(err), err.Error())
		})
	}
}

func TestParseDeploy_DerivesSubnetsFromCustomVPC(t *testing.T) {
	t.Parallel()
	req, err := ParseDeploy(hostedArgs("--vpc-cidr", "10.8.0.0/16"))
	require.NoError(t, err)
	assert.Equal(t, "10.8.0.0/24", req.Subnet1CIDR)
	assert.Equal(t, "10.8.1.0/24", req.Subnet2CIDR)
}

func TestParseDeploy_ExplicitSubnetsWin(t *testing.T) {
	t.Parallel()
	req, err := ParseDeploy(hostedArgs("--vpc-cidr", "10.8.0.0/16", "--subnet1-cidr", "10.8.10.0/24", "--subnet2-cidr", "10.8.11.0/24"))
	require.NoError(t, err)
	assert.Equal(t, "10.8.10.0/24", req.Subnet1CIDR)
	assert.Equal(t, "10.8.11.0/24", req.Subnet2CIDR)
}

func TestParseDeploy_ConfigFile(t *testing.T) {
	t.Parallel()
	cfg := writeFile(t, "zone.yaml", `
zone-name: from-file
kds-address: grpcs://file:443
cp-id: file-cp
connectivity-token: file-token
region: eu-west-1
skip-demo: true
`)

	req, err := ParseDeploy([]string{"--config", cfg, "--zone-name", "from-flag"})
	require.NoError(t, err)
	assert.Equal(t, "from-flag", req.Zone, "flags take precedence")
	assert.Equal(t, "eu-west-1", req.Region)
	assert.Equal(t, "file-cp", req.CPID)
	assert.True(t, req.SkipDemo)
}

func TestParseDeploy_ConfigFileUnknownKey(t *testing.T) {
	t.Parallel()
	cfg := writeFile(t, "zone.yaml", "zone-name: z1\nflavour: vanilla\n")

	_, err := ParseDeploy([]string{"--config", cfg})
	assert.Equal(t, UnknownOption, KindOf(err))
}

func TestParseDeploy_ConfigFileMissing(t *testing.T) {
	t.Parallel()
	_, err := ParseDeploy([]string{"--config", filepath.Join(t.TempDir(), "zone.yaml")})
	assert.Equal(t, InvalidPath, KindOf(err))
}

func TestParseTeardown(t *testing.T) {
	t.Parallel()
	req, err := ParseTeardown([]string{"--zone-name", "z1", "--keep-secrets", "-y", "--skip-ingress"})
	require.NoError(t, err)
	assert.Equal(t, TeardownRequest{
		Zone:        "z1",
		Region:      DefaultRegion,
		SkipIngress: true,
		KeepSecrets: true,
		AssumeYes:   true,
	}, req)
}

func TestParseTeardown_LicenseFlagNeedsNoFile(t *testing.T) {
	t.Parallel()
	req, err := ParseTeardown([]string{"--zone-name", "z1", "--license-file", "/does/not/exist"})
	require.NoError(t, err)
	assert.True(t, req.IncludeLicense)
}

func TestParseTeardown_MissingZone(t *testing.T) {
	t.Parallel()
	_, err := ParseTeardown([]string{"--keep-secrets"})
	assert.Equal(t, MissingRequiredParameter, KindOf(err))
}

func TestStatusOptions_Build(t *testing.T) {
	t.Parallel()
	_, err := (&StatusOptions{}).Build()
	assert.Equal(t, MissingRequiredParameter, KindOf(err))

	req, err := (&StatusOptions{ZoneName: "z1"}).Build()
	require.NoError(t, err)
	assert.Equal(t, DefaultRegion, req.Region)
}

func TestDeployRequest_LogValueHidesToken(t *testing.T) {
	t.Parallel()
	req, err := ParseDeploy(hostedArgs("--connectivity-token", "s3cr3t-token"))
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t-token", req.ConnectivityToken)
	assert.NotContains(t, req.LogValue().String(), "s3cr3t-token")
}

func TestUsage(t *testing.T) {
	t.Parallel()
	assert.Contains(t, DeployUsage(), "--zone-name")
	assert.Contains(t, TeardownUsage(), "--keep-secrets")
}

func TestValidationError_Message(t *testing.T) {
	t.Parallel()
	err := missing("--zone-name", "--cp-id")
	assert.Equal(t, "MissingRequiredParameter (--zone-name, --cp-id): required option not supplied", err.Error())
	assert.True(t, IsValidation(err))
	assert.Equal(t, Kind(""), KindOf(os.ErrNotExist))
}
