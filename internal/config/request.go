package config

import "log/slog"

// Default option values.
const (
	DefaultRegion       = "us-east-1"
	DefaultVPCCIDR      = "10.0.0.0/16"
	DefaultSubnet1CIDR  = "10.0.0.0/24"
	DefaultSubnet2CIDR  = "10.0.1.0/24"
	DefaultTemplatesDir = "deploy"

	// MaxZoneNameLength keeps <zone>-control-plane a valid stack name and
	// leaves room for the role suffix in resource names the templates derive.
	MaxZoneNameLength = 32
)

// Mode selects how the zone control plane is licensed and connected.
type Mode string

const (
	// ModeHosted connects the zone to a hosted global control plane through
	// a KDS address and control plane id.
	ModeHosted Mode = "hosted"
	// ModeSelfHosted runs with a Kong Mesh license file.
	ModeSelfHosted Mode = "self-hosted"
)

// CertGenerator selects the certificate tool.
type CertGenerator string

const (
	// CertGeneratorKumactl shells out to kumactl.
	CertGeneratorKumactl CertGenerator = "kumactl"
	// CertGeneratorBuiltin generates a self-signed certificate in-process.
	CertGeneratorBuiltin CertGenerator = "builtin"
)

// DeployRequest is the validated, immutable input of a deploy invocation.
// It is passed by value; nothing downstream mutates it.
type DeployRequest struct {
	Zone              string
	Region            string
	Mode              Mode
	KDSAddress        string
	CPID              string
	ConnectivityToken string
	LicenseFile       string
	VPCCIDR           string
	Subnet1CIDR       string
	Subnet2CIDR       string
	SkipDemo          bool
	SkipIngress       bool
	TemplatesDir      string
	TemplateBucket    string
	CertGenerator     CertGenerator
	ReuseSecrets      bool
	MetricsFile       string
}

// HasLicense reports whether a license secret is part of the zone.
func (r DeployRequest) HasLicense() bool {
	return r.LicenseFile != ""
}

// LogValue implements slog.LogValuer and keeps the connectivity token out of logs.
func (r DeployRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("zone", r.Zone),
		slog.String("region", r.Region),
		slog.String("mode", string(r.Mode)),
		slog.String("vpc_cidr", r.VPCCIDR),
		slog.Bool("skip_demo", r.SkipDemo),
		slog.Bool("skip_ingress", r.SkipIngress),
	)
}

// TeardownRequest is the validated, immutable input of a teardown invocation.
type TeardownRequest struct {
	Zone           string
	Region         string
	SkipDemo       bool
	SkipIngress    bool
	IncludeLicense bool
	KeepSecrets    bool
	AssumeYes      bool
	MetricsFile    string
}

// LogValue implements slog.LogValuer.
func (r TeardownRequest) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("zone", r.Zone),
		slog.String("region", r.Region),
		slog.Bool("keep_secrets", r.KeepSecrets),
		slog.Bool("skip_demo", r.SkipDemo),
		slog.Bool("skip_ingress", r.SkipIngress),
	)
}

// StatusRequest selects the zone whose live state is reported.
type StatusRequest struct {
	Zone   string
	Region string
}
