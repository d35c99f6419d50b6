package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/pflag"
)

// Flag names shared by the cobra commands, the YAML zone file and error messages.
const (
	FlagZoneName          = "zone-name"
	FlagKDSAddress        = "kds-address"
	FlagCPID              = "cp-id"
	FlagConnectivityToken = "connectivity-token"
	FlagLicenseFile       = "license-file"
	FlagVPCCIDR           = "vpc-cidr"
	FlagSubnet1CIDR       = "subnet1-cidr"
	FlagSubnet2CIDR       = "subnet2-cidr"
	FlagRegion            = "region"
	FlagSkipDemo          = "skip-demo"
	FlagSkipIngress       = "skip-ingress"
	FlagTemplatesDir      = "templates-dir"
	FlagTemplateBucket    = "template-bucket"
	FlagCertGenerator     = "cert-generator"
	FlagReuseSecrets      = "reuse-secrets"
	FlagKeepSecrets       = "keep-secrets"
	FlagYes               = "yes"
	FlagConfig            = "config"
	FlagMetricsFile       = "metrics-file"
)

var zoneNamePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9-]*$`)

// DeployOptions holds the raw deploy flags before validation.
type DeployOptions struct {
	ZoneName          string
	KDSAddress        string
	CPID              string
	ConnectivityToken string
	LicenseFile       string
	VPCCIDR           string
	Subnet1CIDR       string
	Subnet2CIDR       string
	Region            string
	SkipDemo          bool
	SkipIngress       bool
	TemplatesDir      string
	TemplateBucket    string
	CertGenerator     string
	ReuseSecrets      bool
	ConfigFile        string
	MetricsFile       string

	subnetsExplicit bool
}

// Bind registers the deploy flags on fs.
func (o *DeployOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.ZoneName, FlagZoneName, "", "Name of the zone to deploy (required)")
	fs.StringVar(&o.KDSAddress, FlagKDSAddress, "", "KDS address of the global control plane, e.g. grpcs://host:443 (required unless --license-file)")
	fs.StringVar(&o.CPID, FlagCPID, "", "Global control plane id (required unless --license-file)")
	fs.StringVar(&o.ConnectivityToken, FlagConnectivityToken, "", "Zone connectivity token for the global control plane (required)")
	fs.StringVar(&o.LicenseFile, FlagLicenseFile, "", "Path to a Kong Mesh license file; enables self-hosted mode")
	fs.StringVar(&o.VPCCIDR, FlagVPCCIDR, DefaultVPCCIDR, "CIDR block of the zone VPC")
	fs.StringVar(&o.Subnet1CIDR, FlagSubnet1CIDR, DefaultSubnet1CIDR, "CIDR block of the first public subnet")
	fs.StringVar(&o.Subnet2CIDR, FlagSubnet2CIDR, DefaultSubnet2CIDR, "CIDR block of the second public subnet")
	fs.StringVar(&o.Region, FlagRegion, DefaultRegion, "AWS region")
	fs.BoolVar(&o.SkipDemo, FlagSkipDemo, false, "Do not deploy the redis and demo-app workloads")
	fs.BoolVar(&o.SkipIngress, FlagSkipIngress, false, "Do not deploy the zone ingress")
	fs.StringVar(&o.TemplatesDir, FlagTemplatesDir, DefaultTemplatesDir, "Directory containing the CloudFormation templates")
	fs.StringVar(&o.TemplateBucket, FlagTemplateBucket, "", "S3 bucket to upload templates to before applying")
	fs.StringVar(&o.CertGenerator, FlagCertGenerator, string(CertGeneratorKumactl), "Certificate generator: kumactl or builtin")
	fs.BoolVar(&o.ReuseSecrets, FlagReuseSecrets, false, "Reuse zone secrets that already exist instead of failing")
	fs.StringVar(&o.ConfigFile, FlagConfig, "", "YAML file with option defaults (flags take precedence)")
	fs.StringVar(&o.MetricsFile, FlagMetricsFile, "", "Write prometheus metrics for this run to the given textfile")
}

// Build merges the optional zone file and validates the options into a
// DeployRequest. fs is used to tell explicitly set flags apart from
// defaults and may be nil.
func (o *DeployOptions) Build(fs *pflag.FlagSet) (DeployRequest, error) {
	if o.ConfigFile != "" {
		f, err := LoadFile(o.ConfigFile)
		if err != nil {
			return DeployRequest{}, err
		}
		o.merge(fs, f)
	}
	o.subnetsExplicit = o.subnetsExplicit || changed(fs, FlagSubnet1CIDR) || changed(fs, FlagSubnet2CIDR)
	return o.validate()
}

func (o *DeployOptions) merge(fs *pflag.FlagSet, f *File) {
	fill(fs, FlagZoneName, &o.ZoneName, f.ZoneName)
	fill(fs, FlagKDSAddress, &o.KDSAddress, f.KDSAddress)
	fill(fs, FlagCPID, &o.CPID, f.CPID)
	fill(fs, FlagConnectivityToken, &o.ConnectivityToken, f.ConnectivityToken)
	fill(fs, FlagLicenseFile, &o.LicenseFile, f.LicenseFile)
	fill(fs, FlagVPCCIDR, &o.VPCCIDR, f.VPCCIDR)
	fill(fs, FlagRegion, &o.Region, f.Region)
	fill(fs, FlagTemplatesDir, &o.TemplatesDir, f.TemplatesDir)
	fill(fs, FlagTemplateBucket, &o.TemplateBucket, f.TemplateBucket)
	fill(fs, FlagCertGenerator, &o.CertGenerator, f.CertGenerator)
	fillBool(fs, FlagSkipDemo, &o.SkipDemo, f.SkipDemo)
	fillBool(fs, FlagSkipIngress, &o.SkipIngress, f.SkipIngress)
	if fill(fs, FlagSubnet1CIDR, &o.Subnet1CIDR, f.Subnet1CIDR) {
		o.subnetsExplicit = true
	}
	if fill(fs, FlagSubnet2CIDR, &o.Subnet2CIDR, f.Subnet2CIDR) {
		o.subnetsExplicit = true
	}
}

func (o *DeployOptions) validate() (DeployRequest, error) {
	req := DeployRequest{
		Zone:              strings.TrimSpace(o.ZoneName),
		Region:            strings.TrimSpace(o.Region),
		KDSAddress:        strings.TrimSpace(o.KDSAddress),
		CPID:              strings.TrimSpace(o.CPID),
		ConnectivityToken: strings.TrimSpace(o.ConnectivityToken),
		LicenseFile:       strings.TrimSpace(o.LicenseFile),
		VPCCIDR:           strings.TrimSpace(o.VPCCIDR),
		Subnet1CIDR:       strings.TrimSpace(o.Subnet1CIDR),
		Subnet2CIDR:       strings.TrimSpace(o.Subnet2CIDR),
		SkipDemo:          o.SkipDemo,
		SkipIngress:       o.SkipIngress,
		TemplatesDir:      strings.TrimSpace(o.TemplatesDir),
		TemplateBucket:    strings.TrimSpace(o.TemplateBucket),
		CertGenerator:     CertGenerator(strings.ToLower(strings.TrimSpace(o.CertGenerator))),
		ReuseSecrets:      o.ReuseSecrets,
		MetricsFile:       strings.TrimSpace(o.MetricsFile),
	}

	req.Mode = ModeHosted
	if req.LicenseFile != "" {
		req.Mode = ModeSelfHosted
	}

	var absent []string
	if req.Zone == "" {
		absent = append(absent, "--"+FlagZoneName)
	}
	if req.Mode == ModeHosted {
		if req.KDSAddress == "" {
			absent = append(absent, "--"+FlagKDSAddress)
		}
		if req.CPID == "" {
			absent = append(absent, "--"+FlagCPID)
		}
	}
	if req.ConnectivityToken == "" {
		absent = append(absent, "--"+FlagConnectivityToken)
	}
	if len(absent) > 0 {
		return DeployRequest{}, missing(absent...)
	}

	if err := validateZoneName(req.Zone); err != nil {
		return DeployRequest{}, err
	}
	if req.LicenseFile != "" {
		if err := validateFile(FlagLicenseFile, req.LicenseFile); err != nil {
			return DeployRequest{}, err
		}
	}
	if req.KDSAddress != "" {
		if err := validateKDSAddress(req.KDSAddress); err != nil {
			return DeployRequest{}, err
		}
	}
	if req.Region == "" {
		req.Region = DefaultRegion
	}
	if req.TemplatesDir == "" {
		req.TemplatesDir = DefaultTemplatesDir
	}
	switch req.CertGenerator {
	case "":
		req.CertGenerator = CertGeneratorKumactl
	case CertGeneratorKumactl, CertGeneratorBuiltin:
	default:
		return DeployRequest{}, invalid("--"+FlagCertGenerator, "unsupported generator %q (want kumactl or builtin)", req.CertGenerator)
	}

	if !o.subnetsExplicit && req.VPCCIDR != DefaultVPCCIDR {
		first, second, err := defaultSubnets(req.VPCCIDR)
		if err != nil {
			return DeployRequest{}, &ValidationError{Kind: InvalidValue, Fields: []string{"--" + FlagVPCCIDR}, Err: err}
		}
		req.Subnet1CIDR, req.Subnet2CIDR = first, second
	}
	if err := validateNetwork(req.VPCCIDR, req.Subnet1CIDR, req.Subnet2CIDR); err != nil {
		return DeployRequest{}, err
	}

	return req, nil
}

// TeardownOptions holds the raw teardown flags before validation.
type TeardownOptions struct {
	ZoneName    string
	Region      string
	SkipDemo    bool
	SkipIngress bool
	LicenseFile string
	KeepSecrets bool
	Yes         bool
	ConfigFile  string
	MetricsFile string
}

// Bind registers the teardown flags on fs.
func (o *TeardownOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.ZoneName, FlagZoneName, "", "Name of the zone to tear down (required)")
	fs.StringVar(&o.Region, FlagRegion, DefaultRegion, "AWS region")
	fs.BoolVar(&o.SkipDemo, FlagSkipDemo, false, "The zone was deployed without the demo workloads")
	fs.BoolVar(&o.SkipIngress, FlagSkipIngress, false, "The zone was deployed without the zone ingress")
	fs.StringVar(&o.LicenseFile, FlagLicenseFile, "", "The zone is self-hosted; also remove its license secret (the file is not read)")
	fs.BoolVar(&o.KeepSecrets, FlagKeepSecrets, false, "Keep the zone secrets so the zone can be redeployed")
	fs.BoolVarP(&o.Yes, FlagYes, "y", false, "Do not prompt for confirmation")
	fs.StringVar(&o.ConfigFile, FlagConfig, "", "YAML file with option defaults (flags take precedence)")
	fs.StringVar(&o.MetricsFile, FlagMetricsFile, "", "Write prometheus metrics for this run to the given textfile")
}

// Build merges the optional zone file and validates the options into a TeardownRequest.
func (o *TeardownOptions) Build(fs *pflag.FlagSet) (TeardownRequest, error) {
	if o.ConfigFile != "" {
		f, err := LoadFile(o.ConfigFile)
		if err != nil {
			return TeardownRequest{}, err
		}
		fill(fs, FlagZoneName, &o.ZoneName, f.ZoneName)
		fill(fs, FlagRegion, &o.Region, f.Region)
		fill(fs, FlagLicenseFile, &o.LicenseFile, f.LicenseFile)
		fillBool(fs, FlagSkipDemo, &o.SkipDemo, f.SkipDemo)
		fillBool(fs, FlagSkipIngress, &o.SkipIngress, f.SkipIngress)
		fillBool(fs, FlagKeepSecrets, &o.KeepSecrets, f.KeepSecrets)
	}

	req := TeardownRequest{
		Zone:           strings.TrimSpace(o.ZoneName),
		Region:         strings.TrimSpace(o.Region),
		SkipDemo:       o.SkipDemo,
		SkipIngress:    o.SkipIngress,
		IncludeLicense: strings.TrimSpace(o.LicenseFile) != "",
		KeepSecrets:    o.KeepSecrets,
		AssumeYes:      o.Yes,
		MetricsFile:    strings.TrimSpace(o.MetricsFile),
	}
	if req.Zone == "" {
		return TeardownRequest{}, missing("--" + FlagZoneName)
	}
	if err := validateZoneName(req.Zone); err != nil {
		return TeardownRequest{}, err
	}
	if req.Region == "" {
		req.Region = DefaultRegion
	}
	return req, nil
}

// StatusOptions holds the raw status flags.
type StatusOptions struct {
	ZoneName string
	Region   string
}

// Bind registers the status flags on fs.
func (o *StatusOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.ZoneName, FlagZoneName, "", "Name of the zone to inspect (required)")
	fs.StringVar(&o.Region, FlagRegion, DefaultRegion, "AWS region")
}

// Build validates the status options.
func (o *StatusOptions) Build() (StatusRequest, error) {
	req := StatusRequest{Zone: strings.TrimSpace(o.ZoneName), Region: strings.TrimSpace(o.Region)}
	if req.Zone == "" {
		return StatusRequest{}, missing("--" + FlagZoneName)
	}
	if err := validateZoneName(req.Zone); err != nil {
		return StatusRequest{}, err
	}
	if req.Region == "" {
		req.Region = DefaultRegion
	}
	return req, nil
}

func validateZoneName(zone string) error {
	if len(zone) > MaxZoneNameLength {
		return invalid("--"+FlagZoneName, "zone name %q is longer than %d characters", zone, MaxZoneNameLength)
	}
	if !zoneNamePattern.MatchString(zone) {
		return invalid("--"+FlagZoneName, "zone name %q must start with a letter and contain only letters, digits and dashes", zone)
	}
	return nil
}

func validateFile(flag, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &ValidationError{Kind: InvalidPath, Fields: []string{"--" + flag}, Message: fmt.Sprintf("%s does not exist", path)}
	}
	if info.IsDir() {
		return &ValidationError{Kind: InvalidPath, Fields: []string{"--" + flag}, Message: fmt.Sprintf("%s is a directory", path)}
	}
	return nil
}

func validateKDSAddress(addr string) error {
	u, err := url.Parse(addr)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return invalid("--"+FlagKDSAddress, "%q is not an address of the form grpcs://host:port", addr)
	}
	return nil
}

func validateNetwork(vpc, subnet1, subnet2 string) error {
	vpcNet, err := parseIPv4Net(vpc)
	if err != nil {
		return &ValidationError{Kind: InvalidValue, Fields: []string{"--" + FlagVPCCIDR}, Err: err}
	}
	s1, err := parseIPv4Net(subnet1)
	if err != nil {
		return &ValidationError{Kind: InvalidValue, Fields: []string{"--" + FlagSubnet1CIDR}, Err: err}
	}
	s2, err := parseIPv4Net(subnet2)
	if err != nil {
		return &ValidationError{Kind: InvalidValue, Fields: []string{"--" + FlagSubnet2CIDR}, Err: err}
	}
	if !cidrContains(vpcNet, s1) {
		return invalid("--"+FlagSubnet1CIDR, "%s is not inside the VPC range %s", subnet1, vpc)
	}
	if !cidrContains(vpcNet, s2) {
		return invalid("--"+FlagSubnet2CIDR, "%s is not inside the VPC range %s", subnet2, vpc)
	}
	if cidrOverlaps(s1, s2) {
		return invalid("--"+FlagSubnet2CIDR, "%s overlaps %s", subnet2, subnet1)
	}
	return nil
}

func changed(fs *pflag.FlagSet, name string) bool {
	if fs == nil {
		return false
	}
	f := fs.Lookup(name)
	return f != nil && f.Changed
}

// fill copies v into dst unless the flag was set explicitly or v is empty.
func fill(fs *pflag.FlagSet, name string, dst *string, v string) bool {
	if v == "" || changed(fs, name) {
		return false
	}
	*dst = v
	return true
}

func fillBool(fs *pflag.FlagSet, name string, dst *bool, v *bool) {
	if v == nil || changed(fs, name) {
		return
	}
	*dst = *v
}
