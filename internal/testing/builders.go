package testing

import "github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"

// DeployRequestBuilder provides a fluent interface for test deploy requests.
// Each method returns a new builder for chaining.
type DeployRequestBuilder struct {
	req config.DeployRequest
}

// NewDeployRequestBuilder returns a builder for the zone "z1" in hosted mode
// with the default network ranges.
func NewDeployRequestBuilder() *DeployRequestBuilder {
	return &DeployRequestBuilder{
		req: config.DeployRequest{
			Zone:              "z1",
			Region:            config.DefaultRegion,
			Mode:              config.ModeHosted,
			KDSAddress:        "grpcs://x:443",
			CPID:              "c1",
			ConnectivityToken: "t",
			VPCCIDR:           config.DefaultVPCCIDR,
			Subnet1CIDR:       config.DefaultSubnet1CIDR,
			Subnet2CIDR:       config.DefaultSubnet2CIDR,
			TemplatesDir:      config.DefaultTemplatesDir,
			CertGenerator:     config.CertGeneratorBuiltin,
		},
	}
}

// WithZone sets the zone name.
func (b *DeployRequestBuilder) WithZone(zone string) *DeployRequestBuilder {
	nb := *b
	nb.req.Zone = zone
	return &nb
}

// WithLicense switches to self-hosted mode with the given license file.
func (b *DeployRequestBuilder) WithLicense(path string) *DeployRequestBuilder {
	nb := *b
	nb.req.LicenseFile = path
	nb.req.Mode = config.ModeSelfHosted
	return &nb
}

// WithSkips sets the skip flags.
func (b *DeployRequestBuilder) WithSkips(skipIngress, skipDemo bool) *DeployRequestBuilder {
	nb := *b
	nb.req.SkipIngress = skipIngress
	nb.req.SkipDemo = skipDemo
	return &nb
}

// WithReuseSecrets sets the reuse-secrets flag.
func (b *DeployRequestBuilder) WithReuseSecrets() *DeployRequestBuilder {
	nb := *b
	nb.req.ReuseSecrets = true
	return &nb
}

// WithTemplatesDir sets the templates directory.
func (b *DeployRequestBuilder) WithTemplatesDir(dir string) *DeployRequestBuilder {
	nb := *b
	nb.req.TemplatesDir = dir
	return &nb
}

// WithTemplateBucket sets the template bucket.
func (b *DeployRequestBuilder) WithTemplateBucket(bucket string) *DeployRequestBuilder {
	nb := *b
	nb.req.TemplateBucket = bucket
	return &nb
}

// WithCertGenerator sets the certificate generator.
func (b *DeployRequestBuilder) WithCertGenerator(gen config.CertGenerator) *DeployRequestBuilder {
	nb := *b
	nb.req.CertGenerator = gen
	return &nb
}

// Build returns the request.
func (b *DeployRequestBuilder) Build() config.DeployRequest {
	return b.req
}

// TeardownFor returns the teardown request matching a deploy request.
func TeardownFor(req config.DeployRequest, keepSecrets bool) config.TeardownRequest {
	return config.TeardownRequest{
		Zone:           req.Zone,
		Region:         req.Region,
		SkipDemo:       req.SkipDemo,
		SkipIngress:    req.SkipIngress,
		IncludeLicense: req.HasLicense(),
		KeepSecrets:    keepSecrets,
		AssumeYes:      true,
	}
}
