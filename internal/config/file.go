package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the optional YAML zone file. Keys mirror the flag names; any
// value set here is used unless the same flag is given on the command line.
//
//	zone-name: z1
//	kds-address: grpcs://us.mesh.sync.konghq.com:443
//	cp-id: 0a1b2c
//	vpc-cidr: 10.1.0.0/16
//	skip-demo: true
type File struct {
	ZoneName          string `yaml:"zone-name"`
	Region            string `yaml:"region"`
	KDSAddress        string `yaml:"kds-address"`
	CPID              string `yaml:"cp-id"`
	ConnectivityToken string `yaml:"connectivity-token"`
	LicenseFile       string `yaml:"license-file"`
	VPCCIDR           string `yaml:"vpc-cidr"`
	Subnet1CIDR       string `yaml:"subnet1-cidr"`
	Subnet2CIDR       string `yaml:"subnet2-cidr"`
	SkipDemo          *bool  `yaml:"skip-demo"`
	SkipIngress       *bool  `yaml:"skip-ingress"`
	KeepSecrets       *bool  `yaml:"keep-secrets"`
	TemplatesDir      string `yaml:"templates-dir"`
	TemplateBucket    string `yaml:"template-bucket"`
	CertGenerator     string `yaml:"cert-generator"`
}

// LoadFile reads and strictly decodes a zone file. Unknown keys are
// reported as UnknownOption, a missing file as InvalidPath.
func LoadFile(path string) (*File, error) {
	// #nosec G304 - path is an explicit user-supplied option
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ValidationError{Kind: InvalidPath, Fields: []string{"--" + FlagConfig}, Message: fmt.Sprintf("cannot read %s", path), Err: err}
	}

	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		var typeErr *yaml.TypeError
		if errors.As(err, &typeErr) && unknownField(typeErr) {
			return nil, &ValidationError{Kind: UnknownOption, Fields: []string{"--" + FlagConfig}, Message: path, Err: err}
		}
		return nil, &ValidationError{Kind: InvalidValue, Fields: []string{"--" + FlagConfig}, Message: path, Err: err}
	}
	return &f, nil
}

func unknownField(err *yaml.TypeError) bool {
	for _, msg := range err.Errors {
		if strings.Contains(msg, "not found in type") {
			return true
		}
	}
	return false
}
