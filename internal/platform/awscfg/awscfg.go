// Package awscfg builds the aws.Config shared by the CloudFormation,
// Secrets Manager and S3 clients of one invocation.
package awscfg

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
)

// Options selects the region and an optional endpoint override.
type Options struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// FromSettings combines a request region with the environment settings.
func FromSettings(region string, s *config.Settings) Options {
	opts := Options{Region: region}
	if s != nil {
		opts.Endpoint = s.AWSEndpoint
		opts.AccessKeyID = s.AWSAccessKeyID
		opts.SecretAccessKey = s.AWSSecretAccessKey
	}
	return opts
}

// loadDefaultConfig is replaced in tests.
var loadDefaultConfig = awsconfig.LoadDefaultConfig

// Load resolves the default credential chain for the region. With an
// endpoint override every client talks to that endpoint, and static
// credentials are used when both keys are set.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	if opts.Region == "" {
		return aws.Config{}, fmt.Errorf("aws region is required")
	}

	loaders := loadOptions(opts)
	cfg, err := loadDefaultConfig(ctx, loaders...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return cfg, nil
}

func loadOptions(opts Options) []func(*awsconfig.LoadOptions) error {
	loaders := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.Endpoint == "" {
		return loaders
	}
	loaders = append(loaders, awsconfig.WithBaseEndpoint(opts.Endpoint))
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		))
	}
	return loaders
}
