// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework: every AWS client is built through a
// factory variable that tests replace with in-memory fakes.
package handlers

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/certs"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/confirm"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/logging"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/platform/awscfg"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/platform/cloudformation"
	s3client "github.com/jeffrey-arndt/kong-mesh-ecs/internal/platform/s3"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/platform/secretsmanager"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning/destroy"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/secrets"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/stack"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/util/prerequisites"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadSettings reads the KMECS_* environment settings.
	loadSettings = config.LoadSettings

	// loadAWSConfig resolves the AWS credential chain for a region.
	loadAWSConfig = awscfg.Load

	// newEngine creates the CloudFormation stack engine. With a template
	// bucket every template is uploaded to S3 and passed by URL.
	newEngine = func(cfg aws.Config, s *config.Settings, templatesDir, bucket string, logger *slog.Logger) stack.Engine {
		opts := []cloudformation.Option{
			cloudformation.WithMaxWait(s.StackWaitTimeout),
			cloudformation.WithLogger(logger),
		}
		if bucket != "" {
			opts = append(opts, cloudformation.WithUploader(s3client.NewFromConfig(cfg, s.AWSEndpoint), bucket))
		}
		return cloudformation.NewFromConfig(cfg, templatesDir, opts...)
	}

	// newStore creates the Secrets Manager backed secret store.
	newStore = func(cfg aws.Config, logger *slog.Logger) secrets.Store {
		return secretsmanager.NewFromConfig(cfg, secretsmanager.WithLogger(logger))
	}

	// newBucketChecker creates the S3 client used to verify the template bucket.
	newBucketChecker = func(cfg aws.Config, endpoint string) provisioning.BucketChecker {
		return s3client.NewFromConfig(cfg, endpoint)
	}

	// newCertTool selects the certificate generator.
	newCertTool = certs.NewTool

	// newPrompter creates the teardown confirmation prompter.
	newPrompter = confirm.NewPrompter

	// checkTools returns the tool check run by the deploy prerequisites phase.
	checkTools = provisioning.CheckTools

	// checkAllTools runs the doctor tool check.
	checkAllTools = prerequisites.CheckAll

	// runDeploy runs the deploy pipeline.
	runDeploy = provisioning.Deploy

	// runTeardown confirms and runs the teardown.
	runTeardown = destroy.Teardown

	// runStatus re-derives the live zone state.
	runStatus = provisioning.Status

	// now is the clock used for run timestamps.
	now = time.Now

	// stdout and stdin are the terminal streams.
	stdout io.Writer = os.Stdout
	stdin  io.Reader = os.Stdin

	logger = logging.Discard()
)

// SetLogger sets the logger handed to every client and phase.
func SetLogger(l *slog.Logger) {
	if l != nil {
		logger = l
	}
}

// session is the AWS side of one invocation.
type session struct {
	settings *config.Settings
	aws      aws.Config
}

func newSession(ctx context.Context, region string) (*session, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, err
	}
	cfg, err := loadAWSConfig(ctx, awscfg.FromSettings(region, settings))
	if err != nil {
		return nil, err
	}
	logger.Debug("aws session ready", "region", cfg.Region, "endpoint", settings.AWSEndpoint)
	return &session{settings: settings, aws: cfg}, nil
}
