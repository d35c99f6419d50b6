package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Settings holds process-wide settings read from the environment.
//
// Environment Variables:
//   - KMECS_STACK_WAIT_TIMEOUT (default: 60m) upper bound handed to the stack waiters
//   - KMECS_AWS_ENDPOINT (optional) endpoint override, e.g. a LocalStack URL
//   - KMECS_AWS_ACCESS_KEY_ID / KMECS_AWS_SECRET_ACCESS_KEY (optional) static
//     credentials, only used together with KMECS_AWS_ENDPOINT
//   - KMECS_KUMACTL (default: kumactl) kumactl binary name or path
type Settings struct {
	StackWaitTimeout   time.Duration `env:"KMECS_STACK_WAIT_TIMEOUT" envDefault:"60m"`
	AWSEndpoint        string        `env:"KMECS_AWS_ENDPOINT"`
	AWSAccessKeyID     string        `env:"KMECS_AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string        `env:"KMECS_AWS_SECRET_ACCESS_KEY"`
	Kumactl            string        `env:"KMECS_KUMACTL" envDefault:"kumactl"`
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (*Settings, error) {
	return parseSettings(env.Options{})
}

// LoadSettingsFrom reads Settings from the given variables only.
func LoadSettingsFrom(vars map[string]string) (*Settings, error) {
	return parseSettings(env.Options{Environment: vars})
}

func parseSettings(opts env.Options) (*Settings, error) {
	var s Settings
	if err := env.ParseWithOptions(&s, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment settings: %w", err)
	}
	if s.StackWaitTimeout <= 0 {
		return nil, fmt.Errorf("KMECS_STACK_WAIT_TIMEOUT must be positive, got %s", s.StackWaitTimeout)
	}
	return &s, nil
}
