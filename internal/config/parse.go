package config

import (
	"io"

	"github.com/spf13/pflag"
)

// ParseDeploy parses a flat deploy argument list into a DeployRequest.
func ParseDeploy(args []string) (DeployRequest, error) {
	var opts DeployOptions
	fs := newFlagSet("deploy")
	opts.Bind(fs)
	if err := parse(fs, args); err != nil {
		return DeployRequest{}, err
	}
	return opts.Build(fs)
}

// ParseTeardown parses a flat teardown argument list into a TeardownRequest.
func ParseTeardown(args []string) (TeardownRequest, error) {
	var opts TeardownOptions
	fs := newFlagSet("teardown")
	opts.Bind(fs)
	if err := parse(fs, args); err != nil {
		return TeardownRequest{}, err
	}
	return opts.Build(fs)
}

// DeployUsage returns the deploy flag usage text.
func DeployUsage() string {
	var opts DeployOptions
	fs := newFlagSet("deploy")
	opts.Bind(fs)
	return fs.FlagUsages()
}

// TeardownUsage returns the teardown flag usage text.
func TeardownUsage() string {
	var opts TeardownOptions
	fs := newFlagSet("teardown")
	opts.Bind(fs)
	return fs.FlagUsages()
}

func newFlagSet(name string) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parse(fs *pflag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return FlagError(err)
	}
	return PositionalArgs(fs.Args())
}
