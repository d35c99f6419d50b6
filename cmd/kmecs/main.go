// Package main is the entry point for the kmecs CLI.
//
// kmecs provisions a Kong Mesh zone on AWS ECS: a set of CloudFormation
// stacks for the network, the zone control plane, the ingress and the demo
// workloads, plus the Secrets Manager secrets they read at start-up.
//
// Commands: deploy, teardown, status, plan, doctor.
//
// For detailed usage information, run:
//
//	kmecs --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"

	"github.com/jeffrey-arndt/kong-mesh-ecs/cmd/kmecs/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.New(color.FgRed, color.Bold).Sprint("ERROR"), err)
		os.Exit(1)
	}
}
