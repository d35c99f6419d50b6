package handlers

import (
	"context"
	"encoding/json"
	"fmt"

	"sigs.k8s.io/yaml"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
)

// Status output formats.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// Status prints the live state of the zone of req in the given format.
func Status(ctx context.Context, req config.StatusRequest, output string) error {
	switch output {
	case OutputTable, OutputJSON, OutputYAML:
	default:
		return &config.ValidationError{
			Kind:    config.InvalidValue,
			Fields:  []string{"--output"},
			Message: fmt.Sprintf("unknown format %q (want table, json or yaml)", output),
		}
	}

	sess, err := newSession(ctx, req.Region)
	if err != nil {
		return err
	}
	deps := provisioning.Deps{
		Engine: newEngine(sess.aws, sess.settings, "", "", logger),
		Store:  newStore(sess.aws, logger),
		Logger: logger,
	}

	st, err := runStatus(ctx, deps, req)
	if err != nil {
		return fmt.Errorf("failed to read status of zone %s: %w", req.Zone, err)
	}
	return printStatus(st, output)
}

func printStatus(st report.Status, output string) error {
	switch output {
	case OutputJSON:
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprintln(stdout, string(data))
	case OutputYAML:
		data, err := yaml.Marshal(st)
		if err != nil {
			return fmt.Errorf("failed to marshal status: %w", err)
		}
		fmt.Fprint(stdout, string(data))
	default:
		fmt.Fprint(stdout, report.RenderStatus(st))
	}
	return nil
}
