package handlers

import (
	"context"
	"fmt"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/confirm"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/metrics"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
)

// Teardown removes the zone described by req after confirmation.
//
// A declined confirmation and stacks that could not be deleted are not
// errors: both are reported in the summary. Only fatal preconditions
// (settings, AWS config, unusable remote state) are returned.
func Teardown(ctx context.Context, req config.TeardownRequest) error {
	sess, err := newSession(ctx, req.Region)
	if err != nil {
		return err
	}

	rec := metrics.New(req.Zone)
	deps := provisioning.Deps{
		Engine:  newEngine(sess.aws, sess.settings, "", "", logger),
		Store:   newStore(sess.aws, logger),
		Logger:  logger,
		Metrics: rec,
	}
	gate := confirm.NewGate(newPrompter(stdin, stdout), stdout, req.AssumeYes)

	summary, err := runTeardown(ctx, deps, req, gate)
	if !summary.Empty() {
		fmt.Fprint(stdout, report.RenderTeardown(summary))
	}
	if err != nil {
		finishRun(rec, "teardown", false, req.MetricsFile)
		return fmt.Errorf("teardown of zone %s failed: %w", req.Zone, err)
	}
	if summary.Cancelled {
		return nil
	}

	finishRun(rec, "teardown", len(summary.Remaining) == 0, req.MetricsFile)
	if len(summary.Remaining) > 0 {
		logger.Warn("teardown finished with remaining stacks", "count", len(summary.Remaining))
	}
	return nil
}
