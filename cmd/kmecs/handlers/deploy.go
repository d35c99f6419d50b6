package handlers

import (
	"context"
	"fmt"

	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/config"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/metrics"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/provisioning"
	"github.com/jeffrey-arndt/kong-mesh-ecs/internal/report"
)

// Deploy provisions the zone described by req and prints the summary.
//
// The summary is printed whether or not the deploy succeeded. Resources
// created before a failure are left in place; the returned error makes
// the process exit non-zero.
func Deploy(ctx context.Context, req config.DeployRequest) error {
	sess, err := newSession(ctx, req.Region)
	if err != nil {
		return err
	}

	rec := metrics.New(req.Zone)
	deps := provisioning.Deps{
		Engine:   newEngine(sess.aws, sess.settings, req.TemplatesDir, req.TemplateBucket, logger),
		Store:    newStore(sess.aws, logger),
		CertTool: newCertTool(req.CertGenerator, sess.settings.Kumactl),
		Tools:    checkTools(sess.settings.Kumactl),
		Logger:   logger,
		Metrics:  rec,
	}
	if req.TemplateBucket != "" {
		deps.Buckets = newBucketChecker(sess.aws, sess.settings.AWSEndpoint)
	}

	summary, err := runDeploy(ctx, deps, req)
	fmt.Fprint(stdout, report.RenderDeploy(summary))

	finishRun(rec, "deploy", err == nil, req.MetricsFile)
	if err != nil {
		return fmt.Errorf("deploy of zone %s failed: %w", req.Zone, err)
	}
	return nil
}

func finishRun(rec *metrics.Recorder, command string, ok bool, metricsFile string) {
	rec.RunFinished(command, ok, now())
	if err := rec.WriteTextfile(metricsFile); err != nil {
		logger.Warn("could not write metrics", "error", err)
	}
}
