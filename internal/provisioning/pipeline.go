package provisioning

import (
	"fmt"
	"time"
)

// RunPhases executes all provisioning phases sequentially and stops at the
// first error. Nothing done by earlier phases is rolled back.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Logger.Debug("starting pipeline", "phases", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		ctx.phase = phase.Name()

		if err := ctx.Err(); err != nil {
			LogPhaseFailed(ctx.Observer, phase.Name(), err)
			return fmt.Errorf("%s phase not started: %w", phase.Name(), err)
		}

		LogPhaseStart(ctx.Observer, phase.Name())
		ctx.Observer.Progress(phase.Name(), i+1, len(phases))

		if err := phase.Provision(ctx); err != nil {
			LogPhaseFailed(ctx.Observer, phase.Name(), err)
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		LogPhaseComplete(ctx.Observer, phase.Name(), time.Since(phaseStart))
	}

	ctx.Logger.Debug("pipeline completed", "duration", time.Since(start).Round(time.Millisecond))
	return nil
}
