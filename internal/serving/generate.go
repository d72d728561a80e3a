package serving

import (
	"context"
)

// SubmitGeneration admits the request under a shared slot and runs it
// against the currently composed model. The slot is released on every exit
// path so a stuck or canceled request cannot starve a pending switch.
func (c *Core) SubmitGeneration(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	if err := c.gate.acquireShared(ctx, "generate", c.cfg.MaxWait); err != nil {
		if IsTooBusy(err) {
			c.metrics.Increment(MetricGenerationErrors, map[string]string{"reason": "busy"})
		}
		return GenerationResult{}, err
	}
	defer c.gate.releaseShared()

	if c.sem != nil {
		if err := c.sem.Acquire(ctx, 1); err != nil {
			return GenerationResult{}, err
		}
		defer c.sem.Release(1)
	}

	res, err := c.resource.Generate(ctx, req)
	if err != nil {
		c.metrics.Increment(MetricGenerationErrors, map[string]string{"reason": "runtime"})
		return GenerationResult{}, err
	}

	c.statMu.Lock()
	c.generationsTotal++
	c.statMu.Unlock()
	c.metrics.Increment(MetricGenerations, map[string]string{"adapter": adapterLabel(res.Adapter)})
	c.log.Debug().
		Str("id", res.ID).
		Str("adapter", res.Adapter).
		Dur("dur", res.Duration).
		Msg("generation served")
	return res, nil
}

// adapterLabel keeps metric labels non-empty for base-only generations.
func adapterLabel(name string) string {
	if name == "" {
		return "(base)"
	}
	return name
}
