package serving

import (
	"time"

	"adapterd/pkg/types"
)

// ListAdapters returns a consistent snapshot of the store plus the adapter
// currently composed onto the base model.
func (c *Core) ListAdapters() types.AdaptersResponse {
	return types.AdaptersResponse{
		Adapters: c.store.List(),
		Active:   c.resource.ActiveAdapter(),
	}
}

// Status builds a detailed status response for /status.
func (c *Core) Status() types.StatusResponse {
	gs := c.gate.stats()
	loads, evictions := c.store.Totals()

	c.statMu.Lock()
	generations := c.generationsTotal
	switches := c.switchesTotal
	lastErr := c.lastErr
	c.statMu.Unlock()

	state := "ready"
	switch {
	case c.resource.InitErr() != nil:
		state = "error"
	case gs.WriterActive || gs.QueuedWriters > 0:
		state = "draining"
	}

	return types.StatusResponse{
		State:               state,
		ActiveAdapter:       c.resource.ActiveAdapter(),
		BaseModel:           c.resource.BaseID(),
		InflightGenerations: gs.Readers,
		QueuedGenerations:   gs.QueuedReaders,
		SwitchPending:       gs.WriterActive || gs.QueuedWriters > 0,
		ResidentAdapters:    c.store.ResidentCount(),
		GenerationsTotal:    generations,
		SwitchesTotal:       switches,
		LoadsTotal:          loads,
		EvictionsTotal:      evictions,
		UptimeSeconds:       int64(time.Since(c.startTime) / time.Second),
		LastError:           lastErr,
	}
}
