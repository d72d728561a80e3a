package serving

import (
	"context"

	"github.com/google/uuid"

	"adapterd/internal/weights"
)

// AdapterSwitchResult reports the outcome of a switch.
type AdapterSwitchResult struct {
	OpID     string
	Active   string
	Previous string
}

// SwitchAdapter activates the named adapter (empty name = bare base model).
// Weights are ensured resident before the exclusive slot is taken, so the
// drain window covers only the pointer swap, not the load. On any failure
// the previously active adapter remains active and is reported unchanged.
func (c *Core) SwitchAdapter(ctx context.Context, name string) (AdapterSwitchResult, error) {
	opID := uuid.NewString()
	res := AdapterSwitchResult{OpID: opID, Active: c.resource.ActiveAdapter()}

	c.publisher.Publish(Event{Name: "switch_start", Adapter: name, Fields: map[string]any{"op_id": opID}})
	c.log.Info().Str("op_id", opID).Str("adapter", name).Msg("switch requested")

	var handle *weights.Handle
	if name != "" {
		// Pin before the load, not after: a concurrent evict landing
		// between EnsureLoaded returning and the pin would free the
		// handle we are about to compose.
		c.store.Pin(name)
		defer c.store.Unpin(name)
		h, err := c.store.EnsureLoaded(ctx, name)
		if err != nil {
			return c.switchFailed(res, name, opID, err)
		}
		handle = h
	}

	if err := c.gate.acquireExclusive(ctx, "switch", c.cfg.SwitchWait); err != nil {
		return c.switchFailed(res, name, opID, err)
	}
	prev, err := c.resource.Compose(name, handle)
	if err == nil && prev != name {
		// Transfer the active pin: the new adapter stays pinned, the
		// previous handle returns to unpinned store ownership.
		c.store.Pin(name)
		c.store.Unpin(prev)
	}
	c.gate.releaseExclusive()
	if err != nil {
		return c.switchFailed(res, name, opID, err)
	}

	c.statMu.Lock()
	c.switchesTotal++
	c.statMu.Unlock()
	c.metrics.Increment(MetricSwitches, map[string]string{"adapter": adapterLabel(name)})
	c.publisher.Publish(Event{Name: "switch_done", Adapter: name, Fields: map[string]any{"op_id": opID, "previous": prev}})
	c.log.Info().Str("op_id", opID).Str("adapter", name).Str("previous", prev).Msg("switch complete")

	res.Active = name
	res.Previous = prev
	return res, nil
}

func (c *Core) switchFailed(res AdapterSwitchResult, name, opID string, err error) (AdapterSwitchResult, error) {
	c.setLastErr(err)
	c.metrics.Increment(MetricSwitchErrors, map[string]string{"adapter": adapterLabel(name)})
	c.publisher.Publish(Event{Name: "switch_failed", Adapter: name, Fields: map[string]any{"op_id": opID, "error": err.Error()}})
	c.log.Warn().Str("op_id", opID).Str("adapter", name).Err(err).Msg("switch failed")
	return res, err
}
