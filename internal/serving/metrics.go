package serving

// MetricsSink receives counter increments from the core. Implementations
// must be fire-and-forget: never block and never return an error to the
// serving path.
type MetricsSink interface {
	Increment(counter string, labels map[string]string)
}

// Counter names emitted by the core.
const (
	MetricGenerations       = "generations_total"
	MetricGenerationErrors  = "generation_errors_total"
	MetricSwitches          = "switches_total"
	MetricSwitchErrors      = "switch_errors_total"
	MetricAdapterLoads      = "adapter_loads_total"
	MetricAdapterLoadErrors = "adapter_load_errors_total"
	MetricAdapterEvictions  = "adapter_evictions_total"
)

// noopSink is the default; it drops increments.
type noopSink struct{}

func (noopSink) Increment(string, map[string]string) {}
