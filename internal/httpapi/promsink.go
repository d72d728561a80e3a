package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"

	"adapterd/internal/serving"
)

// coreCounter pairs a registered counter vec with the single label key the
// serving core emits for it.
type coreCounter struct {
	vec *prometheus.CounterVec
	key string
}

var coreCounters = map[string]coreCounter{}

func init() {
	add := func(name, help, key string) {
		vec := prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "adapterd",
			Subsystem: "core",
			Name:      name,
			Help:      help,
		}, []string{key})
		prometheus.MustRegister(vec)
		coreCounters[name] = coreCounter{vec: vec, key: key}
	}
	add(serving.MetricGenerations, "Total generations served", "adapter")
	add(serving.MetricGenerationErrors, "Total failed generations", "reason")
	add(serving.MetricSwitches, "Total successful adapter switches", "adapter")
	add(serving.MetricSwitchErrors, "Total failed adapter switches", "adapter")
	add(serving.MetricAdapterLoads, "Total adapter weight loads", "adapter")
	add(serving.MetricAdapterLoadErrors, "Total failed adapter loads", "adapter")
	add(serving.MetricAdapterEvictions, "Total adapter evictions", "adapter")
}

// PromSink exports the serving core's counters through Prometheus. Increment
// never blocks and silently drops unknown counters, per the sink contract.
type PromSink struct{}

func NewPromSink() *PromSink { return &PromSink{} }

func (PromSink) Increment(counter string, labels map[string]string) {
	c, ok := coreCounters[counter]
	if !ok {
		return
	}
	v := labels[c.key]
	if v == "" {
		v = "unspecified"
	}
	c.vec.WithLabelValues(v).Inc()
}
