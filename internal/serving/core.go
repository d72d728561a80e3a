package serving

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"adapterd/internal/llm"
	"adapterd/internal/weights"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultMaxWait    = 30 * time.Second
	defaultSwitchWait = 60 * time.Second
)

// Config encapsulates all tunables for Core construction.
type Config struct {
	// BaseModelPath locates the GGUF base model loaded once at startup.
	BaseModelPath string
	// MaxWait bounds how long a generation waits for admission while a
	// switch is queued or executing.
	MaxWait time.Duration
	// SwitchWait bounds how long a switch waits for in-flight generations
	// to drain.
	SwitchWait time.Duration
	// MaxConcurrent caps generations executing at once (0 = unlimited).
	MaxConcurrent int
	// MaxResident bounds adapters kept loaded simultaneously (0 = unlimited).
	MaxResident int

	Loader    weights.Loader
	Runner    llm.Runner
	Publisher EventPublisher
	Metrics   MetricsSink
	Logger    zerolog.Logger
}

// Core is the request-facing serving façade. It arbitrates between
// generation requests (shared admission) and adapter switches (exclusive
// admission) over the single ModelResource, and owns the AdapterStore.
type Core struct {
	cfg       Config
	store     *AdapterStore
	resource  *ModelResource
	gate      *rwGate
	sem       *semaphore.Weighted // nil when MaxConcurrent is 0
	publisher EventPublisher
	metrics   MetricsSink
	log       zerolog.Logger
	startTime time.Time

	statMu           sync.Mutex
	generationsTotal uint64
	switchesTotal    uint64
	lastErr          string
}

// New constructs a Core and loads the base model. A base-model failure does
// not fail construction: the core comes up unready and reports
// ResourceUnavailable to every generation, so operators can inspect status.
func New(cfg Config) *Core {
	if cfg.MaxWait <= 0 {
		cfg.MaxWait = defaultMaxWait
	}
	if cfg.SwitchWait <= 0 {
		cfg.SwitchWait = defaultSwitchWait
	}
	if cfg.Loader == nil {
		cfg.Loader = weights.NewFileLoader()
	}
	if cfg.Runner == nil {
		cfg.Runner = llm.NewLlamaRunner(0, 0)
	}
	if cfg.Publisher == nil {
		cfg.Publisher = noopPublisher{}
	}
	if cfg.Metrics == nil {
		cfg.Metrics = noopSink{}
	}

	c := &Core{
		cfg:       cfg,
		gate:      newRWGate(),
		publisher: cfg.Publisher,
		metrics:   cfg.Metrics,
		log:       cfg.Logger,
		startTime: time.Now(),
	}
	if cfg.MaxConcurrent > 0 {
		c.sem = semaphore.NewWeighted(int64(cfg.MaxConcurrent))
	}
	c.store = NewAdapterStore(cfg.Loader, cfg.MaxResident)
	c.store.SetPublisher(c.publisher)
	c.store.SetMetrics(c.metrics)
	c.store.SetLogger(cfg.Logger)
	c.resource = NewModelResource(cfg.Loader, cfg.BaseModelPath, cfg.Runner)
	if err := c.resource.InitErr(); err != nil {
		c.log.Error().Err(err).Msg("base model initialization failed")
		c.setLastErr(err)
	} else {
		c.log.Info().Str("base_model", c.resource.BaseID()).Msg("base model loaded")
	}
	return c
}

// Store exposes the adapter store for registration and eviction.
func (c *Core) Store() *AdapterStore { return c.store }

// RegisterAdapter adds an adapter to the store.
func (c *Core) RegisterAdapter(name, locator string) error {
	return c.store.Register(name, locator)
}

// EvictAdapter releases an adapter's resident weights. The active adapter
// cannot be evicted; switch away from it first.
func (c *Core) EvictAdapter(name string) error {
	return c.store.Evict(name)
}

// Ready reports whether the base model is usable.
func (c *Core) Ready() bool { return c.resource.InitErr() == nil }

// Close releases resident adapter weights. Called at process teardown.
func (c *Core) Close() error { return c.store.Close() }

func (c *Core) setLastErr(err error) {
	c.statMu.Lock()
	c.lastErr = err.Error()
	c.statMu.Unlock()
}
