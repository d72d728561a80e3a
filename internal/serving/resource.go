package serving

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"adapterd/internal/llm"
	"adapterd/internal/weights"
	"adapterd/pkg/types"
)

// GenerationRequest binds a prompt and its opaque sampling parameters to
// whichever adapter is composed at the moment execution begins.
type GenerationRequest struct {
	Prompt   string
	Sampling types.SamplingConfig
}

// GenerationResult carries the produced text plus the adapter that was
// active while the request executed, for auditability: adapter identity can
// change between submission and execution.
type GenerationResult struct {
	ID           string
	Text         string
	Adapter      string
	FinishReason string
	Duration     time.Duration
}

// ModelResource owns the base model handle and the adapter currently
// composed onto it. The admission gate decides WHEN a compose may run
// (exclusive slot, readers drained); mu makes the composition pair itself
// safe to read from status and list snapshots that hold no slot.
type ModelResource struct {
	base    *weights.BaseHandle
	runner  llm.Runner
	initErr error

	mu         sync.Mutex // guards active and activeName
	active     *weights.Handle
	activeName string
}

// NewModelResource loads the base model once via the loader. A load failure
// is fatal but deferred: the resource is still constructed and every
// Generate reports ResourceUnavailable.
func NewModelResource(loader weights.Loader, basePath string, runner llm.Runner) *ModelResource {
	r := &ModelResource{runner: runner}
	base, err := loader.LoadBase(basePath)
	if err != nil {
		r.initErr = fmt.Errorf("base model %s: %w", basePath, err)
		return r
	}
	r.base = base
	return r
}

// InitErr returns the startup failure, if the base model could not be loaded.
func (r *ModelResource) InitErr() error { return r.initErr }

// BaseID returns the base model identifier, empty if initialization failed.
func (r *ModelResource) BaseID() string {
	if r.base == nil {
		return ""
	}
	return r.base.ID
}

// ActiveAdapter returns the name of the composed adapter, empty for
// base-only. Callers needing a stable answer must hold an admission slot.
func (r *ModelResource) ActiveAdapter() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.activeName
}

// Generate runs the request against the base model as currently composed.
// Read-only with respect to composition state.
func (r *ModelResource) Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error) {
	if r.initErr != nil {
		return GenerationResult{}, ErrResourceUnavailable(r.initErr.Error())
	}
	r.mu.Lock()
	adapter := r.active
	adapterName := r.activeName
	r.mu.Unlock()
	start := time.Now()
	out, err := r.runner.Run(ctx, llm.Composed{Base: r.base, Adapter: adapter}, req.Prompt, req.Sampling)
	if err != nil {
		return GenerationResult{}, err
	}
	return GenerationResult{
		ID:           uuid.NewString(),
		Text:         out.Text,
		Adapter:      adapterName,
		FinishReason: out.FinishReason,
		Duration:     time.Since(start),
	}, nil
}

// Compose atomically replaces the active adapter reference. Compatibility is
// validated before any mutation, so a failed compose leaves the previous
// composition fully intact. A nil handle composes the bare base model.
// Returns the previously active adapter name; the previous handle stays
// owned by the store and is never freed here.
func (r *ModelResource) Compose(name string, h *weights.Handle) (string, error) {
	if r.initErr != nil {
		return r.ActiveAdapter(), ErrResourceUnavailable(r.initErr.Error())
	}
	if h != nil {
		if err := h.CompatibleWith(r.base); err != nil {
			return r.ActiveAdapter(), ErrIncompatibleAdapter(name, err.Error())
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.activeName
	r.active = h
	if h == nil {
		r.activeName = ""
	} else {
		r.activeName = name
	}
	return prev, nil
}
