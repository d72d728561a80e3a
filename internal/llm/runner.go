// Package llm abstracts the generation runtime used by the serving core.
// The real runtime is llama.cpp via go-llama.cpp, enabled with the 'llama'
// build tag; default builds get a CGO-free stub that fails fast instead of
// mocking inference.
package llm

import (
	"context"
	"errors"

	"adapterd/internal/weights"
	"adapterd/pkg/types"
)

// ErrRuntimeUnavailable indicates the generation runtime is not usable in
// this build or environment. Callers should surface it as a service-level
// condition rather than a request error.
var ErrRuntimeUnavailable = errors.New("generation runtime unavailable")

// Composed is the unit the runner executes against: the base model plus the
// adapter composed onto it (nil Adapter means base-only inference).
type Composed struct {
	Base    *weights.BaseHandle
	Adapter *weights.Handle
}

// Result summarizes one completed generation.
type Result struct {
	Text         string
	FinishReason string
}

// Runner executes generation against a composed model. Implementations must
// return promptly when ctx is canceled.
type Runner interface {
	Run(ctx context.Context, m Composed, prompt string, cfg types.SamplingConfig) (Result, error)
}
