//go:build !llama

package llm

import (
	"context"
	"fmt"

	"adapterd/pkg/types"
)

// This file provides a no-CGO stub for the llama runner. It is compiled when
// the 'llama' build tag is NOT set, keeping default builds and CI CGO-free.

var llamaBuilt = false

// LlamaRunner is a stub that satisfies Runner but refuses to run inference
// without the 'llama' build tag. This avoids any mocked output in binaries
// built without CGO support.
type LlamaRunner struct {
	ctxSize int
	threads int
}

func NewLlamaRunner(ctxSize, threads int) *LlamaRunner {
	return &LlamaRunner{ctxSize: ctxSize, threads: threads}
}

func (r *LlamaRunner) Run(ctx context.Context, m Composed, prompt string, cfg types.SamplingConfig) (Result, error) {
	select {
	case <-ctx.Done():
		return Result{}, ctx.Err()
	default:
	}
	return Result{}, fmt.Errorf("%w: llama support not built (missing 'llama' build tag)", ErrRuntimeUnavailable)
}
