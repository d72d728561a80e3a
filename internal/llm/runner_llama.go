//go:build llama

package llm

import (
	"context"
	"errors"

	llama "github.com/go-skynet/go-llama.cpp"

	"adapterd/pkg/types"
)

// llamaBuilt indicates this binary was compiled with real llama support.
var llamaBuilt = true

// LlamaRunner runs generations in-process through llama.cpp. Models are
// loaded per composition; the serving core guarantees Run is never invoked
// concurrently with a composition change.
type LlamaRunner struct {
	ctxSize int
	threads int
}

func NewLlamaRunner(ctxSize, threads int) *LlamaRunner {
	if ctxSize <= 0 {
		ctxSize = 2048
	}
	if threads <= 0 {
		threads = 4
	}
	return &LlamaRunner{ctxSize: ctxSize, threads: threads}
}

func (r *LlamaRunner) Run(ctx context.Context, m Composed, prompt string, cfg types.SamplingConfig) (Result, error) {
	if m.Base == nil {
		return Result{}, errors.New("no base model loaded")
	}
	mo := []llama.ModelOption{
		llama.SetContext(r.ctxSize),
	}
	if m.Adapter != nil {
		mo = append(mo, llama.SetLoraAdapter(m.Adapter.Path), llama.SetLoraBase(m.Base.Path))
	}
	model, err := llama.New(m.Base.Path, mo...)
	if err != nil {
		return Result{}, err
	}
	defer model.Free()

	model.SetTokenCallback(func(tok string) bool {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	})
	text, err := model.Predict(prompt, predictOptions(cfg, r.threads)...)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, ctx.Err()
		}
		return Result{}, err
	}
	return Result{Text: text, FinishReason: "stop"}, nil
}

func predictOptions(cfg types.SamplingConfig, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(maxInt(1, cfg.MaxTokens)),
		llama.SetThreads(maxInt(1, threads)),
		llama.SetTopP(nzf(float32(cfg.TopP), llama.DefaultOptions.TopP)),
		llama.SetTopK(nzi(cfg.TopK, llama.DefaultOptions.TopK)),
		llama.SetTemperature(nzf(float32(cfg.Temperature), llama.DefaultOptions.Temperature)),
	}
	if cfg.Seed != 0 {
		po = append(po, llama.SetSeed(int(cfg.Seed)))
	}
	if len(cfg.Stop) > 0 {
		po = append(po, llama.SetStopWords(cfg.Stop...))
	}
	return po
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func nzi(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func nzf(v, def float32) float32 {
	if v > 0 {
		return v
	}
	return def
}
