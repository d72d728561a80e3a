package serving

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"adapterd/internal/llm"
	"adapterd/internal/weights"
	"adapterd/pkg/types"
)

// fakeLoader serves adapters from an in-memory catalog and counts loader
// invocations per locator.
type fakeLoader struct {
	mu      sync.Mutex
	fail    map[string]error // locator -> error
	rank    map[string]int   // locator -> rank (default 8)
	binding map[string]string
	calls   map[string]int
	baseErr error
	block   chan struct{} // when set, Load waits until closed
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		fail:    make(map[string]error),
		rank:    make(map[string]int),
		binding: make(map[string]string),
		calls:   make(map[string]int),
	}
}

func (l *fakeLoader) LoadBase(path string) (*weights.BaseHandle, error) {
	if l.baseErr != nil {
		return nil, l.baseErr
	}
	return &weights.BaseHandle{ID: "base-test", Path: path, SizeMB: 1024}, nil
}

func (l *fakeLoader) Load(ctx context.Context, name, locator string) (*weights.Handle, error) {
	l.mu.Lock()
	l.calls[locator]++
	failErr := l.fail[locator]
	rank, ok := l.rank[locator]
	if !ok {
		rank = 8
	}
	binding := l.binding[locator]
	block := l.block
	l.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failErr != nil {
		return nil, failErr
	}
	return &weights.Handle{Name: name, Path: locator, SizeMB: 100, Rank: rank, BaseModel: binding}, nil
}

func (l *fakeLoader) loadCount(locator string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.calls[locator]
}

func (l *fakeLoader) setFail(locator string, err error) {
	l.mu.Lock()
	l.fail[locator] = err
	l.mu.Unlock()
}

// fakeRunner echoes the composed adapter name so tests can assert which
// adapter served a generation. An optional gate blocks Run until released.
type fakeRunner struct {
	gate  chan struct{}
	runs  atomic.Int64
	err   error
	began chan string // receives the adapter name as each run starts
}

func (r *fakeRunner) Run(ctx context.Context, m llm.Composed, prompt string, cfg types.SamplingConfig) (llm.Result, error) {
	r.runs.Add(1)
	adapter := ""
	if m.Adapter != nil {
		adapter = m.Adapter.Name
	}
	if r.began != nil {
		r.began <- adapter
	}
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return llm.Result{}, ctx.Err()
		}
	}
	if r.err != nil {
		return llm.Result{}, r.err
	}
	return llm.Result{Text: fmt.Sprintf("answer[%s]: %s", adapter, prompt), FinishReason: "stop"}, nil
}

// newTestCore builds a Core on fakes with two registered medical adapters.
func newTestCore(t *testing.T, mutate func(*Config)) (*Core, *fakeLoader, *fakeRunner) {
	t.Helper()
	loader := newFakeLoader()
	runner := &fakeRunner{}
	cfg := Config{
		BaseModelPath: "/models/base.gguf",
		Loader:        loader,
		Runner:        runner,
	}
	if mutate != nil {
		mutate(&cfg)
	}
	c := New(cfg)
	for _, name := range []string{"cardiology", "oncology"} {
		if err := c.RegisterAdapter(name, "/adapters/"+name+".safetensors"); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	return c, loader, runner
}

var errBoom = errors.New("boom")
