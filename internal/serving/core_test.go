package serving

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"adapterd/pkg/types"
)

func TestSubmitGenerationBaseOnly(t *testing.T) {
	c, _, _ := newTestCore(t, nil)
	res, err := c.SubmitGeneration(context.Background(), GenerationRequest{Prompt: "hello"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Adapter != "" {
		t.Fatalf("expected base-only generation, got adapter %q", res.Adapter)
	}
	if res.ID == "" {
		t.Fatalf("expected generation id")
	}
	if !strings.Contains(res.Text, "hello") {
		t.Fatalf("unexpected text %q", res.Text)
	}
}

func TestSubmitGenerationTagsActiveAdapter(t *testing.T) {
	c, _, _ := newTestCore(t, nil)
	ctx := context.Background()
	if _, err := c.SwitchAdapter(ctx, "cardiology"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	res, err := c.SubmitGeneration(ctx, GenerationRequest{
		Prompt:   "What are symptoms of heart disease?",
		Sampling: types.SamplingConfig{Temperature: 0.7, MaxTokens: 128},
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Adapter != "cardiology" {
		t.Fatalf("expected result tagged cardiology, got %q", res.Adapter)
	}
}

func TestGenerationResourceUnavailable(t *testing.T) {
	loader := newFakeLoader()
	loader.baseErr = errBoom
	c := New(Config{BaseModelPath: "/models/broken.gguf", Loader: loader, Runner: &fakeRunner{}})
	if c.Ready() {
		t.Fatalf("expected not ready with broken base model")
	}
	_, err := c.SubmitGeneration(context.Background(), GenerationRequest{Prompt: "hi"})
	if err == nil || !IsResourceUnavailable(err) {
		t.Fatalf("expected ResourceUnavailable, got %v", err)
	}
	if st := c.Status(); st.State != "error" {
		t.Fatalf("expected error state, got %s", st.State)
	}
}

func TestGenerationRunnerErrorDoesNotCorruptState(t *testing.T) {
	c, _, runner := newTestCore(t, nil)
	ctx := context.Background()
	if _, err := c.SwitchAdapter(ctx, "cardiology"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	runner.err = errBoom
	if _, err := c.SubmitGeneration(ctx, GenerationRequest{Prompt: "x"}); !errors.Is(err, errBoom) {
		t.Fatalf("expected runner error, got %v", err)
	}
	runner.err = nil
	res, err := c.SubmitGeneration(ctx, GenerationRequest{Prompt: "y"})
	if err != nil {
		t.Fatalf("generate after failure: %v", err)
	}
	if res.Adapter != "cardiology" {
		t.Fatalf("active adapter corrupted by failed generation: %q", res.Adapter)
	}
}

func TestMaxConcurrentCapsParallelRuns(t *testing.T) {
	c, _, runner := newTestCore(t, func(cfg *Config) { cfg.MaxConcurrent = 1 })
	runner.gate = make(chan struct{})
	runner.began = make(chan string, 4)

	ctx := context.Background()
	done := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() {
			_, err := c.SubmitGeneration(ctx, GenerationRequest{Prompt: "p"})
			done <- err
		}()
	}
	// Only one run may begin while the first holds the semaphore.
	<-runner.began
	select {
	case <-runner.began:
		t.Fatalf("second generation ran despite MaxConcurrent=1")
	case <-time.After(30 * time.Millisecond):
	}
	close(runner.gate)
	<-runner.began
	for i := 0; i < 2; i++ {
		if err := <-done; err != nil {
			t.Fatalf("generation %d: %v", i, err)
		}
	}
}

func TestStatusSnapshot(t *testing.T) {
	c, _, _ := newTestCore(t, nil)
	ctx := context.Background()
	if _, err := c.SwitchAdapter(ctx, "oncology"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	if _, err := c.SubmitGeneration(ctx, GenerationRequest{Prompt: "q"}); err != nil {
		t.Fatalf("generate: %v", err)
	}
	st := c.Status()
	if st.State != "ready" {
		t.Fatalf("expected ready, got %s", st.State)
	}
	if st.ActiveAdapter != "oncology" {
		t.Fatalf("expected active oncology, got %q", st.ActiveAdapter)
	}
	if st.BaseModel != "base-test" {
		t.Fatalf("unexpected base model %q", st.BaseModel)
	}
	if st.GenerationsTotal != 1 || st.SwitchesTotal != 1 || st.LoadsTotal != 1 {
		t.Fatalf("unexpected totals: %+v", st)
	}
	if st.ResidentAdapters != 1 {
		t.Fatalf("expected 1 resident adapter, got %d", st.ResidentAdapters)
	}
}

// Status and adapter listings hold no admission slot, so they must stay
// safe to call while switches rewrite the composition.
func TestStatusSnapshotsDuringSwitchChurn(t *testing.T) {
	c, _, _ := newTestCore(t, nil)
	ctx := context.Background()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			st := c.Status()
			switch st.ActiveAdapter {
			case "", "cardiology", "oncology":
			default:
				t.Errorf("status saw adapter %q", st.ActiveAdapter)
				return
			}
			out := c.ListAdapters()
			switch out.Active {
			case "", "cardiology", "oncology":
			default:
				t.Errorf("list saw adapter %q", out.Active)
				return
			}
		}
	}()

	names := []string{"cardiology", "oncology", ""}
	for i := 0; i < 200; i++ {
		if _, err := c.SwitchAdapter(ctx, names[i%len(names)]); err != nil {
			t.Fatalf("switch %d: %v", i, err)
		}
	}
	close(stop)
	wg.Wait()
}

func TestListAdaptersReflectsActive(t *testing.T) {
	c, _, _ := newTestCore(t, nil)
	ctx := context.Background()
	if _, err := c.SwitchAdapter(ctx, "cardiology"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	out := c.ListAdapters()
	if out.Active != "cardiology" {
		t.Fatalf("expected active cardiology, got %q", out.Active)
	}
	if len(out.Adapters) != 2 {
		t.Fatalf("expected 2 adapters, got %d", len(out.Adapters))
	}
	for _, a := range out.Adapters {
		switch a.Name {
		case "cardiology":
			if a.State != string(StateLoaded) || !a.Active {
				t.Fatalf("cardiology: %+v", a)
			}
		case "oncology":
			if a.State != string(StateUnloaded) || a.Active {
				t.Fatalf("oncology: %+v", a)
			}
		}
	}
}

func TestCoreMetricsAndEvents(t *testing.T) {
	pub := NewMemoryPublisher()
	c, _, _ := newTestCore(t, func(cfg *Config) { cfg.Publisher = pub })
	ctx := context.Background()
	if _, err := c.SwitchAdapter(ctx, "cardiology"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	var names []string
	for _, e := range pub.Events() {
		names = append(names, e.Name)
	}
	want := []string{"switch_start", "load_start", "load_done", "switch_done"}
	if len(names) != len(want) {
		t.Fatalf("events %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("event %d = %s, want %s", i, names[i], want[i])
		}
	}
}

func TestEvictThroughCore(t *testing.T) {
	c, _, _ := newTestCore(t, nil)
	ctx := context.Background()
	if _, err := c.SwitchAdapter(ctx, "cardiology"); err != nil {
		t.Fatalf("switch: %v", err)
	}
	// Active adapter cannot be evicted.
	if err := c.EvictAdapter("cardiology"); err == nil || !IsAdapterInUse(err) {
		t.Fatalf("expected AdapterInUse, got %v", err)
	}
	// After switching away, eviction succeeds and resets state.
	if _, err := c.SwitchAdapter(ctx, "oncology"); err != nil {
		t.Fatalf("switch away: %v", err)
	}
	if err := c.EvictAdapter("cardiology"); err != nil {
		t.Fatalf("evict after switch: %v", err)
	}
	st, _ := c.Store().State("cardiology")
	if st != StateUnloaded {
		t.Fatalf("expected unloaded, got %s", st)
	}
}
