package serving

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"adapterd/internal/weights"
	"adapterd/pkg/types"
)

// AdapterState is the load state of one registered adapter.
type AdapterState string

const (
	StateUnloaded AdapterState = "unloaded"
	StateLoading  AdapterState = "loading"
	StateLoaded   AdapterState = "loaded"
	StateFailed   AdapterState = "failed"
)

// loadFlight is one in-flight load shared by all callers waiting on the same
// adapter. done is closed exactly once, after handle/err are set.
type loadFlight struct {
	done   chan struct{}
	handle *weights.Handle
	err    error
}

type adapterEntry struct {
	name     string
	locator  string
	state    AdapterState
	handle   *weights.Handle
	lastErr  error
	flight   *loadFlight
	lastUsed time.Time
	pins     int // active composition or in-flight switch
}

// AdapterStore is the single source of truth for which adapters exist and
// whether their weights are resident. Bookkeeping is guarded by mu; actual
// loader invocations are serialized by loadMu so at most one adapter is in
// state loading at any instant.
type AdapterStore struct {
	mu          sync.Mutex
	loadMu      sync.Mutex
	entries     map[string]*adapterEntry
	loader      weights.Loader
	maxResident int
	publisher   EventPublisher
	metrics     MetricsSink
	log         zerolog.Logger

	loadsTotal     uint64
	evictionsTotal uint64
}

// NewAdapterStore constructs an empty store backed by the given loader.
// maxResident bounds how many adapters may stay loaded at once (0 =
// unlimited); excess unpinned adapters are evicted in LRU order.
func NewAdapterStore(loader weights.Loader, maxResident int) *AdapterStore {
	return &AdapterStore{
		entries:     make(map[string]*adapterEntry),
		loader:      loader,
		maxResident: maxResident,
		publisher:   noopPublisher{},
		metrics:     noopSink{},
		log:         zerolog.Nop(),
	}
}

// SetPublisher installs an event publisher (nil restores the noop default).
func (s *AdapterStore) SetPublisher(p EventPublisher) {
	if p == nil {
		p = noopPublisher{}
	}
	s.publisher = p
}

// SetMetrics installs a metrics sink (nil restores the noop default).
func (s *AdapterStore) SetMetrics(m MetricsSink) {
	if m == nil {
		m = noopSink{}
	}
	s.metrics = m
}

// SetLogger installs a structured logger.
func (s *AdapterStore) SetLogger(l zerolog.Logger) { s.log = l }

// Register adds an adapter entry in state unloaded. Re-registering the same
// name with the same locator is a no-op; a different locator is a conflict.
func (s *AdapterStore) Register(name, locator string) error {
	if name == "" {
		return ErrUnknownAdapter("(empty)")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[name]; ok {
		if e.locator == locator {
			return nil
		}
		return ErrDuplicateName(name)
	}
	s.entries[name] = &adapterEntry{name: name, locator: locator, state: StateUnloaded}
	s.log.Debug().Str("adapter", name).Str("locator", locator).Msg("adapter registered")
	return nil
}

// EnsureLoaded returns the resident weight handle for name, loading it if
// necessary. Concurrent callers for the same name share one load and observe
// the same outcome. A previously failed adapter is retried.
func (s *AdapterStore) EnsureLoaded(ctx context.Context, name string) (*weights.Handle, error) {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok {
		s.mu.Unlock()
		return nil, ErrUnknownAdapter(name)
	}
	if e.state == StateLoaded {
		e.lastUsed = time.Now()
		h := e.handle
		s.mu.Unlock()
		return h, nil
	}
	if f := e.flight; f != nil {
		s.mu.Unlock()
		select {
		case <-f.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if f.err != nil {
			return nil, ErrLoadFailed(name, f.err)
		}
		return f.handle, nil
	}
	// This caller owns the load.
	f := &loadFlight{done: make(chan struct{})}
	e.flight = f
	locator := e.locator
	s.mu.Unlock()

	return s.runLoad(ctx, e, f, name, locator)
}

// runLoad performs the actual loader invocation for one flight. Loads are
// serialized store-wide: the loading state is only ever entered under loadMu.
func (s *AdapterStore) runLoad(ctx context.Context, e *adapterEntry, f *loadFlight, name, locator string) (*weights.Handle, error) {
	s.loadMu.Lock()
	s.mu.Lock()
	e.state = StateLoading
	s.mu.Unlock()
	s.publisher.Publish(Event{Name: "load_start", Adapter: name})

	h, err := s.loader.Load(ctx, name, locator)

	s.mu.Lock()
	if err != nil {
		e.state = StateFailed
		e.lastErr = err
		f.err = err
	} else {
		e.state = StateLoaded
		e.handle = h
		e.lastErr = nil
		e.lastUsed = time.Now()
		f.handle = h
		s.loadsTotal++
	}
	e.flight = nil
	close(f.done)
	var evicted []*weights.Handle
	if err == nil {
		evicted = s.evictOverCapLocked()
	}
	s.mu.Unlock()
	s.loadMu.Unlock()

	for _, old := range evicted {
		_ = old.Close()
	}
	if err != nil {
		s.publisher.Publish(Event{Name: "load_failed", Adapter: name, Fields: map[string]any{"error": err.Error()}})
		s.metrics.Increment(MetricAdapterLoadErrors, map[string]string{"adapter": name})
		s.log.Warn().Str("adapter", name).Err(err).Msg("adapter load failed")
		return nil, ErrLoadFailed(name, err)
	}
	s.publisher.Publish(Event{Name: "load_done", Adapter: name, Fields: map[string]any{"size_mb": h.SizeMB, "rank": h.Rank}})
	s.metrics.Increment(MetricAdapterLoads, map[string]string{"adapter": name})
	s.log.Info().Str("adapter", name).Int("size_mb", h.SizeMB).Int("rank", h.Rank).Msg("adapter loaded")
	return h, nil
}

// evictOverCapLocked drops least-recently-used unpinned adapters until the
// resident count fits maxResident. Caller holds s.mu; returned handles must
// be closed without the lock held.
func (s *AdapterStore) evictOverCapLocked() []*weights.Handle {
	if s.maxResident <= 0 {
		return nil
	}
	var evicted []*weights.Handle
	for {
		resident := 0
		var lru *adapterEntry
		for _, e := range s.entries {
			if e.state != StateLoaded {
				continue
			}
			resident++
			if e.pins > 0 {
				continue
			}
			if lru == nil || e.lastUsed.Before(lru.lastUsed) {
				lru = e
			}
		}
		if resident <= s.maxResident || lru == nil {
			return evicted
		}
		evicted = append(evicted, lru.handle)
		lru.handle = nil
		lru.state = StateUnloaded
		s.evictionsTotal++
		s.publisher.Publish(Event{Name: "evict", Adapter: lru.name, Fields: map[string]any{"reason": "over_cap"}})
		s.metrics.Increment(MetricAdapterEvictions, map[string]string{"adapter": lru.name})
	}
}

// Evict releases the in-memory handle and resets the entry to unloaded.
// Fails when the adapter is composed, pinned by an in-flight switch, or
// currently loading.
func (s *AdapterStore) Evict(name string) error {
	s.mu.Lock()
	e, ok := s.entries[name]
	if !ok {
		s.mu.Unlock()
		return ErrUnknownAdapter(name)
	}
	if e.pins > 0 || e.flight != nil {
		s.mu.Unlock()
		return ErrAdapterInUse(name)
	}
	h := e.handle
	e.handle = nil
	e.state = StateUnloaded
	e.lastErr = nil
	s.evictionsTotal++
	s.mu.Unlock()

	if h != nil {
		_ = h.Close()
	}
	s.publisher.Publish(Event{Name: "evict", Adapter: name, Fields: map[string]any{"reason": "requested"}})
	s.metrics.Increment(MetricAdapterEvictions, map[string]string{"adapter": name})
	s.log.Info().Str("adapter", name).Msg("adapter evicted")
	return nil
}

// Pin marks name as in use so eviction fails with AdapterInUse. Pins nest.
func (s *AdapterStore) Pin(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	if e, ok := s.entries[name]; ok {
		e.pins++
	}
	s.mu.Unlock()
}

// Unpin releases one pin on name.
func (s *AdapterStore) Unpin(name string) {
	if name == "" {
		return
	}
	s.mu.Lock()
	if e, ok := s.entries[name]; ok && e.pins > 0 {
		e.pins--
	}
	s.mu.Unlock()
}

// List returns a consistent snapshot of all entries, sorted by name.
func (s *AdapterStore) List() []types.AdapterInfo {
	s.mu.Lock()
	out := make([]types.AdapterInfo, 0, len(s.entries))
	for _, e := range s.entries {
		info := types.AdapterInfo{
			Name:   e.name,
			State:  string(e.state),
			Active: e.pins > 0,
		}
		if e.handle != nil {
			info.SizeMB = e.handle.SizeMB
		}
		if e.lastErr != nil {
			info.LastError = e.lastErr.Error()
		}
		out = append(out, info)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// State returns the load state for name, or ok=false if unregistered.
func (s *AdapterStore) State(name string) (AdapterState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[name]
	if !ok {
		return "", false
	}
	return e.state, true
}

// ResidentCount reports how many adapters currently hold loaded weights.
func (s *AdapterStore) ResidentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, e := range s.entries {
		if e.state == StateLoaded {
			n++
		}
	}
	return n
}

// Totals reports cumulative load and eviction counts.
func (s *AdapterStore) Totals() (loads, evictions uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadsTotal, s.evictionsTotal
}

// Close releases every resident handle. Called at process teardown.
func (s *AdapterStore) Close() error {
	s.mu.Lock()
	handles := make([]*weights.Handle, 0, len(s.entries))
	for _, e := range s.entries {
		if e.handle != nil {
			handles = append(handles, e.handle)
			e.handle = nil
			e.state = StateUnloaded
		}
	}
	s.mu.Unlock()
	for _, h := range handles {
		_ = h.Close()
	}
	return nil
}
