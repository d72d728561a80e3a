package weights

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
)

// BaseHandle represents the base model resident for the process lifetime.
// It is loaded once at startup and never mutated.
type BaseHandle struct {
	ID     string
	Path   string
	SizeMB int
}

// Handle owns the in-memory weights of one loaded adapter. The payload is
// released via Close; after Close the handle must not be used.
type Handle struct {
	Name      string
	Path      string
	SizeMB    int
	Rank      int
	BaseModel string // declared base-model binding, empty if undeclared

	mu      sync.Mutex
	payload []byte
}

// Payload returns the raw adapter bytes, or nil after Close.
func (h *Handle) Payload() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.payload
}

// Close releases the in-memory weights. Safe to call more than once.
func (h *Handle) Close() error {
	h.mu.Lock()
	h.payload = nil
	h.mu.Unlock()
	return nil
}

// CompatibleWith reports whether the adapter can be composed onto base.
// An adapter with no usable LoRA tensors is never compatible; a declared
// base-model binding must match the base identifier when present.
func (h *Handle) CompatibleWith(base *BaseHandle) error {
	if h.Rank <= 0 {
		return fmt.Errorf("no LoRA tensors found in %s", filepath.Base(h.Path))
	}
	if h.BaseModel != "" && base != nil && !strings.EqualFold(h.BaseModel, base.ID) {
		return fmt.Errorf("adapter targets base model %q, serving %q", h.BaseModel, base.ID)
	}
	return nil
}
