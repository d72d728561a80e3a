// Package serving owns the base model, tracks registered adapters, and
// arbitrates between generation requests and adapter switches. It is
// structured into small files by concern:
//
//   - core.go: Core type, Config, constructor, readiness.
//   - store.go: AdapterStore bookkeeping, single-flight loads, eviction.
//   - resource.go: ModelResource holding the base model and the composition.
//   - admission.go: readers-writer gate with writer priority.
//   - generate.go: SubmitGeneration entry point.
//   - switch.go: SwitchAdapter drain-and-compose flow.
//   - status.go: ListAdapters/Status snapshots.
//   - errors.go: error kinds and helpers (IsUnknownAdapter, IsTooBusy, ...).
//   - events.go / eventpub_memory.go: lifecycle event publishing.
//   - metrics.go: fire-and-forget counter sink consumed by the core.
//
// Concurrency contract: the Core's admission gate decides when a compose
// may run (exclusive slot, readers drained); AdapterStore and ModelResource
// additionally guard their own bookkeeping so status and list snapshots are
// safe without holding a slot. External packages should
// treat this package as the orchestration layer and use Core's public
// methods only (SubmitGeneration, SwitchAdapter, ListAdapters, Status,
// Ready, Store). Internal types are subject to change.
package serving
