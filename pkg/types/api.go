package types

// GenerateRequest represents a generation request payload.
type GenerateRequest struct {
	// Required prompt text to generate a completion for.
	// example: What are symptoms of heart disease?
	Prompt string `json:"prompt" example:"What are symptoms of heart disease?"`
	// Sampling parameters, passed through to the generation runtime.
	Sampling SamplingConfig `json:"sampling,omitempty"`
}

// GenerateResponse is returned by POST /generate.
type GenerateResponse struct {
	// Server-assigned identifier for this generation.
	// example: 9f4c6c7e-1b2a-4f0e-9a45-0d3c5f2a9b11
	ID string `json:"id" example:"9f4c6c7e-1b2a-4f0e-9a45-0d3c5f2a9b11"`
	// Generated text.
	Text string `json:"text"`
	// Adapter that was active while this request executed. Empty means the
	// bare base model served the request.
	// example: cardiology
	Adapter string `json:"adapter,omitempty" example:"cardiology"`
	// Wall-clock duration of the generation in milliseconds.
	// example: 412
	DurationMS int64 `json:"duration_ms" example:"412"`
}

// SwitchRequest selects the adapter to compose onto the base model.
type SwitchRequest struct {
	// Adapter name to activate. Empty string deactivates the current adapter
	// and serves the bare base model.
	// example: oncology
	Adapter string `json:"adapter" example:"oncology"`
}

// SwitchResponse is returned by POST /switch.
type SwitchResponse struct {
	// Operation identifier for correlation with logs and events.
	// example: 3b8a0f12-77de-4c55-a6b1-2e9f0c4d8e21
	OpID string `json:"op_id" example:"3b8a0f12-77de-4c55-a6b1-2e9f0c4d8e21"`
	// Adapter active after the switch.
	// example: oncology
	Active string `json:"active" example:"oncology"`
	// Adapter that was active before the switch.
	// example: cardiology
	Previous string `json:"previous,omitempty" example:"cardiology"`
}

// RegisterRequest adds an adapter to the store via POST /adapters.
type RegisterRequest struct {
	// Adapter name, unique within the store.
	// example: oncology
	Name string `json:"name" example:"oncology"`
	// Locator for the adapter weights.
	// example: /home/user/adapters/oncology.safetensors
	Locator string `json:"locator" example:"/home/user/adapters/oncology.safetensors"`
}

// AdapterInfo summarizes one adapter for GET /adapters.
type AdapterInfo struct {
	// Adapter name.
	// example: cardiology
	Name string `json:"name" example:"cardiology"`
	// Load state: unloaded, loading, loaded or failed.
	// example: loaded
	State string `json:"state" example:"loaded"`
	// Whether this adapter is currently composed onto the base model.
	// example: true
	Active bool `json:"active" example:"true"`
	// Estimated resident size in MB when loaded.
	// example: 160
	SizeMB int `json:"size_mb,omitempty" example:"160"`
	// Last load error, if the most recent load attempt failed.
	LastError string `json:"last_error,omitempty"`
}

// AdaptersResponse wraps the list returned by GET /adapters.
type AdaptersResponse struct {
	// Known adapters with their load state.
	Adapters []AdapterInfo `json:"adapters"`
	// Adapter currently composed onto the base model, empty for base-only.
	// example: cardiology
	Active string `json:"active,omitempty" example:"cardiology"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall serving state: ready, draining or error.
	// example: ready
	State string `json:"state" example:"ready"`
	// Adapter currently composed onto the base model.
	// example: cardiology
	ActiveAdapter string `json:"active_adapter,omitempty" example:"cardiology"`
	// Base model identifier.
	// example: medllama-7b-q4
	BaseModel string `json:"base_model" example:"medllama-7b-q4"`
	// Generations currently executing.
	// example: 2
	InflightGenerations int `json:"inflight_generations" example:"2"`
	// Generations waiting for admission (behind a queued switch).
	// example: 0
	QueuedGenerations int `json:"queued_generations" example:"0"`
	// Whether an adapter switch is queued or executing.
	// example: false
	SwitchPending bool `json:"switch_pending" example:"false"`
	// Number of adapters with weights resident in memory.
	// example: 2
	ResidentAdapters int `json:"resident_adapters" example:"2"`
	// Total generations served since start.
	// example: 1042
	GenerationsTotal uint64 `json:"generations_total" example:"1042"`
	// Total successful adapter switches since start.
	// example: 7
	SwitchesTotal uint64 `json:"switches_total" example:"7"`
	// Total adapter weight loads since start.
	// example: 9
	LoadsTotal uint64 `json:"loads_total" example:"9"`
	// Total adapter evictions since start.
	// example: 2
	EvictionsTotal uint64 `json:"evictions_total" example:"2"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Last error observed by the core (if any).
	LastError string `json:"last_error,omitempty"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: unknown adapter: dermatology
	Error string `json:"error" example:"unknown adapter: dermatology"`
	// HTTP status code.
	// example: 404
	Code int `json:"code" example:"404"`
}
