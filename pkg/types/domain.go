package types

// AdapterSpec describes a registerable adapter: a small weight delta that can
// be composed onto the base model.
type AdapterSpec struct {
	// Stable identifier for the adapter.
	// example: cardiology
	Name string `json:"name" yaml:"name" example:"cardiology"`
	// Locator for the adapter weights (absolute file path).
	// example: /home/user/adapters/cardiology.safetensors
	Locator string `json:"locator" yaml:"locator" example:"/home/user/adapters/cardiology.safetensors"`
}

// SamplingConfig carries opaque generation parameters. The serving core does
// not interpret them; they are passed through to the generation runtime.
type SamplingConfig struct {
	// Maximum number of new tokens to generate.
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling: limit candidates to top K tokens.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// Optional stop sequences. Generation stops when any sequence is matched.
	Stop []string `json:"stop,omitempty"`
	// Random seed for reproducibility; 0 or omitted lets the runtime choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
}
