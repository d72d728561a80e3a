package serving

// Event represents a serving lifecycle event.
// Minimal and stable: name + adapter name and optional fields via key/values.
type Event struct {
	Name    string
	Adapter string
	Fields  map[string]any
}

// EventPublisher receives events from the core. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
