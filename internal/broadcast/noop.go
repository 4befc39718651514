package broadcast

// Noop drops every event. Used when no NATS URL is configured and in tests.
type Noop struct{}

func (Noop) Publish(string, []byte) error { return nil }
