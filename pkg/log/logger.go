package log

// Logger is the sink a flags.Resolver reports to. It receives one event per
// resolution, on the goroutine that asked for it, so Log may be called
// concurrently and should return without waiting on I/O it does not own.
type Logger interface {
	Log(event Event)
}

// LoggerFunc lets a plain function receive events.
type LoggerFunc func(Event)

// Log calls f(event).
func (f LoggerFunc) Log(event Event) { f(event) }

// NoopLogger drops every event. A resolver built without an event sink
// falls back to it.
type NoopLogger struct{}

// Log does nothing.
func (NoopLogger) Log(Event) {}

var (
	_ Logger = NoopLogger{}
	_ Logger = LoggerFunc(nil)
)
