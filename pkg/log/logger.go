package log

// Logger receives protocol events as envelopes move through the stack.
// The transport emits one event per frame sent or received plus connection
// state changes; seal and app failures surface as error events. Pass nil or
// NoopLogger wherever a Logger is accepted to disable capture.
type Logger interface {
	// Log records a protocol event. Implementations must be safe for
	// concurrent use; Log is called from every connection goroutine.
	Log(event Event)
}

// NoopLogger discards all events. Usable as a zero value.
type NoopLogger struct{}

// Log discards the event.
func (NoopLogger) Log(Event) {}

// Compile-time interface satisfaction check.
var _ Logger = NoopLogger{}
