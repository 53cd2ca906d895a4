package log

import (
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// CaptureFileExt is the conventional extension for FarCaster capture files,
// as written by farcast-server -capture and read by farcast-log. FileLogger
// does not enforce it.
const CaptureFileExt = ".fclog"

// FileLogger appends protocol events to a capture file. Events arrive from
// every connection goroutine, so all writes go through one mutex; a dropped
// event is preferred over a stalled connection, so encode errors are
// discarded.
type FileLogger struct {
	path    string
	file    *os.File
	encoder *cbor.Encoder
	mu      sync.Mutex
	closed  bool
}

// NewFileLogger opens a capture file at path, creating it (0644) or
// appending to an existing capture.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	return &FileLogger{
		path:    path,
		file:    f,
		encoder: NewEncoder(f),
	}, nil
}

// Path returns the capture file path.
func (l *FileLogger) Path() string {
	return l.path
}

// Log appends one event to the capture.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	_ = l.encoder.Encode(event)
}

// Close closes the capture file. Close is idempotent; events logged after
// Close are silently dropped.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil
	}

	l.closed = true
	return l.file.Close()
}

// Compile-time interface satisfaction check.
var _ Logger = (*FileLogger)(nil)
