package transport

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/farcaster-proto/farcaster-go/pkg/log"
	"github.com/farcaster-proto/farcaster-go/pkg/wire"
)

// MaxLogFrameDataSize is the maximum payload size to include in log events (4 KB).
// Larger payloads are truncated in log events to avoid excessive memory usage.
const MaxLogFrameDataSize = 4096

// FrameWriter writes envelope frames to an underlying writer.
type FrameWriter struct {
	w  io.Writer
	mu sync.Mutex

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewFrameWriter creates a new frame writer.
func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// SetLogger configures logging for this writer.
// Pass nil to disable logging.
func (fw *FrameWriter) SetLogger(logger log.Logger, connID string) {
	fw.logger = logger
	fw.connID = connID
}

// WriteEnvelope encodes and writes one envelope frame.
// Thread-safe: can be called from multiple goroutines.
func (fw *FrameWriter) WriteEnvelope(env *wire.Envelope) error {
	data, err := wire.EncodeEnvelope(env)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if _, err := fw.w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}

	if fw.logger != nil {
		fw.logger.Log(makeFrameEvent(env, fw.connID, log.DirectionOut))
	}

	return nil
}

// FrameReader reads envelope frames from an underlying reader.
type FrameReader struct {
	r io.Reader

	// Logging support (optional)
	logger log.Logger
	connID string
}

// NewFrameReader creates a new frame reader.
func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: r}
}

// SetLogger configures logging for this reader.
// Pass nil to disable logging.
func (fr *FrameReader) SetLogger(logger log.Logger, connID string) {
	fr.logger = logger
	fr.connID = connID
}

// ReadEnvelope reads one envelope frame, decoding incrementally as bytes
// arrive. Returns io.EOF if the stream ends cleanly before a frame starts
// and wire.ErrTruncated if it ends mid-frame.
func (fr *FrameReader) ReadEnvelope() (*wire.Envelope, error) {
	env, err := wire.ReadEnvelope(fr.r)
	if err != nil {
		return nil, err
	}

	if fr.logger != nil {
		fr.logger.Log(makeFrameEvent(env, fr.connID, log.DirectionIn))
	}

	return env, nil
}

// makeFrameEvent creates a log event for a frame.
func makeFrameEvent(env *wire.Envelope, connID string, direction log.Direction) log.Event {
	data := env.Payload
	truncated := false
	if len(data) > MaxLogFrameDataSize {
		data = data[:MaxLogFrameDataSize]
		truncated = true
	}

	return log.Event{
		Timestamp:    time.Now(),
		ConnectionID: connID,
		Direction:    direction,
		Layer:        log.LayerTransport,
		Category:     log.CategoryMessage,
		Frame: &log.FrameEvent{
			Size:        env.EncodedSize(),
			Descriptor:  env.Descriptor,
			PayloadLen:  len(env.Payload),
			MetadataLen: len(env.Metadata),
			Data:        data,
			Truncated:   truncated,
		},
	}
}

// Framer combines frame reading and writing.
type Framer struct {
	*FrameReader
	*FrameWriter
}

// NewFramer creates a new framer for bidirectional communication.
func NewFramer(rw io.ReadWriter) *Framer {
	return &Framer{
		FrameReader: NewFrameReader(rw),
		FrameWriter: NewFrameWriter(rw),
	}
}

// SetLogger configures logging for both reader and writer.
// Pass nil to disable logging.
func (f *Framer) SetLogger(logger log.Logger, connID string) {
	f.FrameReader.SetLogger(logger, connID)
	f.FrameWriter.SetLogger(logger, connID)
}
