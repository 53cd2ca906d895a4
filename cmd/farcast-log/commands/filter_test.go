package commands

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/farcaster-proto/farcaster-go/pkg/log"
)

// readAllEvents reads every event from a capture file.
func readAllEvents(t *testing.T, path string) []log.Event {
	t.Helper()

	reader, err := log.NewReader(path)
	if err != nil {
		t.Fatalf("NewReader failed: %v", err)
	}
	defer reader.Close()

	var events []log.Event
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next failed: %v", err)
		}
		events = append(events, event)
	}
	return events
}

func TestFilterByConnID(t *testing.T) {
	events := []log.Event{
		{Timestamp: time.Now(), ConnectionID: "conn-a", Category: log.CategoryMessage},
		{Timestamp: time.Now(), ConnectionID: "conn-b", Category: log.CategoryMessage},
		{Timestamp: time.Now(), ConnectionID: "conn-a", Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.fclog")

	if err := RunFilter(path, FilterOptions{Output: outPath, ConnID: "conn-a"}); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	filtered := readAllEvents(t, outPath)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 filtered events, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.ConnectionID != "conn-a" {
			t.Errorf("ConnectionID = %q, want %q", e.ConnectionID, "conn-a")
		}
	}
}

func TestFilterByLayer(t *testing.T) {
	events := []log.Event{
		{Timestamp: time.Now(), Layer: log.LayerTransport, Category: log.CategoryMessage},
		{Timestamp: time.Now(), Layer: log.LayerSeal, Category: log.CategoryError},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.fclog")

	if err := RunFilter(path, FilterOptions{Output: outPath, Layer: "seal"}); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	filtered := readAllEvents(t, outPath)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 filtered event, got %d", len(filtered))
	}
	if filtered[0].Layer != log.LayerSeal {
		t.Errorf("Layer = %v, want LayerSeal", filtered[0].Layer)
	}
}

func TestFilterByDescriptor(t *testing.T) {
	events := []log.Event{
		{Timestamp: time.Now(), Category: log.CategoryMessage, Frame: &log.FrameEvent{Descriptor: 1}},
		{Timestamp: time.Now(), Category: log.CategoryMessage, Frame: &log.FrameEvent{Descriptor: 3}},
		{Timestamp: time.Now(), Category: log.CategoryState},
		{Timestamp: time.Now(), Category: log.CategoryMessage, Frame: &log.FrameEvent{Descriptor: 3}},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.fclog")

	d := uint8(3)
	if err := RunFilter(path, FilterOptions{Output: outPath, Descriptor: &d}); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	filtered := readAllEvents(t, outPath)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 filtered events, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.Frame == nil || e.Frame.Descriptor != 3 {
			t.Errorf("Frame = %+v, want descriptor 3", e.Frame)
		}
	}
}

func TestFilterByRemoteAddr(t *testing.T) {
	events := []log.Event{
		{Timestamp: time.Now(), RemoteAddr: "10.0.0.7:7878", Category: log.CategoryMessage},
		{Timestamp: time.Now(), RemoteAddr: "10.0.0.8:7878", Category: log.CategoryMessage},
		{Timestamp: time.Now(), RemoteAddr: "10.0.0.7:7878", Category: log.CategoryError},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.fclog")

	opts := FilterOptions{Output: outPath, RemoteAddr: "10.0.0.7:7878"}
	if err := RunFilter(path, opts); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	filtered := readAllEvents(t, outPath)
	if len(filtered) != 2 {
		t.Fatalf("expected 2 filtered events, got %d", len(filtered))
	}
	for _, e := range filtered {
		if e.RemoteAddr != "10.0.0.7:7878" {
			t.Errorf("RemoteAddr = %q, want %q", e.RemoteAddr, "10.0.0.7:7878")
		}
	}
}

func TestFilterByTimeRange(t *testing.T) {
	base := time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC)
	events := []log.Event{
		{Timestamp: base, Category: log.CategoryMessage},
		{Timestamp: base.Add(time.Hour), Category: log.CategoryMessage},
		{Timestamp: base.Add(2 * time.Hour), Category: log.CategoryMessage},
	}

	path := createTestLogFile(t, events)
	outPath := filepath.Join(t.TempDir(), "filtered.fclog")

	opts := FilterOptions{
		Output:    outPath,
		TimeStart: base.Add(30 * time.Minute).Format(time.RFC3339),
		TimeEnd:   base.Add(90 * time.Minute).Format(time.RFC3339),
	}
	if err := RunFilter(path, opts); err != nil {
		t.Fatalf("RunFilter failed: %v", err)
	}

	filtered := readAllEvents(t, outPath)
	if len(filtered) != 1 {
		t.Fatalf("expected 1 filtered event, got %d", len(filtered))
	}
}

func TestFilterInvalidTime(t *testing.T) {
	path := createTestLogFile(t, []log.Event{{Timestamp: time.Now()}})
	outPath := filepath.Join(t.TempDir(), "filtered.fclog")

	err := RunFilter(path, FilterOptions{Output: outPath, TimeStart: "yesterday"})
	if err == nil {
		t.Error("expected error for invalid time format")
	}
}

func TestFilterInvalidLayer(t *testing.T) {
	path := createTestLogFile(t, []log.Event{{Timestamp: time.Now()}})
	outPath := filepath.Join(t.TempDir(), "filtered.fclog")

	err := RunFilter(path, FilterOptions{Output: outPath, Layer: "wire"})
	if err == nil {
		t.Error("expected error for invalid layer")
	}
}
