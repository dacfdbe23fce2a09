package replay

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"icehockey/internal/config"
)

func TestDisabledReplayIsNoopSink(t *testing.T) {
	cfg := config.ReplayConfig{Enabled: false}
	w, err := New(cfg, "rink", time.Unix(0, 0))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w != nil {
		t.Fatal("expected nil writer when replay disabled")
	}
	w.AppendFrame([]byte{1, 2, 3}) // must not panic on nil receiver
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error closing nil writer: %v", err)
	}
}

func TestWriterPatchesPayloadSizeOnClose(t *testing.T) {
	dir := t.TempDir()
	cfg := config.ReplayConfig{Enabled: true, Dir: dir}
	w, err := New(cfg, "My Rink!", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	frame := []byte{0x05, 1, 2, 3, 4}
	w.AppendFrame(frame)
	w.AppendFrame(frame)

	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error closing writer: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected exactly one replay file, got %v (err=%v)", entries, err)
	}

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("unexpected error reading replay file: %v", err)
	}
	if len(data) != headerSize+2*len(frame) {
		t.Fatalf("expected %d bytes, got %d", headerSize+2*len(frame), len(data))
	}
	reserved := binary.LittleEndian.Uint32(data[0:4])
	if reserved != 0 {
		t.Fatalf("expected reserved word 0, got %d", reserved)
	}
	payloadSize := binary.LittleEndian.Uint32(data[4:8])
	if payloadSize != uint32(2*len(frame)) {
		t.Fatalf("expected payload size %d, got %d", 2*len(frame), payloadSize)
	}
}
