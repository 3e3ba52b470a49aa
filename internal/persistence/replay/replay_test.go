package replay

import (
	"io"
	"testing"

	"blockstride.dev/internal/protocol"
)

func TestWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, "s1")
	if err != nil {
		t.Fatalf("new writer: %v", err)
	}
	for i := 0; i < 10; i++ {
		frame := protocol.StateMsg{
			Type:            protocol.TypeState,
			Tick:            uint64(i),
			Pos:             [3]float64{float64(i), 64, 0.5},
			State:           "grounded",
			SpeedMultiplier: 1,
		}
		if err := w.Record(frame); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := w.Record(protocol.StateMsg{}); err == nil {
		t.Fatalf("expected record after close to fail")
	}

	r, err := NewReader(Path(dir, "s1"))
	if err != nil {
		t.Fatalf("new reader: %v", err)
	}
	defer r.Close()

	n := 0
	for {
		var frame protocol.StateMsg
		err := r.Next(&frame)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if frame.Tick != uint64(n) {
			t.Fatalf("tick out of order: got %d want %d", frame.Tick, n)
		}
		if frame.Pos[0] != float64(n) {
			t.Fatalf("pos mismatch at %d: %v", n, frame.Pos)
		}
		n++
	}
	if n != 10 {
		t.Fatalf("expected 10 frames, got %d", n)
	}
}
