// Package replay records per-session movement traces as zstd-compressed
// JSONL, one STATE frame per line.
package replay

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Writer appends JSON records to a single session file. Safe for
// concurrent use.
type Writer struct {
	mu  sync.Mutex
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Path returns the replay file name for a session under baseDir.
func Path(baseDir, sessionID string) string {
	return filepath.Join(baseDir, fmt.Sprintf("replay-%s.jsonl.zst", sessionID))
}

func NewWriter(baseDir, sessionID string) (*Writer, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(Path(baseDir, sessionID), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Writer{
		f:   f,
		enc: enc,
		w:   bufio.NewWriterSize(enc, 128*1024),
	}, nil
}

func (w *Writer) Record(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return os.ErrClosed
	}
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	if err := w.w.WriteByte('\n'); err != nil {
		return err
	}
	return w.w.Flush()
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.w == nil {
		return nil
	}
	_ = w.w.Flush()
	err := w.enc.Close()
	_ = w.f.Close()
	w.w = nil
	w.enc = nil
	w.f = nil
	return err
}

// Reader streams records back out of a replay file.
type Reader struct {
	f   *os.File
	dec *zstd.Decoder
	sc  *bufio.Scanner
}

func NewReader(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	return &Reader{f: f, dec: dec, sc: sc}, nil
}

// Next decodes the next record into v. Returns io.EOF at end of file.
func (r *Reader) Next(v any) error {
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return err
		}
		return io.EOF
	}
	return json.Unmarshal(r.sc.Bytes(), v)
}

func (r *Reader) Close() error {
	r.dec.Close()
	return r.f.Close()
}
