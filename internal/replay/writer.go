// Package replay implements the .hrp replay file writer: one file per
// Writer (cmd/server opens a single Writer at startup and does not rotate
// it per match), written from a bounded background queue so disk I/O never
// sits on the tick's critical path (§5, §6).
package replay

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"

	"icehockey/internal/config"
)

// headerSize is the two little-endian u32 fields every .hrp file opens
// with: a reserved zero word and the payload size, patched in on Close.
const headerSize = 8

// Writer owns one match's replay file. AppendFrame is safe to call from
// the tick loop; the actual write happens on a background goroutine via a
// bounded queue so a slow disk never stalls the tick (§5 "Blocking
// operations permitted only off the critical path").
type Writer struct {
	cfg config.ReplayConfig

	mu       sync.Mutex
	file     *os.File
	payload  uint32
	queue    chan []byte
	done     chan struct{}
	closeErr error
}

// filenameFor builds the "<server_name>.<ISO timestamp>.hrp" replay file
// name (§6).
func filenameFor(serverName string, at time.Time) string {
	safe := sanitizeForFilename(serverName)
	return fmt.Sprintf("%s.%s.hrp", safe, at.UTC().Format("2006-01-02T15-04-05Z"))
}

func sanitizeForFilename(name string) string {
	if name == "" {
		return "server"
	}
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '_')
		}
	}
	return string(out)
}

// New opens a fresh replay file under cfg.Dir, writing the placeholder
// header. Returns (nil, nil) without error when replay is disabled — the
// caller can treat a nil *Writer as a no-op sink.
func New(cfg config.ReplayConfig, serverName string, startedAt time.Time) (*Writer, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create replay directory")
	}
	path := filepath.Join(cfg.Dir, filenameFor(serverName, startedAt))
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "create replay file %s", path)
	}
	var header [headerSize]byte // u32 LE 0, u32 LE payload_size (patched on Close)
	if _, err := f.Write(header[:]); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "write replay header")
	}

	w := &Writer{
		cfg:   cfg,
		file:  f,
		queue: make(chan []byte, 256),
		done:  make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Writer) run() {
	defer close(w.done)
	for frame := range w.queue {
		w.mu.Lock()
		n, err := w.file.Write(frame)
		if err == nil {
			w.payload += uint32(n)
		} else if w.closeErr == nil {
			w.closeErr = errors.Wrap(err, "write replay frame")
		}
		w.mu.Unlock()
	}
}

// AppendFrame enqueues a frame for background writing; it never blocks the
// tick loop on disk I/O (the queue is generously sized, and a full queue
// drops the frame rather than stalling).
func (w *Writer) AppendFrame(frame []byte) {
	if w == nil {
		return
	}
	select {
	case w.queue <- frame:
	default:
		// Queue saturated: replay fidelity degrades before the tick loop
		// ever would. Dropping here is the deliberate tradeoff (§5).
	}
}

// Close drains the queue, patches the payload-size header, and closes the
// file.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	close(w.queue)
	<-w.done

	w.mu.Lock()
	defer w.mu.Unlock()

	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], w.payload)
	if _, err := w.file.WriteAt(sizeBuf[:], 4); err != nil {
		return errors.Wrap(err, "patch replay payload size")
	}
	if err := w.file.Close(); err != nil {
		return errors.Wrap(err, "close replay file")
	}
	return w.closeErr
}
