package game

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/pthm-cable/drift/canvas"
)

// Export is one encoded canvas image.
type Export struct {
	ID        uuid.UUID
	Path      string // Empty when the exporter keeps images in memory only
	Frame     uint64
	CreatedAt time.Time
	Data      []byte
}

// Filename returns the download name for the export.
func (e *Export) Filename() string {
	return "drift-" + e.ID.String() + ".jpg"
}

// Exporter encodes the canvas as JPEG and remembers the latest result.
// Export must run on the loop goroutine; Latest is safe from any goroutine.
type Exporter struct {
	dir     string
	quality int

	mu     sync.RWMutex
	latest *Export
	count  int
}

// NewExporter creates an exporter writing into dir. An empty dir keeps
// exports in memory only.
func NewExporter(dir string, quality int) *Exporter {
	return &Exporter{dir: dir, quality: quality}
}

// Export encodes the canvas, writes it to the export directory and stores
// it as the latest export.
func (e *Exporter) Export(c *canvas.Canvas, frame uint64) (*Export, error) {
	var buf bytes.Buffer
	if err := c.EncodeJPEG(&buf, e.quality); err != nil {
		return nil, err
	}

	exp := &Export{
		ID:        uuid.New(),
		Frame:     frame,
		CreatedAt: time.Now(),
		Data:      buf.Bytes(),
	}

	if e.dir != "" {
		if err := os.MkdirAll(e.dir, 0755); err != nil {
			return nil, fmt.Errorf("creating export directory: %w", err)
		}
		exp.Path = filepath.Join(e.dir, exp.Filename())
		if err := os.WriteFile(exp.Path, exp.Data, 0644); err != nil {
			return nil, fmt.Errorf("writing export: %w", err)
		}
	}

	e.mu.Lock()
	e.latest = exp
	e.count++
	e.mu.Unlock()

	slog.Info("export written",
		"id", exp.ID,
		"path", exp.Path,
		"frame", frame,
		"size", humanize.Bytes(uint64(len(exp.Data))),
	)
	return exp, nil
}

// Latest returns the most recent export.
func (e *Exporter) Latest() (*Export, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.latest, e.latest != nil
}

// Count returns the number of exports made.
func (e *Exporter) Count() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.count
}

// WriteJPEG encodes the canvas to a file at path.
func WriteJPEG(path string, c *canvas.Canvas, quality int) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating export directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := c.EncodeJPEG(f, quality); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing export file: %w", err)
	}
	return nil
}
