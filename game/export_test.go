package game

import (
	"image/jpeg"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/drift/canvas"
)

func TestExporterWritesUniqueFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	e := NewExporter(dir, 90)
	c := canvas.New(16, 16)

	a, err := e.Export(c, 1)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.Export(c, 2)
	if err != nil {
		t.Fatal(err)
	}

	if a.ID == b.ID || a.Path == b.Path {
		t.Error("exports must get distinct ids and paths")
	}
	if !strings.HasPrefix(filepath.Base(a.Path), "drift-") || filepath.Ext(a.Path) != ".jpg" {
		t.Errorf("unexpected file name %q", a.Path)
	}
	if filepath.Base(a.Path) != a.Filename() {
		t.Errorf("path %q does not match filename %q", a.Path, a.Filename())
	}

	data, err := os.ReadFile(b.Path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != string(b.Data) {
		t.Error("file contents differ from the in-memory export")
	}

	latest, ok := e.Latest()
	if !ok || latest != b {
		t.Error("Latest should return the most recent export")
	}
	if e.Count() != 2 {
		t.Errorf("count = %d, want 2", e.Count())
	}
}

func TestExporterInMemory(t *testing.T) {
	e := NewExporter("", 50)
	exp, err := e.Export(canvas.New(4, 4), 7)
	if err != nil {
		t.Fatal(err)
	}
	if exp.Path != "" {
		t.Errorf("in-memory exporter wrote %q", exp.Path)
	}
	if len(exp.Data) == 0 || exp.Frame != 7 {
		t.Errorf("unexpected export %+v", exp)
	}
}

func TestWriteJPEG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "final.jpg")
	if err := WriteJPEG(path, canvas.New(10, 6), 90); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := jpeg.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 10 || b.Dy() != 6 {
		t.Errorf("size %v, want 10x6", b)
	}
}
