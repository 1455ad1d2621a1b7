// Package archive writes and reads the output zip.
//
// Writes go to a temp file next to the destination and are renamed into
// place on Commit, so a failed run never leaves a partial archive and never
// clobbers an existing one.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
)

// Writer assembles a zip archive. Call Abort in a defer; it is a no-op after
// a successful Commit.
type Writer struct {
	path    string
	tmp     *os.File
	zw      *zip.Writer
	names   map[string]struct{}
	order   []string
	modTime time.Time
	closed  bool
}

// Create opens a temp file in the directory of path.
func Create(path string) (*Writer, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	if base == "" {
		return nil, fmt.Errorf("archive path %q names a directory", path)
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return nil, fmt.Errorf("archive path %q is a directory", path)
	}
	tmp, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, err
	}
	zw := zip.NewWriter(tmp)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})
	return &Writer{
		path:    path,
		tmp:     tmp,
		zw:      zw,
		names:   map[string]struct{}{},
		modTime: time.Now(),
	}, nil
}

// TempPath is the in-progress file, removed by Abort and renamed by Commit.
func (w *Writer) TempPath() string { return w.tmp.Name() }

// Names lists entries added so far, in order.
func (w *Writer) Names() []string { return append([]string(nil), w.order...) }

// AddFunc adds a deflated top-level entry whose body is produced by write.
func (w *Writer) AddFunc(name string, write func(io.Writer) error) error {
	if w.closed {
		return fmt.Errorf("add %q: archive already closed", name)
	}
	if err := checkName(name); err != nil {
		return err
	}
	if _, dup := w.names[name]; dup {
		return fmt.Errorf("add %q: duplicate entry", name)
	}
	ew, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: w.modTime,
	})
	if err != nil {
		return err
	}
	if err := write(ew); err != nil {
		return fmt.Errorf("add %q: %w", name, err)
	}
	w.names[name] = struct{}{}
	w.order = append(w.order, name)
	return nil
}

// Add adds a top-level entry with the given contents.
func (w *Writer) Add(name string, data []byte) error {
	return w.AddFunc(name, func(dst io.Writer) error {
		_, err := dst.Write(data)
		return err
	})
}

// Commit finishes the archive and moves it to its destination.
func (w *Writer) Commit() error {
	if w.closed {
		return fmt.Errorf("commit %s: archive already closed", w.path)
	}
	w.closed = true
	tmp := w.tmp.Name()
	err := w.zw.Close()
	if err == nil {
		err = w.tmp.Sync()
	}
	if cerr := w.tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp, 0o644)
	}
	if err == nil {
		err = os.Rename(tmp, w.path)
	}
	if err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// Abort discards the in-progress archive.
func (w *Writer) Abort() error {
	if w.closed {
		return nil
	}
	w.closed = true
	_ = w.zw.Close()
	_ = w.tmp.Close()
	if err := os.Remove(w.tmp.Name()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("entry name %q must be a plain file name", name)
	}
	return nil
}

// Reader gives access to an existing archive.
type Reader struct {
	zr *zip.ReadCloser
}

// Open opens the archive at path.
func Open(path string) (*Reader, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	zr.RegisterDecompressor(zip.Deflate, flate.NewReader)
	return &Reader{zr: zr}, nil
}

// Names lists entries sorted by name.
func (r *Reader) Names() []string {
	out := make([]string, 0, len(r.zr.File))
	for _, f := range r.zr.File {
		out = append(out, f.Name)
	}
	sort.Strings(out)
	return out
}

// ReadFile returns the contents of entry name.
func (r *Reader) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(r.zr, name)
}

func (r *Reader) Close() error { return r.zr.Close() }
