// internal/fasta/source.go
package fasta

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Extensions recognized as FASTA sources; a trailing .gz is also accepted.
var Extensions = []string{".fasta", ".fa"}

// ListSources returns the FASTA files directly under dir, sorted by name.
func ListSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !isSource(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func isSource(name string) bool {
	name = strings.TrimSuffix(strings.ToLower(name), ".gz")
	for _, ext := range Extensions {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// Randomize loads each source and returns copies with a fresh file name from
// newName and every header replaced by newID. Sequences and their line
// layout are kept.
func Randomize(paths []string, newName, newID func() string) ([]File, error) {
	out := make([]File, 0, len(paths))
	for _, p := range paths {
		recs, err := ReadFile(p)
		if err != nil {
			return nil, err
		}
		if len(recs) == 0 {
			return nil, fmt.Errorf("%s: no FASTA records", p)
		}
		f := File{Name: newName(), Records: recs}
		for i := range f.Records {
			f.Records[i].ID = newID()
		}
		out = append(out, f)
	}
	return out, nil
}
