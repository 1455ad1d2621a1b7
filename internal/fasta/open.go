// internal/fasta/open.go
package fasta

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
)

var gzipMagic = []byte{0x1f, 0x8b}

// source is an opened FASTA stream, gunzipped when needed.
type source struct {
	io.Reader
	gz *gzip.Reader
	fh *os.File
}

func (s *source) Close() error {
	var err error
	if s.gz != nil {
		err = s.gz.Close()
	}
	if cerr := s.fh.Close(); err == nil {
		err = cerr
	}
	return err
}

// openReader opens path. Gzip input is detected by its magic number, so a
// .gz suffix is not required.
func openReader(path string) (io.ReadCloser, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	s := &source{fh: fh}
	br := bufio.NewReader(fh)
	s.Reader = br
	if sig, _ := br.Peek(len(gzipMagic)); len(sig) == len(gzipMagic) && sig[0] == gzipMagic[0] && sig[1] == gzipMagic[1] {
		gz, err := gzip.NewReader(br)
		if err != nil {
			_ = s.Close()
			return nil, err
		}
		s.gz, s.Reader = gz, gz
	}
	return s, nil
}
