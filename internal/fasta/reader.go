// internal/fasta/reader.go
package fasta

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Record is one FASTA entry.
type Record struct {
	ID  string // header text after '>', trimmed
	Seq []byte
	// Lines holds the length of each sequence line as read. Nil means the
	// writer wraps Seq at its own width.
	Lines []int
}

// Reader pulls records from a FASTA stream one at a time.
type Reader struct {
	r      *bufio.Reader
	line   int
	nextID string
	primed bool
	done   bool
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: bufio.NewReader(r)}
}

// Next returns the next record, or io.EOF after the last one.
// Sequence bytes before the first header are an error.
func (rd *Reader) Next() (Record, error) {
	if rd.done {
		return Record{}, io.EOF
	}
	if !rd.primed {
		rd.primed = true
		for {
			line, eof, err := rd.readLine()
			if err != nil {
				return Record{}, err
			}
			if len(line) > 0 {
				if line[0] != '>' {
					return Record{}, fmt.Errorf("line %d: sequence data before first header", rd.line)
				}
				rd.nextID = headerID(line)
				break
			}
			if eof {
				rd.done = true
				return Record{}, io.EOF
			}
		}
	}

	rec := Record{ID: rd.nextID}
	for {
		line, eof, err := rd.readLine()
		if err != nil {
			return Record{}, err
		}
		if len(line) > 0 && line[0] == '>' {
			rd.nextID = headerID(line)
			return rec, nil
		}
		if seq := bytes.TrimSpace(line); len(seq) > 0 {
			rec.Seq = append(rec.Seq, seq...)
			rec.Lines = append(rec.Lines, len(seq))
		}
		if eof {
			rd.done = true
			return rec, nil
		}
	}
}

func (rd *Reader) readLine() ([]byte, bool, error) {
	line, err := rd.r.ReadBytes('\n')
	eof := errors.Is(err, io.EOF)
	if err != nil && !eof {
		return nil, false, err
	}
	rd.line++
	return bytes.TrimRight(line, "\r\n"), eof, nil
}

func headerID(line []byte) string {
	return strings.TrimSpace(string(line[1:]))
}

// ReadAll drains r.
func ReadAll(r io.Reader) ([]Record, error) {
	rd := NewReader(r)
	var out []Record
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
}

// ReadFile reads every record of path, gunzipping when needed.
func ReadFile(path string) ([]Record, error) {
	rc, err := openReader(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	recs, err := ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return recs, nil
}
