// internal/fasta/writer.go
package fasta

import (
	"bufio"
	"bytes"
	"io"
)

// DefaultLineWidth is the sequence line length used when width <= 0.
const DefaultLineWidth = 60

// Write emits records. A record read from a file keeps its original
// sequence lines; others are wrapped at width.
func Write(w io.Writer, recs []Record, width int) error {
	if width <= 0 {
		width = DefaultLineWidth
	}
	bw := bufio.NewWriter(w)
	for _, r := range recs {
		if err := bw.WriteByte('>'); err != nil {
			return err
		}
		if _, err := bw.WriteString(r.ID); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
		lines := r.Lines
		if !coversSeq(lines, len(r.Seq)) {
			lines = nil
		}
		for seq := r.Seq; len(seq) > 0; {
			n := min(width, len(seq))
			if len(lines) > 0 {
				n, lines = lines[0], lines[1:]
			}
			if _, err := bw.Write(seq[:n]); err != nil {
				return err
			}
			if err := bw.WriteByte('\n'); err != nil {
				return err
			}
			seq = seq[n:]
		}
	}
	return bw.Flush()
}

// coversSeq reports whether line lengths are all positive and add up to n.
func coversSeq(lines []int, n int) bool {
	if len(lines) == 0 {
		return false
	}
	total := 0
	for _, l := range lines {
		if l <= 0 {
			return false
		}
		total += l
	}
	return total == n
}

// File is a named FASTA artifact destined for the archive.
type File struct {
	Name    string
	Records []Record
}

// IDs returns the record identifiers in file order.
func (f File) IDs() []string {
	out := make([]string, len(f.Records))
	for i, r := range f.Records {
		out[i] = r.ID
	}
	return out
}

// Bytes renders the file.
func (f File) Bytes(width int) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, f.Records, width); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
