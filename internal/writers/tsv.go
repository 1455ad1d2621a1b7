// internal/writers/tsv.go
package writers

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var cellReplacer = strings.NewReplacer("\t", " ", "\r\n", " ", "\n", " ", "\r", " ")

// Cell makes a value safe for a TSV cell: tabs and line breaks become spaces.
func Cell(s string) string { return cellReplacer.Replace(s) }

// WriteTSV writes a header row followed by rows. Every row must have as many
// cells as the header.
func WriteTSV(w io.Writer, header []string, rows [][]string) error {
	bw := bufio.NewWriter(w)
	writeRow := func(cells []string) error {
		for i, c := range cells {
			if i > 0 {
				if err := bw.WriteByte('\t'); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(Cell(c)); err != nil {
				return err
			}
		}
		return bw.WriteByte('\n')
	}
	if err := writeRow(header); err != nil {
		return err
	}
	for i, r := range rows {
		if len(r) != len(header) {
			return fmt.Errorf("row %d has %d cells, header has %d", i+1, len(r), len(header))
		}
		if err := writeRow(r); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadTSV parses a table written by WriteTSV. A trailing newline is optional;
// blank lines are rejected.
func ReadTSV(r io.Reader) (header []string, rows [][]string, err error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, err
	}
	data = bytes.TrimSuffix(data, []byte("\n"))
	if len(data) == 0 {
		return nil, nil, errors.New("empty TSV")
	}
	lines := strings.Split(string(data), "\n")
	header = strings.Split(strings.TrimSuffix(lines[0], "\r"), "\t")
	for i, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if line == "" && len(header) > 1 {
			return nil, nil, fmt.Errorf("line %d: blank row", i+2)
		}
		cells := strings.Split(line, "\t")
		if len(cells) != len(header) {
			return nil, nil, fmt.Errorf("line %d: %d cells, header has %d", i+2, len(cells), len(header))
		}
		rows = append(rows, cells)
	}
	return header, rows, nil
}
