// internal/writers/summary.go
package writers

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"tsvgen/internal/jsonutil"
	"tsvgen/pkg/api"
)

func init() {
	RegisterSummary("text", writeSummaryText)
	RegisterSummary("json", func(w io.Writer, payload any) error {
		switch payload.(type) {
		case api.GenerateSummaryV1, api.VerifyReportV1:
			return jsonutil.EncodePretty(w, payload)
		}
		return fmt.Errorf("json summary: unsupported payload %T", payload)
	})
}

func writeSummaryText(w io.Writer, payload any) error {
	var err error
	switch s := payload.(type) {
	case api.GenerateSummaryV1:
		_, err = fmt.Fprintf(w,
			"wrote %s: %s with %d rows, %d FASTA file(s), %d row(s) referencing FASTA (policy %s, seed %d, %s)\n",
			s.Archive, s.TSVName, s.Rows, len(s.FASTAFiles), s.ReferencedRows, s.Policy, s.Seed,
			humanize.Bytes(uint64(max(s.Bytes, 0))))
	case api.VerifyReportV1:
		_, err = fmt.Fprintf(w,
			"verified %s: %s with %d rows, %d FASTA file(s), %d row(s) referencing FASTA\n",
			s.Archive, s.TSVName, s.Rows, len(s.FASTAFiles), s.ReferencedRows)
	default:
		err = fmt.Errorf("text summary: unsupported payload %T", payload)
	}
	return err
}
