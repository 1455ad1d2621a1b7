// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"
)

// Summary writer registry (format → handler). Register in init() blocks.
var SummaryWriters = map[string]func(w io.Writer, payload any) error{}

// RegisterSummary adds a handler (idempotent, last wins).
func RegisterSummary(format string, fn func(io.Writer, any) error) { SummaryWriters[format] = fn }

// SummaryFormats lists registered formats.
func SummaryFormats() []string {
	out := make([]string, 0, len(SummaryWriters))
	for f := range SummaryWriters {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// WriteSummary dispatches to the handler for format.
func WriteSummary(format string, w io.Writer, payload any) error {
	fn, ok := SummaryWriters[format]
	if !ok {
		return fmt.Errorf("unknown summary format %q (no writer registered)", format)
	}
	return fn(w, payload)
}
