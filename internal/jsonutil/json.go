// internal/jsonutil/json.go
package jsonutil

import (
	"io"

	"github.com/bytedance/sonic"
)

// Encode writes v as JSON to w, indented by indent when it is non-empty.
// Map keys are sorted and HTML characters are left unescaped so file paths
// print as given.
func Encode(w io.Writer, v any, indent string) error {
	enc := sonic.ConfigStd.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(v)
}

// EncodePretty writes v as two-space indented JSON to w.
func EncodePretty(w io.Writer, v any) error { return Encode(w, v, "  ") }
