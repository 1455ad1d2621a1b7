// Package schema loads the record schema that drives generation.
//
// A schema is a small subset of JSON Schema: an object with ordered
// "properties", each property carrying a type and optional constraints, and
// a "required" list. Both JSON and YAML documents are accepted; property
// declaration order is preserved because it becomes the TSV column order.
package schema

import "fmt"

// Type is a field's value type.
type Type string

const (
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
	TypeArray   Type = "array"
)

// Format refines TypeString.
type Format string

const (
	FormatNone     Format = ""
	FormatDate     Format = "date"
	FormatDateTime Format = "date-time"
	FormatUUID     Format = "uuid"
)

// Reserved column names. When a schema declares them, rows associated with
// a FASTA file carry its archive entry name and sequence identifier.
const (
	FieldFASTAFile   = "fasta_file_name"
	FieldFASTAHeader = "fasta_header_name"
)

// Defaults applied when a field leaves a constraint unset.
const (
	DefaultMinimum      = 1
	DefaultMaximum      = 100
	DefaultStringLength = 20
	MaxArrayItems       = 3
	ArraySeparator      = ", "
)

// Field is one column of a record.
type Field struct {
	Name     string
	Type     Type
	Format   Format
	Enum     []string // literal values as they appear in the TSV
	Minimum  float64
	Maximum  float64
	MinLen   int
	MaxLen   int
	Items    *Field // element rule when Type == TypeArray
	Required bool
}

// Reserved reports whether the field is one of the FASTA reference columns.
func (f Field) Reserved() bool {
	return f.Name == FieldFASTAFile || f.Name == FieldFASTAHeader
}

func (f Field) String() string {
	if f.Format != FormatNone {
		return fmt.Sprintf("%s:%s(%s)", f.Name, f.Type, f.Format)
	}
	return fmt.Sprintf("%s:%s", f.Name, f.Type)
}

// Schema is an ordered list of fields.
type Schema struct {
	Title  string
	Fields []Field
}

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = f.Name
	}
	return out
}

// Lookup returns the named field.
func (s *Schema) Lookup(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Index returns the column position of name, or -1.
func (s *Schema) Index(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// ReferencesFASTA reports whether either reserved column is declared.
func (s *Schema) ReferencesFASTA() bool {
	return s.Index(FieldFASTAFile) >= 0 || s.Index(FieldFASTAHeader) >= 0
}
