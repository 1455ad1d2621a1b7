package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"tsvgen/internal/errs"
)

// Resolve returns path if it exists, otherwise dir/path when that exists.
// It falls back to path so the caller's read reports the original name.
func Resolve(path, dir string) string {
	if _, err := os.Stat(path); err == nil || dir == "" || filepath.IsAbs(path) {
		return path
	}
	alt := filepath.Join(dir, path)
	if _, err := os.Stat(alt); err == nil {
		return alt
	}
	return path
}

// Load reads and parses the schema at path. YAML is used for .yaml/.yml
// files, JSON otherwise.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Schema("read schema", err)
	}
	s, err := Parse(data, isYAML(path))
	if err != nil {
		return nil, errs.Schema(filepath.Base(path), err)
	}
	return s, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// Parse decodes a schema document and validates its constraints.
func Parse(data []byte, yamlDoc bool) (*Schema, error) {
	var raw rawSchema
	if yamlDoc {
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, errs.Schemaf("parse yaml: %v", err)
		}
	} else {
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, errs.Schemaf("parse json: %v", err)
		}
	}
	return raw.build()
}

/* ---------------- raw document ---------------- */

type rawSchema struct {
	Title      string       `json:"title" yaml:"title"`
	Type       string       `json:"type" yaml:"type"`
	Properties orderedProps `json:"properties" yaml:"properties"`
	Required   []string     `json:"required" yaml:"required"`
}

type rawField struct {
	Type      string      `json:"type" yaml:"type"`
	Format    string      `json:"format" yaml:"format"`
	Enum      []rawScalar `json:"enum" yaml:"enum"`
	Minimum   *float64    `json:"minimum" yaml:"minimum"`
	Maximum   *float64    `json:"maximum" yaml:"maximum"`
	MinLength *int        `json:"minLength" yaml:"minLength"`
	MaxLength *int        `json:"maxLength" yaml:"maxLength"`
	Items     *rawField   `json:"items" yaml:"items"`
}

type namedField struct {
	name string
	spec rawField
}

// orderedProps keeps property declaration order, which map decoding loses.
type orderedProps []namedField

func (p *orderedProps) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("properties must be an object")
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name := tok.(string) // object keys are always strings
		var f rawField
		if err := dec.Decode(&f); err != nil {
			return fmt.Errorf("property %q: %v", name, err)
		}
		*p = append(*p, namedField{name: name, spec: f})
	}
	_, err = dec.Token()
	return err
}

func (p *orderedProps) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: properties must be a mapping", n.Line)
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		var f rawField
		if err := val.Decode(&f); err != nil {
			return fmt.Errorf("property %q: %v", key.Value, err)
		}
		*p = append(*p, namedField{name: key.Value, spec: f})
	}
	return nil
}

// rawScalar holds an enum member in the textual form it takes in a TSV cell.
type rawScalar string

func (s *rawScalar) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = rawScalar(v)
		return nil
	}
	if len(b) > 0 && (b[0] == '{' || b[0] == '[') {
		return errors.New("enum members must be scalars")
	}
	*s = rawScalar(b)
	return nil
}

func (s *rawScalar) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: enum members must be scalars", n.Line)
	}
	*s = rawScalar(n.Value)
	return nil
}

/* ---------------- validation ---------------- */

func (r rawSchema) build() (*Schema, error) {
	if r.Type != "" && r.Type != "object" {
		return nil, errs.Schemaf("top-level type must be \"object\", got %q", r.Type)
	}
	if len(r.Properties) == 0 {
		return nil, errs.Schemaf("schema declares no properties")
	}
	s := &Schema{Title: r.Title}
	seen := make(map[string]struct{}, len(r.Properties))
	for _, p := range r.Properties {
		if strings.TrimSpace(p.name) == "" {
			return nil, errs.Schemaf("property with empty name")
		}
		if strings.ContainsAny(p.name, "\t\r\n") {
			return nil, errs.Schemaf("property %q: name contains tab or newline", p.name)
		}
		if _, dup := seen[p.name]; dup {
			return nil, errs.Schemaf("property %q declared twice", p.name)
		}
		seen[p.name] = struct{}{}
		f, err := buildField(p.name, p.spec, false)
		if err != nil {
			return nil, err
		}
		s.Fields = append(s.Fields, f)
	}
	for _, name := range r.Required {
		i := s.Index(name)
		if i < 0 {
			return nil, errs.Schemaf("required property %q is not declared", name)
		}
		s.Fields[i].Required = true
	}
	return s, nil
}

func normalizeType(t string) (Type, bool) {
	switch strings.ToLower(t) {
	case "", "string", "str":
		return TypeString, true
	case "integer", "int":
		return TypeInteger, true
	case "number", "float":
		return TypeNumber, true
	case "boolean", "bool":
		return TypeBoolean, true
	case "array":
		return TypeArray, true
	}
	return "", false
}

func buildField(name string, r rawField, item bool) (Field, error) {
	typ, ok := normalizeType(r.Type)
	if !ok {
		return Field{}, errs.Schemaf("property %q: unsupported type %q", name, r.Type)
	}
	f := Field{
		Name:    name,
		Type:    typ,
		Minimum: DefaultMinimum,
		Maximum: DefaultMaximum,
		MinLen:  DefaultStringLength,
		MaxLen:  DefaultStringLength,
	}

	if r.Enum != nil {
		if len(r.Enum) == 0 {
			return Field{}, errs.Schemaf("property %q: enum is empty", name)
		}
		seen := make(map[string]bool, len(r.Enum))
		for _, v := range r.Enum {
			s := string(v)
			if seen[s] {
				return Field{}, errs.Schemaf("property %q: enum value %q repeated", name, s)
			}
			seen[s] = true
			if strings.ContainsAny(s, "\t\r\n") {
				return Field{}, errs.Schemaf("property %q: enum value %q contains tab or newline", name, s)
			}
			if item && strings.Contains(s, ArraySeparator) {
				return Field{}, errs.Schemaf("property %q: array enum value %q contains %q", name, s, ArraySeparator)
			}
			f.Enum = append(f.Enum, s)
		}
	}

	switch typ {
	case TypeString:
		switch Format(r.Format) {
		case FormatNone, FormatDate, FormatDateTime, FormatUUID:
			f.Format = Format(r.Format)
		default:
			return Field{}, errs.Schemaf("property %q: unsupported format %q", name, r.Format)
		}
		if r.MinLength != nil {
			f.MinLen = *r.MinLength
			if r.MaxLength == nil && f.MaxLen < f.MinLen {
				f.MaxLen = f.MinLen
			}
		}
		if r.MaxLength != nil {
			f.MaxLen = *r.MaxLength
			if r.MinLength == nil && f.MinLen > f.MaxLen {
				f.MinLen = f.MaxLen
			}
		}
		if f.MinLen < 1 || f.MaxLen < f.MinLen {
			return Field{}, errs.Schemaf("property %q: invalid length range [%d, %d]", name, f.MinLen, f.MaxLen)
		}
	case TypeInteger, TypeNumber:
		if r.Minimum != nil {
			f.Minimum = *r.Minimum
		}
		if r.Maximum != nil {
			f.Maximum = *r.Maximum
		}
		if f.Minimum > f.Maximum {
			return Field{}, errs.Schemaf("property %q: minimum %v exceeds maximum %v", name, f.Minimum, f.Maximum)
		}
		if typ == TypeInteger && (f.Minimum != math.Trunc(f.Minimum) || f.Maximum != math.Trunc(f.Maximum)) {
			return Field{}, errs.Schemaf("property %q: integer bounds must be whole numbers", name)
		}
		if typ == TypeInteger && (f.Minimum < math.MinInt64 || f.Maximum >= -math.MinInt64) {
			return Field{}, errs.Schemaf("property %q: integer bounds must fit in 64 bits", name)
		}
	case TypeArray:
		if item {
			return Field{}, errs.Schemaf("property %q: nested arrays are not supported", name)
		}
		spec := rawField{}
		if r.Items != nil {
			spec = *r.Items
		}
		it, err := buildField(name+"[]", spec, true)
		if err != nil {
			return Field{}, err
		}
		f.Items = &it
	}
	return f, nil
}
