package schema

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Layouts used for the date formats.
const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = time.RFC3339
)

// Check reports whether raw, a serialized TSV cell, satisfies the field.
func (f Field) Check(raw string) error {
	if f.Enum != nil {
		if !slices.Contains(f.Enum, raw) {
			return fmt.Errorf("%s: %q is not one of %v", f.Name, raw, f.Enum)
		}
		return nil
	}
	switch f.Type {
	case TypeArray:
		return f.checkArray(raw)
	case TypeInteger:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", f.Name, raw)
		}
		if float64(n) < f.Minimum || float64(n) > f.Maximum {
			return fmt.Errorf("%s: %d outside [%v, %v]", f.Name, n, f.Minimum, f.Maximum)
		}
	case TypeNumber:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a number", f.Name, raw)
		}
		if x < f.Minimum || x > f.Maximum {
			return fmt.Errorf("%s: %v outside [%v, %v]", f.Name, x, f.Minimum, f.Maximum)
		}
	case TypeBoolean:
		if raw != "true" && raw != "false" {
			return fmt.Errorf("%s: %q is not a boolean", f.Name, raw)
		}
	default:
		return f.checkString(raw)
	}
	return nil
}

func (f Field) checkString(raw string) error {
	switch f.Format {
	case FormatDate:
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return fmt.Errorf("%s: %q is not a date", f.Name, raw)
		}
	case FormatDateTime:
		if _, err := time.Parse(DateTimeLayout, raw); err != nil {
			return fmt.Errorf("%s: %q is not a date-time", f.Name, raw)
		}
	case FormatUUID:
		if _, err := uuid.Parse(raw); err != nil {
			return fmt.Errorf("%s: %q is not a uuid", f.Name, raw)
		}
	default:
		if n := len(raw); n < f.MinLen || n > f.MaxLen {
			return fmt.Errorf("%s: length %d outside [%d, %d]", f.Name, n, f.MinLen, f.MaxLen)
		}
		for _, c := range raw {
			if !isAlnum(c) {
				return fmt.Errorf("%s: %q has non-alphanumeric characters", f.Name, raw)
			}
		}
	}
	return nil
}

func (f Field) checkArray(raw string) error {
	parts := strings.Split(raw, ArraySeparator)
	limit := MaxArrayItems
	if f.Items.Enum != nil && len(f.Items.Enum) < limit {
		limit = len(f.Items.Enum)
	}
	if raw == "" || len(parts) > limit {
		return fmt.Errorf("%s: %d items, want 1..%d", f.Name, len(parts), limit)
	}
	if f.Items.Enum != nil {
		seen := make(map[string]struct{}, len(parts))
		for _, p := range parts {
			if _, dup := seen[p]; dup {
				return fmt.Errorf("%s: item %q repeated", f.Name, p)
			}
			seen[p] = struct{}{}
		}
	}
	for _, p := range parts {
		if err := f.Items.Check(p); err != nil {
			return err
		}
	}
	return nil
}

func isAlnum(c rune) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
