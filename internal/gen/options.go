package gen

import (
	"strings"
	"time"

	"tsvgen/internal/errs"
	"tsvgen/internal/spread"
)

// Options configures one generation run.
type Options struct {
	SchemaPath string
	SchemaDir  string // fallback directory for a relative SchemaPath
	Count      int
	Output     string
	TSVName    string

	Spread    int
	SpreadSet bool // false lets --source-dir pick the spread
	Policy    string
	SourceDir string

	SeqLength      int
	LineWidth      int
	EntriesPerFile int

	Seed uint64           // 0 picks a time-based seed
	Now  func() time.Time // nil uses time.Now
}

// Validate checks parameter combinations that do not need the filesystem.
func (o Options) Validate() error {
	switch {
	case o.SchemaPath == "":
		return errs.Configf("schema file is required")
	case o.Count <= 0:
		return errs.Configf("count must be > 0, got %d", o.Count)
	case strings.TrimSpace(o.Output) == "":
		return errs.Configf("output archive path is required")
	case o.Spread < 0:
		return errs.Configf("--spread must be ≥ 0, got %d", o.Spread)
	case o.Spread > o.Count:
		return errs.Configf("--spread (%d) exceeds count (%d)", o.Spread, o.Count)
	case o.SeqLength <= 0:
		return errs.Configf("--seq-length must be > 0")
	case o.LineWidth <= 0:
		return errs.Configf("--line-width must be > 0")
	case o.EntriesPerFile <= 0:
		return errs.Configf("--entries-per-file must be > 0")
	}
	if err := ValidateTSVName(o.TSVName); err != nil {
		return err
	}
	if _, err := spread.Lookup(o.policy()); err != nil {
		return err
	}
	return nil
}

// ValidateTSVName requires a plain file name for the TSV entry.
func ValidateTSVName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return errs.Configf("--tsv-name %q must be a plain file name", name)
	}
	return nil
}

func (o Options) policy() string {
	if o.Policy == "" {
		return spread.DefaultPolicy
	}
	return o.Policy
}

func (o Options) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}
