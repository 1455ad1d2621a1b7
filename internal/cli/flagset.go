// internal/cli/flagset.go
package cli

import (
	"strings"

	"github.com/spf13/pflag"

	"tsvgen/internal/config"
	"tsvgen/internal/spread"
	"tsvgen/internal/writers"
)

const keyConfig = "config"

// addSharedFlags registers flags every command understands. They live on the
// root's persistent set so verify inherits them.
func addSharedFlags(fs *pflag.FlagSet) {
	fs.String(config.KeyTSVName, config.DefaultTSVName, "name of the TSV entry inside the archive")
	fs.String(config.KeySchemaDir, config.DefaultSchemaDir, "directory searched for a relative schema path")
	fs.String(config.KeySummary, config.DefaultSummary, "summary format: "+strings.Join(writers.SummaryFormats(), " | "))
	fs.BoolP(config.KeyQuiet, "q", false, "suppress the summary and info logs")

	fs.String(keyConfig, "", "YAML config file (default ./tsvgen.yaml when present)")
	fs.String(config.KeyLogLevel, "info", "log level: debug | info | warn | error")
	fs.String(config.KeyLogFormat, "console", "stderr log format: console | json")
	fs.String(config.KeyLogFile, "", "also write JSON logs to this rotating file")
}

// addGenerateFlags registers the flags of the root generate surface.
func addGenerateFlags(fs *pflag.FlagSet) {
	fs.Int(config.KeySpread, 0, "records paired with a FASTA file (with --source-dir: min(files, count))")
	fs.String(config.KeyPolicy, spread.DefaultPolicy, "FASTA association policy: "+strings.Join(spread.Names(), " | "))
	fs.String(config.KeySourceDir, "", "randomize FASTA files from this directory instead of synthesizing them")

	fs.Int(config.KeySeqLength, config.DefaultSeqLength, "length of synthesized sequences")
	fs.Int(config.KeyLineWidth, config.DefaultLineWidth, "FASTA sequence line width")
	fs.Int(config.KeyEntriesPerFile, 1, "entries per synthesized FASTA file")
	fs.Uint64(config.KeySeed, 0, "PRNG seed (0 = time-based)")
}
