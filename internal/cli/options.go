// internal/cli/options.go
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"

	"tsvgen/internal/config"
	"tsvgen/internal/errs"
	"tsvgen/internal/gen"
	"tsvgen/internal/version"
	"tsvgen/internal/writers"
)

// Request is a parsed generate invocation.
type Request struct {
	Config config.Config
	Gen    gen.Options
}

// VerifyRequest is a parsed verify invocation.
type VerifyRequest struct {
	Config      config.Config
	SchemaPath  string
	ArchivePath string
}

// Runner executes parsed commands.
type Runner interface {
	Generate(ctx context.Context, req Request) error
	Verify(ctx context.Context, req VerifyRequest) error
}

const examples = `  # 100 records, 10 of them paired with a synthesized FASTA file
  tsvgen person.json 100 out.zip --spread 10

  # schema looked up in ./schemas, FASTA copied from real files
  tsvgen person.yaml 50 out.zip --source-dir refs/ --seed 42

  # check an archive against its schema
  tsvgen verify person.json out.zip`

// NewRootCommand builds the command tree. The root command itself is the
// generate surface; verify, version and docs hang off it.
func NewRootCommand(r Runner) *cobra.Command {
	root := &cobra.Command{
		Use:   "tsvgen <schema-file> <count> <output-zip>",
		Short: "Generate synthetic TSV records and FASTA files into a zip archive",
		Long: `tsvgen synthesizes <count> records from a JSON or YAML schema, writes them as a
TSV file and pairs --spread of them with FASTA files. Everything is written
to <output-zip>; the archive only appears once every entry was written.`,
		Example:       examples,
		Args:          generateArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			req, err := generateRequest(cmd, args)
			if err != nil {
				return err
			}
			return r.Generate(cmd.Context(), req)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.DisableAutoGenTag = true
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return errs.Configf("%v", err)
	})

	addSharedFlags(root.PersistentFlags())
	addGenerateFlags(root.Flags())

	root.AddCommand(newVerifyCommand(r), newVersionCommand(), newDocsCommand())
	return root
}

func newVerifyCommand(r Runner) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <schema-file> <archive>",
		Short: "Check an archive against its schema",
		Long: `verify reads the TSV entry of <archive>, checks the header against the schema
field order, every value against its field's constraints and every FASTA
reference against the archive's FASTA entries.`,
		Args: exactArgs(2, "<schema-file> <archive>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return r.Verify(cmd.Context(), VerifyRequest{Config: cfg, SchemaPath: args[0], ArchivePath: args[1]})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  exactArgs(0, ""),
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tsvgen version %s\n", version.Version)
			return err
		},
	}
}

func newDocsCommand() *cobra.Command {
	return &cobra.Command{
		Use:    "docs <dir>",
		Short:  "Write markdown command reference to <dir>",
		Hidden: true,
		Args:   exactArgs(1, "<dir>"),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0o755); err != nil {
				return errs.IO("create docs dir", err)
			}
			return errs.IO("write docs", doc.GenMarkdownTree(cmd.Root(), args[0]))
		},
	}
}

// generateArgs accepts no arguments (help) or exactly the three positionals.
func generateArgs(_ *cobra.Command, args []string) error {
	if len(args) == 0 || len(args) == 3 {
		return nil
	}
	return errs.Configf("expected <schema-file> <count> <output-zip>, got %d argument(s)", len(args))
}

func exactArgs(n int, usage string) cobra.PositionalArgs {
	return func(_ *cobra.Command, args []string) error {
		if len(args) == n {
			return nil
		}
		if n == 0 {
			return errs.Configf("unexpected argument(s) %v", args)
		}
		return errs.Configf("expected %s, got %d argument(s)", usage, len(args))
	}
}

func generateRequest(cmd *cobra.Command, args []string) (Request, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return Request{}, err
	}
	count, err := ParseCount(args[1])
	if err != nil {
		return Request{}, err
	}
	return Request{
		Config: cfg,
		Gen: gen.Options{
			SchemaPath:     args[0],
			SchemaDir:      cfg.SchemaDir,
			Count:          count,
			Output:         args[2],
			TSVName:        cfg.TSVName,
			Spread:         cfg.Spread,
			SpreadSet:      cfg.SpreadSet,
			Policy:         cfg.Policy,
			SourceDir:      cfg.SourceDir,
			SeqLength:      cfg.SeqLength,
			LineWidth:      cfg.LineWidth,
			EntriesPerFile: cfg.EntriesPerFile,
			Seed:           cfg.Seed,
		},
	}, nil
}

// loadConfig layers the command's flags over the environment and config
// file.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	v := config.New()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return config.Config{}, errs.Configf("bind flags: %v", err)
	}
	file, _ := cmd.Flags().GetString(keyConfig)
	cfg, err := config.Load(v, file)
	if err != nil {
		return cfg, err
	}
	if _, ok := writers.SummaryWriters[cfg.Summary]; !ok {
		return cfg, errs.Configf("invalid --summary %q (want %s)", cfg.Summary, strings.Join(writers.SummaryFormats(), "|"))
	}
	return cfg, nil
}

// ParseCount parses the <count> positional.
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errs.Configf("count %q is not an integer", s)
	}
	return n, nil
}
