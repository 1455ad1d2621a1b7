// Package gen synthesizes records from a schema, pairs a subset of them
// with FASTA files and packages everything into a zip archive.
package gen

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"go.uber.org/zap"

	"tsvgen/internal/archive"
	"tsvgen/internal/errs"
	"tsvgen/internal/fasta"
	"tsvgen/internal/schema"
	"tsvgen/internal/spread"
	"tsvgen/internal/synth"
	"tsvgen/internal/writers"
	"tsvgen/pkg/api"
)

const (
	fileNameLength = 12
	headerLength   = 20
	fastaExt       = ".fasta"
)

// Record is one synthesized row. Values holds a value per schema field; the
// FASTA reference columns hold "" when the row has no associated file.
type Record struct {
	Index  int
	Values map[string]any
	FASTA  spread.Ref
}

// Cells renders the record in schema column order.
func (r Record) Cells(s *schema.Schema) []string {
	out := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		out[i] = synth.Format(r.Values[f.Name])
	}
	return out
}

// Result is a fully synthesized data set, ready to be archived.
type Result struct {
	Schema  *schema.Schema
	Records []Record
	Files   []fasta.File
	Plan    spread.Plan
	Seed    uint64
}

// Generator runs a generation with fixed options.
type Generator struct {
	opts Options
	log  *zap.Logger
}

// New returns a Generator. A nil log discards output.
func New(opts Options, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Seed == 0 {
		opts.Seed = uint64(opts.now().UnixNano())
	}
	return &Generator{opts: opts, log: log}
}

// Run validates the options, loads the schema, synthesizes the data set and
// writes the archive. No file is written unless every step before the
// archive succeeds.
func (g *Generator) Run(ctx context.Context) (api.GenerateSummaryV1, error) {
	var sum api.GenerateSummaryV1
	if err := g.opts.Validate(); err != nil {
		return sum, err
	}
	path := schema.Resolve(g.opts.SchemaPath, g.opts.SchemaDir)
	s, err := schema.Load(path)
	if err != nil {
		return sum, err
	}
	g.log.Debug("schema loaded", zap.String("path", path), zap.Strings("fields", s.Names()))

	res, err := g.Build(ctx, s)
	if err != nil {
		return sum, err
	}
	if err := WriteArchive(g.opts.Output, g.opts.TSVName, g.opts.LineWidth, res); err != nil {
		return sum, err
	}

	sum = api.GenerateSummaryV1{
		Archive:        g.opts.Output,
		TSVName:        g.opts.TSVName,
		Rows:           len(res.Records),
		Fields:         s.Names(),
		FASTAFiles:     fileNames(res.Files),
		ReferencedRows: res.Plan.Referenced(),
		Policy:         g.opts.policy(),
		Seed:           res.Seed,
	}
	if fi, err := os.Stat(g.opts.Output); err == nil {
		sum.Bytes = fi.Size()
	}
	g.log.Info("archive written",
		zap.String("archive", sum.Archive),
		zap.Int("rows", sum.Rows),
		zap.Int("fasta_files", len(sum.FASTAFiles)),
		zap.Int("referenced_rows", sum.ReferencedRows),
	)
	return sum, nil
}

// Build synthesizes records and FASTA files in memory.
func (g *Generator) Build(ctx context.Context, s *schema.Schema) (*Result, error) {
	src := synth.New(g.opts.Seed, g.opts.Now)
	names := newNamer(src, g.opts.TSVName)

	files, err := g.fastaFiles(src, names)
	if err != nil {
		return nil, err
	}
	policy, err := spread.Lookup(g.opts.policy())
	if err != nil {
		return nil, err
	}
	entries := make([]int, len(files))
	for i, f := range files {
		entries[i] = len(f.Records)
	}
	plan := policy(g.opts.Count, entries)

	if len(files) > 0 && !s.ReferencesFASTA() {
		g.log.Warn("schema declares no FASTA reference column; files are archived but not referenced from the TSV",
			zap.Strings("columns", []string{schema.FieldFASTAFile, schema.FieldFASTAHeader}))
	}

	records := make([]Record, g.opts.Count)
	for i := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec := Record{Index: i, Values: make(map[string]any, len(s.Fields)), FASTA: plan[i]}
		for _, f := range s.Fields {
			if f.Reserved() {
				rec.Values[f.Name] = reference(f.Name, plan[i], files)
				continue
			}
			rec.Values[f.Name] = src.Value(f)
		}
		records[i] = rec
	}
	g.log.Debug("records synthesized", zap.Int("count", len(records)), zap.String("policy", g.opts.policy()))

	return &Result{Schema: s, Records: records, Files: files, Plan: plan, Seed: g.opts.Seed}, nil
}

func reference(column string, ref spread.Ref, files []fasta.File) string {
	if !ref.Valid() {
		return ""
	}
	f := files[ref.File]
	if column == schema.FieldFASTAFile {
		return f.Name
	}
	return f.Records[ref.Entry].ID
}

// fastaFiles returns exactly spread files, sorted by name.
func (g *Generator) fastaFiles(src *synth.Source, names *namer) ([]fasta.File, error) {
	n := g.opts.Spread
	var files []fasta.File

	if g.opts.SourceDir != "" {
		paths, err := fasta.ListSources(g.opts.SourceDir)
		if err != nil {
			return nil, errs.IO("list FASTA sources", err)
		}
		if len(paths) == 0 {
			return nil, errs.IO("list FASTA sources", fmt.Errorf("no *.fasta or *.fa files in %s", g.opts.SourceDir))
		}
		if !g.opts.SpreadSet {
			n = min(len(paths), g.opts.Count)
		}
		if n > len(paths) {
			return nil, errs.Configf("--spread (%d) exceeds the %d FASTA file(s) in %s", n, len(paths), g.opts.SourceDir)
		}
		g.log.Debug("randomizing FASTA sources", zap.Int("available", len(paths)), zap.Int("used", n))
		files, err = fasta.Randomize(paths[:n], names.file, names.header)
		if err != nil {
			return nil, errs.IO("read FASTA source", err)
		}
	} else {
		files = make([]fasta.File, n)
		for i := range files {
			f := fasta.File{Name: names.file(), Records: make([]fasta.Record, g.opts.EntriesPerFile)}
			for j := range f.Records {
				f.Records[j] = fasta.Record{ID: names.header(), Seq: src.Sequence(g.opts.SeqLength)}
			}
			files[i] = f
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// WriteArchive writes the TSV entry followed by every FASTA file. The
// destination is only replaced when all entries were written.
func WriteArchive(path, tsvName string, lineWidth int, res *Result) error {
	aw, err := archive.Create(path)
	if err != nil {
		return errs.IO("create archive", err)
	}
	defer aw.Abort()

	header := res.Schema.Names()
	rows := make([][]string, len(res.Records))
	for i, r := range res.Records {
		rows[i] = r.Cells(res.Schema)
	}
	if err := aw.AddFunc(tsvName, func(w io.Writer) error {
		return writers.WriteTSV(w, header, rows)
	}); err != nil {
		return errs.IO("write TSV", err)
	}
	for _, f := range res.Files {
		if err := aw.AddFunc(f.Name, func(w io.Writer) error {
			return fasta.Write(w, f.Records, lineWidth)
		}); err != nil {
			return errs.IO("write FASTA", err)
		}
	}
	if err := aw.Commit(); err != nil {
		return errs.IO("commit archive", err)
	}
	return nil
}

func fileNames(files []fasta.File) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

// namer hands out unique random file names and sequence identifiers.
type namer struct {
	src  *synth.Source
	used map[string]struct{}
}

func newNamer(src *synth.Source, reserved ...string) *namer {
	n := &namer{src: src, used: map[string]struct{}{}}
	for _, r := range reserved {
		n.used[r] = struct{}{}
	}
	return n
}

func (n *namer) unique(length int, suffix string) string {
	for {
		s := n.src.String(length) + suffix
		if _, dup := n.used[s]; !dup {
			n.used[s] = struct{}{}
			return s
		}
	}
}

func (n *namer) file() string   { return n.unique(fileNameLength, fastaExt) }
func (n *namer) header() string { return n.unique(headerLength, "") }
