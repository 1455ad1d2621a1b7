package gen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"tsvgen/internal/archive"
	"tsvgen/internal/errs"
	"tsvgen/internal/fasta"
	"tsvgen/internal/schema"
	"tsvgen/internal/writers"
)

const idNameSchema = `{"properties": {"id": {"type": "integer"}, "name": {"type": "string"}}}`

const richSchema = `{
  "properties": {
    "sample_id":         {"type": "string", "format": "uuid"},
    "collected":         {"type": "string", "format": "date"},
    "reads":             {"type": "integer", "minimum": 1000, "maximum": 5000},
    "gc":                {"type": "number", "minimum": 0.3, "maximum": 0.7},
    "host":              {"enum": ["human", "mouse", "rat"]},
    "panels":            {"type": "array", "items": {"enum": ["resp", "gi", "sti", "cns"]}},
    "passed_qc":         {"type": "boolean"},
    "fasta_file_name":   {"type": "string"},
    "fasta_header_name": {"type": "string"}
  },
  "required": ["sample_id"]
}`

var fixedNow = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

func writeSchema(t testing.TB, dir, doc string) string {
	t.Helper()
	path := filepath.Join(dir, "schema.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	return path
}

func baseOptions(dir, schemaPath string) Options {
	return Options{
		SchemaPath:     schemaPath,
		Count:          5,
		Output:         filepath.Join(dir, "out.zip"),
		TSVName:        "out.tsv",
		SeqLength:      80,
		LineWidth:      60,
		EntriesPerFile: 1,
		Seed:           1,
		Now:            fixedNow,
	}
}

// tb is satisfied by both *testing.T and *rapid.T.
type tb interface {
	require.TestingT
	Helper()
}

func readArchive(t tb, path, tsvName string) (header []string, rows [][]string, fastas map[string][]fasta.Record) {
	t.Helper()
	ar, err := archive.Open(path)
	require.NoError(t, err)
	defer ar.Close()
	fastas = map[string][]fasta.Record{}
	for _, name := range ar.Names() {
		data, err := ar.ReadFile(name)
		require.NoError(t, err)
		if name == tsvName {
			header, rows, err = writers.ReadTSV(strings.NewReader(string(data)))
			require.NoError(t, err)
			continue
		}
		recs, err := fasta.ReadAll(strings.NewReader(string(data)))
		require.NoError(t, err)
		fastas[name] = recs
	}
	require.NotNil(t, header, "archive is missing %s", tsvName)
	return header, rows, fastas
}

func TestIDNameScenario(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, writeSchema(t, dir, idNameSchema))
	opts.Spread = 2

	sum, err := New(opts, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 5, sum.Rows)
	assert.Len(t, sum.FASTAFiles, 2)
	assert.Equal(t, 2, sum.ReferencedRows)
	assert.Equal(t, "even", sum.Policy)

	ar, err := archive.Open(opts.Output)
	require.NoError(t, err)
	defer ar.Close()
	data, err := ar.ReadFile("out.tsv")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "id\tname", lines[0])
	assert.Len(t, ar.Names(), 3)
	for _, name := range ar.Names() {
		if name != "out.tsv" {
			assert.True(t, strings.HasSuffix(name, ".fasta"), name)
			assert.Len(t, name, len("123456789012.fasta"))
		}
	}
}

func TestCountZeroWritesNothing(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, writeSchema(t, dir, idNameSchema))
	opts.Count = 0

	_, err := New(opts, nil).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrConfig)
	_, statErr := os.Stat(opts.Output)
	assert.True(t, os.IsNotExist(statErr))
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "only the schema should exist")
}

func TestOptionValidation(t *testing.T) {
	dir := t.TempDir()
	base := baseOptions(dir, writeSchema(t, dir, idNameSchema))
	cases := map[string]func(*Options){
		"spread over count": func(o *Options) { o.Spread = 6 },
		"negative spread":   func(o *Options) { o.Spread = -1 },
		"negative count":    func(o *Options) { o.Count = -3 },
		"no output":         func(o *Options) { o.Output = " " },
		"no schema":         func(o *Options) { o.SchemaPath = "" },
		"nested tsv name":   func(o *Options) { o.TSVName = "dir/out.tsv" },
		"empty tsv name":    func(o *Options) { o.TSVName = "" },
		"unknown policy":    func(o *Options) { o.Policy = "shuffle" },
		"zero seq length":   func(o *Options) { o.SeqLength = 0 },
		"zero line width":   func(o *Options) { o.LineWidth = 0 },
		"zero entries/file": func(o *Options) { o.EntriesPerFile = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			o := base
			mutate(&o)
			_, err := New(o, nil).Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, errs.ErrConfig)
			_, statErr := os.Stat(o.Output)
			assert.True(t, os.IsNotExist(statErr) || o.Output == " ")
		})
	}
}

func TestSpreadOverCountFailsRegardless(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		count := rapid.IntRange(1, 50).Draw(t, "count")
		o := Options{
			SchemaPath:     rapid.StringMatching(`[a-z]{0,8}\.json`).Draw(t, "schema"),
			Count:          count,
			Output:         rapid.StringMatching(`[a-z]{0,8}\.zip`).Draw(t, "out"),
			TSVName:        rapid.StringMatching(`[a-z]{0,8}\.tsv`).Draw(t, "tsv"),
			Spread:         count + rapid.IntRange(1, 50).Draw(t, "excess"),
			Policy:         rapid.SampledFrom([]string{"", "even", "cycle", "bogus"}).Draw(t, "policy"),
			SeqLength:      rapid.IntRange(-1, 10).Draw(t, "seqlen"),
			LineWidth:      rapid.IntRange(-1, 10).Draw(t, "width"),
			EntriesPerFile: rapid.IntRange(-1, 3).Draw(t, "entries"),
		}
		err := o.Validate()
		if !errors.Is(err, errs.ErrConfig) {
			t.Fatalf("want config error, got %v", err)
		}
	})
}

func TestMissingSchemaIsSchemaError(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, filepath.Join(dir, "nope.json"))
	_, err := New(opts, nil).Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrSchema)
}

func TestUnwritableOutputIsIOError(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, writeSchema(t, dir, idNameSchema))
	opts.Output = filepath.Join(dir, "missing-dir", "out.zip")
	_, err := New(opts, nil).Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrIO)
}

func TestGeneratedArchiveProperties(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeSchema(t, dir, richSchema)
	s, err := schema.Load(schemaPath)
	require.NoError(t, err)

	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(1, 40).Draw(rt, "count")
		opts := baseOptions(dir, schemaPath)
		opts.Count = count
		opts.Spread = rapid.IntRange(0, count).Draw(rt, "spread")
		opts.Policy = rapid.SampledFrom([]string{"even", "cycle"}).Draw(rt, "policy")
		opts.EntriesPerFile = rapid.IntRange(1, 3).Draw(rt, "entries")
		opts.Seed = rapid.Uint64Range(1, 1<<40).Draw(rt, "seed")
		opts.TSVName = rapid.StringMatching(`[a-z]{1,8}\.tsv`).Draw(rt, "tsv")
		opts.Output = filepath.Join(dir, fmt.Sprintf("p-%d.zip", opts.Seed))
		defer os.Remove(opts.Output)

		_, err := New(opts, nil).Run(context.Background())
		if err != nil {
			rt.Fatalf("run: %v", err)
		}
		header, rows, fastas := readArchive(rt, opts.Output, opts.TSVName)
		if len(rows) != count {
			rt.Fatalf("rows = %d, want %d", len(rows), count)
		}
		if len(fastas) != opts.Spread {
			rt.Fatalf("fasta files = %d, want %d", len(fastas), opts.Spread)
		}
		assert.Equal(rt, s.Names(), header)

		fileCol := s.Index(schema.FieldFASTAFile)
		referenced := 0
		for _, row := range rows {
			for j, f := range s.Fields {
				if f.Reserved() {
					continue
				}
				if err := f.Check(row[j]); err != nil {
					rt.Fatalf("row %v: %v", row, err)
				}
			}
			if row[fileCol] != "" {
				referenced++
				if _, ok := fastas[row[fileCol]]; !ok {
					rt.Fatalf("dangling reference %q", row[fileCol])
				}
			}
		}
		switch {
		case opts.Policy == "even" && referenced != opts.Spread:
			rt.Fatalf("even: referenced %d, want %d", referenced, opts.Spread)
		case opts.Policy == "cycle" && opts.Spread > 0 && referenced != count:
			rt.Fatalf("cycle: referenced %d, want %d", referenced, count)
		}

		rep, err := Verify(schemaPath, "", opts.Output, opts.TSVName)
		if err != nil {
			rt.Fatalf("verify: %v", err)
		}
		assert.Equal(rt, count, rep.Rows)
		assert.Equal(rt, referenced, rep.ReferencedRows)
	})
}

func TestSameSeedSameArchiveContent(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, writeSchema(t, dir, richSchema))
	opts.Spread = 3
	s, err := schema.Load(opts.SchemaPath)
	require.NoError(t, err)

	a, err := New(opts, nil).Build(context.Background(), s)
	require.NoError(t, err)
	b, err := New(opts, nil).Build(context.Background(), s)
	require.NoError(t, err)
	assert.Equal(t, a.Records, b.Records)
	assert.Equal(t, a.Files, b.Files)
}

func TestWarnsWhenSchemaHasNoReferenceColumns(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, writeSchema(t, dir, idNameSchema))
	opts.Spread = 1
	core, logs := observer.New(zapcore.WarnLevel)

	_, err := New(opts, zap.New(core)).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	assert.Contains(t, logs.All()[0].Message, "no FASTA reference column")
}

func TestCancelledContextLeavesNoArchive(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, writeSchema(t, dir, idNameSchema))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(opts, nil).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	_, statErr := os.Stat(opts.Output)
	assert.True(t, os.IsNotExist(statErr))
}

func TestSourceDirRandomizesCopies(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fastas")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.fasta"), []byte(">orig_a1\nAAAA\n>orig_a2\nCCCC\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "b.fa"), []byte(">orig_b1\nGGGG\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "c.fa"), []byte(">orig_c1\nTTTT\n"), 0o644))

	opts := baseOptions(dir, writeSchema(t, dir, richSchema))
	opts.SourceDir = src
	opts.Policy = "cycle"
	opts.Count = 8

	sum, err := New(opts, nil).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, sum.FASTAFiles, 3, "spread defaults to every source file")
	assert.Equal(t, 8, sum.ReferencedRows)

	_, rows, fastas := readArchive(t, opts.Output, opts.TSVName)
	var seqs []string
	for name, recs := range fastas {
		assert.NotContains(t, []string{"a.fasta", "b.fa", "c.fa"}, name)
		for _, r := range recs {
			assert.False(t, strings.HasPrefix(r.ID, "orig_"), "header %q was not replaced", r.ID)
			assert.Len(t, r.ID, 20)
			seqs = append(seqs, string(r.Seq))
		}
	}
	assert.ElementsMatch(t, []string{"AAAA", "CCCC", "GGGG", "TTTT"}, seqs)

	s, _ := schema.Load(opts.SchemaPath)
	hdr := s.Index(schema.FieldFASTAHeader)
	seen := map[string]bool{}
	for _, row := range rows {
		seen[row[hdr]] = true
	}
	assert.Len(t, seen, 4, "cycle visits every entry")

	_, err = Verify(opts.SchemaPath, "", opts.Output, opts.TSVName)
	require.NoError(t, err)
}

func TestSourceDirKeepsLineLayout(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "fastas")
	require.NoError(t, os.Mkdir(src, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.fa"), []byte(">orig\nACGTACGT\nAC\n"), 0o644))

	opts := baseOptions(dir, writeSchema(t, dir, richSchema))
	opts.SourceDir = src
	opts.LineWidth = 3

	_, err := New(opts, nil).Run(context.Background())
	require.NoError(t, err)
	_, _, fastas := readArchive(t, opts.Output, opts.TSVName)
	require.Len(t, fastas, 1)
	for _, recs := range fastas {
		require.Len(t, recs, 1)
		assert.Equal(t, []int{8, 2}, recs[0].Lines)
	}
}

func TestSourceDirErrors(t *testing.T) {
	dir := t.TempDir()
	opts := baseOptions(dir, writeSchema(t, dir, idNameSchema))

	opts.SourceDir = filepath.Join(dir, "missing")
	_, err := New(opts, nil).Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrIO)

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.Mkdir(empty, 0o755))
	opts.SourceDir = empty
	_, err = New(opts, nil).Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrIO)

	one := filepath.Join(dir, "one")
	require.NoError(t, os.Mkdir(one, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(one, "x.fa"), []byte(">x\nAC\n"), 0o644))
	opts.SourceDir = one
	opts.Spread, opts.SpreadSet = 2, true
	_, err = New(opts, nil).Run(context.Background())
	assert.ErrorIs(t, err, errs.ErrConfig)
}
