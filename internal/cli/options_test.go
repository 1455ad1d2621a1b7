// internal/cli/options_test.go
package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tsvgen/internal/config"
	"tsvgen/internal/errs"
)

type fakeRunner struct {
	gen    *Request
	verify *VerifyRequest
}

func (f *fakeRunner) Generate(_ context.Context, req Request) error {
	f.gen = &req
	return nil
}

func (f *fakeRunner) Verify(_ context.Context, req VerifyRequest) error {
	f.verify = &req
	return nil
}

func execute(t *testing.T, args ...string) (*fakeRunner, string, error) {
	t.Helper()
	t.Chdir(t.TempDir())
	f := &fakeRunner{}
	var out bytes.Buffer
	cmd := NewRootCommand(f)
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.ExecuteContext(context.Background())
	return f, out.String(), err
}

func TestGenerateDefaults(t *testing.T) {
	f, _, err := execute(t, "person.json", "10", "out.zip")
	require.NoError(t, err)
	require.NotNil(t, f.gen)

	o := f.gen.Gen
	assert.Equal(t, "person.json", o.SchemaPath)
	assert.Equal(t, 10, o.Count)
	assert.Equal(t, "out.zip", o.Output)
	assert.Equal(t, config.DefaultTSVName, o.TSVName)
	assert.Equal(t, config.DefaultSchemaDir, o.SchemaDir)
	assert.Equal(t, "even", o.Policy)
	assert.Equal(t, 0, o.Spread)
	assert.False(t, o.SpreadSet)
	assert.Equal(t, config.DefaultSeqLength, o.SeqLength)
	assert.Equal(t, config.DefaultLineWidth, o.LineWidth)
	assert.Equal(t, 1, o.EntriesPerFile)
	assert.Equal(t, "text", f.gen.Config.Summary)
}

func TestGenerateFlags(t *testing.T) {
	f, _, err := execute(t,
		"s.yaml", "20", "o.zip",
		"--spread", "4", "--policy", "cycle", "--tsv-name", "rows.tsv",
		"--seq-length", "50", "--line-width", "10", "--entries-per-file", "3",
		"--seed", "99", "-q", "--summary", "json",
	)
	require.NoError(t, err)
	o := f.gen.Gen
	assert.Equal(t, 4, o.Spread)
	assert.True(t, o.SpreadSet)
	assert.Equal(t, "cycle", o.Policy)
	assert.Equal(t, "rows.tsv", o.TSVName)
	assert.Equal(t, 50, o.SeqLength)
	assert.Equal(t, 10, o.LineWidth)
	assert.Equal(t, 3, o.EntriesPerFile)
	assert.Equal(t, uint64(99), o.Seed)
	assert.True(t, f.gen.Config.Quiet)
	assert.Equal(t, "json", f.gen.Config.Summary)
}

func TestEnvironmentAndConfigFile(t *testing.T) {
	t.Setenv("TSVGEN_SPREAD", "3")
	t.Setenv("TSVGEN_TSV_NAME", "env.tsv")
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "cfg.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("tsv-name: file.tsv\nseq-length: 77\n"), 0o644))

	f, _, err := execute(t, "s.json", "5", "o.zip", "--config", cfgFile)
	require.NoError(t, err)
	o := f.gen.Gen
	assert.Equal(t, 3, o.Spread)
	assert.True(t, o.SpreadSet)
	assert.Equal(t, "env.tsv", o.TSVName, "env beats config file")
	assert.Equal(t, 77, o.SeqLength)

	f, _, err = execute(t, "s.json", "5", "o.zip", "--config", cfgFile, "--tsv-name", "flag.tsv")
	require.NoError(t, err)
	assert.Equal(t, "flag.tsv", f.gen.Gen.TSVName, "flag beats env")
}

func TestUsageErrorsAreConfigErrors(t *testing.T) {
	cases := map[string][]string{
		"two positionals": {"s.json", "10"},
		"count not int":   {"s.json", "ten", "o.zip"},
		"unknown flag":    {"s.json", "1", "o.zip", "--nope"},
		"bad int flag":    {"s.json", "1", "o.zip", "--spread", "x"},
		"bad summary":     {"s.json", "1", "o.zip", "--summary", "xml"},
		"missing config":  {"s.json", "1", "o.zip", "--config", "missing.yaml"},
		"verify one arg":  {"verify", "s.json"},
		"version arg":     {"version", "extra"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			f, _, err := execute(t, args...)
			require.Error(t, err)
			assert.True(t, errors.Is(err, errs.ErrConfig), "got %v", err)
			assert.Nil(t, f.gen)
			assert.Nil(t, f.verify)
		})
	}
}

func TestNoArgsPrintsHelp(t *testing.T) {
	f, out, err := execute(t)
	require.NoError(t, err)
	assert.Nil(t, f.gen)
	assert.Contains(t, out, "tsvgen <schema-file> <count> <output-zip>")
	assert.Contains(t, out, "--spread")
}

func TestVerifyCommand(t *testing.T) {
	f, _, err := execute(t, "verify", "s.json", "o.zip", "--tsv-name", "x.tsv")
	require.NoError(t, err)
	require.NotNil(t, f.verify)
	assert.Equal(t, "s.json", f.verify.SchemaPath)
	assert.Equal(t, "o.zip", f.verify.ArchivePath)
	assert.Equal(t, "x.tsv", f.verify.Config.TSVName)
}

func TestVersionCommand(t *testing.T) {
	_, out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^tsvgen version \S+\n$`, out)
}

func TestDocsCommand(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "docs")
	_, _, err := execute(t, "docs", dir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "tsvgen.md"))
	assert.FileExists(t, filepath.Join(dir, "tsvgen_verify.md"))
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount(" 12 ")
	require.NoError(t, err)
	assert.Equal(t, 12, n)

	_, err = ParseCount("1.5")
	assert.True(t, errors.Is(err, errs.ErrConfig))
}
