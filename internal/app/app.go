// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"tsvgen/internal/cli"
	"tsvgen/internal/errs"
	"tsvgen/internal/gen"
	"tsvgen/internal/logging"
	"tsvgen/internal/writers"
)

// Exit codes.
const (
	ExitOK          = 0
	ExitFailure     = 1
	ExitConfig      = 2
	ExitIO          = 3
	ExitSchema      = 4
	ExitInterrupted = 130
)

// runner executes parsed commands against buffered stdout.
type runner struct {
	stdout io.Writer
	stderr io.Writer
}

func (r *runner) Generate(ctx context.Context, req cli.Request) error {
	log, closeLog, err := logging.New(req.Config.Log, r.stderr, req.Config.Quiet)
	if err != nil {
		return err
	}
	defer closeLog()

	sum, err := gen.New(req.Gen, log).Run(ctx)
	if err != nil {
		log.Debug("generation failed", zap.Error(err))
		return err
	}
	if req.Config.Quiet {
		return nil
	}
	return errs.IO("write summary", writers.WriteSummary(req.Config.Summary, r.stdout, sum))
}

func (r *runner) Verify(ctx context.Context, req cli.VerifyRequest) error {
	log, closeLog, err := logging.New(req.Config.Log, r.stderr, req.Config.Quiet)
	if err != nil {
		return err
	}
	defer closeLog()

	if err := ctx.Err(); err != nil {
		return err
	}
	rep, err := gen.Verify(req.SchemaPath, req.Config.SchemaDir, req.ArchivePath, req.Config.TSVName)
	if err != nil {
		return err
	}
	log.Info("archive verified",
		zap.String("archive", rep.Archive),
		zap.Int("rows", rep.Rows),
		zap.Int("fasta_files", len(rep.FASTAFiles)),
	)
	if req.Config.Quiet {
		return nil
	}
	return errs.IO("write summary", writers.WriteSummary(req.Config.Summary, r.stdout, rep))
}

// RunContext executes argv and returns the process exit code. Errors are
// reported on stderr as "error: <message>".
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)

	root := cli.NewRootCommand(&runner{stdout: outw, stderr: stderr})
	root.SetArgs(argv)
	root.SetOut(outw)
	root.SetErr(stderr)

	err := root.ExecuteContext(parent)
	if e := outw.Flush(); e != nil && !writers.IsBrokenPipe(e) && err == nil {
		err = errs.IO("write output", e)
	}
	if err == nil {
		return ExitOK
	}
	code := ExitCode(err)
	if code == ExitInterrupted {
		_, _ = fmt.Fprintln(stderr, "error: interrupted")
	} else {
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return code
}

func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ExitInterrupted
	case errors.Is(err, errs.ErrConfig):
		return ExitConfig
	case errors.Is(err, errs.ErrIO):
		return ExitIO
	case errors.Is(err, errs.ErrSchema):
		return ExitSchema
	}
	return ExitFailure
}
