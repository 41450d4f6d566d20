package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/coderun/internal/lang"
)

// maxInlineBytes is the largest single argv string Linux accepts (MAX_ARG_STRLEN minus the NUL).
const maxInlineBytes = 128*1024 - 1

// waitDelay bounds how long Wait keeps draining stdio after the interpreter exits,
// e.g. when a backgrounded child still holds stdout open.
const waitDelay = 2 * time.Second

type execOptions struct {
	Timeout     time.Duration
	IdleTimeout time.Duration
	Stdin       io.Reader
	Stdout      io.Writer
	Stderr      io.Writer
}

// execute runs the program text through the language bootstrap as the main
// program. It returns nil on exit status 0, *ExitError for an exit the program
// requested, and *Error of KindExecutionError for everything else.
func execute(ctx context.Context, l lang.Language, prog *Program, opts execOptions) error {
	if strings.ContainsRune(prog.Text, 0) {
		return newError(KindExecutionError, nil, "source code cannot contain null bytes")
	}
	if len(prog.Text) > maxInlineBytes {
		return newError(KindExecutionError, nil, "program is %d bytes; at most %d bytes can be passed to %s", len(prog.Text), maxInlineBytes, l.Interpreter)
	}

	bin, err := exec.LookPath(l.Interpreter)
	if err != nil {
		return newError(KindExecutionError, err, "%s interpreter %q not found", l.Display, l.Interpreter)
	}

	scratch, err := os.MkdirTemp("", "coderun-")
	if err != nil {
		return newError(KindExecutionError, err, "create scratch dir: %v", err)
	}
	defer func() { _ = os.RemoveAll(scratch) }()
	reportPath := filepath.Join(scratch, "error")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if opts.Timeout > 0 {
		var tcancel context.CancelFunc
		runCtx, tcancel = context.WithTimeout(runCtx, opts.Timeout)
		defer tcancel()
	}

	cmd := exec.CommandContext(runCtx, bin, l.Args(reportPath, prog.Text)...)
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	cmd.Env = programEnv()
	cmd.WaitDelay = waitDelay

	// A separate process group cannot read from the controlling terminal,
	// so interactive runs stay in ours.
	if !isTerminal(opts.Stdin) {
		setupProcessGroup(cmd)
	}

	var stall *stallWriter
	if opts.IdleTimeout > 0 {
		stall = newStallWriter(opts.Stdout, opts.IdleTimeout, cancel)
		defer stall.Stop()
		cmd.Stdout = stall
	}

	slog.Debug("spawning interpreter", "bin", bin, "language", l.Name, "file", prog.Path, "bytes", prog.Size())

	if err := cmd.Start(); err != nil {
		return newError(KindExecutionError, err, "start %s: %v", l.Interpreter, err)
	}
	err = cmd.Wait()

	switch {
	case stall != nil && stall.Stalled():
		return newError(KindExecutionError, err, "Execution stalled (no output for %s)", opts.IdleTimeout)
	case errors.Is(runCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil:
		return newError(KindExecutionError, err, "Execution timeout (exceeded %s)", opts.Timeout)
	case ctx.Err() != nil:
		return newError(KindExecutionError, ctx.Err(), "execution cancelled")
	}

	if msg, ok, rerr := readReport(reportPath); rerr != nil {
		return newError(KindExecutionError, rerr, "read error report: %v", rerr)
	} else if ok {
		return newError(KindExecutionError, err, "%s", msg)
	}

	if errors.Is(err, exec.ErrWaitDelay) {
		// the interpreter is gone; a leftover child still holds its output open
		slog.Debug("output still open after exit", "error", err)
		err = nil
		if ps := cmd.ProcessState; ps != nil && !ps.Success() {
			err = &exec.ExitError{ProcessState: ps}
		}
	}
	if err == nil {
		return nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return newError(KindExecutionError, err, "%v", err)
	}
	code := exitErr.ExitCode()
	if code < 0 {
		// terminated by a signal
		return newError(KindExecutionError, err, "%v", exitErr)
	}
	slog.Debug("program requested exit", "status", code)
	return &ExitError{Code: code}
}

// readReport returns the uncaught-error message the bootstrap left at path.
// ok is false when the program ended without one.
func readReport(path string) (msg string, ok bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), true, nil
}
