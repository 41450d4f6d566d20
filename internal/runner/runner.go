package runner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/coderun/internal/lang"
)

// DefaultDir is the directory the caller populates before coderun starts.
const DefaultDir = "/app/code"

// State is the outcome of one run.
type State int

const (
	StateCompleted State = iota // program exited 0
	StateExited                 // program requested a non-zero exit
	StateFailed                 // runner-detected failure
)

func (s State) String() string {
	switch s {
	case StateCompleted:
		return "COMPLETED"
	case StateExited:
		return "EXITED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Options configures a single run.
type Options struct {
	Dir      string
	Language lang.Language

	Timeout        time.Duration // 0 = no limit
	IdleTimeout    time.Duration // kill after no stdout for this long; 0 = disabled
	Wait           time.Duration // wait for the directory/candidate to appear; 0 = fail immediately
	MaxSourceBytes int64         // 0 = unlimited

	Stdin  io.Reader // defaults to os.Stdin
	Stdout io.Writer // defaults to os.Stdout
	Stderr io.Writer // defaults to os.Stderr
}

// Result records what happened during a run.
type Result struct {
	RunID     string        `json:"run_id"`
	Dir       string        `json:"dir"`
	File      string        `json:"file,omitempty"`
	Language  string        `json:"language"`
	Bytes     int64         `json:"bytes"`
	State     State         `json:"-"`
	Status    string        `json:"state"`
	ExitCode  int           `json:"exit_code"`
	Kind      string        `json:"kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	StartedAt time.Time     `json:"started_at"`
	EndedAt   time.Time     `json:"ended_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Run finds the first file in opts.Dir with the language extension, reads it
// once and executes it as the main program.
//
// The returned error is nil on success, *ExitError when the program asked for
// a non-zero exit, or *Error for any runner-detected failure. The Result is
// always non-nil.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	res := &Result{
		RunID:     uuid.NewString(),
		Dir:       opts.Dir,
		Language:  opts.Language.Name,
		StartedAt: time.Now(),
	}
	err := run(ctx, opts, res)
	res.finish(err)

	slog.Debug("run finished", "run", res.RunID, "state", res.Status, "exit_code", res.ExitCode, "duration", res.Duration)
	return res, err
}

func run(ctx context.Context, opts Options, res *Result) error {
	path, err := LocateWait(ctx, opts.Dir, opts.Language, opts.Wait)
	if err != nil {
		return err
	}
	res.File = filepath.Base(path)

	prog, err := ReadProgram(path, opts.MaxSourceBytes)
	if err != nil {
		return err
	}
	res.Bytes = prog.Size()

	return execute(ctx, opts.Language, prog, execOptions{
		Timeout:     opts.Timeout,
		IdleTimeout: opts.IdleTimeout,
		Stdin:       opts.Stdin,
		Stdout:      opts.Stdout,
		Stderr:      opts.Stderr,
	})
}

func (r *Result) finish(err error) {
	r.EndedAt = time.Now()
	r.Duration = r.EndedAt.Sub(r.StartedAt)

	var exitErr *ExitError
	var runErr *Error
	switch {
	case err == nil:
		r.State = StateCompleted
	case errors.As(err, &exitErr):
		r.State = StateExited
		r.ExitCode = exitErr.Code
	case errors.As(err, &runErr):
		r.State = StateFailed
		r.ExitCode = 1
		r.Kind = runErr.Kind.String()
		r.Error = runErr.Msg
	default:
		r.State = StateFailed
		r.ExitCode = 1
		r.Error = err.Error()
	}
	r.Status = r.State.String()
}
