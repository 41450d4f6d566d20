package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ppiankov/coderun/internal/config"
	"github.com/ppiankov/coderun/internal/journal"
	"github.com/ppiankov/coderun/internal/lang"
	"github.com/ppiankov/coderun/internal/reporter"
	"github.com/ppiankov/coderun/internal/runner"
)

type runFlags struct {
	dir            string
	language       string
	interpreter    string
	timeout        time.Duration
	idleTimeout    time.Duration
	wait           time.Duration
	maxSourceBytes int64
	journal        string
	report         string
}

func (f *runFlags) register(fs *pflag.FlagSet) {
	def := config.Defaults()
	fs.StringVar(&f.dir, "dir", def.Dir, "directory holding the program")
	fs.StringVar(&f.language, "lang", def.Language, "language of the program (python, javascript, ruby, perl, shell)")
	fs.StringVar(&f.interpreter, "interpreter", "", "interpreter binary for the selected language")
	fs.DurationVar(&f.timeout, "timeout", 0, "kill the program after this duration (0 = no limit)")
	fs.DurationVar(&f.idleTimeout, "idle-timeout", 0, "kill the program after no stdout for this duration (0 = disabled)")
	fs.DurationVar(&f.wait, "wait", 0, "wait up to this long for the directory and a source file to appear")
	fs.Int64Var(&f.maxSourceBytes, "max-source-bytes", 0, "refuse programs larger than this (0 = unlimited)")
	fs.StringVar(&f.journal, "journal", "", "record the run in this SQLite journal")
	fs.StringVar(&f.report, "report", "", "write a JSON run report to this path")
}

// apply overrides settings with flags the user set explicitly.
func (f *runFlags) apply(cmd *cobra.Command, s *config.Settings) {
	flags := cmd.Flags()
	if flags.Changed("dir") {
		s.Dir = f.dir
	}
	if flags.Changed("lang") {
		s.Language = f.language
	}
	if flags.Changed("timeout") {
		s.Timeout = f.timeout
	}
	if flags.Changed("idle-timeout") {
		s.IdleTimeout = f.idleTimeout
	}
	if flags.Changed("wait") {
		s.Wait = f.wait
	}
	if flags.Changed("max-source-bytes") {
		s.MaxSourceBytes = f.maxSourceBytes
	}
	if flags.Changed("journal") {
		s.Journal = f.journal
	}
	if flags.Changed("interpreter") {
		if s.Interpreters == nil {
			s.Interpreters = make(map[string]string)
		}
		key := s.Language
		if l, err := lang.Lookup(key); err == nil {
			key = l.Name
		}
		s.Interpreters[key] = f.interpreter
	}
}

func newRunCmd() *cobra.Command {
	var rf runFlags

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the first matching source file (default command)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, &rf)
		},
	}
	rf.register(cmd.Flags())

	return cmd
}

func runProgram(cmd *cobra.Command, rf *runFlags) error {
	s, err := loadSettings()
	if err != nil {
		return err
	}
	rf.apply(cmd, s)
	if err := s.Validate(); err != nil {
		return err
	}
	l, err := s.ResolveLanguage()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var store *journal.Store
	if s.Journal != "" {
		store, err = journal.Open(s.Journal)
		if err != nil {
			slog.Warn("journal unavailable, run will not be recorded", "path", s.Journal, "error", err)
		} else {
			defer func() { _ = store.Close() }()
		}
	}

	slog.Debug("starting run", "dir", s.Dir, "language", l.Name, "interpreter", l.Interpreter)

	res, runErr := runner.Run(ctx, runner.Options{
		Dir:            s.Dir,
		Language:       l,
		Timeout:        s.Timeout,
		IdleTimeout:    s.IdleTimeout,
		Wait:           s.Wait,
		MaxSourceBytes: s.MaxSourceBytes,
		Stdin:          cmd.InOrStdin(),
		Stdout:         cmd.OutOrStdout(),
		Stderr:         cmd.ErrOrStderr(),
	})

	if store != nil {
		if err := store.Record(context.WithoutCancel(ctx), res); err != nil {
			slog.Warn("failed to journal run", "run", res.RunID, "error", err)
		}
	}
	if rf.report != "" {
		if err := reporter.WriteJSONReport(res, rf.report); err != nil {
			slog.Warn("failed to write report", "path", rf.report, "error", err)
		}
	}

	return runErr
}
