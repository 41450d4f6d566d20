package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coderun/internal/lang"
	"github.com/ppiankov/coderun/internal/reporter"
	"github.com/ppiankov/coderun/internal/runner"
)

const checkTimeout = 10 * time.Second

func newCheckCmd() *cobra.Command {
	var (
		language string
		all      bool
	)

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Run a hello-world program through the interpreter to verify the setup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("lang") {
				s.Language = language
			}

			var targets []lang.Language
			if all {
				for _, l := range lang.All() {
					targets = append(targets, l.WithInterpreter(s.Interpreter(l.Name)))
				}
			} else {
				l, err := s.ResolveLanguage()
				if err != nil {
					return err
				}
				targets = append(targets, l)
			}

			out := cmd.OutOrStdout()
			rep := reporter.NewTextReporter(out)
			failed := 0
			for _, l := range targets {
				err := checkLanguage(cmd, l)
				rep.PrintCheck(l, err)
				if err != nil {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d interpreter checks failed", failed, len(targets))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&language, "lang", lang.Default, "language to check")
	cmd.Flags().BoolVar(&all, "all", false, "check every supported language")

	return cmd
}

// checkLanguage writes the language's hello program to a scratch directory and
// runs it through the same path a real run takes.
func checkLanguage(cmd *cobra.Command, l lang.Language) error {
	dir, err := os.MkdirTemp("", "coderun-check-")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer func() { _ = os.RemoveAll(dir) }()

	if err := os.WriteFile(filepath.Join(dir, "hello"+l.Extension), []byte(l.Hello+"\n"), 0o644); err != nil {
		return fmt.Errorf("write hello program: %w", err)
	}

	var stdout bytes.Buffer
	res, err := runner.Run(cmd.Context(), runner.Options{
		Dir:      dir,
		Language: l,
		Timeout:  checkTimeout,
		Stdin:    strings.NewReader(""),
		Stdout:   &stdout,
		Stderr:   io.Discard,
	})
	if err != nil {
		return err
	}
	slog.Debug("check finished", "language", l.Name, "duration", res.Duration)

	want := fmt.Sprintf("coderun: %s ok", l.Name)
	if got := strings.TrimSpace(stdout.String()); got != want {
		return fmt.Errorf("unexpected output %q", got)
	}
	return nil
}
