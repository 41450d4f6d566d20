package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coderun/internal/config"
	"github.com/ppiankov/coderun/internal/runner"
)

var (
	verbose    bool
	configFile string
)

func NewRootCmd() *cobra.Command {
	var rf runFlags

	root := &cobra.Command{
		Use:   "coderun",
		Short: "Run the source file waiting in a code directory",
		Long: "coderun finds the first file with the language extension in the code directory " +
			"and runs it as the main program. Failures print \"Error: <message>\" and exit 1; " +
			"an exit requested by the program keeps its own status.",
		Args: cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProgram(cmd, &rf)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().StringVar(&configFile, "config", config.DefaultPath, "path to config file")
	rf.register(root.Flags())

	root.AddCommand(newRunCmd())
	root.AddCommand(newLanguagesCmd())
	root.AddCommand(newCheckCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newConfigCmd())
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs root and maps the outcome to a process exit status.
// A program-requested exit keeps its status and prints nothing; every other
// error becomes a single "Error: <message>" line and status 1.
func Execute(ctx context.Context, root *cobra.Command) int {
	err := root.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *runner.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(root.ErrOrStderr(), "Error: %v\n", err)
	return 1
}

func loadSettings() (*config.Settings, error) {
	s, err := config.LoadSettings(configFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return s, nil
}
