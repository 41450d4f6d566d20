package cli

import (
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coderun/internal/lang"
	"github.com/ppiankov/coderun/internal/reporter"
)

func newLanguagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "languages",
		Short: "List supported languages and whether their interpreters are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}

			var rows []reporter.LanguageRow
			for _, l := range lang.All() {
				l = l.WithInterpreter(s.Interpreter(l.Name))
				path, _ := exec.LookPath(l.Interpreter)
				rows = append(rows, reporter.LanguageRow{Language: l, Path: path})
			}

			out := cmd.OutOrStdout()
			reporter.NewTextReporter(out).PrintLanguages(rows)
			return nil
		},
	}
}
