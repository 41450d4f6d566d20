package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/coderun/internal/journal"
	"github.com/ppiankov/coderun/internal/reporter"
)

func newHistoryCmd() *cobra.Command {
	var (
		journalPath string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recent runs from the journal, or one run by id prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("journal") {
				s.Journal = journalPath
			}
			if s.Journal == "" {
				return errors.New("journal is not configured (set journal in the config file or pass --journal)")
			}

			store, err := journal.Open(s.Journal)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			rep := reporter.NewTextReporter(out)

			if len(args) == 1 {
				rec, err := store.Get(cmd.Context(), args[0])
				if errors.Is(err, journal.ErrNotFound) {
					return fmt.Errorf("no run matches %q", args[0])
				}
				if err != nil {
					return err
				}
				rep.PrintRun(*rec)
				return nil
			}

			recs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("read journal: %w", err)
			}

			rep.PrintHistory(recs)
			return nil
		},
	}

	cmd.Flags().StringVar(&journalPath, "journal", "", "path to the SQLite journal")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")

	return cmd
}
