package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/ppiankov/coderun/internal/journal"
	"github.com/ppiankov/coderun/internal/lang"
)

// TextReporter writes human-readable tables to a writer. Styling follows the
// writer's color profile, so pipes, buffers and NO_COLOR get plain text.
type TextReporter struct {
	w  io.Writer
	re *lipgloss.Renderer

	header lipgloss.Style
	ok     lipgloss.Style
	fail   lipgloss.Style
	warn   lipgloss.Style
	dim    lipgloss.Style
}

// NewTextReporter creates a text reporter. If w is nil, defaults to os.Stdout.
func NewTextReporter(w io.Writer) *TextReporter {
	if w == nil {
		w = os.Stdout
	}
	re := lipgloss.NewRenderer(w)
	return &TextReporter{
		w:      w,
		re:     re,
		header: re.NewStyle().Bold(true),
		ok:     re.NewStyle().Foreground(lipgloss.Color("10")), // green
		fail:   re.NewStyle().Foreground(lipgloss.Color("9")),  // red
		warn:   re.NewStyle().Foreground(lipgloss.Color("11")), // yellow
		dim:    re.NewStyle().Foreground(lipgloss.Color("8")),  // gray
	}
}

// LanguageRow is one line of the languages table.
type LanguageRow struct {
	Language lang.Language
	Path     string // resolved interpreter path, empty when not on PATH
}

// PrintLanguages writes the supported languages and interpreter availability.
func (r *TextReporter) PrintLanguages(rows []LanguageRow) {
	cells := make([][]string, 0, len(rows))
	for _, row := range rows {
		l := row.Language
		status := r.fail.Render("missing")
		if row.Path != "" {
			status = r.ok.Render(row.Path)
		}
		cells = append(cells, []string{l.Name, l.Extension, l.Interpreter, status})
	}
	r.table([]string{"LANGUAGE", "EXT", "INTERPRETER", "PATH"}, cells)
}

// PrintHistory writes journaled runs, newest first.
func (r *TextReporter) PrintHistory(recs []journal.Record) {
	if len(recs) == 0 {
		fmt.Fprintln(r.w, "no runs recorded")
		return
	}
	cells := make([][]string, 0, len(recs))
	for _, rec := range recs {
		detail := rec.Error
		if detail == "" && rec.State == "EXITED" {
			detail = fmt.Sprintf("exit %d", rec.ExitCode)
		}
		cells = append(cells, []string{
			r.dim.Render(shortID(rec.RunID)),
			r.stateStyle(rec.State).Render(rec.State),
			humanize.Time(rec.StartedAt),
			rec.Duration.Round(time.Millisecond).String(),
			fileLabel(rec),
			r.dim.Render(humanize.Bytes(uint64(rec.Bytes))),
			truncate(detail, 60),
		})
	}
	r.table([]string{"RUN", "STATE", "STARTED", "DURATION", "FILE", "SIZE", "DETAIL"}, cells)
}

// PrintRun writes the details of a single journaled run.
func (r *TextReporter) PrintRun(rec journal.Record) {
	fields := []struct{ k, v string }{
		{"run", rec.RunID},
		{"state", r.stateStyle(rec.State).Render(rec.State)},
		{"exit code", fmt.Sprint(rec.ExitCode)},
		{"language", rec.Language},
		{"file", fileLabel(rec)},
		{"size", humanize.Bytes(uint64(rec.Bytes))},
		{"started", rec.StartedAt.Local().Format(time.RFC3339)},
		{"duration", rec.Duration.Round(time.Millisecond).String()},
	}
	if rec.Kind != "" {
		fields = append(fields, struct{ k, v string }{"kind", rec.Kind})
	}
	if rec.Error != "" {
		fields = append(fields, struct{ k, v string }{"error", rec.Error})
	}
	for _, f := range fields {
		fmt.Fprintf(r.w, "%-10s %s\n", f.k+":", f.v)
	}
}

// PrintCheck writes one interpreter self-test outcome.
func (r *TextReporter) PrintCheck(l lang.Language, err error) {
	if err == nil {
		fmt.Fprintf(r.w, "%s %s (%s)\n", r.ok.Render("ok  "), l.Name, l.Interpreter)
		return
	}
	fmt.Fprintf(r.w, "%s %s (%s): %v\n", r.fail.Render("FAIL"), l.Name, l.Interpreter, err)
}

func (r *TextReporter) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		BorderTop(false).
		BorderBottom(false).
		BorderLeft(false).
		BorderRight(false).
		BorderHeader(false).
		BorderColumn(false).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == len(headers)-1 {
				if row == table.HeaderRow {
					return r.header
				}
				return r.re.NewStyle()
			}
			if row == table.HeaderRow {
				return r.header.PaddingRight(2)
			}
			return r.re.NewStyle().PaddingRight(2)
		})
	fmt.Fprintln(r.w, t.String())
}

func (r *TextReporter) stateStyle(state string) lipgloss.Style {
	switch state {
	case "COMPLETED":
		return r.ok
	case "FAILED":
		return r.fail
	case "EXITED":
		return r.warn
	default:
		return r.re.NewStyle()
	}
}

func fileLabel(rec journal.Record) string {
	if rec.File == "" {
		return rec.Dir
	}
	return filepath.Join(rec.Dir, rec.File)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
