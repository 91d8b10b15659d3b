package sitediff

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"
)

var csvHeader = []string{"path", "status_a", "status_b"}

// WriteCSV writes the comparison to w: a header row, then one row per path,
// escaped per CSV convention.
func WriteCSV(w io.Writer, rows []ComparisonRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write([]string{r.Path, r.A.String(), r.B.String()}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Summary buckets the comparison for the human-readable report.
type Summary struct {
	Total       int
	Regressions []ComparisonRow // OK on A, broken or unreachable on B
	Vanished    []ComparisonRow // seen on A, never discovered on B
	Added       []ComparisonRow // never discovered on A, seen on B
	BrokenBoth  int             // broken on A and still broken on B
}

func Summarize(rows []ComparisonRow) Summary {
	s := Summary{Total: len(rows)}
	for _, r := range rows {
		switch {
		case r.A.OK() && r.B.Broken():
			s.Regressions = append(s.Regressions, r)
		case r.A.Seen && !r.B.Seen:
			s.Vanished = append(s.Vanished, r)
		case !r.A.Seen && r.B.Seen:
			s.Added = append(s.Added, r)
		case r.A.Broken() && r.B.Broken():
			s.BrokenBoth++
		}
	}
	return s
}

var (
	styleHeader   = lipgloss.NewStyle().Bold(true)
	styleOK       = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleRedirect = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	styleBroken   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	styleAbsent   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func statusStyle(s PageStatus) lipgloss.Style {
	switch {
	case !s.Seen:
		return styleAbsent
	case s.Code == StatusFetchError || s.Code >= 400:
		return styleBroken
	case s.Code >= 300:
		return styleRedirect
	default:
		return styleOK
	}
}

const maxSummaryRows = 20

// WriteSummary renders the human-readable wrap-up to w. It goes to stderr so
// stdout stays clean for the CSV.
func WriteSummary(w io.Writer, rows []ComparisonRow) {
	s := Summarize(rows)

	fmt.Fprintf(w, "\n%s\n", styleHeader.Render("comparison summary"))
	fmt.Fprintf(w, "paths: %d   regressions: %d   vanished: %d   added: %d   broken on both: %d\n",
		s.Total, len(s.Regressions), len(s.Vanished), len(s.Added), s.BrokenBoth)

	if len(s.Regressions) == 0 {
		fmt.Fprintln(w, styleOK.Render("no regressions"))
		return
	}

	headerFmt := func(format string, vals ...interface{}) string {
		return styleHeader.Render(fmt.Sprintf(format, vals...))
	}
	tbl := table.New("PATH", "SITE A", "SITE B").WithWriter(w).WithHeaderFormatter(headerFmt)
	shown := s.Regressions
	if len(shown) > maxSummaryRows {
		shown = shown[:maxSummaryRows]
	}
	for _, r := range shown {
		tbl.AddRow(r.Path,
			statusStyle(r.A).Render(r.A.String()),
			statusStyle(r.B).Render(r.B.String()))
	}
	tbl.Print()
	if extra := len(s.Regressions) - len(shown); extra > 0 {
		fmt.Fprintf(w, "... and %d more regressions\n", extra)
	}
}
