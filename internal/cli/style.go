package cli

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/aravindh-murugesan/retrysentry-go/internal/retry"
	"github.com/aravindh-murugesan/retrysentry-go/internal/workflow"
)

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	Padding(1, 5).
	MarginBottom(1).
	Align(lipgloss.Center).
	Border(lipgloss.RoundedBorder())

var (
	succeededStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	exhaustedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4672"))
	cancelledStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F5A623"))
	cellStyle      = lipgloss.NewStyle().Padding(0, 1)
)

func stateStyle(s retry.State) lipgloss.Style {
	switch s {
	case retry.StateSucceeded:
		return succeededStyle
	case retry.StateCancelled:
		return cancelledStyle
	default:
		return exhaustedStyle
	}
}

// reportRows flattens reports into table cells.
func reportRows(reports []workflow.Report) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		result := r.Value
		if !r.Succeeded() && r.Err != nil {
			result = r.Err.Error()
		}
		rows = append(rows, []string{
			r.Name,
			r.Policy,
			stateStyle(r.State).Render(r.State.String()),
			strconv.Itoa(r.Attempts),
			r.Elapsed.Round(10*time.Millisecond).String(),
			result,
		})
	}
	return rows
}

// renderReports prints a summary table of finished sessions.
func renderReports(w io.Writer, reports []workflow.Report) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4"))).
		StyleFunc(func(row, col int) lipgloss.Style { return cellStyle }).
		Headers("SESSION", "POLICY", "STATE", "ATTEMPTS", "ELAPSED", "RESULT").
		Rows(reportRows(reports)...)

	fmt.Fprintln(w, t.Render())
}
