package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Lipgloss styles used across the CLI output.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ff9e64"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#7aa2f7")).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7dcfff"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#9ece6a"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#565f89"))
)

// table renders rows of label/value cells inside a titled panel.
func table(title string, header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(title))
	sb.WriteByte('\n')
	for i, h := range header {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("%-*s  ", widths[i], h)))
	}
	for _, row := range rows {
		sb.WriteByte('\n')
		for i, cell := range row {
			style := valueStyle
			if i == 0 {
				style = labelStyle
			}
			sb.WriteString(style.Render(fmt.Sprintf("%-*s", widths[i], cell)))
			sb.WriteString("  ")
		}
	}
	return panelStyle.Render(sb.String())
}

func formatFloat(v float64) string {
	return fmt.Sprintf("%+.8f", v)
}
