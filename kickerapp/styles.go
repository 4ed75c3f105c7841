// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package kickerapp

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// League palette
const (
	colorNavy   lipgloss.Color = "#161E6D"
	colorGreen  lipgloss.Color = "#a6e3a1"
	colorRed    lipgloss.Color = "#f38ba8"
	colorYellow lipgloss.Color = "#f9e2af"
	colorText   lipgloss.Color = "#cdd6f4"
	colorMuted  lipgloss.Color = "#7f849c"
	colorLink   lipgloss.Color = "#89b4fa"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorText).Background(colorNavy).Padding(0, 1)
	sectionStyle = lipgloss.NewStyle().Bold(true).Foreground(colorYellow).MarginTop(1)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	winStyle     = lipgloss.NewStyle().Foreground(colorGreen)
	lossStyle    = lipgloss.NewStyle().Foreground(colorRed)
	linkStyle    = lipgloss.NewStyle().Foreground(colorLink).Underline(true)
	headerCell   = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

func title(s string) string {
	return titleStyle.Render(s)
}

func section(s string) string {
	return sectionStyle.Render(s)
}

func muted(s string) string {
	return mutedStyle.Render(s)
}

// linkLabel renders a followable link with its index, e.g. "[2] alice".
func linkLabel(index int, label string) string {
	return mutedStyle.Render("["+strconv.Itoa(index)+"]") + " " + linkStyle.Render(label)
}

// table lays rows out in padded columns; the first row is the header.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			style := lipgloss.NewStyle().Width(widths[i] + 2)
			if r == 0 {
				style = headerCell.Width(widths[i] + 2)
			}
			cells[i] = style.Render(cell)
		}
		b.WriteString(strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, cells...), " "))
		if r < len(rows)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func join(parts ...string) string {
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}
