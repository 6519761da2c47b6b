package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	lgtable "github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	wasteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#444444"))
)

func byteSize(n int64) string {
	return humanize.IBytes(uint64(max(n, 0)))
}

func percent(part, whole int64) string {
	if whole == 0 {
		return "0%"
	}
	return strconv.FormatFloat(float64(part)*100/float64(whole), 'f', 1, 64) + "%"
}

// summary is the one-line description of an entry.
func summary(e entry) string {
	line := nameStyle.Render(e.name) + "  " +
		byteSize(e.size) + " → " + byteSize(e.noPadding)
	if w := e.wasted(); w > 0 {
		line += "  " + wasteStyle.Render(fmt.Sprintf("(%s padding, %s)", byteSize(w), percent(w, e.size)))
	}
	return line
}

// fieldTable renders the per-field placement of e.
func fieldTable(e entry) string {
	rows := make([][]string, len(e.fields))
	for i, f := range e.fields {
		rows[i] = []string{
			f.name,
			typeStyle.Render(f.typ),
			strconv.FormatInt(f.offset, 10),
			strconv.FormatInt(f.size, 10),
			padding(f.padding),
		}
	}
	return lgtable.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("FIELD", "TYPE", "OFFSET", "SIZE", "PAD").
		Rows(rows...).
		String()
}

func padding(n int64) string {
	if n == 0 {
		return "-"
	}
	return wasteStyle.Render(strconv.FormatInt(n, 10))
}

// report writes every entry followed by a total.
func report(w io.Writer, title string, entries []entry) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("nopad"))
	b.WriteString(" ")
	b.WriteString(title)
	b.WriteString("\n\n")

	var size, noPadding int64
	for _, e := range entries {
		b.WriteString(summary(e))
		b.WriteString("\n")
		b.WriteString(fieldTable(e))
		b.WriteString("\n\n")
		size += e.size
		noPadding += e.noPadding
	}

	b.WriteString(fmt.Sprintf("%s types, %s of %s is padding (%s)\n",
		humanize.Comma(int64(len(entries))),
		byteSize(size-noPadding),
		byteSize(size),
		percent(size-noPadding, size)))

	_, err := io.WriteString(w, b.String())
	return err
}
