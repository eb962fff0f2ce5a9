package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// statusKind classifies a status line so the console can pick a severity
// label and color for it.
type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusKinds = [...]struct {
	label string
	color string
}{
	statusInfo:  {label: "INFO", color: ansiBlue},
	statusOK:    {label: "OK", color: ansiGreen},
	statusWarn:  {label: "WARN", color: ansiYellow},
	statusError: {label: "ERROR", color: ansiRed},
}

// console renders clipcheck command output: status sections, labelled
// fields, and segment/queue tables. Color is enabled only when stdout is a
// terminal, so piped output stays plain.
type console struct {
	out      io.Writer
	colorize bool
}

func newConsole(cmd *cobra.Command) *console {
	out := cmd.OutOrStdout()
	return &console{out: out, colorize: isTerminal(out)}
}

func isTerminal(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// json emits v as indented JSON, bypassing all console decoration.
func (c *console) json(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *console) section(title string) {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if c.colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	fmt.Fprintln(c.out, line)
	fmt.Fprintln(c.out, rule)
}

// field prints an indented "Label: [KIND] message" status line.
func (c *console) field(label string, kind statusKind, message string) {
	statusText := "[" + statusKinds[kind].label + "]"
	if message != "" {
		statusText += " " + message
	}
	line := fmt.Sprintf("  %-14s %s", label+":", statusText)
	if c.colorize {
		line = statusKinds[kind].color + line + ansiReset
	}
	fmt.Fprintln(c.out, line)
}

func (c *console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// table renders a rounded table. numeric names the zero-based columns that
// hold counts or timings and should be right-aligned; everything else is
// left-aligned. Short rows are padded to the header width.
func (c *console) table(headers []string, rows [][]string, numeric ...int) {
	columns := len(headers)
	if columns == 0 {
		return
	}

	rightAligned := make(map[int]bool, len(numeric))
	for _, column := range numeric {
		rightAligned[column] = true
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	configs := make([]table.ColumnConfig, columns)
	for i, name := range headers {
		header[i] = name
		align := text.AlignLeft
		if rightAligned[i] {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		}
	}
	tw.AppendHeader(header)
	tw.SetColumnConfigs(configs)

	for _, row := range rows {
		cells := make(table.Row, columns)
		for i := range cells {
			if i < len(row) {
				cells[i] = row[i]
			} else {
				cells[i] = ""
			}
		}
		tw.AppendRow(cells)
	}

	fmt.Fprintln(c.out, tw.Render())
}
