package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"stemzipper/internal/config"
	"stemzipper/internal/packerr"
)

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

const (
	statusLabelWidth = 14
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := fmt.Sprintf("[%s]", statusKindLabel(kind))
	if message != "" {
		statusText += " " + message
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// warningLabel names the pipeline step a run warning came from.
func warningLabel(err error) string {
	switch {
	case errors.Is(err, packerr.ErrUnsupportedAudio), errors.Is(err, packerr.ErrSplit):
		return "channels"
	case errors.Is(err, packerr.ErrSplitterUnavailable), errors.Is(err, packerr.ErrVolumeSplit):
		return "volumes"
	case strings.HasPrefix(err.Error(), "preflight"):
		return "preflight"
	default:
		return "warning"
	}
}

func formatMB(size int64) string {
	return fmt.Sprintf("%.2f", float64(size)/config.BytesPerMB)
}

// reportColumn is one column of a summary table. Numeric columns are
// right-aligned, body and footer alike.
type reportColumn struct {
	header  string
	numeric bool
}

// reportTable collects rows for the archive, plan and history listings.
type reportTable struct {
	columns []reportColumn
	rows    []table.Row
	footer  table.Row
}

func newReportTable(columns ...reportColumn) *reportTable {
	return &reportTable{columns: columns}
}

func (t *reportTable) addRow(cells ...string) {
	t.rows = append(t.rows, t.row(cells))
}

// setTotals adds a footer row; blank cells stay empty.
func (t *reportTable) setTotals(cells ...string) {
	t.footer = t.row(cells)
}

func (t *reportTable) row(cells []string) table.Row {
	row := make(table.Row, len(t.columns))
	for i := range row {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}

func (t *reportTable) render() string {
	if len(t.columns) == 0 {
		return ""
	}
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Footer = text.FormatDefault

	header := make(table.Row, len(t.columns))
	configs := make([]table.ColumnConfig, len(t.columns))
	for i, c := range t.columns {
		header[i] = c.header
		align := text.AlignLeft
		if c.numeric {
			align = text.AlignRight
		}
		configs[i] = table.ColumnConfig{Number: i + 1, Align: align, AlignFooter: align, AlignHeader: text.AlignLeft}
	}
	tw.AppendHeader(header)
	tw.AppendRows(t.rows)
	if t.footer != nil {
		tw.AppendFooter(t.footer)
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}
