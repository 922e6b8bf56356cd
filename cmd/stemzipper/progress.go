package main

import (
	"fmt"
	"io"

	"github.com/schollz/progressbar/v3"

	"stemzipper/internal/i18n"
	"stemzipper/internal/workflow"
)

// progressReporter renders workflow events as a progress bar on terminals
// and as one status line per step otherwise.
type progressReporter struct {
	out         io.Writer
	tr          *i18n.Translator
	interactive bool
	bar         *progressbar.ProgressBar
	started     bool
}

func newProgressReporter(out io.Writer, tr *i18n.Translator, interactive bool) *progressReporter {
	return &progressReporter{out: out, tr: tr, interactive: interactive}
}

func (p *progressReporter) handle(event workflow.Event) {
	switch event.Stage {
	case workflow.StageSplitting:
		fmt.Fprintln(p.out, p.tr.T("status_splitting", i18n.Params{"name": event.File}))
	case workflow.StagePacking:
		if !p.started {
			p.started = true
			if !p.interactive {
				fmt.Fprintln(p.out, p.tr.T("now_packing", nil))
			}
		}
		if !p.interactive {
			fmt.Fprintln(p.out, p.tr.T("status_packing_percent", i18n.Params{
				"name":    event.Archive,
				"percent": int(event.Percent),
			}))
			return
		}
		if p.bar == nil {
			p.bar = progressbar.NewOptions(event.Total,
				progressbar.OptionSetWriter(p.out),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
				progressbar.OptionClearOnFinish(),
			)
		}
		p.bar.Describe(p.tr.T("status_packing", i18n.Params{"name": event.Archive}))
		_ = p.bar.Set(event.Current)
	case workflow.StageDone:
		if p.bar != nil {
			_ = p.bar.Finish()
		}
		if p.started {
			fmt.Fprintln(p.out, p.tr.T("status_done", nil))
		}
	}
}
