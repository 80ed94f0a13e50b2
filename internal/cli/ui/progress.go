package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ProgressBar shows how much of a known amount of work is done
type ProgressBar struct {
	writer  io.Writer
	total   int
	current int
	width   int
	message string
	noColor bool
}

// NewProgressBar creates a progress bar for total units of work
func NewProgressBar(w io.Writer, message string, total int, noColor bool) *ProgressBar {
	return &ProgressBar{
		writer:  w,
		total:   total,
		width:   30,
		message: message,
		noColor: noColor,
	}
}

// Add marks n more units as done
func (p *ProgressBar) Add(n int) {
	p.current = min(p.current+n, p.total)
	p.render()
}

// Current returns the units done so far
func (p *ProgressBar) Current() int {
	return p.current
}

// Finish completes the bar and prints a success line
func (p *ProgressBar) Finish(message string) {
	p.current = p.total
	p.render()
	if p.total > 0 {
		fmt.Fprintln(p.writer)
	}
	WriteSuccess(p.writer, message, p.noColor)
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}

	filled := p.width * p.current / p.total

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if p.noColor {
		cyan.DisableColor()
		gray.DisableColor()
	}

	var bar strings.Builder
	bar.WriteString("[")
	cyan.Fprint(&bar, strings.Repeat("█", filled))
	gray.Fprint(&bar, strings.Repeat("░", p.width-filled))
	bar.WriteString("]")

	fmt.Fprintf(p.writer, "\r%s %d/%d %s", bar.String(), p.current, p.total, p.message)
}
