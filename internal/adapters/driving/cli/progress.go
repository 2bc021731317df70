package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"

	"github.com/custodia-labs/ncfp/internal/core/ports/driven"
)

// Ensure ProgressBar implements the interface.
var _ driven.ProgressReporter = (*ProgressBar)(nil)

const (
	defaultBarWidth = 40
	taskColumn      = 24
)

// ProgressBar renders one progress bar per task on a single terminal line.
type ProgressBar struct {
	mu    sync.Mutex
	out   io.Writer
	bar   progress.Model
	task  string
	total int
	done  int
}

// NewProgressBar creates a progress bar writing to w.
func NewProgressBar(w io.Writer) *ProgressBar {
	width := defaultBarWidth
	if f, ok := w.(*os.File); ok {
		if cols, _, err := term.GetSize(int(f.Fd())); err == nil && cols-taskColumn-20 < width {
			width = max(cols-taskColumn-20, 10)
		}
	}
	return &ProgressBar{
		out: w,
		bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(width)),
	}
}

// Start begins a new task. Tasks with no items are not drawn.
func (p *ProgressBar) Start(task string, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.task = task
	p.total = total
	p.done = 0
	p.render()
}

// Advance records n completed items.
func (p *ProgressBar) Advance(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = min(p.done+n, p.total)
	p.render()
}

// Done finishes the current line.
func (p *ProgressBar) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.total > 0 {
		fmt.Fprintln(p.out)
	}
	p.total = 0
}

func (p *ProgressBar) render() {
	if p.total == 0 {
		return
	}
	percent := float64(p.done) / float64(p.total)
	fmt.Fprintf(p.out, "\r%-*s %s %d/%d", taskColumn, p.task, p.bar.ViewAs(percent), p.done, p.total)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
