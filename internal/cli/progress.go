package cli

import (
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// ProgressReporter follows the packages of a pass
type ProgressReporter interface {
	OnPassStart(packages int)
	OnPackageDone(dir string)
	OnPassDone()
}

type noProgress struct{}

func (noProgress) OnPassStart(int)      {}
func (noProgress) OnPackageDone(string) {}
func (noProgress) OnPassDone()          {}

// BarProgress draws a progress bar over the packages of a pass
type BarProgress struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

// NewBarProgress creates a progress bar reporter writing to out
func NewBarProgress(out io.Writer) *BarProgress {
	return &BarProgress{out: out}
}

func (p *BarProgress) OnPassStart(packages int) {
	p.bar = progressbar.NewOptions(packages,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription("Generating wrappers"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (p *BarProgress) OnPackageDone(string) {
	if p.bar != nil {
		p.bar.Add(1)
	}
}

func (p *BarProgress) OnPassDone() {
	if p.bar != nil {
		p.bar.Finish()
		p.bar = nil
	}
}
