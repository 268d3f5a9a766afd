package mixer

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/lepinkainen/audioconcat/audio"
)

// Request is everything a Task needs for one run. Either Files or
// Directory selects the inputs; Files wins when both are set.
type Request struct {
	Files         []string
	Directory     string
	OutputDir     string
	Filename      string
	Format        audio.OutputFormat
	Order         audio.Order
	Delay         time.Duration
	WriteToSource bool
}

// Validate checks the fields that can be checked without touching the disk
func (r Request) Validate() error {
	if strings.TrimSpace(r.Filename) == "" {
		return invalid("filename", "must not be empty")
	}
	if r.Delay < 0 {
		return invalid("delay", "must not be negative")
	}
	if r.Delay > audio.MaxDelay {
		return invalid("delay", "%v is longer than the %v maximum", r.Delay, audio.MaxDelay)
	}
	if _, err := audio.ParseFormat(string(r.Format)); err != nil {
		return invalid("format", "%v", err)
	}
	if r.Order != audio.Sequential && r.Order != audio.Random {
		return invalid("order", "unknown order %v", r.Order)
	}
	if len(r.Files) == 0 && strings.TrimSpace(r.Directory) == "" {
		return invalid("input", "select input files or a directory")
	}
	return nil
}

// Inputs resolves the list of files to join, before any shuffle
func (r Request) Inputs() ([]string, error) {
	if len(r.Files) > 0 {
		return slices.Clone(r.Files), nil
	}
	return audio.ResolveDirectory(r.Directory)
}

// SourceDirectory is the directory the inputs come from: the selected
// directory, or the directory of the first explicit file
func (r Request) SourceDirectory() string {
	if len(r.Files) > 0 {
		return filepath.Dir(r.Files[0])
	}
	return r.Directory
}

// OutputName is the output file name without a directory
func (r Request) OutputName() string {
	return strings.TrimSpace(r.Filename) + "." + string(r.Format)
}

// StagingPath is where the encoder writes. Without WriteToSource this is
// also the final output path.
func (r Request) StagingPath() string {
	dir := r.OutputDir
	if dir == "" {
		if r.WriteToSource {
			dir = os.TempDir()
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, r.OutputName())
}

// OutputPath is where the finished file ends up
func (r Request) OutputPath() string {
	if r.WriteToSource {
		return filepath.Join(r.SourceDirectory(), r.OutputName())
	}
	return r.StagingPath()
}

// Event is sent on the channel returned by Task.Start. A run produces zero or
// more Progress events followed by exactly one of Completed, Failed or Canceled.
type Event interface {
	event()
}

// Progress reports the share of inputs folded into the output, 0-100
type Progress struct {
	Percent int
}

// Completed is the terminal event of a successful run
type Completed struct {
	OutputPath string
}

// Failed is the terminal event of a run that hit an error
type Failed struct {
	Err error
}

// Canceled is the terminal event of a run stopped by Cancel
type Canceled struct{}

func (Progress) event()  {}
func (Completed) event() {}
func (Failed) event()    {}
func (Canceled) event()  {}

// Result summarizes a finished run
type Result struct {
	OutputPath string
	Err        error
}

// OK reports whether the run produced an output file
func (r Result) OK() bool {
	return r.Err == nil
}

// Wait drains events until the channel closes and returns the outcome.
// onProgress, if set, is called for every Progress event.
func Wait(events <-chan Event, onProgress func(percent int)) Result {
	var res Result
	for ev := range events {
		switch e := ev.(type) {
		case Progress:
			if onProgress != nil {
				onProgress(e.Percent)
			}
		case Completed:
			res = Result{OutputPath: e.OutputPath}
		case Failed:
			res = Result{Err: e.Err}
		case Canceled:
			res = Result{Err: ErrCanceled}
		}
	}
	return res
}
