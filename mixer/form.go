package mixer

import (
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/lepinkainen/audioconcat/audio"
)

// Form is the raw text the user typed, before validation
type Form struct {
	Files     []string
	Directory string
	OutputDir string
	Filename  string
	Format    string
	Order     string
	Delay     string
	UseSource bool
}

// maxDelaySeconds is audio.MaxDelay as typed into the form
var maxDelaySeconds = audio.MaxDelay.Seconds()

// SplitFiles splits a typed file list on newlines and the OS path list separator
func SplitFiles(s string) []string {
	var files []string
	for _, line := range strings.Split(s, "\n") {
		for _, f := range filepath.SplitList(line) {
			if f = strings.TrimSpace(f); f != "" {
				files = append(files, f)
			}
		}
	}
	return files
}

// ParseDelay parses a delay in seconds. Empty input means no delay, and
// anything above audio.MaxDelay is rejected.
func ParseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(secs) || math.IsInf(secs, 0) {
		return 0, invalid("delay", "%q is not a number of seconds", s)
	}
	if secs < 0 {
		return 0, invalid("delay", "must not be negative")
	}
	if secs > maxDelaySeconds {
		return 0, invalid("delay", "%q is longer than the %v maximum", s, audio.MaxDelay)
	}
	return time.Duration(math.Round(secs * float64(time.Second))), nil
}

// Request validates the form and builds the immutable Request for a run
func (f Form) Request() (Request, error) {
	filename := strings.TrimSpace(f.Filename)
	if filename == "" {
		return Request{}, invalid("filename", "must not be empty")
	}

	delay, err := ParseDelay(f.Delay)
	if err != nil {
		return Request{}, err
	}

	var files []string
	for _, entry := range f.Files {
		files = append(files, SplitFiles(entry)...)
	}
	dir := strings.TrimSpace(f.Directory)
	if len(files) == 0 && dir == "" {
		return Request{}, invalid("input", "select input files or a directory")
	}

	format, err := audio.ParseFormat(f.Format)
	if err != nil {
		return Request{}, invalid("format", "%v", err)
	}

	order, err := audio.ParseOrder(f.Order)
	if err != nil {
		return Request{}, invalid("order", "%v", err)
	}

	req := Request{
		Files:         files,
		OutputDir:     strings.TrimSpace(f.OutputDir),
		Filename:      filename,
		Format:        format,
		Order:         order,
		Delay:         delay,
		WriteToSource: f.UseSource,
	}
	if len(files) == 0 {
		req.Directory = dir
	}
	return req, nil
}
