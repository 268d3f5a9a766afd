package audio

import (
	"fmt"
	"strings"
	"time"

	"github.com/faiface/beep"
)

// OutputFormat is one of the container formats the mixer can write.
// The value doubles as the output file extension.
type OutputFormat string

const (
	FormatMP3  OutputFormat = "mp3"
	FormatWAV  OutputFormat = "wav"
	FormatFLAC OutputFormat = "flac"
	FormatOGG  OutputFormat = "ogg"
)

// SupportedFormats lists the formats accepted for both input and output,
// in the order they are offered to the user.
var SupportedFormats = []OutputFormat{FormatMP3, FormatWAV, FormatFLAC, FormatOGG}

// ParseFormat converts user input such as "MP3" or ".flac" into an OutputFormat
func ParseFormat(s string) (OutputFormat, error) {
	name := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), ".")
	for _, f := range SupportedFormats {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Order selects how the input list is arranged before joining
type Order int

const (
	Sequential Order = iota
	Random
)

func (o Order) String() string {
	switch o {
	case Sequential:
		return "sequential"
	case Random:
		return "random"
	default:
		return fmt.Sprintf("Order(%d)", int(o))
	}
}

// ParseOrder accepts "sequential" or "random", case-insensitively
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sequential":
		return Sequential, nil
	case "random":
		return Random, nil
	}
	return Sequential, fmt.Errorf("unknown order %q", s)
}

// Clip is a fully decoded piece of audio held in memory.
// Samples are stereo frames in the range [-1, 1] at Format.SampleRate.
type Clip struct {
	Path    string
	Format  beep.Format
	Samples [][2]float64
}

// Len returns the number of frames in the clip
func (c *Clip) Len() int {
	return len(c.Samples)
}

// Duration returns the playback length of the clip
func (c *Clip) Duration() time.Duration {
	return c.Format.SampleRate.D(len(c.Samples))
}

// Streamer returns a fresh beep.Streamer reading the clip from the start
func (c *Clip) Streamer() beep.Streamer {
	pos := 0
	return beep.StreamerFunc(func(samples [][2]float64) (n int, ok bool) {
		if pos >= len(c.Samples) {
			return 0, false
		}
		n = copy(samples, c.Samples[pos:])
		pos += n
		return n, true
	})
}

// Info describes an audio file without keeping its samples around
type Info struct {
	Path     string
	Format   beep.Format
	Frames   int
	Duration time.Duration
}
