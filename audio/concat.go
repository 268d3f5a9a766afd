package audio

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/faiface/beep"
)

// resampleQuality is passed to beep.Resample when a clip's sample rate
// differs from the combined buffer's
const resampleQuality = 4

// MaxDelay is the longest silence allowed between two clips. The whole
// output is held in memory, and ten minutes of 48 kHz stereo silence is
// already close to half a gigabyte.
const MaxDelay = 10 * time.Minute

// Arrange returns the playback order for paths. Sequential keeps the given
// order; Random returns a uniformly random permutation drawn from rng
// (the global source when rng is nil). paths itself is never modified.
func Arrange(paths []string, order Order, rng *rand.Rand) []string {
	arranged := slices.Clone(paths)
	if order != Random || len(arranged) < 2 {
		return arranged
	}

	swap := func(i, j int) { arranged[i], arranged[j] = arranged[j], arranged[i] }
	if rng != nil {
		rng.Shuffle(len(arranged), swap)
	} else {
		rand.Shuffle(len(arranged), swap)
	}
	return arranged
}

// Joiner folds clips into one buffer, one at a time, separating consecutive
// clips with delay worth of silence. The first clip fixes the output format;
// later clips with another sample rate are resampled to it.
type Joiner struct {
	delay time.Duration
	out   *Clip
	count int
}

// NewJoiner creates a Joiner. A delay <= 0 inserts no silence.
func NewJoiner(delay time.Duration) *Joiner {
	return &Joiner{delay: delay}
}

// Add appends clip to the combined buffer
func (j *Joiner) Add(clip *Clip) error {
	if j.out == nil {
		j.out = &Clip{
			Format:  clip.Format,
			Samples: slices.Clone(clip.Samples),
		}
		j.count = 1
		return nil
	}

	if j.delay > 0 {
		silence, err := silenceFrames(j.out.Format.SampleRate, j.delay)
		if err != nil {
			return err
		}
		j.out.Samples = slices.Grow(j.out.Samples, silence+clip.Len())
		if j.out.Samples, err = drain(beep.Silence(silence), j.out.Samples); err != nil {
			return err
		}
	}

	if clip.Format.SampleRate == j.out.Format.SampleRate {
		j.out.Samples = append(j.out.Samples, clip.Samples...)
	} else {
		resampled := beep.Resample(resampleQuality, clip.Format.SampleRate, j.out.Format.SampleRate, clip.Streamer())
		var err error
		if j.out.Samples, err = drain(resampled, j.out.Samples); err != nil {
			return err
		}
	}

	j.count++
	return nil
}

// silenceFrames is the length of delay in frames at rate
func silenceFrames(rate beep.SampleRate, delay time.Duration) (int, error) {
	if delay > MaxDelay {
		return 0, fmt.Errorf("%w: %v is longer than %v", ErrDelayTooLong, delay, MaxDelay)
	}
	if rate <= 0 || delay > time.Duration(math.MaxInt64/int64(rate)) {
		return 0, fmt.Errorf("%w: %v at %d Hz", ErrDelayTooLong, delay, rate)
	}
	return rate.N(delay), nil
}

// Count returns how many clips have been added
func (j *Joiner) Count() int {
	return j.count
}

// Clip returns the combined buffer, or nil if nothing was added
func (j *Joiner) Clip() *Clip {
	return j.out
}

// Join concatenates clips in the given order with delay between each pair
func Join(clips []*Clip, delay time.Duration) (*Clip, error) {
	if len(clips) == 0 {
		return nil, ErrNoInput
	}
	j := NewJoiner(delay)
	for _, clip := range clips {
		if err := j.Add(clip); err != nil {
			return nil, err
		}
	}
	return j.Clip(), nil
}

// Engine decodes and joins a list of files in one call. It does not write
// to disk or report progress; see the mixer package for that.
type Engine struct {
	// Decode loads a single file; Decode from this package when nil
	Decode func(path string) (*Clip, error)
	// Rand drives Random ordering; the global source when nil
	Rand *rand.Rand
}

// Concatenate arranges paths according to order, decodes each one and
// joins them with delay of silence between consecutive clips.
func (e *Engine) Concatenate(ctx context.Context, paths []string, order Order, delay time.Duration) (*Clip, error) {
	if len(paths) == 0 {
		return nil, ErrNoInput
	}

	decode := e.Decode
	if decode == nil {
		decode = Decode
	}

	j := NewJoiner(delay)
	for _, path := range Arrange(paths, order, e.Rand) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		clip, err := decode(path)
		if err != nil {
			return nil, err
		}
		if err := j.Add(clip); err != nil {
			return nil, err
		}
	}
	return j.Clip(), nil
}
