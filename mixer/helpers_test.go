package mixer

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/lepinkainen/audioconcat/audio"
	"github.com/stretchr/testify/require"
)

const (
	fakeRate   = 1000
	fakeFrames = 10
)

// fakeClip returns a short clip whose samples all equal v
func fakeClip(path string, v float64) *audio.Clip {
	samples := make([][2]float64, fakeFrames)
	for i := range samples {
		samples[i] = [2]float64{v, v}
	}
	return &audio.Clip{
		Path:    path,
		Format:  beep.Format{SampleRate: fakeRate, NumChannels: 2, Precision: 2},
		Samples: samples,
	}
}

// fakeInputs returns n paths under dir and a decoder that maps the i-th path
// to a clip filled with i+1. The files themselves are never created.
func fakeInputs(dir string, n int) ([]string, Decoder) {
	paths := make([]string, n)
	values := make(map[string]float64, n)
	for i := range paths {
		paths[i] = filepath.Join(dir, string(rune('a'+i))+".wav")
		values[paths[i]] = float64(i + 1)
	}
	return paths, func(path string) (*audio.Clip, error) {
		v, ok := values[path]
		if !ok {
			return nil, &audio.DecodeError{Path: path, Err: os.ErrNotExist}
		}
		return fakeClip(path, v), nil
	}
}

// recordingEncoder writes a small placeholder file and remembers what it was given
type recordingEncoder struct {
	mu    sync.Mutex
	calls int
	path  string
	clip  *audio.Clip
}

func (e *recordingEncoder) Encode(clip *audio.Clip, path string, format audio.OutputFormat) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	e.path = path
	e.clip = clip
	return os.WriteFile(path, []byte(format), 0644)
}

func (e *recordingEncoder) Calls() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

// firstValues returns the left sample at the start of every fakeFrames block,
// skipping gap frames of silence between blocks
func firstValues(clip *audio.Clip, gap int) []float64 {
	var values []float64
	for i := 0; i < clip.Len(); i += fakeFrames + gap {
		values = append(values, clip.Samples[i][0])
	}
	return values
}

// collect reads events until the channel closes or the deadline passes
func collect(t *testing.T, events <-chan Event) []Event {
	t.Helper()
	var got []Event
	timeout := time.After(10 * time.Second)
	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatalf("event channel not closed, got %v", got)
		}
	}
}

// progressOf extracts the percentages of all Progress events
func progressOf(events []Event) []int {
	var pcts []int
	for _, ev := range events {
		if p, ok := ev.(Progress); ok {
			pcts = append(pcts, p.Percent)
		}
	}
	return pcts
}

// terminal returns the last event and checks it is the only terminal one
func terminal(t *testing.T, events []Event) Event {
	t.Helper()
	require.NotEmpty(t, events)
	count := 0
	for _, ev := range events {
		switch ev.(type) {
		case Completed, Failed, Canceled:
			count++
		}
	}
	require.Equal(t, 1, count, "expected exactly one terminal event in %v", events)
	last := events[len(events)-1]
	_, isProgress := last.(Progress)
	require.False(t, isProgress, "terminal event must come last: %v", events)
	return last
}

// writeWAV writes a constant stereo tone as a real WAV file
func writeWAV(t *testing.T, path string, rate int, d time.Duration, v float64) {
	t.Helper()
	clip := fakeClip(path, v)
	clip.Format.SampleRate = beep.SampleRate(rate)
	clip.Samples = make([][2]float64, clip.Format.SampleRate.N(d))
	for i := range clip.Samples {
		clip.Samples[i] = [2]float64{v, v}
	}
	require.NoError(t, audio.Encode(clip, path, audio.FormatWAV))
}

// writePCM16 writes interleaved 16-bit stereo samples as a plain WAV file,
// without this module's encoder, and returns the raw sample bytes
func writePCM16(t *testing.T, path string, rate int, samples ...int16) []byte {
	t.Helper()
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}

	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(data)))
	copy(header[8:16], "WAVEfmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], 2)
	binary.LittleEndian.PutUint32(header[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(rate*4))
	binary.LittleEndian.PutUint16(header[32:34], 4)
	binary.LittleEndian.PutUint16(header[34:36], 16)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(data)))

	require.NoError(t, os.WriteFile(path, append(header, data...), 0644))
	return data
}

// wavData returns the sample bytes of a WAV file with a canonical header
func wavData(t *testing.T, path string) []byte {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 44)
	require.Equal(t, "data", string(raw[36:40]), "expected a canonical 44-byte header")
	size := int(binary.LittleEndian.Uint32(raw[40:44]))
	require.Equal(t, len(raw)-44, size)
	return raw[44:]
}
