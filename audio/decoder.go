package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faiface/beep"
	"github.com/faiface/beep/flac"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/vorbis"
	"github.com/faiface/beep/wav"
)

// streamChunk is the number of frames pulled from a streamer per call
const streamChunk = 4096

// Decode reads an entire audio file into memory in its source format.
// The decoder is picked from the file extension.
func Decode(path string) (*Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	streamer, format, err := openStream(path, f)
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	defer func() { _ = streamer.Close() }()

	samples, err := drain(streamer, make([][2]float64, 0, streamer.Len()))
	if err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if strings.EqualFold(filepath.Ext(path), ".wav") {
		rescaleWAV(samples, format.Precision)
	}

	return &Clip{Path: path, Format: format, Samples: samples}, nil
}

// Probe reports format and length of an audio file without keeping its samples
func Probe(path string) (Info, error) {
	f, err := os.Open(path)
	if err != nil {
		return Info{}, &DecodeError{Path: path, Err: err}
	}
	defer func() { _ = f.Close() }()

	streamer, format, err := openStream(path, f)
	if err != nil {
		return Info{}, &DecodeError{Path: path, Err: err}
	}
	defer func() { _ = streamer.Close() }()

	frames := streamer.Len()
	return Info{
		Path:     path,
		Format:   format,
		Frames:   frames,
		Duration: format.SampleRate.D(frames),
	}, nil
}

func openStream(path string, f *os.File) (beep.StreamSeekCloser, beep.Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".wav":
		return wav.Decode(f)
	case ".mp3":
		return mp3.Decode(f)
	case ".flac":
		return flac.Decode(f)
	case ".ogg":
		return vorbis.Decode(f)
	}
	return nil, beep.Format{}, fmt.Errorf("unsupported audio format %q", ext)
}

// drain appends everything s produces to dst
func drain(s beep.Streamer, dst [][2]float64) ([][2]float64, error) {
	buf := make([][2]float64, streamChunk)
	for {
		n, ok := s.Stream(buf)
		dst = append(dst, buf[:n]...)
		if !ok {
			break
		}
	}
	return dst, s.Err()
}
