package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/stretchr/testify/require"
)

const testRate = 8000

// sampleTolerance is half a 16-bit step either side, the most rounding can move a sample
const sampleTolerance = 1.0 / 32768

func testFormat(rate int) beep.Format {
	return beep.Format{SampleRate: beep.SampleRate(rate), NumChannels: 2, Precision: 2}
}

// constClip returns a clip of length d where every sample equals v
func constClip(rate int, d time.Duration, v float64) *Clip {
	format := testFormat(rate)
	samples := make([][2]float64, format.SampleRate.N(d))
	for i := range samples {
		samples[i] = [2]float64{v, -v}
	}
	return &Clip{Format: format, Samples: samples}
}

// writeTestWAV writes clip as a 16-bit WAV under dir and returns its path
func writeTestWAV(t *testing.T, dir, name string, clip *Clip) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, writeWAV(clip, path))
	return path
}

// writeRawWAV writes a canonical PCM WAV around data without going through
// this package's encoder, the way a recorder or another tool would
func writeRawWAV(t *testing.T, path string, rate, channels, bits int, data []byte) {
	t.Helper()
	frameSize := channels * bits / 8
	header := make([]byte, 44)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(data)))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(rate*frameSize))
	binary.LittleEndian.PutUint16(header[32:34], uint16(frameSize))
	binary.LittleEndian.PutUint16(header[34:36], uint16(bits))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(data)))
	require.NoError(t, os.WriteFile(path, append(header, data...), 0644))
}

// pcm16 packs samples as little-endian 16-bit PCM
func pcm16(samples ...int16) []byte {
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	return data
}

// pcm24 packs samples as little-endian 24-bit PCM
func pcm24(samples ...int32) []byte {
	data := make([]byte, 0, 3*len(samples))
	for _, s := range samples {
		data = append(data, byte(s), byte(s>>8), byte(s>>16))
	}
	return data
}

// wavFile is the part of a WAV header the tests look at, plus the samples
type wavFile struct {
	channels int
	rate     int
	bits     int
	data     []byte
}

// readWAV walks the RIFF chunks of path and returns its format and data
func readWAV(t *testing.T, path string) wavFile {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(raw), 12)
	require.Equal(t, "RIFF", string(raw[0:4]))
	require.Equal(t, "WAVE", string(raw[8:12]))

	var w wavFile
	for pos := 12; pos+8 <= len(raw); {
		id := string(raw[pos : pos+4])
		size := int(binary.LittleEndian.Uint32(raw[pos+4 : pos+8]))
		body := raw[pos+8 : min(pos+8+size, len(raw))]
		switch id {
		case "fmt ":
			w.channels = int(binary.LittleEndian.Uint16(body[2:4]))
			w.rate = int(binary.LittleEndian.Uint32(body[4:8]))
			w.bits = int(binary.LittleEndian.Uint16(body[14:16]))
		case "data":
			w.data = body
		}
		pos += 8 + size + size%2
	}
	require.NotZero(t, w.bits, "no fmt chunk in %s", path)
	return w
}
