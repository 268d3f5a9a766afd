package audio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const (
	// wavHeaderSize is the size of a canonical PCM WAV header in bytes
	wavHeaderSize = 44

	// wavFormatPCM is the audio format code for uncompressed PCM
	wavFormatPCM = 1

	// defaultPrecision is used when a clip does not carry a PCM sample width
	defaultPrecision = 2
)

// fullScale is the integer magnitude that maps to 1.0 for a sample width of
// precision bytes. It matches what beep's FLAC decoder divides by, so WAV and
// FLAC inputs land on the same scale.
func fullScale(precision int) float64 {
	return float64(int64(1) << (8*precision - 1))
}

// wavScale is the divisor beep's WAV decoder uses for a sample width of
// precision bytes
func wavScale(precision int) float64 {
	return float64(int64(1)<<(8*precision) - 1)
}

// rescaleWAV moves samples read by beep's WAV decoder onto the full-scale
// convention used everywhere else. The decoder divides by 2^n-1 instead of
// 2^(n-1), which halves signed samples, and 8-bit samples are off by half a
// step. Rounding back to the stored integer first keeps the conversion exact.
func rescaleWAV(samples [][2]float64, precision int) {
	var convert func(float64) float64
	switch precision {
	case 1:
		convert = func(v float64) float64 {
			u := math.Round((v + 1) / 2 * wavScale(1))
			return (u - fullScale(1)) / fullScale(1)
		}
	case 2, 3:
		in, out := wavScale(precision), fullScale(precision)
		convert = func(v float64) float64 {
			return math.Round(v*in) / out
		}
	default:
		return
	}

	for i := range samples {
		samples[i][0] = convert(samples[i][0])
		samples[i][1] = convert(samples[i][1])
	}
}

// wavPrecision picks the sample width to write for a source width, keeping
// it when WAV supports it
func wavPrecision(precision int) int {
	switch precision {
	case 1, 2, 3:
		return precision
	}
	return defaultPrecision
}

// quantize converts a sample to its integer PCM value, clamped to the range
// a sample width of precision bytes can hold
func quantize(x float64, precision int) int64 {
	scale := fullScale(precision)
	v := math.Round(x * scale)
	if v > scale-1 {
		v = scale - 1
	}
	if v < -scale {
		v = -scale
	}
	return int64(v)
}

// putSample writes x as a little-endian PCM sample into p and returns the
// number of bytes written. 8-bit WAV is unsigned, wider samples are signed.
func putSample(p []byte, x float64, precision int) int {
	v := quantize(x, precision)
	if precision == 1 {
		p[0] = byte(v + 128)
		return 1
	}
	for i := 0; i < precision; i++ {
		p[i] = byte(v >> (8 * i))
	}
	return precision
}

// encodePCM writes clip as a canonical 44-byte header PCM WAV. Mono clips are
// written as the mean of both channels, anything else as stereo.
func encodePCM(w io.Writer, clip *Clip) error {
	channels := 2
	if clip.Format.NumChannels == 1 {
		channels = 1
	}
	precision := wavPrecision(clip.Format.Precision)
	rate := int(clip.Format.SampleRate)
	if rate <= 0 {
		return fmt.Errorf("invalid sample rate %d", rate)
	}

	frameSize := channels * precision
	dataSize := uint64(clip.Len()) * uint64(frameSize)
	// Readers, beep included, take the RIFF sizes as signed 32-bit
	if dataSize > math.MaxInt32-(wavHeaderSize-8) {
		return fmt.Errorf("%v of audio is too long for a WAV file", clip.Duration())
	}

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(wavHeaderSize-8+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(rate*frameSize))
	binary.LittleEndian.PutUint16(header[32:34], uint16(frameSize))
	binary.LittleEndian.PutUint16(header[34:36], uint16(8*precision))
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(header); err != nil {
		return err
	}

	frame := make([]byte, frameSize)
	for _, s := range clip.Samples {
		if channels == 1 {
			putSample(frame, (s[0]+s[1])/2, precision)
		} else {
			n := putSample(frame, s[0], precision)
			putSample(frame[n:], s[1], precision)
		}
		if _, err := bw.Write(frame); err != nil {
			return err
		}
	}
	return bw.Flush()
}
