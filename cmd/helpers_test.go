package cmd

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/lepinkainen/audioconcat/audio"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

// writeTone writes a constant stereo WAV of length d and returns its path
func writeTone(t *testing.T, dir, name string, d time.Duration, v float64) string {
	t.Helper()
	format := beep.Format{SampleRate: 8000, NumChannels: 2, Precision: 2}
	samples := make([][2]float64, format.SampleRate.N(d))
	for i := range samples {
		samples[i] = [2]float64{v, -v}
	}
	path := filepath.Join(dir, name)
	if err := audio.Encode(&audio.Clip{Path: path, Format: format, Samples: samples}, path, audio.FormatWAV); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}
