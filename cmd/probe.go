package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/lepinkainen/audioconcat/audio"
	"github.com/lepinkainen/audioconcat/mixer"
	"github.com/lepinkainen/audioconcat/types"
	"github.com/lepinkainen/audioconcat/ui"
)

// ProbeCmd reports format and length of audio files and the length the
// combined output would have
type ProbeCmd struct {
	Files []string `arg:"" name:"files" help:"Audio files to inspect" type:"existingfile"`
	Delay string   `help:"Seconds of silence between clips, used for the combined length" default:"0"`
}

// Run prints one line per file followed by the combined length
func (cmd *ProbeCmd) Run(appCtx *types.AppContext) error {
	return cmd.run(appCtx.Writer())
}

func (cmd *ProbeCmd) run(out io.Writer) error {
	delay, err := mixer.ParseDelay(cmd.Delay)
	if err != nil {
		return err
	}

	var total time.Duration
	readable, failed := 0, 0
	for _, file := range cmd.Files {
		info, err := audio.Probe(file)
		if err != nil {
			fmt.Fprintf(out, "%s\n", ui.ErrorStyle.Render(fmt.Sprintf("❌ %v", err)))
			failed++
			continue
		}
		fmt.Fprintf(out, "🎵 %s  %s  %d Hz  %d ch\n",
			file, formatDuration(info.Duration), int(info.Format.SampleRate), info.Format.NumChannels)
		total += info.Duration
		readable++
	}

	if readable > 1 {
		total += time.Duration(readable-1) * delay
	}
	fmt.Fprintf(out, "\n%s\n", ui.InfoStyle.Render(fmt.Sprintf("Combined: %s (%d files, %s gap)", formatDuration(total), readable, formatDuration(delay))))

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be read", failed, len(cmd.Files))
	}
	return nil
}

// formatDuration renders d as m:ss.mmm, or h:mm:ss.mmm for long mixes
func formatDuration(d time.Duration) string {
	d = d.Round(time.Millisecond)
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	s := int(d % time.Minute / time.Second)
	ms := int(d % time.Second / time.Millisecond)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d.%03d", h, m, s, ms)
	}
	return fmt.Sprintf("%d:%02d.%03d", m, s, ms)
}
