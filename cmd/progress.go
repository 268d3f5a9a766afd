package cmd

import (
	"fmt"
	"io"

	"github.com/lepinkainen/audioconcat/mixer"
	"github.com/schollz/progressbar/v3"
)

// renderProgress draws a progress bar for a running task on w and returns
// the outcome once the task's event channel is closed
func renderProgress(events <-chan mixer.Event, w io.Writer) mixer.Result {
	bar := progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("🎵 Mixing"),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)

	res := mixer.Wait(events, func(percent int) {
		_ = bar.Set(percent)
	})
	if !res.OK() {
		_ = bar.Clear()
	}
	return res
}
