package cmd

import (
	"fmt"
	"io"

	"github.com/lepinkainen/audioconcat/audio"
	"github.com/lepinkainen/audioconcat/types"
	"github.com/lepinkainen/audioconcat/ui"
	"github.com/lepinkainen/audioconcat/utils"
)

// FormatsCmd lists the audio formats that can be read and written
type FormatsCmd struct{}

// Run prints every supported format and whether writing it needs ffmpeg
func (cmd *FormatsCmd) Run(appCtx *types.AppContext) error {
	return cmd.run(appCtx.Writer())
}

func (cmd *FormatsCmd) run(out io.Writer) error {
	ffmpegErr := utils.ValidateFFmpegDependencies()

	fmt.Fprintln(out, ui.HeaderStyle.Render("Supported formats"))
	for _, f := range audio.SupportedFormats {
		note := "read and write"
		if audio.NeedsTranscode(f) {
			if ffmpegErr != nil {
				note = "read only, writing needs ffmpeg"
			} else {
				note = "read and write (via ffmpeg)"
			}
		}
		fmt.Fprintf(out, "  %-5s %s\n", f, note)
	}

	if ffmpegErr != nil {
		fmt.Fprintf(out, "\n%s\n", ui.InfoStyle.Render(ffmpegErr.Error()))
	}
	return nil
}
