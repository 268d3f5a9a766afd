package audio

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ffmpegCodecs maps compressed output formats to the ffmpeg audio encoder used for them
var ffmpegCodecs = map[OutputFormat]string{
	FormatMP3:  "libmp3lame",
	FormatFLAC: "flac",
	FormatOGG:  "libvorbis",
}

// NeedsTranscode reports whether writing format requires ffmpeg
func NeedsTranscode(format OutputFormat) bool {
	_, ok := ffmpegCodecs[format]
	return ok
}

// Encode writes clip to path in the requested format. WAV is written
// directly; other formats go through a temporary WAV and ffmpeg.
// A failed encode leaves nothing behind at path.
func Encode(clip *Clip, path string, format OutputFormat) error {
	if format == FormatWAV {
		if err := writeWAV(clip, path); err != nil {
			return &EncodeError{Path: path, Err: err}
		}
		return nil
	}

	codec, ok := ffmpegCodecs[format]
	if !ok {
		return &EncodeError{Path: path, Err: fmt.Errorf("unsupported output format %q", format)}
	}

	tmp, err := os.CreateTemp("", "audioconcat-*.wav")
	if err != nil {
		return &EncodeError{Path: path, Err: fmt.Errorf("failed to create intermediate file: %w", err)}
	}
	tempFile := tmp.Name()
	_ = tmp.Close()
	defer func() {
		// Clean up intermediate file if it exists
		_ = os.Remove(tempFile)
	}()

	if err := writeWAV(clip, tempFile); err != nil {
		return &EncodeError{Path: path, Err: err}
	}

	cmd := exec.Command("ffmpeg",
		"-v", "error",
		"-i", tempFile,
		"-c:a", codec,
		"-y", // Overwrite output file
		path,
	)
	if output, err := cmd.CombinedOutput(); err != nil {
		_ = os.Remove(path)
		return &EncodeError{Path: path, Err: fmt.Errorf("ffmpeg failed: %w\nffmpeg output: %s", err, extractFirstLine(string(output)))}
	}

	return nil
}

// writeWAV writes clip as PCM WAV at the clip's own sample width, so a
// 24-bit source stays 24-bit. Widths WAV cannot hold fall back to 16-bit.
func writeWAV(clip *Clip, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := encodePCM(f, clip); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return err
	}
	return nil
}

// extractFirstLine extracts just the first line from a multi-line string
func extractFirstLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) != "" {
		return strings.TrimSpace(lines[0])
	}
	return "no additional information available"
}
