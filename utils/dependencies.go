package utils

import (
	"fmt"
	"os/exec"
	"runtime"
)

// ffmpegBinary is looked up in PATH for compressed output formats
const ffmpegBinary = "ffmpeg"

// ValidateFFmpegDependencies checks if ffmpeg is available in PATH.
// Only runs that write mp3, flac or ogg need it.
func ValidateFFmpegDependencies() error {
	if _, err := exec.LookPath(ffmpegBinary); err != nil {
		return fmt.Errorf("%s not found in PATH, it is required for compressed output formats. %s", ffmpegBinary, getInstallationInstructions())
	}
	return nil
}

// getInstallationInstructions returns platform-specific installation instructions
func getInstallationInstructions() string {
	switch runtime.GOOS {
	case "darwin":
		return "Install with: brew install ffmpeg"
	case "linux":
		return "Install with: apt-get install ffmpeg (Ubuntu/Debian) or dnf install ffmpeg (Fedora)"
	case "windows":
		return "Download from https://ffmpeg.org/download.html and add to PATH, or use wav output"
	default:
		return "Download from https://ffmpeg.org/download.html"
	}
}
