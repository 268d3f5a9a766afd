package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// IsAudioFile checks if the given file extension is one of the supported audio formats
func IsAudioFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path)) // handle cases where extension is upper case
	if ext == "" {
		return false
	}
	for _, f := range SupportedFormats {
		if ext == "."+string(f) {
			return true
		}
	}
	return false
}

// ResolveDirectory lists the supported audio files directly inside directory,
// in directory-listing order. Subdirectories are not scanned.
func ResolveDirectory(directory string) ([]string, error) {
	fi, err := os.Stat(directory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
	}
	if !fi.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNoInput, directory)
	}

	entries, err := os.ReadDir(directory)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoInput, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !IsAudioFile(entry.Name()) {
			continue
		}
		files = append(files, filepath.Join(directory, entry.Name()))
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("%w: no supported audio files in %s", ErrNoInput, directory)
	}
	return files, nil
}
