package utils

import (
	"fmt"
	"io"
	"os"
)

// CopyFile copies sourcePath to destPath, replacing destPath if it exists.
// A partially written destination is removed on failure.
func CopyFile(sourcePath, destPath string) (err error) {
	sourceFile, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("failed to open source file %s: %w", sourcePath, err)
	}
	defer sourceFile.Close()

	destFile, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file %s: %w", destPath, err)
	}
	defer func() {
		if closeErr := destFile.Close(); err == nil && closeErr != nil {
			err = fmt.Errorf("failed to close destination file %s: %w", destPath, closeErr)
		}
		if err != nil {
			_ = os.Remove(destPath)
		}
	}()

	if _, err := io.Copy(destFile, sourceFile); err != nil {
		return fmt.Errorf("failed to copy file content from %s to %s: %w", sourcePath, destPath, err)
	}

	return nil
}

// MoveFile moves a file, falling back to copy and delete when a rename is not
// possible (for example across filesystems). The destination directory must
// already exist. If the move fails the source is left in place.
func MoveFile(sourcePath, destPath string) error {
	renameErr := os.Rename(sourcePath, destPath)
	if renameErr == nil {
		return nil
	}

	if err := CopyFile(sourcePath, destPath); err != nil {
		return fmt.Errorf("failed to move file %s to %s (rename failed: %v): %w", sourcePath, destPath, renameErr, err)
	}

	if err := os.Remove(sourcePath); err != nil {
		return fmt.Errorf("file copied from %s to %s, but failed to remove the original: %w", sourcePath, destPath, err)
	}

	return nil
}
