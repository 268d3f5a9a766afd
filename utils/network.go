package utils

import (
	"path/filepath"
	"strings"
)

// mountPrefixes are where network shares usually get mounted
var mountPrefixes = []string{
	"/mnt/",     // Linux NFS/SMB mounts
	"/media/",   // Linux removable/network media
	"/Volumes/", // macOS network volumes
}

// shareIndicators mark a directory as a network share when a path segment
// starts with one of them
var shareIndicators = []string{
	"nfs", "cifs", "smb", "webdav", "sftp", "ftp",
}

// IsNetworkDrive reports whether path looks like it lives on a network mount.
// Only directory names are inspected, so a file called "smb-live.mp3" on a
// local disk is not mistaken for a share.
func IsNetworkDrive(path string) bool {
	// UNC paths before filepath.Abs mangles them
	if strings.HasPrefix(path, "//") || strings.HasPrefix(path, `\\`) {
		return true
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	slashed := filepath.ToSlash(absPath)

	for _, prefix := range mountPrefixes {
		if strings.HasPrefix(slashed, prefix) {
			return true
		}
	}

	dir := filepath.ToSlash(filepath.Dir(absPath))
	for _, segment := range strings.Split(dir, "/") {
		segment = strings.ToLower(segment)
		for _, indicator := range shareIndicators {
			if strings.HasPrefix(segment, indicator) {
				return true
			}
		}
	}
	return false
}

// AnyNetworkDrive reports whether any non-empty path is on a network mount
func AnyNetworkDrive(paths ...string) bool {
	for _, path := range paths {
		if path != "" && IsNetworkDrive(path) {
			return true
		}
	}
	return false
}
