package ui

import (
	"path/filepath"
	"strings"
)

// shortenPaths drops the directory prefix shared by all paths, keeping one
// level of it for context, so long input lists stay readable
func shortenPaths(paths []string) []string {
	if len(paths) <= 1 {
		return paths
	}

	parts := make([][]string, len(paths))
	shortest := -1
	for i, path := range paths {
		parts[i] = strings.Split(filepath.Clean(path), string(filepath.Separator))
		if shortest < 0 || len(parts[i]) < shortest {
			shortest = len(parts[i])
		}
	}

	// Never treat the file name itself as shared
	common := 0
	for common < shortest-1 {
		first := parts[0][common]
		same := true
		for _, p := range parts[1:] {
			if p[common] != first {
				same = false
				break
			}
		}
		if !same {
			break
		}
		common++
	}

	if common < 2 {
		return paths
	}

	short := make([]string, len(paths))
	for i, p := range parts {
		short[i] = "..." + string(filepath.Separator) + filepath.Join(p[common-1:]...)
	}
	return short
}
