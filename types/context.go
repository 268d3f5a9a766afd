package types

import (
	"io"
	"os"
)

// DefaultVersion is the fallback version when AppContext is nil
const DefaultVersion = "dev"

// AppContext holds application-wide context information bound into every
// command's Run method
type AppContext struct {
	Version string
	// Out receives user-facing output; os.Stdout when nil
	Out io.Writer
}

// VersionOrDefault returns the build version, tolerating a nil context
func (c *AppContext) VersionOrDefault() string {
	if c == nil || c.Version == "" {
		return DefaultVersion
	}
	return c.Version
}

// Writer returns where commands print, tolerating a nil context
func (c *AppContext) Writer() io.Writer {
	if c == nil || c.Out == nil {
		return os.Stdout
	}
	return c.Out
}
