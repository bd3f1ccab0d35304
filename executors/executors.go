package executors

import (
	"context"
)

// BuildRequest describes one package build for a single Python version.
type BuildRequest struct {
	// BuildDir receives the staging tree and the resulting archive.
	BuildDir string
	// Files are copied below ZippedPrefix as-is.
	Files []string
	// Requirements is the dependency manifest to install, or "".
	Requirements string
	// PythonVersion is "<major>.<minor>".
	PythonVersion string
	// ZippedPrefix is the top-level directory of the archive.
	ZippedPrefix string
}

// Runtime is the Lambda runtime identifier the request builds for.
func (r BuildRequest) Runtime() string {
	return "python" + r.PythonVersion
}

// PackageBuilder turns a source set into a zip archive for one runtime and
// returns the archive path.
type PackageBuilder interface {
	Build(ctx context.Context, req BuildRequest) (string, error)
}
