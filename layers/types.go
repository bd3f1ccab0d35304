package layers

import (
	"regexp"
)

// RuntimePattern is the accepted shape of a Python Lambda runtime identifier.
const RuntimePattern = `^python(?P<version>\d\.\d+)$`

var runtimeRegexp = regexp.MustCompile(RuntimePattern)

// Source is the content of a local layer directory.
type Source struct {
	// Root is the directory the source was read from.
	Root string `json:"root"`
	// Files are the direct children to package, sorted by name.
	Files []string `json:"files"`
	// Requirements is the path of the dependency manifest, or "" if the
	// layer has none.
	Requirements string `json:"requirements,omitempty"`
}

// HasRequirements reports whether the layer ships a dependency manifest.
func (s Source) HasRequirements() bool {
	return s.Requirements != ""
}

// Runtime pairs a Lambda runtime identifier with its extracted version.
type Runtime struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

func (r Runtime) String() string {
	return r.Name
}
