package exporters

import (
	"github.com/invenia/lambdalayers/internal/types"
)

// Exporter turns the per-runtime build artifacts into the single archive
// that gets published.
type Exporter interface {
	Export(artifacts []types.BuildArtifact, buildDir string) (*MergeResult, error)
}

// MergeResult describes the archive an Exporter produced.
type MergeResult struct {
	Path     string              `json:"path"`
	Strategy types.MergeStrategy `json:"strategy"`
}
