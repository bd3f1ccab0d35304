package types

import (
	"path/filepath"
	"time"
)

const (
	// DefaultPrefix is the archive-internal directory Lambda adds to
	// sys.path for Python layers.
	DefaultPrefix = "python"

	// DefaultBuildDirName is created under the layer path when no build
	// directory is given.
	DefaultBuildDirName = ".build"

	// RequirementsFile is the dependency manifest picked out of a layer
	// directory.
	RequirementsFile = "requirements.txt"
)

// MergeStrategy records how per-runtime archives were combined.
type MergeStrategy string

const (
	MergeStrategySingle     MergeStrategy = "single"
	MergeStrategyCompatible MergeStrategy = "compatible"
	MergeStrategySegmented  MergeStrategy = "segmented"
)

type BuildConfig struct {
	LayerPath string   `json:"layer_path"`
	BuildDir  string   `json:"build_dir,omitempty"`
	Runtimes  []string `json:"runtimes"`
	Prefix    string   `json:"prefix,omitempty"`
}

// ResolvedBuildDir returns BuildDir, defaulting to <LayerPath>/.build.
func (c *BuildConfig) ResolvedBuildDir() string {
	if c.BuildDir != "" {
		return c.BuildDir
	}
	return filepath.Join(c.LayerPath, DefaultBuildDirName)
}

// ResolvedPrefix returns Prefix, defaulting to DefaultPrefix.
func (c *BuildConfig) ResolvedPrefix() string {
	if c.Prefix != "" {
		return c.Prefix
	}
	return DefaultPrefix
}

// BuildArtifact is one archive produced for exactly one runtime.
type BuildArtifact struct {
	Runtime string `json:"runtime" yaml:"runtime"`
	Version string `json:"version" yaml:"version"`
	Path    string `json:"path" yaml:"path"`
}

type BuildResult struct {
	OutputPath string          `json:"output_path" yaml:"output_path"`
	Strategy   MergeStrategy   `json:"strategy" yaml:"strategy"`
	Artifacts  []BuildArtifact `json:"artifacts" yaml:"artifacts"`
	Runtimes   []string        `json:"runtimes" yaml:"runtimes"`
	Duration   time.Duration   `json:"duration" yaml:"duration"`
}
