package exporters

import (
	"fmt"
	"os"
	"path/filepath"

	lerrors "github.com/invenia/lambdalayers/internal/errors"
	"github.com/invenia/lambdalayers/internal/types"
)

// MultiRuntimeExporter combines archives built for several Python runtimes
// into the one archive a layer version is published with.
//
// When every runtime produced an equivalent archive the first one is used
// as-is. Otherwise each archive's prefix directory is moved below
// <prefix>/lib/<runtime>/site-packages/, which Lambda puts on sys.path for
// the matching runtime only.
type MultiRuntimeExporter struct {
	// Prefix is the top-level directory of every archive, normally "python".
	Prefix string
	// ScratchDir is the parent for temporary extraction directories. The
	// system temp directory is used when empty.
	ScratchDir string
}

func NewMultiRuntimeExporter(prefix string) *MultiRuntimeExporter {
	if prefix == "" {
		prefix = types.DefaultPrefix
	}
	return &MultiRuntimeExporter{Prefix: prefix}
}

// Export writes the merged archive into buildDir, named after the first
// artifact.
func (e *MultiRuntimeExporter) Export(artifacts []types.BuildArtifact, buildDir string) (*MergeResult, error) {
	if len(artifacts) == 0 {
		return nil, lerrors.NoRuntimesRequested()
	}

	first := artifacts[0]
	output := filepath.Join(buildDir, filepath.Base(first.Path))

	if len(artifacts) == 1 {
		if err := e.copyArtifact(first.Path, output); err != nil {
			return nil, err
		}
		return &MergeResult{Path: output, Strategy: types.MergeStrategySingle}, nil
	}

	compatible, err := e.allEquivalent(artifacts)
	if err != nil {
		return nil, err
	}
	if compatible {
		if err := e.copyArtifact(first.Path, output); err != nil {
			return nil, err
		}
		return &MergeResult{Path: output, Strategy: types.MergeStrategyCompatible}, nil
	}

	if err := e.segmentedMerge(artifacts, output); err != nil {
		return nil, err
	}
	return &MergeResult{Path: output, Strategy: types.MergeStrategySegmented}, nil
}

// allEquivalent compares every artifact against the first one.
func (e *MultiRuntimeExporter) allEquivalent(artifacts []types.BuildArtifact) (bool, error) {
	for _, other := range artifacts[1:] {
		same, err := Equivalent(artifacts[0].Path, other.Path)
		if err != nil {
			return false, lerrors.NewLayerError("compare_archives",
				fmt.Sprintf("failed to compare %s with %s", artifacts[0].Path, other.Path), err)
		}
		if !same {
			return false, nil
		}
	}
	return true, nil
}

func (e *MultiRuntimeExporter) copyArtifact(src, dst string) error {
	if filepath.Clean(src) == filepath.Clean(dst) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return lerrors.NewFilesystemError("copy_archive", "failed to create build directory", err)
	}
	if err := copyFile(src, dst); err != nil {
		return lerrors.NewFilesystemError("copy_archive",
			fmt.Sprintf("failed to copy %s to %s", src, dst), err)
	}
	return nil
}

// segmentedMerge round-trips every archive through real files on disk; zip
// writers do not carry permission bits over from in-memory entries reliably.
func (e *MultiRuntimeExporter) segmentedMerge(artifacts []types.BuildArtifact, output string) error {
	scratch, err := os.MkdirTemp(e.ScratchDir, "lambdalayers")
	if err != nil {
		return lerrors.NewFilesystemError("merge_archives", "failed to create scratch directory", err)
	}
	defer os.RemoveAll(scratch)

	combine := filepath.Join(scratch, "package")

	for _, artifact := range artifacts {
		extractDir := filepath.Join(scratch, artifact.Runtime)
		if err := os.Mkdir(extractDir, 0755); err != nil {
			return lerrors.NewFilesystemError("merge_archives",
				fmt.Sprintf("failed to create extraction directory for %s", artifact.Runtime), err)
		}

		if err := Extract(artifact.Path, extractDir); err != nil {
			return lerrors.NewErrorBuilder().
				Category(lerrors.ErrorCategoryLayer).
				Operation("extract_archive").
				Runtime(artifact.Runtime).
				Messagef("failed to extract %s", artifact.Path).
				Cause(err).
				Build()
		}

		src := filepath.Join(extractDir, e.Prefix)
		if info, err := os.Stat(src); err != nil || !info.IsDir() {
			return lerrors.NewErrorBuilder().
				Category(lerrors.ErrorCategoryLayer).
				Operation("merge_archives").
				Runtime(artifact.Runtime).
				Messagef("archive %s has no top-level %q directory", artifact.Path, e.Prefix).
				Cause(err).
				Build()
		}

		dst := filepath.Join(combine, e.Prefix, "lib", artifact.Runtime, "site-packages")
		if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return lerrors.NewFilesystemError("merge_archives", "failed to create runtime directory", err)
		}
		if err := os.Rename(src, dst); err != nil {
			return lerrors.NewFilesystemError("merge_archives",
				fmt.Sprintf("failed to move %s content into place", artifact.Runtime), err)
		}
	}

	if err := ArchiveDir(combine, output, ArchiveOptions{}); err != nil {
		return lerrors.NewLayerError("merge_archives",
			fmt.Sprintf("failed to write merged archive %s", output), err)
	}
	return nil
}
