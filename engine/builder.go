package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invenia/lambdalayers/executors"
	"github.com/invenia/lambdalayers/exporters"
	lerrors "github.com/invenia/lambdalayers/internal/errors"
	"github.com/invenia/lambdalayers/internal/types"
	"github.com/invenia/lambdalayers/layers"
)

// Builder turns a local layer directory into one archive covering every
// requested runtime.
type Builder struct {
	config   *types.BuildConfig
	executor executors.PackageBuilder
	exporter exporters.Exporter
	logger   logrus.FieldLogger
}

func NewBuilder(config *types.BuildConfig, executor executors.PackageBuilder, exporter exporters.Exporter) (*Builder, error) {
	if config == nil || config.LayerPath == "" {
		return nil, fmt.Errorf("layer path is required")
	}
	if executor == nil {
		return nil, fmt.Errorf("package builder is required")
	}
	if exporter == nil {
		exporter = exporters.NewMultiRuntimeExporter(config.ResolvedPrefix())
	}

	return &Builder{
		config:   config,
		executor: executor,
		exporter: exporter,
		logger:   logrus.StandardLogger(),
	}, nil
}

func (b *Builder) SetLogger(logger logrus.FieldLogger) {
	b.logger = logger
}

// Build validates every runtime before building any of them, builds one
// package per runtime in order and merges the results. The first failing
// runtime aborts the build and its error is returned as-is.
func (b *Builder) Build(ctx context.Context) (*types.BuildResult, error) {
	start := time.Now()

	runtimes, err := layers.ParseRuntimes(b.config.Runtimes)
	if err != nil {
		return nil, err
	}

	src, err := layers.ReadLocal(b.config.LayerPath)
	if err != nil {
		return nil, err
	}

	buildDir := b.config.ResolvedBuildDir()
	prefix := b.config.ResolvedPrefix()

	files, err := b.sourceFiles(src.Files, buildDir)
	if err != nil {
		return nil, err
	}

	artifacts := make([]types.BuildArtifact, 0, len(runtimes))
	for i, rt := range runtimes {
		b.logger.WithField("runtime", rt.Name).Debugf("[%d/%d] Building package", i+1, len(runtimes))

		path, err := b.executor.Build(ctx, executors.BuildRequest{
			BuildDir:      filepath.Join(buildDir, rt.Version),
			Files:         files,
			Requirements:  src.Requirements,
			PythonVersion: rt.Version,
			ZippedPrefix:  prefix,
		})
		if err != nil {
			return nil, err
		}

		artifacts = append(artifacts, types.BuildArtifact{
			Runtime: rt.Name,
			Version: rt.Version,
			Path:    path,
		})
	}

	merged, err := b.exporter.Export(artifacts, buildDir)
	if err != nil {
		return nil, err
	}

	b.logger.WithFields(logrus.Fields{
		"strategy": merged.Strategy,
		"path":     merged.Path,
	}).Debug(strategyMessage(merged.Strategy))

	return &types.BuildResult{
		OutputPath: merged.Path,
		Strategy:   merged.Strategy,
		Artifacts:  artifacts,
		Runtimes:   layers.Names(runtimes),
		Duration:   time.Since(start),
	}, nil
}

// sourceFiles drops the build directory from the layer's top-level entries.
// A build directory nested deeper inside an entry would be copied into
// itself, so it is rejected.
func (b *Builder) sourceFiles(files []string, buildDir string) ([]string, error) {
	absBuild, err := filepath.Abs(buildDir)
	if err != nil {
		return nil, lerrors.NewValidationError("build_layer",
			fmt.Sprintf("failed to resolve build directory %s", buildDir), err)
	}

	kept := make([]string, 0, len(files))
	for _, file := range files {
		absFile, err := filepath.Abs(file)
		if err != nil {
			return nil, lerrors.NewValidationError("build_layer",
				fmt.Sprintf("failed to resolve layer entry %s", file), err)
		}

		rel, err := filepath.Rel(absFile, absBuild)
		switch {
		case err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)):
			kept = append(kept, file)
		case rel == ".":
			b.logger.WithField("path", file).Debug("Skipping build directory in layer sources")
		default:
			return nil, lerrors.NewErrorBuilder().
				Category(lerrors.ErrorCategoryValidation).
				Operation("build_layer").
				Messagef("build directory %s is inside layer entry %s", buildDir, file).
				Suggestion("Pass a --build-dir outside the layer sources or directly below --layer-path").
				Build()
		}
	}
	return kept, nil
}

func strategyMessage(strategy types.MergeStrategy) string {
	switch strategy {
	case types.MergeStrategySingle:
		return "Built a single-runtime layer zip"
	case types.MergeStrategyCompatible:
		return "Built a cross-compatible layer zip"
	default:
		return "Built a multi-runtime layer zip"
	}
}
