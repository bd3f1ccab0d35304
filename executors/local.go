package executors

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/invenia/lambdalayers/exporters"
	lerrors "github.com/invenia/lambdalayers/internal/errors"
	"github.com/invenia/lambdalayers/internal/types"
)

const (
	DefaultPipCommand = "pip"
	DefaultPlatform   = "manylinux2014_x86_64"

	// PackageFileName is the archive written into every build directory.
	PackageFileName = "package.zip"
	stagingDirName  = "package"
)

// archiveEpoch is the earliest timestamp a zip entry can carry.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

type PipOptions struct {
	// Command is split on whitespace, so "python3 -m pip" works.
	Command  string
	Platform string
	Logger   logrus.FieldLogger
}

// PipExecutor builds layer packages on the local machine, installing the
// manifest with pip for the target interpreter version and platform.
type PipExecutor struct {
	command  []string
	platform string
	logger   logrus.FieldLogger
}

func NewPipExecutor(opts PipOptions) *PipExecutor {
	command := strings.Fields(opts.Command)
	if len(command) == 0 {
		command = []string{DefaultPipCommand}
	}
	platform := opts.Platform
	if platform == "" {
		platform = DefaultPlatform
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PipExecutor{
		command:  command,
		platform: platform,
		logger:   logger,
	}
}

func (e *PipExecutor) Build(ctx context.Context, req BuildRequest) (string, error) {
	if req.BuildDir == "" {
		return "", lerrors.NewValidationError("package_build", "build directory must be set", nil)
	}
	prefix := req.ZippedPrefix
	if prefix == "" {
		prefix = types.DefaultPrefix
	}

	packageDir := filepath.Join(req.BuildDir, stagingDirName)
	staging := filepath.Join(packageDir, prefix)

	if err := os.RemoveAll(packageDir); err != nil {
		return "", lerrors.NewFilesystemError("package_build", "failed to clear staging directory", err)
	}
	if err := os.MkdirAll(staging, 0755); err != nil {
		return "", lerrors.NewFilesystemError("package_build", "failed to create staging directory", err)
	}

	for _, file := range req.Files {
		if err := copyPath(file, filepath.Join(staging, filepath.Base(file))); err != nil {
			return "", lerrors.NewExecutorError("package_copy", req.Runtime(),
				fmt.Sprintf("failed to copy %s", file), err)
		}
	}

	if req.Requirements != "" {
		if err := e.install(ctx, req, staging); err != nil {
			return "", err
		}
	}

	archive := filepath.Join(req.BuildDir, PackageFileName)
	if err := exporters.ArchiveDir(packageDir, archive, exporters.ArchiveOptions{ModTime: archiveEpoch}); err != nil {
		return "", lerrors.NewExecutorError("package_archive", req.Runtime(),
			fmt.Sprintf("failed to write %s", archive), err)
	}

	return archive, nil
}

func (e *PipExecutor) install(ctx context.Context, req BuildRequest, target string) error {
	args := append(append([]string{}, e.command[1:]...),
		"install",
		"-r", req.Requirements,
		"--target", target,
		"--python-version", req.PythonVersion,
		"--implementation", "cp",
		"--only-binary=:all:",
		"--platform", e.platform,
		"--upgrade",
	)

	log := e.logger.WithFields(logrus.Fields{
		"runtime": req.Runtime(),
		"command": e.command[0],
	})
	log.Debugf("Running %s %s", e.command[0], strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, e.command[0], args...)
	output, err := cmd.CombinedOutput()
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		log.Debug(scanner.Text())
	}

	if err != nil {
		return lerrors.NewExecutorError("pip_install", req.Runtime(),
			fmt.Sprintf("pip install failed: %s", strings.TrimSpace(string(output))), err)
	}
	return nil
}
