package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/invenia/lambdalayers/executors"
	"github.com/invenia/lambdalayers/internal/config"
	lerrors "github.com/invenia/lambdalayers/internal/errors"
	"github.com/invenia/lambdalayers/internal/logging"
	"github.com/invenia/lambdalayers/registry"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// clientFactory opens the layer registry for the loaded configuration.
type clientFactory func(ctx context.Context, cfg *config.Config) (registry.Client, registry.Identity, error)

// builderFactory creates the per-runtime package builder.
type builderFactory func(cfg *config.Config, logger logrus.FieldLogger) executors.PackageBuilder

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	out    io.Writer
	errOut io.Writer

	newClients clientFactory
	newBuilder builderFactory

	configPath string
	debug      bool
	quiet      bool

	cfg    *config.Config
	logger *logrus.Logger
}

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr, awsClients))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer, newClients clientFactory) int {
	a := &app{
		out:        stdout,
		errOut:     stderr,
		newClients: newClients,
		newBuilder: pipBuilder,
	}

	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	executed, err := cmd.ExecuteContextC(ctx)
	if err != nil {
		operation := cmd.Name()
		if executed != nil {
			operation = executed.Name()
		}
		a.reportError(operation, err)
		return 1
	}
	return 0
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lls",
		Short: "Build and publish AWS Lambda Python layers",
		Long: `lls builds Python Lambda layers for one or more runtimes, merges the
per-runtime archives into a single layer package and publishes it as a new
layer version with an access grant.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	flags := cmd.PersistentFlags()
	flags.String("region", "", "AWS region to use")
	flags.String("profile", "", "AWS profile to use")
	flags.StringVar(&a.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/lambdalayers/config.yaml)")
	flags.BoolVarP(&a.debug, "debug", "d", false, "enable debug logging")
	flags.BoolVarP(&a.quiet, "quiet", "q", false, "only log errors")
	flags.StringP("output", "o", config.OutputTable, "output format: table, json or yaml")
	flags.String("log-format", logging.FormatText, "log format: text or json")
	cmd.MarkFlagsMutuallyExclusive("debug", "quiet")

	cmd.AddCommand(newListCommand(a))
	cmd.AddCommand(newVersionsCommand(a))
	cmd.AddCommand(newPublishCommand(a))
	cmd.AddCommand(newBuildCommand(a))
	cmd.AddCommand(newVersionCommand(a))

	return cmd
}

// load resolves configuration and the logger for the command being run.
func (a *app) load(cmd *cobra.Command) error {
	cfg, path, err := config.Load(config.LoadOptions{
		ConfigFilePath: a.configPath,
		Flags:          cmd.Flags(),
	})
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  logging.LevelFromFlags(a.debug, a.quiet, cfg.LogLevel),
		Format: cfg.LogFormat,
		Out:    a.errOut,
	})
	if err != nil {
		return lerrors.NewValidationError("load_config", err.Error(), err)
	}

	a.cfg = cfg
	a.logger = logger
	if path != "" {
		logger.WithField("path", path).Debug("Loaded config file")
	}
	return nil
}

func (a *app) clients(ctx context.Context) (registry.Client, registry.Identity, error) {
	return a.newClients(ctx, a.cfg)
}

// reportError logs err for the user. Errors that did not come from this
// module, such as cobra flag errors, are categorised under operation.
func (a *app) reportError(operation string, err error) {
	logger := a.logger
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(a.errOut)
	}

	buildErr := lerrors.WrapError(err, operation)
	entry := logger.WithField("category", buildErr.Category)
	if buildErr.Operation != "" {
		entry = entry.WithField("operation", buildErr.Operation)
	}
	if buildErr.Cause != nil && logger.IsLevelEnabled(logrus.DebugLevel) {
		entry = entry.WithError(buildErr.Cause)
	}
	entry.Error(buildErr.GetUserFriendlyMessage())
}

func awsClients(ctx context.Context, cfg *config.Config) (registry.Client, registry.Identity, error) {
	awsCfg, err := registry.LoadAWSConfig(ctx, cfg.Profile, cfg.Region)
	if err != nil {
		return nil, nil, err
	}
	client := registry.NewAWSClient(awsCfg)
	return client, client, nil
}

func pipBuilder(cfg *config.Config, logger logrus.FieldLogger) executors.PackageBuilder {
	return executors.NewPipExecutor(executors.PipOptions{
		Command:  cfg.Build.Pip,
		Platform: cfg.Build.Platform,
		Logger:   logger,
	})
}

func versionString() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate)
}
