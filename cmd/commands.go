package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/invenia/lambdalayers/engine"
	"github.com/invenia/lambdalayers/internal/types"
	"github.com/invenia/lambdalayers/registry"
)

var permissionFlags = []string{"account", "organization", "my-account", "my-organization"}

func newListCommand(a *app) *cobra.Command {
	var runtime string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List layers",
		Long:  `List every layer visible to the caller with its latest version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.clients(cmd.Context())
			if err != nil {
				return err
			}

			layers, err := engine.ListLayers(cmd.Context(), client, runtime)
			if err != nil {
				return err
			}
			if len(layers) == 0 {
				a.logger.Info(engine.NoLayersMessage(runtime))
				return nil
			}
			return a.render(layers)
		},
	}

	cmd.Flags().StringVar(&runtime, "runtime", "", "only list layers supporting this runtime")

	return cmd
}

func newVersionsCommand(a *app) *cobra.Command {
	var (
		layer   string
		runtime string
	)

	cmd := &cobra.Command{
		Use:   "versions",
		Short: "List the versions of a layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, _, err := a.clients(cmd.Context())
			if err != nil {
				return err
			}

			versions, err := engine.ListVersions(cmd.Context(), client, layer, runtime)
			if err != nil {
				return err
			}
			if len(versions) == 0 {
				a.logger.Info(engine.NoVersionsMessage(layer, runtime))
				return nil
			}
			return a.render(versions)
		},
	}

	cmd.Flags().StringVar(&layer, "layer", "", "layer name or ARN")
	cmd.Flags().StringVar(&runtime, "runtime", "", "only list versions supporting this runtime")
	_ = cmd.MarkFlagRequired("layer")

	return cmd
}

func newPublishCommand(a *app) *cobra.Command {
	var (
		layer          string
		layerPath      string
		buildDir       string
		runtimes       []string
		version        string
		account        string
		organization   string
		myAccount      bool
		myOrganization bool
	)

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Build a layer and publish it as a new version",
		Long: `Build the layer directory for every requested runtime, publish the merged
package as a new layer version and grant an account or organization access
to it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			target, err := registry.TargetFromFlags(account, organization, myAccount, myOrganization)
			if err != nil {
				return err
			}

			client, identity, err := a.clients(ctx)
			if err != nil {
				return err
			}

			grant, err := registry.ResolvePermission(ctx, identity, target)
			if err != nil {
				return err
			}

			builder, err := a.builder(layerPath, buildDir, runtimes)
			if err != nil {
				return err
			}

			publisher := engine.NewPublisher(builder, client)
			publisher.SetLogger(a.logger)

			published, err := publisher.Publish(ctx, engine.PublishRequest{
				Layer:       layer,
				Description: version,
				Grant:       grant,
			})
			if err != nil {
				return err
			}
			return a.render(published)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&layer, "layer", "", "layer name")
	flags.StringVar(&layerPath, "layer-path", "", "directory holding the layer sources")
	flags.StringVar(&buildDir, "build-dir", "", "build directory (default <layer-path>/.build)")
	flags.StringSliceVar(&runtimes, "runtimes", nil, "runtimes to build for, e.g. python3.8,python3.9")
	flags.StringVar(&version, "version", "", "version string stored as the layer version description")
	flags.StringVar(&account, "account", "", "grant access to this AWS account ID")
	flags.StringVar(&organization, "organization", "", "grant access to this AWS organization ID")
	flags.BoolVar(&myAccount, "my-account", false, "grant access to the caller's account")
	flags.BoolVar(&myOrganization, "my-organization", false, "grant access to the caller's organization")

	for _, name := range []string{"layer", "layer-path", "runtimes", "version"} {
		_ = cmd.MarkFlagRequired(name)
	}
	cmd.MarkFlagsMutuallyExclusive(permissionFlags...)
	cmd.MarkFlagsOneRequired(permissionFlags...)

	return cmd
}

func newBuildCommand(a *app) *cobra.Command {
	var (
		layerPath string
		buildDir  string
		runtimes  []string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a layer package without publishing it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			builder, err := a.builder(layerPath, buildDir, runtimes)
			if err != nil {
				return err
			}

			result, err := builder.Build(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Infof("Built package at %s", result.OutputPath)
			return a.render(result)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&layerPath, "layer-path", "", "directory holding the layer sources")
	flags.StringVar(&buildDir, "build-dir", "", "build directory (default <layer-path>/.build)")
	flags.StringSliceVar(&runtimes, "runtimes", nil, "runtimes to build for, e.g. python3.8,python3.9")
	_ = cmd.MarkFlagRequired("layer-path")
	_ = cmd.MarkFlagRequired("runtimes")

	return cmd
}

func newVersionCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the lls version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(a.out, "lls %s\n", versionString())
			return err
		},
	}
}

func (a *app) builder(layerPath, buildDir string, runtimes []string) (*engine.Builder, error) {
	builder, err := engine.NewBuilder(&types.BuildConfig{
		LayerPath: layerPath,
		BuildDir:  buildDir,
		Runtimes:  runtimes,
		Prefix:    a.cfg.Build.Prefix,
	}, a.newBuilder(a.cfg, a.logger), nil)
	if err != nil {
		return nil, err
	}
	builder.SetLogger(a.logger)
	return builder, nil
}
