package main

import (
	"context"
	"fmt"
	"time"

	"github.com/chrontax/cra/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func allowedEnvFlag() cli.Flag {
	return &cli.StringSliceFlag{
		Name:  "allowed-env",
		Usage: "Environment variables allowed in the manifest (can be repeated)",
	}
}

func newBuildCommand() *cli.Command {
	return &cli.Command{
		Name:  "build",
		Usage: "Build an archive from a manifest",
		Flags: []cli.Flag{
			allowedEnvFlag(),
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "manifest",
				UsageText: "The manifest file (path, - or a remote location)",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			manifestFilename := command.StringArg("manifest")
			if manifestFilename == "" {
				return fmt.Errorf("no manifest provided")
			}

			resolver, err := newResolver(command)
			if err != nil {
				return err
			}
			data, err := resolver.Read(ctx, manifestFilename)
			if err != nil {
				return fmt.Errorf("failed to read manifest '%s': %w", manifestFilename, err)
			}

			logger = logger.With(zap.String("manifest_filename", manifestFilename))

			manifest, err := runner.LoadManifest(data, command.StringSlice("allowed-env"), time.Now())
			if err != nil {
				return fmt.Errorf("failed to load manifest: %w", formatValidationError(err))
			}

			r, err := runner.New(logger.Named("runner"), manifest, resolver)
			if err != nil {
				return fmt.Errorf("failed to create runner: %w", err)
			}

			out, err := r.Output()
			if err != nil {
				return err
			}
			if out.Kind == runner.LocationStdio && isTerminal(command.Root().Writer) {
				return fmt.Errorf("refusing to write a %s archive to a terminal, redirect stdout or set spec.output", manifest.Spec.Format)
			}

			if err := r.Run(ctx); err != nil {
				return fmt.Errorf("failed to build archive: %w", err)
			}

			return nil
		},
	}
}
