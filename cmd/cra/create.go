package main

import (
	"context"

	"github.com/chrontax/cra/internal/runner"
	"github.com/chrontax/cra/pkg/cra"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newCreateCommand() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create an archive from local files and directories",
		Flags: []cli.Flag{
			formatFlag(),
			methodFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Value:   "-",
				Usage:   "Destination (path, - for stdout or s3://bucket/key)",
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArgs{
				Name:      "path",
				Min:       1,
				Max:       -1,
				UsageText: "Files and directories to add, directories recursively",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)
			dest := command.String("out")

			format, err := outputFormat(command, dest)
			if err != nil {
				return err
			}

			opts, err := archiveOptions(command, logger, format)
			if err != nil {
				return err
			}

			entries, err := runner.CollectEntries(afero.NewOsFs(), command.StringArgs("path")...)
			if err != nil {
				return err
			}

			w := cra.NewWriter(format, opts...)
			w.Extend(entries...)

			if err := writeArchive(ctx, command, dest, w); err != nil {
				return err
			}

			logger.Info("archive created",
				zap.String("format", format.String()),
				zap.String("out", dest),
				zap.Int("entries", w.Len()),
			)
			return nil
		},
	}
}
