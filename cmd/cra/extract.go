package main

import (
	"context"
	"fmt"

	"github.com/chrontax/cra/internal/engine/sinks"
	"github.com/chrontax/cra/internal/runner"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newExtractCommand() *cli.Command {
	return &cli.Command{
		Name:  "extract",
		Usage: "Extract an archive into a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "dir",
				Aliases:  []string{"C"},
				Usage:    "Destination directory, created when missing",
				Required: true,
			},
			filterFlag(),
			inputFormatFlag(),
			maxEntrySizeFlag(),
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "src",
				UsageText: "The archive to extract",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			src := command.StringArg("src")
			if src == "" {
				return fmt.Errorf("no archive provided")
			}

			f, err := compileFilter(command)
			if err != nil {
				return err
			}

			r, err := openArchive(ctx, command, logger, src)
			if err != nil {
				return err
			}

			dir := command.String("dir")
			sink, err := sinks.NewDirectorySink(dir)
			if err != nil {
				return err
			}

			result, err := runner.Extract(ctx, logger.Named("extract"), sink, r.Entries(), f)
			if err != nil {
				return err
			}

			logger.Info("archive extracted",
				zap.String("src", src),
				zap.String("dir", dir),
				zap.Int("files", result.Files),
				zap.Int("directories", result.Directories),
				zap.Int("skipped", result.Skipped),
			)
			return nil
		},
	}
}
