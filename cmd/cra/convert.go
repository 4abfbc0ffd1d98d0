package main

import (
	"context"
	"fmt"

	"github.com/chrontax/cra/internal/runner"
	"github.com/chrontax/cra/pkg/cra"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newConvertCommand() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Re-encode an archive into another format",
		Flags: []cli.Flag{
			formatFlag(),
			methodFlag(),
			filterFlag(),
			inputFormatFlag(),
			maxEntrySizeFlag(),
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "src",
				UsageText: "The archive to read",
			},
			&cli.StringArg{
				Name:      "dest",
				UsageText: "The archive to write",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)

			src, dest := command.StringArg("src"), command.StringArg("dest")
			if src == "" || dest == "" {
				return fmt.Errorf("convert needs a source and a destination")
			}

			format, err := outputFormat(command, dest)
			if err != nil {
				return err
			}

			f, err := compileFilter(command)
			if err != nil {
				return err
			}

			r, err := openArchive(ctx, command, logger, src)
			if err != nil {
				return err
			}

			entries, err := f.Apply(r.Entries())
			if err != nil {
				return err
			}

			opts, err := archiveOptions(command, logger, format)
			if err != nil {
				return err
			}

			w := cra.NewWriter(format, opts...)
			w.Extend(runner.TrimDirSlash(entries)...)

			if err := writeArchive(ctx, command, dest, w); err != nil {
				return err
			}

			logger.Info("archive converted",
				zap.String("from", r.Format().String()),
				zap.String("to", format.String()),
				zap.Int("entries", w.Len()),
			)
			return nil
		},
	}
}
