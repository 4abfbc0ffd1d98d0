package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/chrontax/cra/pkg/cra"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func newDetectCommand() *cli.Command {
	return &cli.Command{
		Name:  "detect",
		Usage: "Print the archive format of each input",
		Arguments: []cli.Argument{
			&cli.StringArgs{
				Name:      "src",
				Min:       1,
				Max:       -1,
				UsageText: "Archives to inspect (path, -, s3://bucket/key or http(s):// URL)",
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			logger := getLogger(ctx)
			resolver, err := newResolver(command)
			if err != nil {
				return err
			}
			w := command.Root().Writer

			var failed int
			for _, src := range command.StringArgs("src") {
				data, err := resolver.Read(ctx, src)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", src, err)
				}

				format, err := cra.Detect(data)
				switch {
				case errors.Is(err, cra.ErrUnrecognizedFormat):
					failed++
					logger.Debug("format not recognized", zap.String("src", src))
					fmt.Fprintf(w, "%s: unrecognized\n", src)
				case err != nil:
					return err
				default:
					fmt.Fprintf(w, "%s: %s\n", src, format)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d input(s) are not recognized archives", failed)
			}
			return nil
		},
	}
}
