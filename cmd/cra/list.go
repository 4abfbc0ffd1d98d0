package main

import (
	"context"
	"fmt"

	"github.com/chrontax/cra/pkg/cra"
	"github.com/goccy/go-yaml"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

type listedEntry struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
	Size int    `yaml:"size"`
}

type listing struct {
	Format  string        `yaml:"format"`
	Entries []listedEntry `yaml:"entries"`
}

func newListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List the entries of an archive",
		Flags: []cli.Flag{
			filterFlag(),
			inputFormatFlag(),
			maxEntrySizeFlag(),
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Value:   "text",
				Usage:   "Output format (text, yaml)",
				Action: func(ctx context.Context, command *cli.Command, s string) error {
					if s != "text" && s != "yaml" {
						return fmt.Errorf("invalid output %q, expected text or yaml", s)
					}
					return nil
				},
			},
		},
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:      "src",
				UsageText: "The archive to list",
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

			entries, err := f.Apply(r.Entries())
			if err != nil {
				return err
			}
			logger.Debug("listing archive", zap.String("src", src), zap.Int("entries", len(entries)), zap.Int("total", r.Len()))

			out := listing{Format: r.Format().String(), Entries: make([]listedEntry, 0, len(entries))}
			for _, entry := range entries {
				switch e := entry.(type) {
				case cra.File:
					out.Entries = append(out.Entries, listedEntry{Name: e.Name, Type: "file", Size: len(e.Data)})
				case cra.Directory:
					out.Entries = append(out.Entries, listedEntry{Name: e.Name, Type: "directory"})
				}
			}

			w := command.Root().Writer
			if command.String("output") == "yaml" {
				data, err := yaml.Marshal(out)
				if err != nil {
					return fmt.Errorf("failed to encode listing: %w", err)
				}
				_, err = w.Write(data)
				return err
			}

			for _, e := range out.Entries {
				if e.Type == "directory" {
					fmt.Fprintf(w, "d %10s  %s\n", "-", e.Name)
					continue
				}
				fmt.Fprintf(w, "f %10d  %s\n", e.Size, e.Name)
			}
			return nil
		},
	}
}
